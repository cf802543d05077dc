package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

type EmployeeHandler struct {
	svc *service.EmployeeService
}

func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// List godoc
// @Summary List employees
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Employee
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /employee [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary Get an employee
// @Tags employee
// @Produce json
// @Security BearerAuth
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} model.Employee
// @Failure 404 {object} model.ErrorResponse
// @Router /employee/{employeeId} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.svc.Get(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, employee)
}

// Staffing godoc
// @Summary Headcount per position
// @Tags report
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.StaffingReport
// @Failure 403 {object} model.ErrorResponse
// @Router /report/staffing [get]
func (h *EmployeeHandler) Staffing(c *gin.Context) {
	report, err := h.svc.Staffing(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
