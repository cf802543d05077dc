package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

type EventHandler struct {
	svc *service.EventService
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create godoc
// @Summary Schedule an event for a client
// @Tags event
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param request body model.CreateEventRequest true "Event"
// @Success 201 {object} model.Event
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /client/{clientId}/event [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	event, err := h.svc.Create(c.Request.Context(), c.Param("clientId"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// List godoc
// @Summary List a client's events
// @Description Without beginDate and endDate the window starts today and is open-ended.
// @Tags event
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param beginDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {array} model.Event
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /client/{clientId}/event [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context(), c.Param("clientId"), c.Query("beginDate"), c.Query("endDate"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Conflicts godoc
// @Summary List overlapping events
// @Tags event
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param beginDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} model.ConflictListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /client/{clientId}/event/conflicts [get]
func (h *EventHandler) Conflicts(c *gin.Context) {
	conflicts, err := h.svc.Conflicts(c.Request.Context(), c.Param("clientId"), c.Query("beginDate"), c.Query("endDate"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model.ConflictListResponse{Conflicts: conflicts})
}

// HasConflicts godoc
// @Summary Summarize overlapping events
// @Tags event
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param beginDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Success 200 {object} model.ConflictSummaryResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /client/{clientId}/event/has-conflicts [get]
func (h *EventHandler) HasConflicts(c *gin.Context) {
	summary, err := h.svc.ConflictSummary(c.Request.Context(), c.Param("clientId"), c.Query("beginDate"), c.Query("endDate"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, model.ConflictSummaryResponse{Conflicts: summary})
}
