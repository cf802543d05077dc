package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// Create godoc
// @Summary Create a client
// @Tags client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateClientRequest true "Client"
// @Success 201 {object} model.Client
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /client [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req model.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	client, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// Get godoc
// @Summary Get a client
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} model.Client
// @Failure 404 {object} model.ErrorResponse
// @Router /client/{clientId} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.svc.Get(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, client)
}
