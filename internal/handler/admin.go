package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

type AdminHandler struct {
	auth *service.AuthService
}

func NewAdminHandler(auth *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: auth}
}

// TokenCleanup godoc
// @Summary Run token cleanup now
// @Description Deletes stale sessions and refresh tokens outside the normal daily sweep.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.TokenCleanupResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /admin/token-cleanup [post]
func (h *AdminHandler) TokenCleanup(c *gin.Context) {
	resp, err := h.auth.Cleanup(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
