package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Register a new employee
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Employee details and password"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	employee, pair, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	setRefreshCookie(c, h.svc.CookieConfig(), pair.RefreshToken)
	c.JSON(http.StatusCreated, model.AuthResponse{
		SessionToken: pair.SessionToken,
		Employee:     employee,
	})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 429 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	employee, pair, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	setRefreshCookie(c, h.svc.CookieConfig(), pair.RefreshToken)
	c.JSON(http.StatusOK, model.AuthResponse{
		SessionToken: pair.SessionToken,
		Employee:     employee,
	})
}

// Logout godoc
// @Summary Logout
// @Description Revokes the bearer session token and the refresh token cookie and clears the cookie.
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cfg := h.svc.CookieConfig()
	refreshToken, _ := c.Cookie(cfg.Name)

	if err := h.svc.Logout(c.Request.Context(), bearerToken(c), refreshToken); err != nil {
		_ = c.Error(err)
		return
	}

	clearRefreshCookie(c, cfg)
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Get the authenticated employee
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Employee
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	employee := GetPrincipal(c)
	if employee == nil {
		_ = c.Error(service.UnauthenticatedError("authentication required", nil))
		return
	}
	c.JSON(http.StatusOK, employee)
}
