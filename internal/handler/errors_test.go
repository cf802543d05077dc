package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newErrorRouter(development bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zerolog.Nop(), development), ErrorHandler(zerolog.Nop(), development))
	r.GET("/internal", func(c *gin.Context) { _ = c.Error(errors.New("pool exhausted")) })
	r.GET("/forbidden", func(c *gin.Context) {
		_ = c.Error(service.UnauthorizedError("access denied", errors.New("lookup failed")))
	})
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/positions", RequirePositions(model.PositionAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	w := get(newErrorRouter(false), "/internal")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"internal server error"}`, w.Body.String())

	w = get(newErrorRouter(false), "/forbidden")
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"message":"access denied"}`, w.Body.String())
}

func TestErrorHandlerDevelopmentDetail(t *testing.T) {
	w := get(newErrorRouter(true), "/internal")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"internal server error","detail":"pool exhausted"}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	w := get(newErrorRouter(false), "/panic")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"internal server error"}`, w.Body.String())

	w = get(newErrorRouter(true), "/panic")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "kaboom")
}

func TestRequirePositionsWithoutPrincipal(t *testing.T) {
	w := get(newErrorRouter(false), "/positions")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
