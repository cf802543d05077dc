package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/metrics"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
)

// SessionTokenHeader carries a session token minted by the gateway when the
// presented one had to be renewed.
const SessionTokenHeader = "x-session-token"

const principalKey = "principal"

// AuthMiddleware authenticates the request from the bearer session token,
// falling back to rotating the refresh cookie. On rotation the new session
// token is exposed in SessionTokenHeader and the cookie is replaced.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		cookieCfg := authService.CookieConfig()
		refreshToken, _ := c.Cookie(cookieCfg.Name)

		result, err := authService.Authenticate(c.Request.Context(), bearerToken(c), refreshToken)
		if err != nil {
			if service.KindOf(err) == service.KindUnauthenticated {
				metrics.GatewayDecisions.WithLabelValues("unauthenticated").Inc()
			} else {
				metrics.GatewayDecisions.WithLabelValues("forbidden").Inc()
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if result.Rotated != nil {
			c.Header(SessionTokenHeader, result.Rotated.SessionToken)
			setRefreshCookie(c, cookieCfg, result.Rotated.RefreshToken)
			metrics.GatewayDecisions.WithLabelValues("refreshed").Inc()
		} else {
			metrics.GatewayDecisions.WithLabelValues("allowed").Inc()
		}

		c.Set(principalKey, result.Employee)
		c.Next()
	}
}

// RequirePositions admits only principals whose position is exactly one of
// positions.
func RequirePositions(positions ...model.Position) gin.HandlerFunc {
	allowed := make(map[model.Position]struct{}, len(positions))
	for _, p := range positions {
		allowed[p] = struct{}{}
	}

	return func(c *gin.Context) {
		employee := GetPrincipal(c)
		if employee == nil {
			_ = c.Error(service.UnauthenticatedError("authentication required", nil))
			c.Abort()
			return
		}
		if _, ok := allowed[employee.Position]; !ok {
			_ = c.Error(service.UnauthorizedError("insufficient privileges", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) *model.Employee {
	if value, ok := c.Get(principalKey); ok {
		if employee, ok := value.(*model.Employee); ok {
			return employee
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func setRefreshCookie(c *gin.Context, cfg service.CookieConfig, token string) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, token, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func clearRefreshCookie(c *gin.Context, cfg service.CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Header("Access-Control-Expose-Headers", SessionTokenHeader)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
