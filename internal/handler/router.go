package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Config    config.Config
	Log       zerolog.Logger
	Auth      *service.AuthService
	Employees *service.EmployeeService
	Clients   *service.ClientService
	Events    *service.EventService
	DB        Pinger
	Redis     *redis.Client
	Metrics   prometheus.Gatherer
}

func NewRouter(deps Dependencies) *gin.Engine {
	registerJSONFieldNames()

	dev := deps.Config.Server.Development()
	gatherer := deps.Metrics
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(
		Recovery(deps.Log, dev),
		RequestLogger(deps.Log),
		CORSMiddleware(deps.Config.Server.CORSOrigins, true),
		ErrorHandler(deps.Log, dev),
	)

	health := NewHealthHandler(deps.DB)
	r.GET("/ping", Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET("/openapi.json", OpenAPIDoc)

	limiter := func(c *gin.Context) { c.Next() }
	if deps.Config.RateLimit.Enabled {
		rl := deps.Config.RateLimit
		limiter = RedisRateLimitMiddleware(deps.Redis, rl.RPS, rl.Burst, rl.Window, deps.Log)
	}

	gateway := AuthMiddleware(deps.Auth)

	authHandler := NewAuthHandler(deps.Auth)
	auth := r.Group("/auth")
	auth.POST("/register", limiter, authHandler.Register)
	auth.POST("/login", limiter, authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", gateway, authHandler.Me)

	managers := RequirePositions(model.PositionAdmin, model.PositionDirector, model.PositionManager)

	protected := r.Group("", gateway)

	clientHandler := NewClientHandler(deps.Clients)
	eventHandler := NewEventHandler(deps.Events)
	protected.POST("/client", managers, clientHandler.Create)
	protected.GET("/client/:clientId", clientHandler.Get)
	protected.POST("/client/:clientId/event", managers, eventHandler.Create)
	protected.GET("/client/:clientId/event", eventHandler.List)
	protected.GET("/client/:clientId/event/conflicts", eventHandler.Conflicts)
	protected.GET("/client/:clientId/event/has-conflicts", eventHandler.HasConflicts)

	employeeHandler := NewEmployeeHandler(deps.Employees)
	protected.GET("/employee", RequirePositions(model.PositionAdmin, model.PositionDirector), employeeHandler.List)
	protected.GET("/employee/:employeeId", employeeHandler.Get)
	protected.GET("/report/staffing", RequirePositions(model.PositionDirector), employeeHandler.Staffing)

	adminHandler := NewAdminHandler(deps.Auth)
	protected.POST("/admin/token-cleanup", RequirePositions(model.PositionAdmin), adminHandler.TokenCleanup)

	return r
}
