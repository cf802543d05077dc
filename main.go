package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nwarner31/helping-hands-sub001/internal/config"
	"github.com/nwarner31/helping-hands-sub001/internal/db"
	"github.com/nwarner31/helping-hands-sub001/internal/handler"
	"github.com/nwarner31/helping-hands-sub001/internal/logger"
	"github.com/nwarner31/helping-hands-sub001/internal/metrics"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
	"github.com/nwarner31/helping-hands-sub001/internal/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// @title           Helping Hands API
// @version         1.0
// @description     Employee authentication, client records and event scheduling for the helping-hands shelter backend.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{ServiceName: "helping-hands"})
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: "helping-hands",
		Pretty:      cfg.Log.Pretty,
	})
	if !cfg.Server.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	store := db.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}
	log.Info().Msg("database connection established")

	codec, err := token.NewCodec(token.Config{
		SessionSecret: cfg.Auth.SessionSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		SessionTTL:    cfg.Auth.SessionTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token codec")
	}

	tokens := service.NewTokenService(store, codec, cfg.Cleanup, log)
	authSvc, err := service.NewAuthService(store, tokens, cfg.Auth, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create auth service")
	}
	if err := authSvc.EnsureAdmin(ctx, cfg.Admin); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin employee")
	}
	clientSvc := service.NewClientService(store)
	eventSvc := service.NewEventService(clientSvc, store)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterCollectors(registry)

	rdb := newRedisClient(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	go service.NewSweeper(tokens, cfg.Cleanup.Interval, log).Run(ctx)

	router := handler.NewRouter(handler.Dependencies{
		Config:    cfg,
		Log:       log,
		Auth:      authSvc,
		Employees: service.NewEmployeeService(store),
		Clients:   clientSvc,
		Events:    eventSvc,
		DB:        store,
		Redis:     rdb,
		Metrics:   registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// newRedisClient returns nil when Redis is not configured or unreachable, in
// which case rate limiting falls back to the in-memory limiter.
func newRedisClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, using in-memory rate limiter")
		_ = client.Close()
		return nil
	}
	log.Info().Str("addr", cfg.Addr).Msg("connected to redis")
	return client
}
