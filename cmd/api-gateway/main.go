package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/gateway"
	"github.com/noah-isme/sma-adp-counseling/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-adp-counseling/internal/middleware"
	"github.com/noah-isme/sma-adp-counseling/internal/repository"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
	"github.com/noah-isme/sma-adp-counseling/pkg/cache"
	"github.com/noah-isme/sma-adp-counseling/pkg/config"
	"github.com/noah-isme/sma-adp-counseling/pkg/database"
	"github.com/noah-isme/sma-adp-counseling/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-counseling/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-counseling/pkg/middleware/requestid"
	"github.com/noah-isme/sma-adp-counseling/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, ready, closeKV, err := openKeyValue(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open store backend", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeKV()

	metrics := service.NewMetricsService()
	store, err := service.NewDomainStore(ctx, service.NewStoreBackends(kv, cfg.Store.KeyPrefix, metrics), validator.New(), logr)
	if err != nil {
		logr.Fatal("failed to load domain store", zap.Error(err))
	}
	store.Subscribe(metrics.RecordStoreEvent)

	sessions := service.NewSessionService(service.SessionConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		CacheTTL: cfg.Gateway.SessionCacheTTL,
	}, logr)

	gw, err := gateway.New(sessions, gateway.Options{
		BaseURL:  cfg.Gateway.BaseURL,
		Timeout:  cfg.Gateway.Timeout,
		Logger:   logr,
		Observer: metrics,
	})
	if err != nil {
		logr.Fatal("failed to configure gateway", zap.Error(err))
	}

	var caseHandler *handler.CaseHandler
	if cfg.Exports.Enabled {
		caseHandler = handler.NewCaseHandler(store, service.NewExportService(store, logr, nil, nil))
	} else {
		caseHandler = handler.NewCaseHandler(store, nil)
	}
	planHandler := handler.NewSupportPlanHandler(store)
	alertHandler := handler.NewAlertHandler(store)
	studentHandler := handler.NewStudentHandler(store)
	suggestionHandler := handler.NewSuggestionHandler(store)
	eventHandler := handler.NewEventHandler(store, 0, logr)
	gatewayHandler := handler.NewGatewayHandler(gw)
	metricsHandler := handler.NewMetricsHandler(metrics.Handler(), ready)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(sessions))
	staff := internalmiddleware.RequireRoles(internalmiddleware.StaffRoles...)

	cases := api.Group("/cases", staff)
	cases.GET("", caseHandler.List)
	cases.POST("", caseHandler.Create)
	cases.GET("/:id", caseHandler.Get)
	cases.PATCH("/:id", caseHandler.Update)
	cases.POST("/:id/assessments", caseHandler.AddAssessment)
	cases.POST("/:id/interventions", caseHandler.AddIntervention)
	cases.POST("/:id/notes", caseHandler.AddNote)
	cases.GET("/:id/export", caseHandler.Export)

	plans := api.Group("/support-plans", staff)
	plans.GET("", planHandler.List)
	plans.POST("", planHandler.Create)
	plans.GET("/:id", planHandler.Get)
	plans.PATCH("/:id", planHandler.Update)
	plans.POST("/:id/evaluations", planHandler.AddEvaluation)

	alerts := api.Group("/alerts", staff)
	alerts.GET("", alertHandler.List)
	alerts.POST("", alertHandler.Create)
	alerts.GET("/:id", alertHandler.Get)
	alerts.PATCH("/:id", alertHandler.Update)
	alerts.POST("/:id/acknowledge", alertHandler.Acknowledge)

	students := api.Group("/students", staff)
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.GET("/:id", studentHandler.Get)
	students.PATCH("/:id", studentHandler.Update)

	api.GET("/suggestions", staff, suggestionHandler.List)
	api.GET("/events", staff, eventHandler.Stream)
	api.POST("/gateway/:endpoint", gatewayHandler.Invoke)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openKeyValue selects the persistence substrate named by the config and returns
// a readiness probe plus a closer for it.
func openKeyValue(ctx context.Context, cfg *config.Config) (repository.KeyValue, func() error, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return repository.NewMemoryKeyValue(), nil, noop, nil
	case config.StoreBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		ready := func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx).Err()
		}
		return repository.NewRedisKeyValue(client), ready, func() { _ = client.Close() }, nil
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, noop, err
		}
		kv := repository.NewPostgresKeyValue(db)
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		ready := func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		}
		return kv, ready, func() { _ = db.Close() }, nil
	default:
		local, err := storage.NewLocalStorage(cfg.Store.Dir)
		if err != nil {
			return nil, nil, noop, err
		}
		return repository.NewFileKeyValue(local), nil, noop, nil
	}
}
