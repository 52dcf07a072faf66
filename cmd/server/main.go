package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/appforge-labs/devopshub/api/swagger"
	"github.com/appforge-labs/devopshub/internal/handler"
	"github.com/appforge-labs/devopshub/internal/middleware"
	"github.com/appforge-labs/devopshub/internal/service"
	"github.com/appforge-labs/devopshub/internal/store"
	"github.com/appforge-labs/devopshub/pkg/cache"
	"github.com/appforge-labs/devopshub/pkg/config"
	"github.com/appforge-labs/devopshub/pkg/logger"
	corsmiddleware "github.com/appforge-labs/devopshub/pkg/middleware/cors"
	reqidmiddleware "github.com/appforge-labs/devopshub/pkg/middleware/requestid"
	"github.com/appforge-labs/devopshub/pkg/storage"
)

// @title DevOpsHub API
// @version 1.0.0
// @description Internal dashboard for the programming team: requests, system errors, projects
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			repo := cache.NewRepository(client, logr)
			cacheSvc = service.NewCacheService(repo, metrics, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	requestStore := store.NewRequestStore(cfg.Data.Dir, logr)
	errorStore := store.NewErrorStore(cfg.Data.Dir, logr)
	projectStore := store.NewProjectStore(cfg.Data.Dir, logr)

	requestSvc := service.NewRequestService(requestStore, cacheSvc, metrics, logr)
	errorSvc := service.NewErrorService(errorStore, cacheSvc, metrics, logr)
	projectSvc := service.NewProjectService(projectStore, requestStore, cacheSvc, metrics, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Requests: requestStore,
		Errors:   errorStore,
		Projects: projectStore,
		Cache:    cacheSvc,
		Logger:   logr,
		Config:   service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Requests: requestStore,
		Errors:   errorStore,
		Projects: projectStore,
		Storage:  exportStorage,
		Signer:   signer,
		Metrics:  metrics,
		Logger:   logr,
		Config: service.ExportConfig{
			APIPrefix:  cfg.APIPrefix,
			ResultTTL:  cfg.Exports.SignedURLTTL,
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportSvc.Start(ctx)
	defer exportSvc.Stop()
	go exportSvc.RunCleanup(ctx, cfg.Exports.CleanupInterval)

	requestHandler := handler.NewRequestHandler(requestSvc)
	errorHandler := handler.NewErrorHandler(errorSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/dashboard", dashboardHandler.Snapshot)

		api.GET("/requests", requestHandler.List)
		api.POST("/requests", requestHandler.Create)
		api.GET("/requests/analytics", requestHandler.Analytics)
		api.GET("/requests/:id", requestHandler.Get)
		api.POST("/requests/:id/start", requestHandler.Start)
		api.POST("/requests/:id/complete", requestHandler.Complete)

		api.GET("/errors", errorHandler.List)
		api.POST("/errors", errorHandler.Create)
		api.GET("/errors/analytics", errorHandler.Analytics)
		api.GET("/errors/:id", errorHandler.Get)
		api.POST("/errors/:id/investigate", errorHandler.Investigate)
		api.POST("/errors/:id/fix", errorHandler.Fix)
		api.POST("/errors/:id/escalate", errorHandler.Escalate)

		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/analytics", projectHandler.Analytics)
		api.GET("/projects/:id", projectHandler.Get)
		api.POST("/projects/:id/testing", projectHandler.Testing)
		api.POST("/projects/:id/deploy", projectHandler.Deploy)

		api.POST("/exports", exportHandler.Create)
		api.GET("/exports/:id", exportHandler.Job)
		api.GET("/export/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "data_dir", cfg.Data.Dir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
