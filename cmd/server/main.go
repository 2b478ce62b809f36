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
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/bootstrap"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/config"
	"github.com/stockwise/backend/internal/infrastructure/logger"
	"github.com/stockwise/backend/internal/infrastructure/scheduler"
	"github.com/stockwise/backend/internal/interfaces/http/handler"
	"github.com/stockwise/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := bootstrap.NewLogger(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(baseLog)

	baseLog.Info("Starting stockwise",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	app, err := bootstrap.New(context.Background(), cfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize application", zap.Error(err))
	}
	log := app.Logger
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Close(ctx); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	// Periodic resync
	if cfg.Sync.ScheduleEvery > 0 {
		trigger := scheduler.NewSyncTrigger(scheduler.SyncTriggerConfig{
			Interval:   cfg.Sync.ScheduleEvery,
			JobTimeout: scheduler.DefaultSyncTriggerConfig().JobTimeout,
		}, func(ctx context.Context) error {
			_, err := app.Orchestrator.Run(ctx, integration.SyncTypeFull)
			return err
		}, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync trigger", zap.Error(err))
			}
		}()
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg := router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}
	if app.Meter.IsEnabled() {
		engineCfg.Meter = app.Meter.Meter("stockwise/http")
	}
	engine, err := router.NewEngine(engineCfg, log)
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	router.RegisterAll(engine, router.Handlers{
		Sync:    handler.NewSyncHandler(app.Orchestrator),
		Reorder: handler.NewReorderHandler(app.Recommendations),
		Health:  handler.NewHealthHandler(app.Database),
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
