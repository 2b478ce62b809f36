// Package bootstrap assembles the stockwise services from configuration.
// cmd/server and cmd/sync share it so both binaries run the same pipeline.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	integrationapp "github.com/stockwise/backend/internal/application/integration"
	inventoryapp "github.com/stockwise/backend/internal/application/inventory"
	replenishmentapp "github.com/stockwise/backend/internal/application/replenishment"
	syncapp "github.com/stockwise/backend/internal/application/sync"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/cache"
	"github.com/stockwise/backend/internal/infrastructure/config"
	"github.com/stockwise/backend/internal/infrastructure/ecommerce"
	"github.com/stockwise/backend/internal/infrastructure/fetch"
	"github.com/stockwise/backend/internal/infrastructure/logger"
	"github.com/stockwise/backend/internal/infrastructure/persistence"
	"github.com/stockwise/backend/internal/infrastructure/telemetry"
)

// App holds the wired services and the resources that must be released on exit
type App struct {
	Config          *config.Config
	Logger          *zap.Logger
	Database        *persistence.Database
	Repositories    *persistence.Repositories
	Orchestrator    *syncapp.Orchestrator
	Recommendations *replenishmentapp.RecommendationService
	Tracer          *telemetry.TracerProvider
	Meter           *telemetry.MeterProvider
	Profiler        *telemetry.Profiler

	cache   cache.RecommendationCache
	closers []func(context.Context) error
	baseLog *zap.Logger
}

// NewLogger builds the process logger from the log section of cfg
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// New wires telemetry, storage, the commerce adapter and the sync and
// recommendation services. On error every resource opened so far is released.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (app *App, err error) {
	app = &App{Config: cfg, Logger: log, baseLog: log}
	defer func() {
		if err != nil {
			_ = app.Close(context.Background())
			app = nil
		}
	}()

	if err := app.initTelemetry(ctx); err != nil {
		return app, err
	}

	db, err := persistence.NewDatabase(&cfg.Database, app.Logger, persistence.Options{
		LogLevel: cfg.Log.Level,
		Tracing:  cfg.Telemetry.Enabled,
	})
	if err != nil {
		return app, err
	}
	app.Database = db
	app.addCloser(func(context.Context) error { return db.Close() })
	app.Logger.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	batch := persistence.NewBatchWriter(persistence.BatchConfig{
		ChunkSize: cfg.Sync.ChunkSize,
		Workers:   cfg.Sync.Workers,
		Delay:     cfg.Sync.ChunkDelay,
	}, app.Logger)
	app.Repositories = persistence.NewRepositories(db.DB, batch, cfg.Sync.PageSize)

	platform, err := newCommercePlatform(cfg.Commerce, app.Logger)
	if err != nil {
		return app, err
	}

	if err := app.initCache(); err != nil {
		return app, err
	}

	app.wireServices(platform)
	return app, nil
}

func (a *App) initTelemetry(ctx context.Context) error {
	tc := a.Config.Telemetry

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}
	a.Tracer = tp
	a.addCloser(tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}
	a.Meter = mp
	a.addCloser(mp.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger provider: %w", err)
	}
	a.addCloser(lp.Shutdown)
	a.Logger = lp.Bridge(a.baseLog, zapcore.InfoLevel)

	return a.initProfiler()
}

// initProfiler starts Pyroscope when telemetry.profiling is enabled and,
// when asked, links profiles to trace spans
func (a *App) initProfiler() error {
	pc := a.Config.Telemetry.Profiling

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           pc.Enabled,
		ServerAddress:     pc.ServerAddress,
		ApplicationName:   pc.ApplicationName,
		BasicAuthUser:     pc.BasicAuthUser,
		BasicAuthPassword: pc.BasicAuthPassword,
		ProfileTypes:      pc.ProfileTypes,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to init profiler: %w", err)
	}
	a.Profiler = profiler
	a.addCloser(func(context.Context) error { return profiler.Stop() })

	if profiler.IsEnabled() && pc.SpanProfiles {
		a.Tracer.EnableSpanProfiles()
	}
	return nil
}

func (a *App) initCache() error {
	if !a.Config.Cache.Enabled {
		return nil
	}
	factory := cache.NewRecommendationCacheFactory(a.Config.Redis,
		cache.WithLogger(a.Logger),
		cache.WithInMemoryFallback(true),
	)
	c, err := factory.Create(a.Config.Cache.UseRedis)
	if err != nil {
		return fmt.Errorf("failed to create recommendation cache: %w", err)
	}
	a.cache = c
	a.addCloser(func(context.Context) error { return c.Close() })
	return nil
}

func (a *App) wireServices(platform integration.CommercePlatform) {
	cfg := a.Config
	repos := a.Repositories

	resolver := integrationapp.NewIdentityResolver(
		repos.IdentityMappings, repos.Products, repos.Variations, a.Logger,
		integrationapp.WithLookupChunkSize(cfg.Sync.LookupChunkSize),
	)
	catalogSync := integrationapp.NewCatalogSyncService(
		repos.Locations, repos.Products, repos.Variations, repos.IdentityMappings, a.Logger,
		integrationapp.WithCatalogLookupChunkSize(cfg.Sync.LookupChunkSize),
	)
	inventorySync := inventoryapp.NewInventorySyncService(resolver, repos.Variations, repos.Inventory, a.Logger)
	salesSync := inventoryapp.NewSalesSyncService(resolver, repos.Variations, repos.Sales, a.Logger)

	var recCache replenishmentapp.Cache
	var invalidator syncapp.CacheInvalidator
	if a.cache != nil {
		recCache = a.cache
		invalidator = a.cache
	}

	a.Recommendations = replenishmentapp.NewRecommendationService(
		repos.Locations, repos.Products, repos.Variations, repos.Inventory, repos.Sales,
		recCache,
		replenishmentapp.Config{
			LeadTimeDays: cfg.Reorder.LeadTimeDays,
			WindowDays:   cfg.Reorder.WindowDays,
			CacheTTL:     cfg.Cache.TTL,
		},
		a.Logger,
	)

	a.Orchestrator = syncapp.NewOrchestrator(
		platform, catalogSync, inventorySync, salesSync, invalidator,
		syncapp.NewGuard(),
		syncapp.OrchestratorConfig{SalesWindowDays: cfg.Sync.SalesWindowDays},
		a.Logger,
	)
	if a.Meter.IsEnabled() {
		metrics, err := telemetry.NewSyncMetrics(a.Meter.Meter("stockwise/sync"))
		if err != nil {
			a.Logger.Warn("Sync metrics disabled", zap.Error(err))
			return
		}
		a.Orchestrator.SetSyncMetrics(metrics)
	}
}

func newCommercePlatform(cfg config.CommerceConfig, log *zap.Logger) (integration.CommercePlatform, error) {
	sc := ecommerce.NewSquareConfig(cfg.AccessToken)
	if cfg.BaseURL != "" {
		sc.BaseURL = cfg.BaseURL
	}
	if cfg.APIVersion != "" {
		sc.APIVersion = cfg.APIVersion
	}
	if cfg.Timeout > 0 {
		sc.Timeout = cfg.Timeout
	}
	sc.Retry = fetch.RetryPolicy{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	adapter, err := ecommerce.NewSquareAdapter(sc, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create commerce adapter: %w", err)
	}
	return adapter, nil
}

func (a *App) addCloser(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition. The telemetry
// providers flush last so shutdown logs still reach the collector.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
