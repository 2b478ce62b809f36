package syncapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/telemetry"
)

// DefaultSalesWindowDays is the sales history pulled on a resync
const DefaultSalesWindowDays = 14

// CatalogSyncer writes the remote catalog into the store
type CatalogSyncer interface {
	SyncLocations(ctx context.Context, remote []integration.RemoteLocation) (int, error)
	SyncProducts(ctx context.Context, items []integration.RemoteItem, categoryNameByID map[string]string) ([]catalog.Product, error)
	SyncVariations(ctx context.Context, remote []integration.RemoteVariation, synced []catalog.Product) (int, error)
}

// InventorySyncer refreshes current stock
type InventorySyncer interface {
	SyncCounts(ctx context.Context, counts []integration.RemoteInventoryCount) (int, error)
}

// SalesSyncer refreshes the trailing sales window
type SalesSyncer interface {
	SyncOrders(ctx context.Context, orders []integration.RemoteOrder, from, to time.Time) (int, error)
}

// CacheInvalidator drops derived data when a sync starts and when it ends
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// OrchestratorConfig holds resync parameters
type OrchestratorConfig struct {
	SalesWindowDays int
}

// Orchestrator runs resyncs: it fetches from the commerce platform
// concurrently, then writes locations, products, variations, inventory and
// sales in that order. Only one resync runs at a time per process.
type Orchestrator struct {
	platform  integration.CommercePlatform
	catalog   CatalogSyncer
	inventory InventorySyncer
	sales     SalesSyncer
	cache     CacheInvalidator
	guard     *Guard
	config    OrchestratorConfig
	logger    *zap.Logger
	metrics   *telemetry.SyncMetrics
	now       func() time.Time

	mu   sync.RWMutex
	last *SyncReport
}

// NewOrchestrator creates a new Orchestrator. cache may be nil.
func NewOrchestrator(
	platform integration.CommercePlatform,
	catalogSyncer CatalogSyncer,
	inventorySyncer InventorySyncer,
	salesSyncer SalesSyncer,
	cache CacheInvalidator,
	guard *Guard,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.SalesWindowDays <= 0 {
		cfg.SalesWindowDays = DefaultSalesWindowDays
	}
	if guard == nil {
		guard = NewGuard()
	}
	return &Orchestrator{
		platform:  platform,
		catalog:   catalogSyncer,
		inventory: inventorySyncer,
		sales:     salesSyncer,
		cache:     cache,
		guard:     guard,
		config:    cfg,
		logger:    logger.Named("sync"),
		now:       time.Now,
	}
}

// SetSyncMetrics sets the metrics recorder
func (o *Orchestrator) SetSyncMetrics(m *telemetry.SyncMetrics) {
	o.metrics = m
}

// Running reports whether a resync is in flight
func (o *Orchestrator) Running() bool {
	return o.guard.Running()
}

// LastReport returns a copy of the most recent finished run's report
func (o *Orchestrator) LastReport() (*SyncReport, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.last == nil {
		return nil, false
	}
	return o.last.clone(), true
}

// remoteData holds everything fetched for one run
type remoteData struct {
	locations []integration.RemoteLocation
	catalog   *integration.RemoteCatalog
	counts    []integration.RemoteInventoryCount
	orders    []integration.RemoteOrder
}

// Run executes a resync of the given type. A run started while another is
// in flight fails immediately with ErrSyncInProgress and produces no report.
// A failed run returns its report alongside the error.
func (o *Orchestrator) Run(ctx context.Context, syncType integration.SyncType) (*SyncReport, error) {
	if !syncType.IsValid() {
		return nil, integration.ErrInvalidSyncType
	}
	if !o.guard.TryAcquire() {
		o.logger.Warn("Rejected sync trigger, another sync is running", zap.String("type", syncType.String()))
		return nil, ErrSyncInProgress
	}
	defer o.guard.Release()

	report := newSyncReport(syncType, o.now())
	ctx, span := telemetry.StartServiceSpan(ctx, "sync", "Run",
		telemetry.AttrSyncID.String(report.ID.String()),
		telemetry.AttrSyncType.String(syncType.String()),
	)
	logger := o.logger.With(
		zap.String("sync_id", report.ID.String()),
		zap.String("type", syncType.String()),
	)
	logger.Info("Sync started")

	// Invalidated on entry and exit, failed or not: no tree loaded before or
	// during the run stays cached after it.
	o.invalidateCache(ctx, logger)
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("sync."+syncType.String()), func(ctx context.Context) {
		err = o.run(ctx, syncType, report, logger)
	})
	o.invalidateCache(context.WithoutCancel(ctx), logger)

	report.FinishedAt = o.now()
	if err != nil {
		report.Status = SyncStatusFailed
		report.Error = err.Error()
		logger.Error("Sync failed", zap.Duration("duration", report.Duration()), zap.Error(err))
	} else {
		report.Status = SyncStatusSucceeded
		logger.Info("Sync finished",
			zap.Duration("duration", report.Duration()),
			zap.Any("counts", report.Counts),
		)
	}
	o.metrics.RecordRun(ctx, syncType.String(), err == nil)
	telemetry.EndSpan(span, err)

	o.mu.Lock()
	o.last = report.clone()
	o.mu.Unlock()

	return report, err
}

func (o *Orchestrator) run(ctx context.Context, t integration.SyncType, report *SyncReport, logger *zap.Logger) error {
	windowTo := o.now().UTC()
	windowFrom := windowTo.AddDate(0, 0, -o.config.SalesWindowDays)

	data, err := o.fetch(ctx, t, windowFrom, windowTo)
	if err != nil {
		return err
	}
	logger.Debug("Fetched remote data",
		zap.Int("locations", len(data.locations)),
		zap.Int("counts", len(data.counts)),
		zap.Int("orders", len(data.orders)),
	)

	if t.Includes(integration.SyncTypeLocations) {
		if err := o.step(ctx, report, StepLocations, func(ctx context.Context) (int, error) {
			return o.catalog.SyncLocations(ctx, data.locations)
		}); err != nil {
			return err
		}
	}

	if t.Includes(integration.SyncTypeProducts) {
		var synced []catalog.Product
		if err := o.step(ctx, report, StepProducts, func(ctx context.Context) (int, error) {
			var err error
			synced, err = o.catalog.SyncProducts(ctx, data.catalog.Items, data.catalog.CategoryNames())
			return len(synced), err
		}); err != nil {
			return err
		}
		if err := o.step(ctx, report, StepVariations, func(ctx context.Context) (int, error) {
			return o.catalog.SyncVariations(ctx, data.catalog.Variations, synced)
		}); err != nil {
			return err
		}
	}

	if t.Includes(integration.SyncTypeInventory) {
		if err := o.step(ctx, report, StepInventory, func(ctx context.Context) (int, error) {
			return o.inventory.SyncCounts(ctx, data.counts)
		}); err != nil {
			return err
		}
	}

	if t.Includes(integration.SyncTypeSales) {
		if err := o.step(ctx, report, StepSales, func(ctx context.Context) (int, error) {
			return o.sales.SyncOrders(ctx, data.orders, windowFrom, windowTo)
		}); err != nil {
			return err
		}
	}
	return nil
}

// fetch pulls the datasets the sync type needs. The catalog listing runs
// alongside the location listing; counts and orders start as soon as the
// location ids are known.
func (o *Orchestrator) fetch(ctx context.Context, t integration.SyncType, from, to time.Time) (*remoteData, error) {
	data := &remoteData{catalog: &integration.RemoteCatalog{}}
	needLocations := t != integration.SyncTypeProducts

	g, gctx := errgroup.WithContext(ctx)
	if t.Includes(integration.SyncTypeProducts) {
		g.Go(func() error {
			c, err := o.platform.ListCatalog(gctx)
			if err != nil {
				return fmt.Errorf("fetch catalog: %w", err)
			}
			data.catalog = c
			return nil
		})
	}
	if needLocations {
		g.Go(func() error {
			locations, err := o.platform.ListLocations(gctx)
			if err != nil {
				return fmt.Errorf("fetch locations: %w", err)
			}
			data.locations = locations

			ids := make([]string, 0, len(locations))
			for _, l := range locations {
				ids = append(ids, l.ID)
			}
			if len(ids) == 0 {
				return nil
			}

			inner, ictx := errgroup.WithContext(gctx)
			if t.Includes(integration.SyncTypeInventory) {
				inner.Go(func() error {
					counts, err := o.platform.RetrieveInventoryCounts(ictx, ids)
					if err != nil {
						return fmt.Errorf("fetch inventory counts: %w", err)
					}
					data.counts = counts
					return nil
				})
			}
			if t.Includes(integration.SyncTypeSales) {
				inner.Go(func() error {
					orders, err := o.platform.SearchCompletedOrders(ictx, ids, from, to)
					if err != nil {
						return fmt.Errorf("fetch orders: %w", err)
					}
					data.orders = orders
					return nil
				})
			}
			return inner.Wait()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if data.catalog == nil {
		data.catalog = &integration.RemoteCatalog{}
	}
	return data, nil
}

// step runs one write step inside its own span, labelled for profiling as
// operation=sync.<step>, and records its row count
func (o *Orchestrator) step(ctx context.Context, report *SyncReport, name string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := telemetry.StartSpan(ctx, "sync."+name, telemetry.AttrSyncStep.String(name))
	started := time.Now()

	var (
		rows int
		err  error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.SyncLabels(name, report.Type.String()), func(ctx context.Context) {
		rows, err = fn(ctx)
	})

	span.SetAttributes(telemetry.AttrRowCount.Int(rows))
	telemetry.EndSpan(span, err)
	if err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	report.Counts[name] = rows
	o.metrics.RecordStep(ctx, name, rows, time.Since(started))
	return nil
}

func (o *Orchestrator) invalidateCache(ctx context.Context, logger *zap.Logger) {
	if o.cache == nil {
		return
	}
	if err := o.cache.InvalidateAll(ctx); err != nil {
		logger.Warn("Failed to invalidate recommendation cache", zap.Error(err))
	}
}
