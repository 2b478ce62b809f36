package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	integrationapp "github.com/stockwise/backend/internal/application/integration"
	inventoryapp "github.com/stockwise/backend/internal/application/inventory"
	replenishmentapp "github.com/stockwise/backend/internal/application/replenishment"
	syncapp "github.com/stockwise/backend/internal/application/sync"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/cache"
)

// stubPlatform serves a fixed dataset
type stubPlatform struct {
	locations []integration.RemoteLocation
	catalog   *integration.RemoteCatalog
	counts    []integration.RemoteInventoryCount
	orders    []integration.RemoteOrder
}

func (p *stubPlatform) ListLocations(context.Context) ([]integration.RemoteLocation, error) {
	return p.locations, nil
}

func (p *stubPlatform) ListCatalog(context.Context) (*integration.RemoteCatalog, error) {
	return p.catalog, nil
}

func (p *stubPlatform) RetrieveInventoryCounts(context.Context, []string) ([]integration.RemoteInventoryCount, error) {
	return p.counts, nil
}

func (p *stubPlatform) SearchCompletedOrders(context.Context, []string, time.Time, time.Time) ([]integration.RemoteOrder, error) {
	return p.orders, nil
}

func newStubPlatform(now time.Time) *stubPlatform {
	return &stubPlatform{
		locations: []integration.RemoteLocation{{ID: "L1", Name: "Main Street"}},
		catalog: &integration.RemoteCatalog{
			Categories: []integration.RemoteCategory{{ID: "CAT-COFFEE", Name: "Coffee"}},
			Items: []integration.RemoteItem{
				{ID: "ITEM-COLD-BREW", Name: "Cold Brew", CategoryID: "CAT-COFFEE", UpdatedAt: now},
			},
			Variations: []integration.RemoteVariation{
				{ID: "VAR-COLD-BREW-L", ItemID: "ITEM-COLD-BREW", Name: "Large", PriceCents: 450},
			},
		},
		counts: []integration.RemoteInventoryCount{
			{CatalogObjectID: "VAR-COLD-BREW-L", LocationID: "L1", State: integration.InventoryStateInStock, Quantity: 3, CalculatedAt: now.Add(-2 * time.Hour)},
			{CatalogObjectID: "VAR-COLD-BREW-L", LocationID: "L1", State: integration.InventoryStateInStock, Quantity: 5, CalculatedAt: now.Add(-time.Hour)},
		},
		orders: []integration.RemoteOrder{
			{
				ID:         "ORDER-1",
				LocationID: "L1",
				ClosedAt:   now.Add(-48 * time.Hour),
				LineItems: []integration.RemoteLineItem{
					{CatalogObjectID: "VAR-COLD-BREW-L", Name: "Cold Brew (Large)", Quantity: 28},
					{CatalogObjectID: "RETIRED-ITEM", Name: "Pumpkin Loaf", Quantity: 1},
				},
			},
		},
	}
}

func TestSyncPipeline_Postgres(t *testing.T) {
	testDB := NewTestDB(t)
	repos := testDB.Repositories(50)
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	resolver := integrationapp.NewIdentityResolver(repos.IdentityMappings, repos.Products, repos.Variations, log)
	recCache := cache.NewInMemoryRecommendationCache()
	defer recCache.Close()

	orchestrator := syncapp.NewOrchestrator(
		newStubPlatform(time.Now()),
		integrationapp.NewCatalogSyncService(repos.Locations, repos.Products, repos.Variations, repos.IdentityMappings, log),
		inventoryapp.NewInventorySyncService(resolver, repos.Variations, repos.Inventory, log),
		inventoryapp.NewSalesSyncService(resolver, repos.Variations, repos.Sales, log),
		recCache,
		syncapp.NewGuard(),
		syncapp.OrchestratorConfig{SalesWindowDays: 14},
		log,
	)
	recommendations := replenishmentapp.NewRecommendationService(
		repos.Locations, repos.Products, repos.Variations, repos.Inventory, repos.Sales,
		recCache,
		replenishmentapp.Config{LeadTimeDays: 7, WindowDays: 14, CacheTTL: time.Minute},
		log,
	)

	report, err := orchestrator.Run(ctx, integration.SyncTypeFull)
	require.NoError(t, err)
	assert.True(t, report.Succeeded())

	assert.Equal(t, int64(1), testDB.Count("locations"))
	assert.Equal(t, int64(2), testDB.Count("products"), "the unknown line item gets a fallback product")
	assert.Equal(t, int64(1), testDB.Count("product_variations"))
	assert.Equal(t, int64(1), testDB.Count("inventory"), "only the latest count per key is kept")
	assert.Equal(t, int64(2), testDB.Count("sales"))

	tree, err := recommendations.GetRecommendations(ctx)
	require.NoError(t, err)
	require.Len(t, tree.Locations, 1)
	assert.Equal(t, "Main Street", tree.Locations[0].Name)
	require.Len(t, tree.Locations[0].Products, 1)

	product := tree.Locations[0].Products[0]
	assert.Equal(t, "Cold Brew", product.Name)
	assert.Equal(t, "Coffee", product.Category)
	require.Len(t, product.Variations, 1)

	rec := product.Variations[0].Recommendation
	assert.Equal(t, 5.0, rec.CurrentQuantity)
	assert.InDelta(t, 2.0, rec.AvgDailySales, 1e-9)

	t.Run("a second run is idempotent", func(t *testing.T) {
		_, err := orchestrator.Run(ctx, integration.SyncTypeFull)
		require.NoError(t, err)

		assert.Equal(t, int64(2), testDB.Count("products"))
		assert.Equal(t, int64(1), testDB.Count("product_variations"))
		assert.Equal(t, int64(1), testDB.Count("inventory"))
		assert.Equal(t, int64(2), testDB.Count("sales"))
		assert.Equal(t, 0, recCache.Size(), "a successful sync drops cached recommendations")
	})
}
