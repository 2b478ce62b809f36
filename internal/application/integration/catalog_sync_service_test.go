package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
)

func newCatalogSyncService(store *memoryStore) *CatalogSyncService {
	svc := NewCatalogSyncService(
		memoryLocations{store},
		memoryProducts{store},
		memoryVariations{store},
		memoryMappings{store},
		zap.NewNop(),
	)
	svc.now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedProduct(store *memoryStore, externalID, name, category string, syncedAt time.Time) catalog.Product {
	p, _ := catalog.NewProduct(externalID, name)
	p.SetCategory(category)
	p.SyncedAt = syncedAt
	store.products[externalID] = *p
	return *p
}

func TestCatalogSyncService_SyncLocations(t *testing.T) {
	store := newMemoryStore()
	svc := newCatalogSyncService(store)

	n, err := svc.SyncLocations(context.Background(), []integration.RemoteLocation{
		{ID: "L1", Name: "Downtown"},
		{ID: "L2"},
		{ID: "", Name: "Broken"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Downtown", store.locations["L1"].Name)
	assert.Equal(t, "L2", store.locations["L2"].Name, "blank name falls back to the id")
}

func TestCatalogSyncService_SyncProducts_PreservesCategoryByExternalID(t *testing.T) {
	store := newMemoryStore()
	existing := seedProduct(store, "I1", "House Cabernet", "Wine", time.Now().Add(-48*time.Hour))
	svc := newCatalogSyncService(store)

	synced, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "I1", Name: "House Cabernet 750ml", CategoryID: "MISSING"},
	}, map[string]string{})

	require.NoError(t, err)
	require.Len(t, synced, 1)
	stored, ok := store.product("I1")
	require.True(t, ok)
	assert.Equal(t, "Wine", stored.CategoryName())
	assert.Equal(t, "House Cabernet 750ml", stored.Name)
	assert.Equal(t, existing.ID, stored.ID, "product id is reused across resyncs")
	assert.Equal(t, existing.ID, store.mappings["I1"].ProductID)
}

func TestCatalogSyncService_SyncProducts_RemoteCategoryWins(t *testing.T) {
	store := newMemoryStore()
	seedProduct(store, "I1", "House Cabernet", "Wine", time.Now())
	svc := newCatalogSyncService(store)

	_, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "I1", Name: "House Cabernet", CategoryID: "C1"},
	}, map[string]string{"C1": "Red Wine"})

	require.NoError(t, err)
	stored, _ := store.product("I1")
	assert.Equal(t, "Red Wine", stored.CategoryName())
}

func TestCatalogSyncService_SyncProducts_VariationParentCategory(t *testing.T) {
	store := newMemoryStore()
	parent := seedProduct(store, "P1", "Lagunitas IPA", "Beer", time.Now())
	store.variations["X9"] = catalog.Variation{ID: uuid.New(), ProductID: parent.ID, ExternalVariationID: "X9", Name: "6 pack"}
	svc := newCatalogSyncService(store)

	_, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "X9", Name: "Lagunitas IPA 6pk"},
	}, nil)

	require.NoError(t, err)
	stored, ok := store.product("X9")
	require.True(t, ok)
	assert.Equal(t, "Beer", stored.CategoryName())
}

func TestCatalogSyncService_SyncProducts_SameNamePicksMostRecent(t *testing.T) {
	store := newMemoryStore()
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	seedProduct(store, "OLD", "Hazy IPA", "Craft", base)
	seedProduct(store, "NEW", "hazy ipa", "Beer", base.Add(24*time.Hour))
	svc := newCatalogSyncService(store)

	_, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "I7", Name: "Hazy  IPA"},
	}, nil)

	require.NoError(t, err)
	stored, ok := store.product("I7")
	require.True(t, ok)
	assert.Equal(t, "Beer", stored.CategoryName())
}

func TestCatalogSyncService_SyncProducts_NoCandidateLeavesCategoryNil(t *testing.T) {
	store := newMemoryStore()
	svc := newCatalogSyncService(store)

	_, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "I1", Name: "Mystery Item"},
	}, nil)

	require.NoError(t, err)
	stored, _ := store.product("I1")
	assert.Nil(t, stored.Category)
}

func TestCatalogSyncService_SyncProducts_DuplicatesLastWins(t *testing.T) {
	store := newMemoryStore()
	svc := newCatalogSyncService(store)

	synced, err := svc.SyncProducts(context.Background(), []integration.RemoteItem{
		{ID: "I1", Name: "First"},
		{ID: "I2", Name: "Other"},
		{ID: "I1", Name: "Second", IsDeleted: true},
		{ID: "I3"},
	}, nil)

	require.NoError(t, err)
	assert.Len(t, synced, 2)
	stored, _ := store.product("I1")
	assert.Equal(t, "Second", stored.Name)
	assert.True(t, stored.IsDeleted)
	_, ok := store.product("I3")
	assert.False(t, ok, "items without a name are rejected at the boundary")
}

func TestCatalogSyncService_SyncProducts_UpsertError(t *testing.T) {
	products := new(MockProductRepository)
	mappings := new(MockIdentityMappingRepository)
	svc := NewCatalogSyncService(nil, products, new(MockVariationRepository), mappings, zap.NewNop())
	ctx := context.Background()

	products.On("FindByExternalIDs", ctx, []string{"I1"}).Return([]catalog.Product{}, nil)
	products.On("UpsertProducts", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := svc.SyncProducts(ctx, []integration.RemoteItem{{ID: "I1", Name: "IPA", CategoryID: "C"}}, map[string]string{"C": "Beer"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert products")
	mappings.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCatalogSyncService_SyncVariations(t *testing.T) {
	store := newMemoryStore()
	stored := seedProduct(store, "P0", "Tito's Vodka", "Liquor", time.Now())
	svc := newCatalogSyncService(store)
	ctx := context.Background()

	synced, err := svc.SyncProducts(ctx, []integration.RemoteItem{{ID: "P1", Name: "Lagunitas IPA"}}, nil)
	require.NoError(t, err)

	n, err := svc.SyncVariations(ctx, []integration.RemoteVariation{
		{ID: "V1", ItemID: "P1", Name: "6 pack", PriceCents: 1299},
		{ID: "V1", ItemID: "P1", Name: "duplicate", PriceCents: 1},
		{ID: "V2", ItemID: "P0", Name: "750ml", PriceCents: 2499},
		{ID: "V3", ItemID: "GONE", Name: "orphan", PriceCents: 100},
		{ID: "V4", ItemID: "P1", Name: "retired", IsDeleted: true},
		{ID: "", ItemID: "P1"},
	}, synced)

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v1 := store.variations["V1"]
	assert.Equal(t, synced[0].ID, v1.ProductID)
	assert.Equal(t, "6 pack", v1.Name)
	assert.True(t, decimal.RequireFromString("12.99").Equal(v1.Price))

	v2 := store.variations["V2"]
	assert.Equal(t, stored.ID, v2.ProductID, "parent found in the store when not synced in this run")

	assert.NotContains(t, store.variations, "V3")
	assert.NotContains(t, store.variations, "V4")
	assert.Equal(t, synced[0].ID, store.mappings["V1"].ProductID)
}

func TestCatalogSyncService_SyncVariations_AllOrphans(t *testing.T) {
	store := newMemoryStore()
	svc := newCatalogSyncService(store)

	n, err := svc.SyncVariations(context.Background(), []integration.RemoteVariation{
		{ID: "V1", ItemID: "NOPE"},
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.variations)
	assert.Empty(t, store.mappings)
}
