package replenishment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/inventory"
	"github.com/stockwise/backend/internal/domain/replenishment"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubStore struct {
	mu         sync.Mutex
	stockGate  chan struct{}
	stockHeld  chan struct{}
	locations  []catalog.Location
	products   []catalog.Product
	variations []catalog.Variation
	records    []inventory.Record
	events     []inventory.SaleEvent
	since      time.Time
	stockReads int
	salesErr   error
}

func (s *stubStore) UpsertLocations(context.Context, []catalog.Location) error { return nil }

func (s *stubStore) ListLocations(context.Context) ([]catalog.Location, error) {
	return s.locations, nil
}

type stubProducts struct{ *stubStore }

func (s stubProducts) FindByExternalIDs(context.Context, []string) ([]catalog.Product, error) {
	return nil, nil
}

func (s stubProducts) FindByIDs(context.Context, []uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}

func (s stubProducts) FindCategorizedByNames(context.Context, []string) ([]catalog.Product, error) {
	return nil, nil
}

func (s stubProducts) ListActive(context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range s.products {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubVariations struct{ *stubStore }

func (s stubVariations) UpsertVariations(context.Context, []catalog.Variation) error { return nil }

func (s stubVariations) FindByExternalIDs(context.Context, []string) ([]catalog.Variation, error) {
	return nil, nil
}

func (s stubVariations) ListByProductIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Variation, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []catalog.Variation
	for _, v := range s.variations {
		if want[v.ProductID] {
			out = append(out, v)
		}
	}
	return out, nil
}

type stubStock struct{ *stubStore }

func (s stubStock) Upsert(context.Context, []inventory.Record) error { return nil }

// ListAll snapshots the records, then parks on stockGate when it is set
func (s stubStock) ListAll(context.Context) ([]inventory.Record, error) {
	s.mu.Lock()
	s.stockReads++
	records := append([]inventory.Record(nil), s.records...)
	gate, held := s.stockGate, s.stockHeld
	s.stockGate = nil
	s.mu.Unlock()

	if gate != nil {
		close(held)
		<-gate
	}
	return records, nil
}

type stubSales struct{ *stubStore }

func (s stubSales) ReplaceWindow(context.Context, time.Time, time.Time, []inventory.SaleEvent) error {
	return nil
}

func (s stubSales) ListSince(_ context.Context, since time.Time) ([]inventory.SaleEvent, error) {
	s.mu.Lock()
	s.since = since
	s.mu.Unlock()
	if s.salesErr != nil {
		return nil, s.salesErr
	}
	return s.events, nil
}

type mapCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	generation uint64
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Generation(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *mapCache) SetAtGeneration(_ context.Context, key string, value []byte, _ time.Duration, generation uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func (c *mapCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.generation++
}

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestService(store *stubStore, cache Cache, cfg Config) *RecommendationService {
	svc := NewRecommendationService(
		store,
		stubProducts{store},
		stubVariations{store},
		stubStock{store},
		stubSales{store},
		cache,
		cfg,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return testNow }
	return svc
}

func newProduct(name, category string) catalog.Product {
	p, _ := catalog.NewProduct("EXT-"+name, name)
	p.SetCategory(category)
	return *p
}

// salesOver spreads total units of one item across daily events
func salesOver(total int, days int, locationID string, productID, variationID uuid.UUID) []inventory.SaleEvent {
	events := make([]inventory.SaleEvent, 0, total)
	for i := 0; i < total; i++ {
		events = append(events, inventory.SaleEvent{
			LocationID:  locationID,
			ProductID:   productID,
			VariationID: variationID,
			Quantity:    1,
			SaleDate:    testNow.AddDate(0, 0, -(i % days)),
		})
	}
	return events
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRecommendationService_IPASixPackEndToEnd(t *testing.T) {
	ipa := newProduct("IPA", "Beer")
	sixPack, _ := catalog.NewVariation(ipa.ID, "V-6PK", "6-pack")
	sixPack.Price = decimal.RequireFromString("11.99")

	store := &stubStore{
		locations:  []catalog.Location{{ID: "L1", Name: "Main St"}, {ID: "L2", Name: "Uptown"}},
		products:   []catalog.Product{ipa},
		variations: []catalog.Variation{*sixPack},
		records: []inventory.Record{{
			InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: ipa.ID, VariationID: sixPack.ID},
			Quantity:     2,
		}},
		// 21 units over 14 days is 1.5 per day
		events: salesOver(21, 14, "L1", ipa.ID, sixPack.ID),
	}
	svc := newTestService(store, nil, Config{LeadTimeDays: 3, WindowDays: 14})

	tree, err := svc.GetRecommendations(context.Background())

	require.NoError(t, err)
	require.Len(t, tree.Locations, 2)
	assert.Equal(t, "L1", tree.Locations[0].ID)
	assert.Empty(t, tree.Locations[1].Products, "locations without stock are still listed")
	assert.NotNil(t, tree.Locations[1].Products)

	require.Len(t, tree.Locations[0].Products, 1)
	product := tree.Locations[0].Products[0]
	assert.Equal(t, "IPA", product.Name)
	assert.Nil(t, product.Recommendation)
	require.Len(t, product.Variations, 1)

	rec := product.Variations[0].Recommendation
	assert.Equal(t, sixPack.ID, rec.ItemID)
	assert.Equal(t, 7, rec.MinimumStock)
	assert.Equal(t, 12, rec.UnitsPerCase)
	assert.Equal(t, 12, rec.SuggestedOrderUnits)
	assert.True(t, rec.LowStock)
	assert.InDelta(t, 1.5, rec.AvgDailySales, 1e-9)
	assert.Equal(t, string(replenishment.RuleSourceCategory), rec.RuleSource)
	assert.Equal(t, replenishment.CategoryBeer, rec.RuleCategory)

	assert.Equal(t, testNow.AddDate(0, 0, -14), store.since)
}

func TestRecommendationService_ProductLevelStockAndOverrides(t *testing.T) {
	marlboro := newProduct("Marlboro Lights", "")
	regular, _ := catalog.NewVariation(marlboro.ID, "V-REG", "Regular")

	store := &stubStore{
		locations:  []catalog.Location{{ID: "L1", Name: "Main St"}},
		products:   []catalog.Product{marlboro},
		variations: []catalog.Variation{*regular},
		records: []inventory.Record{
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: marlboro.ID}, Quantity: 15},
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: marlboro.ID, VariationID: regular.ID}, Quantity: 95},
		},
	}
	svc := newTestService(store, nil, Config{})

	tree, err := svc.GetRecommendations(context.Background())

	require.NoError(t, err)
	product := tree.Locations[0].Products[0]
	require.NotNil(t, product.Recommendation)
	assert.Equal(t, marlboro.ID, product.Recommendation.ItemID)
	assert.Equal(t, 100, product.Recommendation.MinimumStock)
	assert.Equal(t, 14, product.Recommendation.DaysOfSupply)
	assert.Equal(t, 90, product.Recommendation.SuggestedOrderUnits)
	assert.Equal(t, string(replenishment.RuleSourceExactName), product.Recommendation.RuleSource)

	require.Len(t, product.Variations, 1)
	assert.Equal(t, 10, product.Variations[0].Recommendation.SuggestedOrderUnits, "Regular variation matches on the product name")
}

func TestRecommendationService_ExcludesDeletedAndUnknown(t *testing.T) {
	active := newProduct("Pinot Noir", "Wine")
	deleted := newProduct("Old Lager", "Beer")
	deleted.IsDeleted = true
	foreign, _ := catalog.NewVariation(uuid.New(), "V-X", "mismatch")

	store := &stubStore{
		locations:  []catalog.Location{{ID: "L1", Name: "Main St"}},
		products:   []catalog.Product{active, deleted},
		variations: []catalog.Variation{*foreign},
		records: []inventory.Record{
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: active.ID}, Quantity: 1},
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: deleted.ID}, Quantity: 1},
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: active.ID, VariationID: foreign.ID}, Quantity: 1},
			{InventoryKey: inventory.InventoryKey{LocationID: "GONE", ProductID: active.ID}, Quantity: 1},
		},
	}
	svc := newTestService(store, nil, Config{})

	tree, err := svc.GetRecommendations(context.Background())

	require.NoError(t, err)
	require.Len(t, tree.Locations, 1)
	products := tree.Locations[0].Products
	require.Len(t, products, 1)
	assert.Equal(t, active.ID, products[0].ID)
	assert.Empty(t, products[0].Variations)
}

func TestRecommendationService_SortsProductsByName(t *testing.T) {
	b := newProduct("bourbon", "Liquor")
	a := newProduct("Amber Ale", "Beer")
	store := &stubStore{
		locations: []catalog.Location{{ID: "L1", Name: "Main St"}},
		products:  []catalog.Product{b, a},
		records: []inventory.Record{
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: b.ID}, Quantity: 3},
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: a.ID}, Quantity: 3},
		},
	}
	svc := newTestService(store, nil, Config{})

	tree, err := svc.GetRecommendations(context.Background())

	require.NoError(t, err)
	products := tree.Locations[0].Products
	require.Len(t, products, 2)
	assert.Equal(t, "Amber Ale", products[0].Name)
	assert.Equal(t, "bourbon", products[1].Name)
}

func TestRecommendationService_LoadError(t *testing.T) {
	store := &stubStore{salesErr: errors.New("timeout")}
	svc := newTestService(store, nil, Config{})

	_, err := svc.GetRecommendations(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load sales")
}

func TestRecommendationService_ServesFromCache(t *testing.T) {
	p := newProduct("IPA", "Beer")
	store := &stubStore{
		locations: []catalog.Location{{ID: "L1", Name: "Main St"}},
		products:  []catalog.Product{p},
		records: []inventory.Record{
			{InventoryKey: inventory.InventoryKey{LocationID: "L1", ProductID: p.ID}, Quantity: 1},
		},
	}
	cache := newMapCache()
	svc := newTestService(store, cache, Config{CacheTTL: time.Minute})
	ctx := context.Background()

	first, err := svc.GetRecommendations(ctx)
	require.NoError(t, err)
	second, err := svc.GetRecommendations(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.stockReads)
	assert.Equal(t, first.Locations[0].Products[0].ID, second.Locations[0].Products[0].ID)
	assert.Equal(t, first.Locations[0].Products[0].Recommendation.SuggestedOrderUnits,
		second.Locations[0].Products[0].Recommendation.SuggestedOrderUnits)
}

func TestRecommendationService_DoesNotCacheTreeBuiltBeforeSync(t *testing.T) {
	p := newProduct("IPA", "Beer")
	key := inventory.InventoryKey{LocationID: "L1", ProductID: p.ID}
	store := &stubStore{
		locations: []catalog.Location{{ID: "L1", Name: "Main St"}},
		products:  []catalog.Product{p},
		records:   []inventory.Record{{InventoryKey: key, Quantity: 0}},
		stockGate: make(chan struct{}),
		stockHeld: make(chan struct{}),
	}
	gate, held := store.stockGate, store.stockHeld
	cache := newMapCache()
	svc := newTestService(store, cache, Config{CacheTTL: 10 * time.Minute})
	ctx := context.Background()

	type result struct {
		tree *RecommendationTree
		err  error
	}
	inFlight := make(chan result, 1)
	go func() {
		tree, err := svc.GetRecommendations(ctx)
		inFlight <- result{tree, err}
	}()
	<-held

	// a sync commits new stock and invalidates while the read is loading
	store.mu.Lock()
	store.records = []inventory.Record{{InventoryKey: key, Quantity: 500}}
	store.mu.Unlock()
	cache.invalidate()
	close(gate)

	stale := <-inFlight
	require.NoError(t, stale.err)
	assert.Equal(t, 0.0, stale.tree.Locations[0].Products[0].Recommendation.CurrentQuantity)
	assert.Empty(t, cache.entries, "a tree loaded before the sync is not cached")

	fresh, err := svc.GetRecommendations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500.0, fresh.Locations[0].Products[0].Recommendation.CurrentQuantity)
	assert.Equal(t, 2, store.stockReads)
}

func TestItemName(t *testing.T) {
	p := catalog.Product{Name: "Tito's Vodka"}

	assert.Equal(t, "Tito's Vodka", ItemName(p, nil))
	assert.Equal(t, "Tito's Vodka", ItemName(p, &catalog.Variation{Name: "Regular"}))
	assert.Equal(t, "Tito's Vodka", ItemName(p, &catalog.Variation{Name: "  "}))
	assert.Equal(t, "Tito's Vodka 1.75L", ItemName(p, &catalog.Variation{Name: "1.75L"}))
}
