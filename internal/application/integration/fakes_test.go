package integration

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByExternalIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if fn, ok := args.Get(0).(func(context.Context, []string) []catalog.Product); ok {
		return fn(ctx, ids), args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindCategorizedByNames(ctx context.Context, names []string) ([]catalog.Product, error) {
	args := m.Called(ctx, names)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) UpsertProducts(ctx context.Context, products []catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) InsertFallbacks(ctx context.Context, products []catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockVariationRepository is a mock implementation of catalog.VariationRepository
type MockVariationRepository struct {
	mock.Mock
}

func (m *MockVariationRepository) UpsertVariations(ctx context.Context, variations []catalog.Variation) error {
	args := m.Called(ctx, variations)
	return args.Error(0)
}

func (m *MockVariationRepository) FindByExternalIDs(ctx context.Context, ids []string) ([]catalog.Variation, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Variation), args.Error(1)
}

func (m *MockVariationRepository) ListByProductIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variation, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Variation), args.Error(1)
}

// MockIdentityMappingRepository is a mock implementation of integration.IdentityMappingRepository
type MockIdentityMappingRepository struct {
	mock.Mock
}

func (m *MockIdentityMappingRepository) FindByExternalIDs(ctx context.Context, ids []string) ([]integration.IdentityMapping, error) {
	args := m.Called(ctx, ids)
	if fn, ok := args.Get(0).(func(context.Context, []string) []integration.IdentityMapping); ok {
		return fn(ctx, ids), args.Error(1)
	}
	return args.Get(0).([]integration.IdentityMapping), args.Error(1)
}

func (m *MockIdentityMappingRepository) Upsert(ctx context.Context, mappings []integration.IdentityMapping) error {
	args := m.Called(ctx, mappings)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

// memoryStore implements the catalog and mapping repositories over maps so
// that multi-step flows can be checked against the resulting state
type memoryStore struct {
	mu         sync.Mutex
	locations  map[string]catalog.Location
	products   map[string]catalog.Product // by external id
	variations map[string]catalog.Variation
	mappings   map[string]integration.IdentityMapping

	productLookups int
	fallbackErr    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		locations:  make(map[string]catalog.Location),
		products:   make(map[string]catalog.Product),
		variations: make(map[string]catalog.Variation),
		mappings:   make(map[string]integration.IdentityMapping),
	}
}

type memoryProducts struct{ *memoryStore }
type memoryVariations struct{ *memoryStore }
type memoryMappings struct{ *memoryStore }
type memoryLocations struct{ *memoryStore }

func (s memoryLocations) UpsertLocations(_ context.Context, locations []catalog.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range locations {
		s.locations[l.ID] = l
	}
	return nil
}

func (s memoryLocations) ListLocations(context.Context) ([]catalog.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l)
	}
	return out, nil
}

func (s memoryProducts) FindByExternalIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productLookups++
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memoryProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []catalog.Product
	for _, p := range s.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memoryProducts) FindCategorizedByNames(_ context.Context, names []string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []catalog.Product
	for _, p := range s.products {
		if p.Category != nil && want[catalog.NormalizeName(p.Name)] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memoryProducts) ListActive(context.Context) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.Product
	for _, p := range s.products {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memoryProducts) UpsertProducts(_ context.Context, products []catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		if prev, ok := s.products[p.ExternalID]; ok {
			p.ID = prev.ID
		}
		s.products[p.ExternalID] = p
	}
	return nil
}

func (s memoryProducts) InsertFallbacks(_ context.Context, products []catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallbackErr != nil {
		return s.fallbackErr
	}
	for _, p := range products {
		if _, ok := s.products[p.ExternalID]; !ok {
			s.products[p.ExternalID] = p
		}
	}
	return nil
}

func (s memoryVariations) UpsertVariations(_ context.Context, variations []catalog.Variation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range variations {
		if prev, ok := s.variations[v.ExternalVariationID]; ok {
			v.ID = prev.ID
		}
		s.variations[v.ExternalVariationID] = v
	}
	return nil
}

func (s memoryVariations) FindByExternalIDs(_ context.Context, ids []string) ([]catalog.Variation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.Variation
	for _, id := range ids {
		if v, ok := s.variations[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s memoryVariations) ListByProductIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Variation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s memoryMappings) FindByExternalIDs(_ context.Context, ids []string) ([]integration.IdentityMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []integration.IdentityMapping
	for _, id := range ids {
		if m, ok := s.mappings[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s memoryMappings) Upsert(_ context.Context, mappings []integration.IdentityMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range mappings {
		s.mappings[m.ExternalID] = m
	}
	return nil
}

func (s *memoryStore) product(externalID string) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[externalID]
	return p, ok
}
