package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/inventory"
)

// MockProductResolver is a mock implementation of ProductResolver
type MockProductResolver struct {
	mock.Mock
}

func (m *MockProductResolver) ResolveProductIDs(ctx context.Context, externalIDs []string) (map[string]uuid.UUID, error) {
	args := m.Called(ctx, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uuid.UUID), args.Error(1)
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

// MockInventoryRepository is a mock implementation of inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Upsert(ctx context.Context, records []inventory.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListAll(ctx context.Context) ([]inventory.Record, error) {
	args := m.Called(ctx)
	return args.Get(0).([]inventory.Record), args.Error(1)
}

// MockSalesRepository is a mock implementation of inventory.SalesRepository
type MockSalesRepository struct {
	mock.Mock
}

func (m *MockSalesRepository) ReplaceWindow(ctx context.Context, from, to time.Time, events []inventory.SaleEvent) error {
	args := m.Called(ctx, from, to, events)
	return args.Error(0)
}

func (m *MockSalesRepository) ListSince(ctx context.Context, since time.Time) ([]inventory.SaleEvent, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]inventory.SaleEvent), args.Error(1)
}
