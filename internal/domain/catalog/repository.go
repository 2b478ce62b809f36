package catalog

import (
	"context"

	"github.com/google/uuid"
)

// LocationRepository persists store locations
type LocationRepository interface {
	// UpsertLocations inserts or replaces locations by ID
	UpsertLocations(ctx context.Context, locations []Location) error
	// ListLocations returns every known location ordered by name
	ListLocations(ctx context.Context) ([]Location, error)
}

// ProductReader provides read access to canonical products
type ProductReader interface {
	// FindByExternalIDs returns products whose external ID is in ids
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]Product, error)
	// FindByIDs returns products by internal ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindCategorizedByNames returns products with a non-null category whose
	// case-folded name is in names
	FindCategorizedByNames(ctx context.Context, names []string) ([]Product, error)
	// ListActive returns all products not marked deleted
	ListActive(ctx context.Context) ([]Product, error)
}

// ProductWriter provides write access to canonical products
type ProductWriter interface {
	// UpsertProducts inserts or replaces products keyed by external ID
	UpsertProducts(ctx context.Context, products []Product) error
	// InsertFallbacks inserts placeholder products, leaving rows that already
	// exist for the same external ID untouched
	InsertFallbacks(ctx context.Context, products []Product) error
}

// ProductRepository combines product read and write access
type ProductRepository interface {
	ProductReader
	ProductWriter
}

// VariationRepository persists product variations
type VariationRepository interface {
	// UpsertVariations inserts or replaces variations keyed by external variation ID
	UpsertVariations(ctx context.Context, variations []Variation) error
	// FindByExternalIDs returns variations whose external variation ID is in ids
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]Variation, error)
	// ListByProductIDs returns variations owned by the given products
	ListByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]Variation, error)
}
