package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdentityMapping caches the resolution of a remote catalog identifier, which
// may name either an item or one of its variations, to a canonical product.
type IdentityMapping struct {
	// ExternalID is the remote catalog object ID
	ExternalID string
	// ProductID is the canonical product the external ID resolves to
	ProductID uuid.UUID
	// UpdatedAt is when the mapping was last confirmed
	UpdatedAt time.Time
}

// IdentityMappingRepository persists identity mappings
type IdentityMappingRepository interface {
	// FindByExternalIDs returns mappings for the given external IDs
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]IdentityMapping, error)
	// Upsert inserts or refreshes mappings keyed by external ID
	Upsert(ctx context.Context, mappings []IdentityMapping) error
}
