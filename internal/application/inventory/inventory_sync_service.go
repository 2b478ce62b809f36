package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/domain/inventory"
	"github.com/stockwise/backend/internal/domain/shared"
)

// DefaultLookupChunkSize bounds the number of ids sent in one IN query
const DefaultLookupChunkSize = 200

// ProductResolver resolves remote catalog object ids to canonical product ids
type ProductResolver interface {
	ResolveProductIDs(ctx context.Context, externalIDs []string) (map[string]uuid.UUID, error)
}

// catalogRef is the canonical product and variation behind a remote catalog object id
type catalogRef struct {
	productID   uuid.UUID
	variationID uuid.UUID
}

// catalogResolver turns remote catalog object ids into catalog references.
// An id naming a synced variation keeps the variation; any other id resolves
// to a product-level reference.
type catalogResolver struct {
	products   ProductResolver
	variations catalog.VariationRepository
	chunkSize  int
}

func (r catalogResolver) resolve(ctx context.Context, externalIDs []string) (map[string]catalogRef, error) {
	ids := shared.Dedupe(externalIDs)
	refs := make(map[string]catalogRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	productIDs, err := r.products.ResolveProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog object ids: %w", err)
	}
	for ext, pid := range productIDs {
		refs[ext] = catalogRef{productID: pid}
	}

	for _, chunk := range shared.Chunk(ids, r.chunkSize) {
		found, err := r.variations.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("lookup variations by external id: %w", err)
		}
		for _, v := range found {
			refs[v.ExternalVariationID] = catalogRef{productID: v.ProductID, variationID: v.ID}
		}
	}
	return refs, nil
}

// InventorySyncService refreshes current stock from remote inventory counts
type InventorySyncService struct {
	resolver catalogResolver
	repo     inventory.Repository
	logger   *zap.Logger
}

// NewInventorySyncService creates a new InventorySyncService
func NewInventorySyncService(
	products ProductResolver,
	variations catalog.VariationRepository,
	repo inventory.Repository,
	logger *zap.Logger,
) *InventorySyncService {
	return &InventorySyncService{
		resolver: catalogResolver{products: products, variations: variations, chunkSize: DefaultLookupChunkSize},
		repo:     repo,
		logger:   logger.Named("inventory_sync"),
	}
}

// SyncCounts resolves counts to canonical items, keeps the latest in-stock
// count per key and upserts the result. Counts whose catalog object cannot
// be resolved are skipped. Returns the number of records written.
func (s *InventorySyncService) SyncCounts(ctx context.Context, counts []integration.RemoteInventoryCount) (int, error) {
	valid, rejected := integration.FilterValid(counts)
	if rejected > 0 {
		s.logger.Warn("Skipping invalid inventory counts", zap.Int("rejected", rejected))
	}

	inStock := valid[:0]
	for _, c := range valid {
		if c.State == inventory.StateInStock {
			inStock = append(inStock, c)
		}
	}
	if len(inStock) == 0 {
		return 0, nil
	}

	ids := make([]string, len(inStock))
	for i, c := range inStock {
		ids[i] = c.CatalogObjectID
	}
	refs, err := s.resolver.resolve(ctx, ids)
	if err != nil {
		return 0, err
	}

	resolved := make([]inventory.Count, 0, len(inStock))
	skipped := 0
	for _, c := range inStock {
		ref, ok := refs[c.CatalogObjectID]
		if !ok {
			skipped++
			continue
		}
		resolved = append(resolved, inventory.Count{
			Key: inventory.InventoryKey{
				LocationID:  c.LocationID,
				ProductID:   ref.productID,
				VariationID: ref.variationID,
			},
			State:        c.State,
			Quantity:     shared.SanitizeNumber(c.Quantity),
			CalculatedAt: c.CalculatedAt,
		})
	}
	if skipped > 0 {
		s.logger.Warn("Skipped inventory counts with unresolved catalog objects", zap.Int("skipped", skipped))
	}

	records := inventory.AggregateInventory(resolved)
	if len(records) == 0 {
		return 0, nil
	}
	if err := s.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert inventory: %w", err)
	}

	s.logger.Info("Inventory synced",
		zap.Int("counts", len(counts)),
		zap.Int("records", len(records)),
	)
	return len(records), nil
}
