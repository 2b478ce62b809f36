package integration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/domain/shared"
)

// DefaultLookupChunkSize bounds the number of ids sent in one IN query
const DefaultLookupChunkSize = 200

// IdentityResolver maps remote catalog object ids to canonical product ids.
// Resolution goes mapping cache, then products by external id, then the
// parent of a variation with that external id, then fallback product
// creation. Every id resolved outside the cache is written
// back to the cache.
type IdentityResolver struct {
	mappings   integration.IdentityMappingRepository
	products   catalog.ProductRepository
	variations catalog.VariationRepository
	chunkSize  int
	logger     *zap.Logger
	now        func() time.Time
}

// ResolverOption configures an IdentityResolver
type ResolverOption func(*IdentityResolver)

// WithLookupChunkSize overrides the per-query id count
func WithLookupChunkSize(n int) ResolverOption {
	return func(r *IdentityResolver) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(
	mappings integration.IdentityMappingRepository,
	products catalog.ProductRepository,
	variations catalog.VariationRepository,
	logger *zap.Logger,
	opts ...ResolverOption,
) *IdentityResolver {
	r := &IdentityResolver{
		mappings:   mappings,
		products:   products,
		variations: variations,
		chunkSize:  DefaultLookupChunkSize,
		logger:     logger.Named("identity_resolver"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveProductIDs returns the canonical product id for each external id.
// Ids that cannot be resolved even after fallback creation are omitted.
// Empty input issues no queries.
func (r *IdentityResolver) ResolveProductIDs(ctx context.Context, externalIDs []string) (map[string]uuid.UUID, error) {
	ids := normalizeIDs(externalIDs)
	resolved := make(map[string]uuid.UUID, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	for _, chunk := range shared.Chunk(ids, r.chunkSize) {
		found, err := r.mappings.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("lookup identity mappings: %w", err)
		}
		for _, m := range found {
			if m.ProductID != uuid.Nil {
				resolved[m.ExternalID] = m.ProductID
			}
		}
	}
	cacheHits := len(resolved)

	unresolved := missing(ids, resolved)
	if err := r.lookupProducts(ctx, unresolved, resolved); err != nil {
		return nil, err
	}

	unresolved = missing(ids, resolved)
	if err := r.lookupVariationParents(ctx, unresolved, resolved); err != nil {
		return nil, err
	}

	unresolved = missing(ids, resolved)
	if len(unresolved) > 0 {
		if err := r.createFallbacks(ctx, unresolved, resolved); err != nil {
			return nil, err
		}
	}

	if err := r.writeMappings(ctx, ids, resolved); err != nil {
		return nil, err
	}

	r.logger.Debug("Resolved external ids",
		zap.Int("requested", len(ids)),
		zap.Int("cache_hits", cacheHits),
		zap.Int("resolved", len(resolved)),
	)
	return resolved, nil
}

// lookupProducts adds products found by external id to resolved
func (r *IdentityResolver) lookupProducts(ctx context.Context, ids []string, resolved map[string]uuid.UUID) error {
	for _, chunk := range shared.Chunk(ids, r.chunkSize) {
		found, err := r.products.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return fmt.Errorf("lookup products by external id: %w", err)
		}
		for _, p := range found {
			resolved[p.ExternalID] = p.ID
		}
	}
	return nil
}

// lookupVariationParents resolves ids that name a synced variation to the
// variation's product
func (r *IdentityResolver) lookupVariationParents(ctx context.Context, ids []string, resolved map[string]uuid.UUID) error {
	for _, chunk := range shared.Chunk(ids, r.chunkSize) {
		found, err := r.variations.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return fmt.Errorf("lookup variations by external id: %w", err)
		}
		for _, v := range found {
			resolved[v.ExternalVariationID] = v.ProductID
		}
	}
	return nil
}

// createFallbacks inserts placeholder products and re-reads them so that a
// row inserted concurrently by another resolver wins over ours. When the
// insert itself fails, ids the re-read cannot find are fatal.
func (r *IdentityResolver) createFallbacks(ctx context.Context, ids []string, resolved map[string]uuid.UUID) error {
	fallbacks := make([]catalog.Product, len(ids))
	now := r.now()
	for i, id := range ids {
		p := catalog.NewFallbackProduct(id)
		p.SyncedAt = now
		fallbacks[i] = *p
	}

	insertErr := r.products.InsertFallbacks(ctx, fallbacks)
	if insertErr != nil {
		r.logger.Warn("Fallback product insert failed, re-fetching",
			zap.Int("count", len(ids)),
			zap.Error(insertErr),
		)
	}

	if err := r.lookupProducts(ctx, ids, resolved); err != nil {
		if insertErr != nil {
			return fmt.Errorf("%w: %w (re-fetch: %w)", integration.ErrFallbackInsertFailed, insertErr, err)
		}
		return err
	}

	stillMissing := missing(ids, resolved)
	if len(stillMissing) == 0 {
		return nil
	}
	if insertErr != nil {
		return fmt.Errorf("%w: %d ids unresolved: %w", integration.ErrFallbackInsertFailed, len(stillMissing), insertErr)
	}
	r.logger.Warn("External ids unresolved after fallback creation",
		zap.Strings("external_ids", stillMissing),
	)
	return nil
}

// writeMappings upserts a mapping for every resolved id, cache hits
// included, so each one carries a fresh updated_at
func (r *IdentityResolver) writeMappings(ctx context.Context, ids []string, resolved map[string]uuid.UUID) error {
	now := r.now()
	var mappings []integration.IdentityMapping
	for _, id := range ids {
		pid, ok := resolved[id]
		if !ok {
			continue
		}
		mappings = append(mappings, integration.IdentityMapping{ExternalID: id, ProductID: pid, UpdatedAt: now})
	}
	if len(mappings) == 0 {
		return nil
	}
	if err := r.mappings.Upsert(ctx, mappings); err != nil {
		return fmt.Errorf("write identity mappings: %w", err)
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return shared.Dedupe(out)
}

func missing(ids []string, resolved map[string]uuid.UUID) []string {
	var out []string
	for _, id := range ids {
		if _, ok := resolved[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
