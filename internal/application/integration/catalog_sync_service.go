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

// CatalogSyncService writes remote locations, items and variations into the
// canonical catalog
type CatalogSyncService struct {
	locations  catalog.LocationRepository
	products   catalog.ProductRepository
	variations catalog.VariationRepository
	mappings   integration.IdentityMappingRepository
	strategies []catalog.CategoryStrategy
	chunkSize  int
	logger     *zap.Logger
	now        func() time.Time
}

// CatalogSyncOption configures a CatalogSyncService
type CatalogSyncOption func(*CatalogSyncService)

// WithCategoryStrategies replaces the category preservation cascade
func WithCategoryStrategies(strategies ...catalog.CategoryStrategy) CatalogSyncOption {
	return func(s *CatalogSyncService) {
		s.strategies = strategies
	}
}

// WithCatalogLookupChunkSize overrides the per-query id count
func WithCatalogLookupChunkSize(n int) CatalogSyncOption {
	return func(s *CatalogSyncService) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewCatalogSyncService creates a new CatalogSyncService
func NewCatalogSyncService(
	locations catalog.LocationRepository,
	products catalog.ProductRepository,
	variations catalog.VariationRepository,
	mappings integration.IdentityMappingRepository,
	logger *zap.Logger,
	opts ...CatalogSyncOption,
) *CatalogSyncService {
	s := &CatalogSyncService{
		locations:  locations,
		products:   products,
		variations: variations,
		mappings:   mappings,
		strategies: catalog.DefaultCategoryStrategies,
		chunkSize:  DefaultLookupChunkSize,
		logger:     logger.Named("catalog_sync"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// SyncLocations upserts remote locations by id and returns the number written
func (s *CatalogSyncService) SyncLocations(ctx context.Context, remote []integration.RemoteLocation) (int, error) {
	valid, rejected := integration.FilterValid(remote)
	if rejected > 0 {
		s.logger.Warn("Skipping invalid remote locations", zap.Int("rejected", rejected))
	}

	now := s.now()
	locations := make([]catalog.Location, 0, len(valid))
	for _, r := range valid {
		loc, err := catalog.NewLocation(r.ID, r.Name)
		if err != nil {
			continue
		}
		loc.SyncedAt = now
		locations = append(locations, *loc)
	}
	if len(locations) == 0 {
		return 0, nil
	}

	if err := s.locations.UpsertLocations(ctx, locations); err != nil {
		return 0, fmt.Errorf("upsert locations: %w", err)
	}
	s.logger.Info("Locations synced", zap.Int("count", len(locations)))
	return len(locations), nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// SyncProducts upserts remote items keyed by external id. An item whose
// category is missing from categoryNameByID keeps a locally known category
// found through the preservation cascade instead of being cleared. The
// stored products are returned for variation parent resolution.
func (s *CatalogSyncService) SyncProducts(
	ctx context.Context,
	items []integration.RemoteItem,
	categoryNameByID map[string]string,
) ([]catalog.Product, error) {
	valid, rejected := integration.FilterValid(items)
	if rejected > 0 {
		s.logger.Warn("Skipping invalid remote items", zap.Int("rejected", rejected))
	}
	valid = dedupeItems(valid)
	if len(valid) == 0 {
		return nil, nil
	}

	externalIDs := make([]string, len(valid))
	var needCategory []integration.RemoteItem
	for i, item := range valid {
		externalIDs[i] = item.ID
		if remoteCategory(item, categoryNameByID) == "" {
			needCategory = append(needCategory, item)
		}
	}

	existing, err := s.findProducts(ctx, externalIDs)
	if err != nil {
		return nil, err
	}
	existingByExt := make(map[string]catalog.Product, len(existing))
	idx := catalog.NewCategoryIndex()
	for _, p := range existing {
		existingByExt[p.ExternalID] = p
		idx.AddProduct(p)
	}

	if len(needCategory) > 0 {
		if err := s.indexFallbackCategories(ctx, idx, needCategory); err != nil {
			return nil, err
		}
	}

	now := s.now()
	products := make([]catalog.Product, 0, len(valid))
	preserved := 0
	for _, item := range valid {
		p, err := catalog.NewProduct(item.ID, item.Name)
		if err != nil {
			continue
		}
		if prev, ok := existingByExt[p.ExternalID]; ok {
			p.ID = prev.ID
		}
		p.SKU = strings.TrimSpace(item.SKU)
		p.IsDeleted = item.IsDeleted
		p.SyncedAt = now

		if name := remoteCategory(item, categoryNameByID); name != "" {
			p.SetCategory(name)
		} else if c, source, ok := catalog.PreserveCategory(idx, s.strategies, item.ID, item.Name); ok {
			p.SetCategory(c)
			preserved++
			s.logger.Debug("Preserved local category",
				zap.String("external_id", item.ID),
				zap.String("category", c),
				zap.String("strategy", source),
			)
		}
		products = append(products, *p)
	}

	if err := s.products.UpsertProducts(ctx, products); err != nil {
		return nil, fmt.Errorf("upsert products: %w", err)
	}

	mappings := make([]integration.IdentityMapping, len(products))
	for i, p := range products {
		mappings[i] = integration.IdentityMapping{ExternalID: p.ExternalID, ProductID: p.ID, UpdatedAt: now}
	}
	if err := s.mappings.Upsert(ctx, mappings); err != nil {
		return nil, fmt.Errorf("write product identity mappings: %w", err)
	}

	s.logger.Info("Products synced",
		zap.Int("count", len(products)),
		zap.Int("categories_preserved", preserved),
	)
	return products, nil
}

// indexFallbackCategories loads the variation-parent and same-name
// candidates for items that arrived without a category
func (s *CatalogSyncService) indexFallbackCategories(ctx context.Context, idx *catalog.CategoryIndex, items []integration.RemoteItem) error {
	ids := make([]string, 0, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		if n := catalog.NormalizeName(item.Name); n != "" {
			names = append(names, n)
		}
	}

	var asVariations []catalog.Variation
	for _, chunk := range shared.Chunk(ids, s.chunkSize) {
		found, err := s.variations.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return fmt.Errorf("lookup variations for category preservation: %w", err)
		}
		asVariations = append(asVariations, found...)
	}
	if len(asVariations) > 0 {
		parentIDs := make([]uuid.UUID, 0, len(asVariations))
		for _, v := range asVariations {
			parentIDs = append(parentIDs, v.ProductID)
		}
		parents := make(map[uuid.UUID]catalog.Product)
		for _, chunk := range shared.Chunk(shared.Dedupe(parentIDs), s.chunkSize) {
			found, err := s.products.FindByIDs(ctx, chunk)
			if err != nil {
				return fmt.Errorf("lookup variation parents: %w", err)
			}
			for _, p := range found {
				parents[p.ID] = p
			}
		}
		for _, v := range asVariations {
			if parent, ok := parents[v.ProductID]; ok {
				idx.AddVariationParent(v.ExternalVariationID, parent)
			}
		}
	}

	for _, chunk := range shared.Chunk(shared.Dedupe(names), s.chunkSize) {
		found, err := s.products.FindCategorizedByNames(ctx, chunk)
		if err != nil {
			return fmt.Errorf("lookup same-name categories: %w", err)
		}
		for _, p := range found {
			idx.AddNamedCandidate(p)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Variations
// ---------------------------------------------------------------------------

// SyncVariations upserts remote variations whose parent item is among synced
// or already stored products. Orphans and deleted variations are dropped.
func (s *CatalogSyncService) SyncVariations(
	ctx context.Context,
	remote []integration.RemoteVariation,
	synced []catalog.Product,
) (int, error) {
	valid, rejected := integration.FilterValid(remote)
	if rejected > 0 {
		s.logger.Warn("Skipping invalid remote variations", zap.Int("rejected", rejected))
	}

	parents := make(map[string]uuid.UUID, len(synced))
	for _, p := range synced {
		parents[p.ExternalID] = p.ID
	}

	var unknownParents []string
	for _, v := range valid {
		if _, ok := parents[v.ItemID]; !ok {
			unknownParents = append(unknownParents, v.ItemID)
		}
	}
	if len(unknownParents) > 0 {
		found, err := s.findProducts(ctx, shared.Dedupe(unknownParents))
		if err != nil {
			return 0, err
		}
		for _, p := range found {
			parents[p.ExternalID] = p.ID
		}
	}

	now := s.now()
	seen := make(map[string]struct{}, len(valid))
	variations := make([]catalog.Variation, 0, len(valid))
	orphans := 0
	for _, rv := range valid {
		if rv.IsDeleted {
			continue
		}
		if _, dup := seen[rv.ID]; dup {
			continue
		}
		productID, ok := parents[rv.ItemID]
		if !ok {
			orphans++
			continue
		}
		v, err := catalog.NewVariation(productID, rv.ID, rv.Name)
		if err != nil {
			continue
		}
		v.SKU = strings.TrimSpace(rv.SKU)
		v.Price = catalog.PriceFromCents(rv.PriceCents)
		v.SyncedAt = now
		seen[rv.ID] = struct{}{}
		variations = append(variations, *v)
	}
	if orphans > 0 {
		s.logger.Warn("Dropped variations without a known parent item", zap.Int("orphans", orphans))
	}
	if len(variations) == 0 {
		return 0, nil
	}

	if err := s.variations.UpsertVariations(ctx, variations); err != nil {
		return 0, fmt.Errorf("upsert variations: %w", err)
	}

	mappings := make([]integration.IdentityMapping, len(variations))
	for i, v := range variations {
		mappings[i] = integration.IdentityMapping{ExternalID: v.ExternalVariationID, ProductID: v.ProductID, UpdatedAt: now}
	}
	if err := s.mappings.Upsert(ctx, mappings); err != nil {
		return 0, fmt.Errorf("write variation identity mappings: %w", err)
	}

	s.logger.Info("Variations synced", zap.Int("count", len(variations)))
	return len(variations), nil
}

func (s *CatalogSyncService) findProducts(ctx context.Context, externalIDs []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, chunk := range shared.Chunk(externalIDs, s.chunkSize) {
		found, err := s.products.FindByExternalIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("lookup products by external id: %w", err)
		}
		out = append(out, found...)
	}
	return out, nil
}

func remoteCategory(item integration.RemoteItem, categoryNameByID map[string]string) string {
	if item.CategoryID == "" {
		return ""
	}
	return strings.TrimSpace(categoryNameByID[item.CategoryID])
}

// dedupeItems keeps the last occurrence of each item id
func dedupeItems(items []integration.RemoteItem) []integration.RemoteItem {
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[item.ID] = i
	}
	out := make([]integration.RemoteItem, 0, len(last))
	for i, item := range items {
		if last[item.ID] == i {
			out = append(out, item)
		}
	}
	return out
}
