package replenishment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stockwise/backend/internal/domain/catalog"
	"github.com/stockwise/backend/internal/domain/inventory"
	"github.com/stockwise/backend/internal/domain/replenishment"
	"github.com/stockwise/backend/internal/domain/shared"
)

// Defaults used when Config fields are zero
const (
	DefaultLeadTimeDays = 7
	DefaultWindowDays   = 14
	lookupChunkSize     = 200
)

// Cache stores serialized recommendation trees. SetAtGeneration drops the
// write when the cache was invalidated after generation was read.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Generation(ctx context.Context) (uint64, error)
	SetAtGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, generation uint64) (bool, error)
}

// Config holds the replenishment parameters
type Config struct {
	LeadTimeDays int
	WindowDays   int
	CacheTTL     time.Duration
}

func (c Config) withDefaults() Config {
	if c.LeadTimeDays <= 0 {
		c.LeadTimeDays = DefaultLeadTimeDays
	}
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	return c
}

// RecommendationService builds the location, product and variation tree of
// reorder recommendations from stored stock and trailing sales. It holds no
// mutable state and is safe for concurrent use.
type RecommendationService struct {
	locations  catalog.LocationRepository
	products   catalog.ProductReader
	variations catalog.VariationRepository
	stock      inventory.Repository
	sales      inventory.SalesRepository
	cache      Cache
	config     Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewRecommendationService creates a new RecommendationService. cache may be nil.
func NewRecommendationService(
	locations catalog.LocationRepository,
	products catalog.ProductReader,
	variations catalog.VariationRepository,
	stock inventory.Repository,
	sales inventory.SalesRepository,
	cache Cache,
	cfg Config,
	logger *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		locations:  locations,
		products:   products,
		variations: variations,
		stock:      stock,
		sales:      sales,
		cache:      cache,
		config:     cfg.withDefaults(),
		logger:     logger.Named("recommendations"),
		now:        time.Now,
	}
}

// Config returns the effective replenishment parameters
func (s *RecommendationService) Config() Config {
	return s.config
}

func (s *RecommendationService) cacheKey() string {
	return fmt.Sprintf("tree:w%d:l%d", s.config.WindowDays, s.config.LeadTimeDays)
}

// GetRecommendations returns recommendations for every stocked, non-deleted
// item grouped by location. Every known location is present, possibly with
// an empty product list.
func (s *RecommendationService) GetRecommendations(ctx context.Context) (*RecommendationTree, error) {
	if tree, ok := s.fromCache(ctx); ok {
		return tree, nil
	}
	generation, cacheable := s.cacheGeneration(ctx)

	now := s.now()
	var (
		locations []catalog.Location
		products  []catalog.Product
		records   []inventory.Record
		events    []inventory.SaleEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if locations, err = s.locations.ListLocations(gctx); err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if products, err = s.products.ListActive(gctx); err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if records, err = s.stock.ListAll(gctx); err != nil {
			return fmt.Errorf("load inventory: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		since := now.AddDate(0, 0, -s.config.WindowDays)
		if events, err = s.sales.ListSince(gctx, since); err != nil {
			return fmt.Errorf("load sales: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productsByID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	variationsByID, err := s.loadVariations(ctx, records, productsByID)
	if err != nil {
		return nil, err
	}

	tree := &RecommendationTree{
		GeneratedAt:  now.UTC(),
		WindowDays:   s.config.WindowDays,
		LeadTimeDays: s.config.LeadTimeDays,
		Locations: buildTree(treeInput{
			locations:  locations,
			products:   productsByID,
			variations: variationsByID,
			records:    records,
			sales:      inventory.AggregateSales(events, s.config.WindowDays),
			leadTime:   s.config.LeadTimeDays,
		}),
	}

	s.logger.Debug("Built recommendation tree",
		zap.Int("locations", len(tree.Locations)),
		zap.Int("records", len(records)),
		zap.Int("sale_events", len(events)),
	)

	if cacheable {
		s.toCache(ctx, tree, generation)
	}
	return tree, nil
}

// loadVariations fetches the variations referenced by stock records of
// active products
func (s *RecommendationService) loadVariations(
	ctx context.Context,
	records []inventory.Record,
	products map[uuid.UUID]catalog.Product,
) (map[uuid.UUID]catalog.Variation, error) {
	var productIDs []uuid.UUID
	for _, r := range records {
		if r.VariationID == uuid.Nil {
			continue
		}
		if _, ok := products[r.ProductID]; ok {
			productIDs = append(productIDs, r.ProductID)
		}
	}

	out := make(map[uuid.UUID]catalog.Variation)
	for _, chunk := range shared.Chunk(shared.Dedupe(productIDs), lookupChunkSize) {
		found, err := s.variations.ListByProductIDs(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("load variations: %w", err)
		}
		for _, v := range found {
			out[v.ID] = v
		}
	}
	return out, nil
}

func (s *RecommendationService) fromCache(ctx context.Context) (*RecommendationTree, bool) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, s.cacheKey())
	if err != nil {
		s.logger.Warn("Recommendation cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var tree RecommendationTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		s.logger.Warn("Discarding undecodable cached recommendations", zap.Error(err))
		return nil, false
	}
	return &tree, true
}

// cacheGeneration reads the invalidation generation before any data is
// loaded. The tree is not cached when it cannot be read.
func (s *RecommendationService) cacheGeneration(ctx context.Context) (uint64, bool) {
	if s.cache == nil || s.config.CacheTTL <= 0 {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("Recommendation cache generation read failed", zap.Error(err))
		return 0, false
	}
	return generation, true
}

func (s *RecommendationService) toCache(ctx context.Context, tree *RecommendationTree, generation uint64) {
	raw, err := json.Marshal(tree)
	if err != nil {
		s.logger.Warn("Failed to encode recommendations for cache", zap.Error(err))
		return
	}
	stored, err := s.cache.SetAtGeneration(ctx, s.cacheKey(), raw, s.config.CacheTTL, generation)
	if err != nil {
		s.logger.Warn("Recommendation cache write failed", zap.Error(err))
		return
	}
	if !stored {
		s.logger.Debug("Skipped caching recommendations built before a sync", zap.Uint64("generation", generation))
	}
}

// ---------------------------------------------------------------------------
// Tree assembly
// ---------------------------------------------------------------------------

type treeInput struct {
	locations  []catalog.Location
	products   map[uuid.UUID]catalog.Product
	variations map[uuid.UUID]catalog.Variation
	records    []inventory.Record
	sales      inventory.SalesIndex
	leadTime   int
}

func buildTree(in treeInput) []LocationNode {
	byLocation := make(map[string][]inventory.Record)
	for _, r := range in.records {
		byLocation[r.LocationID] = append(byLocation[r.LocationID], r)
	}

	nodes := make([]LocationNode, 0, len(in.locations))
	for _, loc := range in.locations {
		nodes = append(nodes, LocationNode{
			ID:       loc.ID,
			Name:     loc.Name,
			Products: buildProducts(in, byLocation[loc.ID]),
		})
	}
	return nodes
}

func buildProducts(in treeInput, records []inventory.Record) []ProductNode {
	byProduct := make(map[uuid.UUID]*ProductNode)
	for _, r := range records {
		p, ok := in.products[r.ProductID]
		if !ok {
			continue
		}

		var (
			variation *catalog.Variation
			itemID    = p.ID
		)
		if r.VariationID != uuid.Nil {
			v, ok := in.variations[r.VariationID]
			if !ok || v.ProductID != p.ID {
				continue
			}
			variation = &v
			itemID = v.ID
		}

		avg := in.sales.Lookup(r.InventoryKey).PerDay
		rule := replenishment.ComputeRules(ItemName(p, variation), p.CategoryName(), avg, in.leadTime)
		rec := toRecommendationResponse(itemID, rule, replenishment.Recommend(rule, r.Quantity, avg))

		node, ok := byProduct[p.ID]
		if !ok {
			node = &ProductNode{
				ID:         p.ID,
				ExternalID: p.ExternalID,
				Name:       p.Name,
				Category:   p.CategoryName(),
				Variations: []VariationNode{},
			}
			byProduct[p.ID] = node
		}

		if variation == nil {
			node.Recommendation = &rec
			continue
		}
		node.Variations = append(node.Variations, VariationNode{
			ID:             variation.ID,
			ExternalID:     variation.ExternalVariationID,
			Name:           variation.Name,
			SKU:            variation.SKU,
			Price:          variation.Price,
			Recommendation: rec,
		})
	}

	out := make([]ProductNode, 0, len(byProduct))
	for _, node := range byProduct {
		sort.Slice(node.Variations, func(i, j int) bool {
			return lessByName(node.Variations[i].Name, node.Variations[j].Name,
				node.Variations[i].ID, node.Variations[j].ID)
		})
		out = append(out, *node)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[j].Name, out[i].ID, out[j].ID)
	})
	return out
}

// ItemName is the name rules are matched against. A variation contributes
// its name unless it is blank or the platform's default "Regular".
func ItemName(p catalog.Product, v *catalog.Variation) string {
	if v == nil {
		return p.Name
	}
	name := strings.TrimSpace(v.Name)
	if name == "" || strings.EqualFold(name, "regular") {
		return p.Name
	}
	return p.Name + " " + name
}

func lessByName(a, b string, aID, bID uuid.UUID) bool {
	na, nb := catalog.NormalizeName(a), catalog.NormalizeName(b)
	if na != nb {
		return na < nb
	}
	return aID.String() < bID.String()
}
