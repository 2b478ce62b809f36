package catalog

import "time"

// CategoryIndex holds the locally known categories a catalog sync can fall
// back on when the remote item carries no category.
type CategoryIndex struct {
	byExternalID          map[string]string
	byVariationExternalID map[string]string
	byName                map[string]namedCategory
}

type namedCategory struct {
	category string
	syncedAt time.Time
}

// NewCategoryIndex creates an empty index
func NewCategoryIndex() *CategoryIndex {
	return &CategoryIndex{
		byExternalID:          make(map[string]string),
		byVariationExternalID: make(map[string]string),
		byName:                make(map[string]namedCategory),
	}
}

// AddProduct records an existing product's category under its external ID
func (idx *CategoryIndex) AddProduct(p Product) {
	if p.Category == nil || p.ExternalID == "" {
		return
	}
	idx.byExternalID[p.ExternalID] = *p.Category
}

// AddVariationParent records the category of the product that owns the
// variation with the given external ID.
func (idx *CategoryIndex) AddVariationParent(variationExternalID string, parent Product) {
	if parent.Category == nil || variationExternalID == "" {
		return
	}
	idx.byVariationExternalID[variationExternalID] = *parent.Category
}

// AddNamedCandidate records a categorized product as a same-name candidate.
// The most recently synced candidate wins.
func (idx *CategoryIndex) AddNamedCandidate(p Product) {
	if p.Category == nil {
		return
	}
	key := NormalizeName(p.Name)
	if cur, ok := idx.byName[key]; ok && !p.SyncedAt.After(cur.syncedAt) {
		return
	}
	idx.byName[key] = namedCategory{category: *p.Category, syncedAt: p.SyncedAt}
}

// CategoryStrategy is one step in the category preservation cascade
type CategoryStrategy struct {
	Name    string
	Resolve func(idx *CategoryIndex, externalID, name string) (string, bool)
}

// ExactIDStrategy keeps the category of the product with the same external ID
var ExactIDStrategy = CategoryStrategy{
	Name: "exact_id",
	Resolve: func(idx *CategoryIndex, externalID, _ string) (string, bool) {
		c, ok := idx.byExternalID[externalID]
		return c, ok
	},
}

// VariationParentStrategy uses the category of a product that previously
// listed this external ID as one of its variations
var VariationParentStrategy = CategoryStrategy{
	Name: "variation_parent",
	Resolve: func(idx *CategoryIndex, externalID, _ string) (string, bool) {
		c, ok := idx.byVariationExternalID[externalID]
		return c, ok
	},
}

// SameNameStrategy uses the most recently synced categorized product with the same name
var SameNameStrategy = CategoryStrategy{
	Name: "same_name",
	Resolve: func(idx *CategoryIndex, _ string, name string) (string, bool) {
		c, ok := idx.byName[NormalizeName(name)]
		return c.category, ok
	},
}

// DefaultCategoryStrategies is the preservation order applied by catalog sync
var DefaultCategoryStrategies = []CategoryStrategy{
	ExactIDStrategy,
	VariationParentStrategy,
	SameNameStrategy,
}

// PreserveCategory returns the first category found by strategies, in order,
// along with the name of the strategy that produced it.
func PreserveCategory(idx *CategoryIndex, strategies []CategoryStrategy, externalID, name string) (category, source string, ok bool) {
	for _, s := range strategies {
		if c, hit := s.Resolve(idx, externalID, name); hit && c != "" {
			return c, s.Name, true
		}
	}
	return "", "", false
}
