package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackNamePrefix prefixes the name of products created for external IDs
// that never appeared in a catalog sync.
const FallbackNamePrefix = "Imported "

var lowerCaser = cases.Lower(language.Und)

// ---------------------------------------------------------------------------
// Product Entity
// ---------------------------------------------------------------------------

// Product is the canonical, deduplicated representation of a sellable item.
// Inventory and sales rows join on ID, never on the external ID.
type Product struct {
	// ID is the internal primary key
	ID uuid.UUID
	// ExternalID is the remote catalog item ID; unique when present
	ExternalID string
	// Name is the display name as last synced
	Name string
	// Category is the locally curated category name; nil when unknown
	Category *string
	// SKU is the product-level SKU if the platform exposes one
	SKU string
	// IsDeleted marks items the platform reports as deleted
	IsDeleted bool
	// SyncedAt is when the row was last written by a catalog sync
	SyncedAt time.Time
}

// NewProduct creates a product for a remote item
func NewProduct(externalID, name string) (*Product, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, ErrProductExternalIDRequired
	}
	name = CleanName(name)
	if name == "" {
		return nil, ErrProductNameRequired
	}
	return &Product{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       name,
	}, nil
}

// NewFallbackProduct creates the placeholder product for an external ID that
// could not be resolved to any synced item.
func NewFallbackProduct(externalID string) *Product {
	return &Product{
		ID:         uuid.New(),
		ExternalID: externalID,
		Name:       FallbackNamePrefix + externalID,
	}
}

// SetCategory sets the category, clearing it when name is blank
func (p *Product) SetCategory(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		p.Category = nil
		return
	}
	p.Category = &name
}

// CategoryName returns the raw category name or an empty string
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// EffectiveCategory is the normalized category shared by the product and all
// of its variations.
func (p *Product) EffectiveCategory() string {
	return NormalizeCategory(p.CategoryName())
}

// NormalizeCategory trims and lower-cases a category name
func NormalizeCategory(name string) string {
	return lowerCaser.String(strings.TrimSpace(name))
}

// CleanName trims a product name and collapses inner runs of whitespace to
// a single space. Names are stored cleaned, so LOWER(name) in SQL equals
// NormalizeName.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeName folds a product name for case-insensitive comparison
func NormalizeName(name string) string {
	return lowerCaser.String(CleanName(name))
}
