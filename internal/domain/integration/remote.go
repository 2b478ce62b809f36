package integration

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// InventoryStateInStock is the count state for sellable on-hand stock
const InventoryStateInStock = "IN_STOCK"

// ---------------------------------------------------------------------------
// Remote records
// ---------------------------------------------------------------------------

// RemoteLocation is a location as reported by the commerce platform
type RemoteLocation struct {
	ID   string `validate:"required"`
	Name string
}

// RemoteCategory is a catalog category
type RemoteCategory struct {
	ID   string `validate:"required"`
	Name string
}

// RemoteItem is a catalog item. CategoryID may reference a category that is
// missing from the same catalog listing.
type RemoteItem struct {
	ID         string `validate:"required"`
	Name       string `validate:"required"`
	CategoryID string
	SKU        string
	IsDeleted  bool
	UpdatedAt  time.Time
}

// RemoteVariation is a sellable variation of a catalog item
type RemoteVariation struct {
	ID         string `validate:"required"`
	ItemID     string `validate:"required"`
	Name       string
	SKU        string
	PriceCents int64 `validate:"gte=0"`
	IsDeleted  bool
}

// RemoteCatalog is the result of a full catalog listing
type RemoteCatalog struct {
	Items      []RemoteItem
	Variations []RemoteVariation
	Categories []RemoteCategory
}

// CategoryNames maps category IDs to names
func (c *RemoteCatalog) CategoryNames() map[string]string {
	names := make(map[string]string, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name != "" {
			names[cat.ID] = cat.Name
		}
	}
	return names
}

// RemoteInventoryCount is one physical count for a catalog object at a location.
// Quantity is already parsed; malformed platform values arrive as 0.
type RemoteInventoryCount struct {
	CatalogObjectID string    `validate:"required"`
	LocationID      string    `validate:"required"`
	State           string    `validate:"required"`
	Quantity        float64   `validate:"gte=0"`
	CalculatedAt    time.Time `validate:"required"`
}

// RemoteOrder is a completed order
type RemoteOrder struct {
	ID         string    `validate:"required"`
	LocationID string    `validate:"required"`
	ClosedAt   time.Time `validate:"required"`
	LineItems  []RemoteLineItem
}

// RemoteLineItem is one line of a completed order
type RemoteLineItem struct {
	CatalogObjectID string
	Name            string
	Quantity        float64
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRecord checks a remote record's required fields
func ValidateRecord(record any) error {
	if err := recordValidator().Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRemoteRecord, err)
	}
	return nil
}

// FilterValid returns the records that pass validation and the number rejected
func FilterValid[T any](records []T) ([]T, int) {
	valid := make([]T, 0, len(records))
	for _, r := range records {
		if ValidateRecord(r) == nil {
			valid = append(valid, r)
		}
	}
	return valid, len(records) - len(valid)
}
