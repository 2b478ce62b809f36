package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variation is a sub-SKU of a product. It has no category of its own.
type Variation struct {
	ID                  uuid.UUID
	ProductID           uuid.UUID
	ExternalVariationID string
	Name                string
	SKU                 string
	Price               decimal.Decimal
	SyncedAt            time.Time
}

// NewVariation creates a variation owned by productID
func NewVariation(productID uuid.UUID, externalVariationID, name string) (*Variation, error) {
	if productID == uuid.Nil {
		return nil, ErrVariationProductRequired
	}
	externalVariationID = strings.TrimSpace(externalVariationID)
	if externalVariationID == "" {
		return nil, ErrVariationExternalIDRequired
	}
	return &Variation{
		ID:                  uuid.New(),
		ProductID:           productID,
		ExternalVariationID: externalVariationID,
		Name:                strings.TrimSpace(name),
		Price:               decimal.Zero,
	}, nil
}

// PriceFromCents converts an amount in minor currency units to a decimal unit price
func PriceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
