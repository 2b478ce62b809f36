package inventory

import "github.com/google/uuid"

// ItemLocationKey identifies sales of one item at one location. ItemID is
// the variation ID when known, otherwise the product ID.
type ItemLocationKey struct {
	ItemID     uuid.UUID
	LocationID string
}

// KeyFor builds the sales key for a product/variation pair at a location.
// uuid.Nil means no variation. Aggregation and lookup both go through here.
func KeyFor(productID, variationID uuid.UUID, locationID string) ItemLocationKey {
	itemID := variationID
	if itemID == uuid.Nil {
		itemID = productID
	}
	return ItemLocationKey{ItemID: itemID, LocationID: locationID}
}

// InventoryKey identifies the single current stock record for a
// product/variation at a location. VariationID is uuid.Nil for
// product-level records.
type InventoryKey struct {
	LocationID  string
	ProductID   uuid.UUID
	VariationID uuid.UUID
}

// SalesKey returns the sales key matching this inventory record
func (k InventoryKey) SalesKey() ItemLocationKey {
	return KeyFor(k.ProductID, k.VariationID, k.LocationID)
}
