package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleEvent is one line item of a completed order. ProductID and VariationID
// are uuid.Nil when unknown.
type SaleEvent struct {
	LocationID  string
	ProductID   uuid.UUID
	VariationID uuid.UUID
	Quantity    float64
	SaleDate    time.Time
}

// Key returns the aggregation key of the event
func (e SaleEvent) Key() ItemLocationKey {
	return KeyFor(e.ProductID, e.VariationID, e.LocationID)
}

// SalesAggregate is the trailing-window sales total of one item at one location
type SalesAggregate struct {
	Key           ItemLocationKey
	TotalQuantity float64
	PerDay        float64
}

// SalesIndex maps item/location keys to their aggregates
type SalesIndex map[ItemLocationKey]SalesAggregate

// AggregateSales sums event quantities per item/location. Events are assumed
// to be inside the window already; they are not filtered by date here.
// Events with neither a product nor a variation are ignored.
func AggregateSales(events []SaleEvent, windowDays int) SalesIndex {
	idx := make(SalesIndex)
	for _, e := range events {
		if e.ProductID == uuid.Nil && e.VariationID == uuid.Nil {
			continue
		}
		k := e.Key()
		agg := idx[k]
		agg.Key = k
		agg.TotalQuantity += e.Quantity
		idx[k] = agg
	}
	for k, agg := range idx {
		if windowDays > 0 {
			agg.PerDay = agg.TotalQuantity / float64(windowDays)
		}
		idx[k] = agg
	}
	return idx
}

// Lookup returns the aggregate for an inventory key, or a zero aggregate
func (idx SalesIndex) Lookup(k InventoryKey) SalesAggregate {
	sk := k.SalesKey()
	if agg, ok := idx[sk]; ok {
		return agg
	}
	return SalesAggregate{Key: sk}
}

// SalesRepository persists raw sale events for the trailing window
type SalesRepository interface {
	// ReplaceWindow deletes stored events in [from, to) and inserts events
	ReplaceWindow(ctx context.Context, from, to time.Time, events []SaleEvent) error
	// ListSince returns events with SaleDate >= since
	ListSince(ctx context.Context, since time.Time) ([]SaleEvent, error)
}
