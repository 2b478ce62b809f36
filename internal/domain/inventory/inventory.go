package inventory

import (
	"context"
	"math"
	"sort"
	"time"
)

// StateInStock marks counts of sellable on-hand stock
const StateInStock = "IN_STOCK"

// Record is the current stock of one product or variation at a location
type Record struct {
	InventoryKey
	Quantity  float64
	UpdatedAt time.Time
}

// ClampQuantity bounds a stock quantity to zero or more. NaN becomes zero.
func ClampQuantity(q float64) float64 {
	if math.IsNaN(q) || q < 0 {
		return 0
	}
	return q
}

// Count is a raw inventory count whose catalog object has already been
// resolved to a canonical product and variation.
type Count struct {
	Key          InventoryKey
	State        string
	Quantity     float64
	CalculatedAt time.Time
}

type countKey struct {
	InventoryKey
	state string
}

// AggregateInventory reduces raw counts to one record per key. Only in-stock
// counts are considered, and for each key only the count with the latest
// CalculatedAt survives. Stale counts are dropped, never summed. The result
// is ordered by location, product, then variation.
func AggregateInventory(counts []Count) []Record {
	latest := make(map[countKey]Count, len(counts))
	for _, c := range counts {
		if c.State != StateInStock {
			continue
		}
		k := countKey{InventoryKey: c.Key, state: c.State}
		if cur, ok := latest[k]; ok && !c.CalculatedAt.After(cur.CalculatedAt) {
			continue
		}
		latest[k] = c
	}

	records := make([]Record, 0, len(latest))
	for _, c := range latest {
		records = append(records, Record{
			InventoryKey: c.Key,
			Quantity:     ClampQuantity(c.Quantity),
			UpdatedAt:    c.CalculatedAt,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].InventoryKey, records[j].InventoryKey
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.VariationID.String() < b.VariationID.String()
	})
	return records
}

// Repository persists current stock records
type Repository interface {
	// Upsert inserts or replaces records by (location, product, variation)
	Upsert(ctx context.Context, records []Record) error
	// ListAll returns every stored record
	ListAll(ctx context.Context) ([]Record, error)
}
