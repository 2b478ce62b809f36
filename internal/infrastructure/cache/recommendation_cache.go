package cache

import (
	"context"
	"time"
)

// DefaultKeyPrefix namespaces recommendation entries in a shared store
const DefaultKeyPrefix = "reorder:recommendations:"

// RecommendationCache stores serialized recommendation trees. A sync that
// changes catalog, inventory or sales data invalidates every entry.
//
// Every invalidation advances a generation counter. Writers read the
// generation before loading the data they serialize and pass it to
// SetAtGeneration, which drops the write when an invalidation happened in
// between.
type RecommendationCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Generation returns the current invalidation generation
	Generation(ctx context.Context) (uint64, error)
	// SetAtGeneration stores a value for ttl if the generation is still
	// current and reports whether it was stored
	SetAtGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, generation uint64) (bool, error)
	// InvalidateAll removes every entry and advances the generation
	InvalidateAll(ctx context.Context) error
	// Close releases resources
	Close() error
}
