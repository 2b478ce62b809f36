package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryRecommendationCache implements RecommendationCache with a map.
// Entries are not shared across process instances.
type InMemoryRecommendationCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	generation uint64
	now        func() time.Time
	stopChan   chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewInMemoryRecommendationCache creates an in-memory cache and starts the
// background sweep of expired entries
func NewInMemoryRecommendationCache() *InMemoryRecommendationCache {
	c := &InMemoryRecommendationCache{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the value for key if present and not expired
func (c *InMemoryRecommendationCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Generation returns the number of invalidations so far
func (c *InMemoryRecommendationCache) Generation(context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation, nil
}

// SetAtGeneration stores a copy of value for ttl unless the cache was
// invalidated after generation was read. A non-positive ttl stores nothing.
func (c *InMemoryRecommendationCache) SetAtGeneration(_ context.Context, key string, value []byte, ttl time.Duration, generation uint64) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false, nil
	}
	c.entries[key] = entry{value: stored, expiresAt: c.now().Add(ttl)}
	return true, nil
}

// InvalidateAll drops every entry and advances the generation
func (c *InMemoryRecommendationCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.generation++
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryRecommendationCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryRecommendationCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryRecommendationCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of stored entries, expired or not
func (c *InMemoryRecommendationCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ RecommendationCache = (*InMemoryRecommendationCache)(nil)
