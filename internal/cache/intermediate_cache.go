package cache

import (
	"sync"
	"time"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

type intermediateEntry struct {
	refs      []domain.ResourceRef
	createdAt time.Time
}

// IntermediateCache is the L5 cache the transitive engine uses to avoid
// re-walking a hop it already resolved. Entries live until their TTL
// expires, so they are reused across discovery runs; the cache holds at
// most 100 entries and evicts the oldest one to make room.
type IntermediateCache struct {
	mu      sync.RWMutex
	entries map[string]*intermediateEntry
	ttl     time.Duration
}

// NewIntermediateCache creates an empty intermediate cache.
func NewIntermediateCache(ttl time.Duration) *IntermediateCache {
	return &IntermediateCache{
		entries: make(map[string]*intermediateEntry),
		ttl:     ttl,
	}
}

var _ interfaces.IntermediateCache = (*IntermediateCache)(nil)

// Get returns the cached hop result for key, if present and unexpired.
func (c *IntermediateCache) Get(key string) ([]domain.ResourceRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.refs, true
}

// Set stores the hop result for key, evicting the oldest entry first if
// the cache already holds 100 entries.
func (c *IntermediateCache) Set(key string, value []domain.ResourceRef) {
	const maxEntries = 100

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.createdAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = &intermediateEntry{refs: value, createdAt: time.Now()}
}

// Size returns the number of cached hop results.
func (c *IntermediateCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every cached hop result.
func (c *IntermediateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*intermediateEntry)
}
