// Package cache implements the L4 response cache and L5 intermediate
// cache: map-based TTL stores with oldest-entry eviction and an
// approximate hit-rate formula.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/crossplane/function-kubecore-schema-registry/internal/domain"
	"github.com/crossplane/function-kubecore-schema-registry/pkg/interfaces"
)

type responseEntry struct {
	value     *domain.PlatformContext
	createdAt time.Time
	hits      int64
}

// ResponseCache is the L4 cache of assembled PlatformContext responses.
// Eviction removes the single oldest entry by createdAt: despite the
// name, this is insertion-order eviction, not access-order LRU.
type ResponseCache struct {
	mu         sync.RWMutex
	entries    map[string]*responseEntry
	ttl        time.Duration
	maxEntries int
	totalHits  int64
}

// NewResponseCache creates an empty response cache.
func NewResponseCache(ttl time.Duration, maxEntries int) *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]*responseEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

var _ interfaces.ResponseCache = (*ResponseCache)(nil)

// Get returns the cached context for key if present and unexpired.
func (c *ResponseCache) Get(key string) (*domain.PlatformContext, bool) {
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
	entry.hits++
	c.totalHits++
	return entry.value, true
}

// Set stores value under key, evicting the oldest entry first if the
// cache is at capacity.
func (c *ResponseCache) Set(key string, value *domain.PlatformContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = &responseEntry{value: value, createdAt: time.Now()}
}

// evictOldest removes the entry with the earliest createdAt; among entries
// created at the same instant, the one with the fewest hits goes.
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	var oldestHits int64
	first := true
	for k, e := range c.entries {
		if first || e.createdAt.Before(oldestAt) ||
			(e.createdAt.Equal(oldestAt) && e.hits < oldestHits) {
			oldestKey = k
			oldestAt = e.createdAt
			oldestHits = e.hits
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Stats reports the current cache statistics. hitRate is deliberately
// totalHits / (totalHits + entries), not a true hit ratio against misses;
// callers depend on this exact shape for existing dashboards.
func (c *ResponseCache) Stats() domain.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var oldestAge float64
	first := true
	for _, e := range c.entries {
		age := time.Since(e.createdAt).Seconds()
		if first || age > oldestAge {
			oldestAge = age
			first = false
		}
	}

	var hitRate float64
	denom := float64(c.totalHits) + float64(len(c.entries))
	if denom > 0 {
		hitRate = float64(c.totalHits) / denom
	}

	return domain.CacheStats{
		Entries:          len(c.entries),
		TotalHits:        c.totalHits,
		HitRate:          hitRate,
		OldestAgeSeconds: oldestAge,
		MaxEntries:       c.maxEntries,
		TTLSeconds:       c.ttl.Seconds(),
	}
}

// CleanupExpired removes every entry older than the TTL and returns the
// count removed, intended to be called from a background ticker.
func (c *ResponseCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()
	for k, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear removes all cached entries and resets the hit counter.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*responseEntry)
	c.totalHits = 0
}

// StartCleanupRoutine runs CleanupExpired on interval until stop is closed.
func (c *ResponseCache) StartCleanupRoutine(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}

// FingerprintKey builds a stable cache key from the requestor and the
// normalized set of requested schema names: a sorted, hashed composite key.
func FingerprintKey(requestor domain.Requestor, requestedSchemas []string, opts interfaces.QueryOptions) string {
	sorted := append([]string(nil), requestedSchemas...)
	sort.Strings(sorted)

	payload := struct {
		Requestor domain.Requestor     `json:"requestor"`
		Schemas   []string             `json:"schemas"`
		Options   interfaces.QueryOptions `json:"options"`
	}{Requestor: requestor, Schemas: sorted, Options: opts}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
