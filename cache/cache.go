package cache

import (
	"sort"
	"sync"
)

// Cache maps normalized queries to result lists. Entries never expire and are
// only removed by Clear.
type Cache[R any] struct {
	norm Normalizer

	mu      sync.RWMutex
	entries map[string][]R
	hits    uint64
	misses  uint64
}

// New creates an empty cache that normalizes keys with norm
func New[R any](norm Normalizer) *Cache[R] {
	return &Cache[R]{
		norm:    norm,
		entries: make(map[string][]R),
	}
}

// Get returns the cached results for an exact normalized match
func (c *Cache[R]) Get(query string) ([]R, bool) {
	key := c.norm.Key(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	results, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return clone(results), true
}

// Peek is Get without touching the hit/miss counters
func (c *Cache[R]) Peek(query string) ([]R, bool) {
	key := c.norm.Key(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	results, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return clone(results), true
}

// Set inserts or overwrites the entry for query
func (c *Cache[R]) Set(query string, results []R) {
	key := c.norm.Key(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A re-resolved key gets a fresh entry instead of mutating the old one
	c.entries[key] = clone(results)
}

// Clear removes all entries and resets the counters
func (c *Cache[R]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]R)
	c.hits = 0
	c.misses = 0
}

// Size returns the number of cached queries
func (c *Cache[R]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in sorted order
func (c *Cache[R]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns statistics about the cache
func (c *Cache[R]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
	for _, results := range c.entries {
		stats.Results += len(results)
	}
	return stats
}

// Normalizer returns the key normalizer used by the cache
func (c *Cache[R]) Normalizer() Normalizer {
	return c.norm
}

func clone[R any](results []R) []R {
	if results == nil {
		return []R{}
	}
	out := make([]R, len(results))
	copy(out, results)
	return out
}
