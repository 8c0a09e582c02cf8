// Package cache implements the result cache (C9): an LRU of fixed capacity
// with a per-entry TTL, flushed entirely on any index mutation since
// fine-grained invalidation would require dependency tracking the ranker
// does not maintain.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache caches search results keyed by a caller-supplied string (typically
// a hash of the query plus its options).
type Cache[V any] struct {
	mu     sync.Mutex
	lru    *expirable.LRU[string, V]
	hits   uint64
	misses uint64
}

// New creates a Cache with the given capacity and per-entry TTL.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{lru: expirable.NewLRU[string, V](capacity, nil, ttl)}
}

// Get returns the cached value for key, updating recency and the hit/miss
// counters.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return value, ok
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, value)
}

// Flush discards every cached entry. Called on any add/update/delete of an
// indexed document.
func (c *Cache[V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats reports hit/miss counters for observability.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Stats returns the current hit/miss counters and entry count.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Len: c.lru.Len()}
}
