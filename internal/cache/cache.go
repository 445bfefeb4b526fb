// Package cache provides a small in-memory cache with a fixed time-to-live.
//
// Entries are evicted lazily: a stale entry is removed the next time its key
// is read, there is no background sweeper. The cache is unbounded; the key
// space here is a handful of query keys, so growth is not a concern.
package cache

import (
	"sync"
	"time"

	"github.com/convergio/azure-cost-api/internal/clock"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a TTL-bounded map from string keys to values of type V.
// It is safe for concurrent use.
type Cache[V any] struct {
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]entry[V]
}

// New creates a cache whose entries expire ttl after being stored.
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, clock.RealClock{})
}

// NewWithClock creates a cache with an explicit time source, for testing.
func NewWithClock[V any](ttl time.Duration, clk clock.Clock) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		clock:   clk,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the value stored under key if it is still fresh. A stale entry
// is deleted and reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, overwriting any existing entry and resetting
// its timestamp.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

// Len returns the number of entries currently held, including any stale
// entries not yet evicted.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
