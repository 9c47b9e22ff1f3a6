// Package cache provides a small single-value TTL cache used for
// session-lifetime reference data such as the category catalog.
package cache

import (
	"sync"
	"time"
)

// Entry is an explicit cache value object: the data plus the moment
// it was fetched. Staleness is a pure function of the entry and a
// clock reading, so it can be tested without waiting.
type Entry[T any] struct {
	Data      T
	FetchedAt time.Time
}

// IsStale reports whether the entry is older than ttl at now.
// A zero FetchedAt is always stale. A non-positive ttl means the
// entry never expires.
func (e Entry[T]) IsStale(now time.Time, ttl time.Duration) bool {
	if e.FetchedAt.IsZero() {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return now.Sub(e.FetchedAt) > ttl
}

// TTLCache holds one value guarded by a mutex. It satisfies
// port.Cache.
type TTLCache[T any] struct {
	mu    sync.RWMutex
	entry Entry[T]
	ttl   time.Duration
	ok    bool

	hits   int64
	misses int64
}

// New creates an empty cache with the given TTL.
func New[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{ttl: ttl}
}

// Get returns the cached value if present and fresh at now.
func (c *TTLCache[T]) Get(now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok || c.entry.IsStale(now, c.ttl) {
		var zero T
		c.misses++
		return zero, false
	}
	c.hits++
	return c.entry.Data, true
}

// Set stores a value fetched at now.
func (c *TTLCache[T]) Set(value T, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = Entry[T]{Data: value, FetchedAt: now}
	c.ok = true
}

// Invalidate drops the cached value.
func (c *TTLCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero Entry[T]
	c.entry = zero
	c.ok = false
}

// HitRate returns the fraction of Get calls that were hits, zero
// when no calls were made.
func (c *TTLCache[T]) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}
