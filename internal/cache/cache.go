package cache

import (
	"sync"
	"time"
)

// TTL is a small in-process cache with per-entry expiry. It is advisory:
// entries are non-durable and safe to drop on restart. Used to soften
// repeated tenant lookups and calls to rate-limited external APIs.
type TTL[K comparable, V any] struct {
	entries map[K]*entry[V]
	mu      sync.RWMutex
	ttl     time.Duration
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache whose entries expire ttl after being set.
func New[K comparable, V any](ttl time.Duration) *TTL[K, V] {
	return &TTL[K, V]{entries: make(map[K]*entry[V]), ttl: ttl}
}

// Get returns the cached value if present and fresh.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Set stores value under key with a fresh expiry.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = &entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate removes a single key. Call when the underlying record changes.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *TTL[K, V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[K]*entry[V])
	c.mu.Unlock()
}
