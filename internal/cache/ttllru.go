package cache

import (
	"sync"
	"time"
)

// now is overridable for deterministic tests, mirroring the teacher's
// package-level timeNow var in internal/changes/time.go.
var now = time.Now

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLLRU is a capacity-bounded cache where entries also expire after a
// fixed TTL from last write. Used by the HTTP session manager (cap 50,
// TTL 24h) and the DB inspector's schema cache (TTL 300s, cap 1).
type TTLLRU[V any] struct {
	mu  sync.Mutex
	ttl time.Duration
	lru *LRU[*ttlEntry[V]]
}

// NewTTLLRU creates a TTL-aware LRU bounded to cap entries, each valid for
// ttl after being written.
func NewTTLLRU[V any](cap int, ttl time.Duration) *TTLLRU[V] {
	return &TTLLRU[V]{
		ttl: ttl,
		lru: NewLRU[*ttlEntry[V]](cap, nil),
	}
}

// Get returns the value for key if present and not expired.
func (c *TTLLRU[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if now().After(e.expiresAt) {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Put inserts or refreshes key with a new expiry.
func (c *TTLLRU[V]) Put(key string, value V) {
	c.lru.Put(key, &ttlEntry[V]{value: value, expiresAt: now().Add(c.ttl)})
}

// Remove deletes key.
func (c *TTLLRU[V]) Remove(key string) {
	c.lru.Remove(key)
}

// Age returns how long ago key was last written, or false if absent or
// expired. Used by the DB inspector to decide whether get_schema's cache
// is still within its TTL without re-fetching.
func (c *TTLLRU[V]) Age(key string) (time.Duration, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return 0, false
	}
	writtenAt := e.expiresAt.Add(-c.ttl)
	if now().After(e.expiresAt) {
		return 0, false
	}
	return now().Sub(writtenAt), true
}
