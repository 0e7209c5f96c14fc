// Package cache memoizes clustering and reduction results so repeated
// requests for the same photo set and view skip the computation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultSize is the entry limit used when New is given a non-positive size.
	DefaultSize = 128
	// DefaultTTL is the entry lifetime used when New is given a non-positive TTL.
	DefaultTTL = 5 * time.Minute
)

// Memo is a bounded LRU of computed values with per-entry expiry.
// Concurrent Do calls for the same key share one computation.
type Memo[V any] struct {
	lru   *expirable.LRU[string, V]
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Memo holding at most size entries for ttl each.
func New[V any](size int, ttl time.Duration) *Memo[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memo[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns a cached value.
func (m *Memo[V]) Get(key string) (V, bool) {
	v, ok := m.lru.Get(key)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Set stores a value, evicting the least recently used entry when full.
func (m *Memo[V]) Set(key string, v V) {
	m.lru.Add(key, v)
}

// Do returns the cached value for key, or computes, stores and returns it.
// cached reports whether the value came from the cache. Errors are
// returned to every waiting caller and are not cached.
func (m *Memo[V]) Do(key string, compute func() (V, error)) (v V, cached bool, err error) {
	if v, ok := m.Get(key); ok {
		return v, true, nil
	}

	res, err, shared := m.group.Do(key, func() (any, error) {
		v, err := compute()
		if err != nil {
			return v, err
		}
		m.Set(key, v)
		return v, nil
	})
	if shared {
		slog.Debug("cache computation shared", "key", key)
	}
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// Len returns the number of live entries.
func (m *Memo[V]) Len() int {
	return m.lru.Len()
}

// Clear drops every entry.
func (m *Memo[V]) Clear() {
	m.lru.Purge()
}

// Stats returns lookup hit and miss counts since creation.
func (m *Memo[V]) Stats() (hits, misses uint64) {
	return m.hits.Load(), m.misses.Load()
}

// Key derives a cache key from the JSON encoding of parts. Values that
// encode identically share a key.
func Key(parts ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for i, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("cache key part %d: %w", i, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
