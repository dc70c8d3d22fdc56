// Package cache is the per-adapter response cache.
//
// A Cache is not safe for concurrent use; each adapter owns one and the
// pipeline drives adapters from a single goroutine.
package cache

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"leadhunt-engine/internal/metrics"
)

// Clock returns the current time. Tests pass a fake.
type Clock func() time.Time

type entry[V any] struct {
	storedAt time.Time
	value    V
}

type Cache[V any] struct {
	name    string
	ttl     time.Duration
	now     Clock
	entries map[string]entry[V]
}

// New returns an empty cache. name labels metrics; a nil clock means
// time.Now.
func New[V any](name string, ttl time.Duration, now Clock) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[V]{
		name:    name,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the value stored under key if it is younger than the TTL.
// Expired entries stay in place until the next Put overwrites them.
func (c *Cache[V]) Get(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()
		var zero V
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
	return e.value, true
}

func (c *Cache[V]) Put(key string, v V) {
	c.entries[key] = entry[V]{storedAt: c.now(), value: v}
}

// Invalidate drops every key starting with prefix and returns how many
// were removed. An empty prefix clears everything.
func (c *Cache[V]) Invalidate(prefix string) int {
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache[V]) InvalidateAll() {
	clear(c.entries)
}

func (c *Cache[V]) Len() int { return len(c.entries) }

// Key builds a deterministic cache key from a source identifier, its filter
// keywords (order-insensitive) and a mode flag that changes the response
// shape.
func Key(source string, keywords []string, mode string) string {
	kw := slices.Clone(keywords)
	slices.Sort(kw)
	return fmt.Sprintf("%s_%s_%s", source, strings.Join(kw, "_"), mode)
}
