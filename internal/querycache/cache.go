// Package querycache is a small query-key read-through cache in the style of
// browser data-fetching layers: results are cached under a hierarchical key,
// mutations invalidate by key prefix, and whichever response arrives last for
// a key wins. There is no request cancellation; a stale in-flight response is
// simply overwritten on arrival.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultStaleAfter is how long a cached result is served before the loader
// is consulted again.
const DefaultStaleAfter = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache stores query results keyed by slash-separated query keys.
type Cache struct {
	staleAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Option tweaks a Cache.
type Option func(*Cache)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache. Non-positive staleAfter means DefaultStaleAfter.
func New(staleAfter time.Duration, opts ...Option) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	c := &Cache{
		staleAfter: staleAfter,
		now:        time.Now,
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a hierarchical query key from its parts: Key("products",
// "search", term) → "products/search/term". Prefix invalidation operates on
// these segments.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// Get returns the cached value for key, calling load when the entry is
// missing or stale. A successful load always overwrites the entry (last
// write wins); a failed load leaves the cache untouched and returns the
// error.
func (c *Cache) Get(ctx context.Context, key string, load func(ctx context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	fresh := ok && c.now().Sub(e.fetchedAt) < c.staleAfter
	c.mu.Unlock()

	if fresh {
		return e.value, nil
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
	c.mu.Unlock()
	return v, nil
}

// Invalidate drops every entry whose key equals prefix or lives under it
// (prefix plus a "/" separator). Subsequent Gets reload from the Gateway.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			delete(c.entries, k)
		}
	}
}

// Clear drops everything, used at logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Fetch is a typed wrapper around Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
