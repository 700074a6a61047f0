// Package cache memoises loaded files and remote reads. Entries record when
// they were fetched; the TTL policy and the clock are injected so staleness is
// observable in tests without waiting.
package cache

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Forever disables expiry.
const Forever time.Duration = 0

// Fetcher produces the value for a missing or stale key.
type Fetcher[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	clock Clock
	ttl   time.Duration
}

// WithClock overrides the clock used to stamp and expire entries.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTTL sets the staleness window. Forever (zero) keeps entries for the
// process lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// Cache owns key → (value, fetchedAt). Failed fetches are not stored.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	clock   Clock
	ttl     time.Duration
}

// New constructs a cache applying the provided options.
func New[V any](opts ...Option) *Cache[V] {
	cfg := options{clock: SystemClock, ttl: Forever}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		clock:   cfg.clock,
		ttl:     cfg.ttl,
	}
}

// TTL reports the configured staleness window.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value when fresh, otherwise calls fetch and stores
// its result. The lock is not held during fetch; concurrent misses on the
// same key may fetch twice and the last writer wins.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	if value, ok := c.Peek(key); ok {
		return value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
	return value, nil
}

// Peek returns a fresh cached value without fetching.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// FetchedAt reports when the entry for key was stored.
func (c *Cache[V]) FetchedAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.fetchedAt, ok
}

// Invalidate drops a single key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

func (c *Cache[V]) expired(e entry[V]) bool {
	if c.ttl == Forever {
		return false
	}
	return c.clock.Now().Sub(e.fetchedAt) >= c.ttl
}
