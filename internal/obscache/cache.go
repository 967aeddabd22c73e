// Package obscache provides a small TTL cache that sits in front of the
// observation source. Concurrent callers of the same key share one upstream
// fetch; distinct keys proceed in parallel.
package obscache

import (
	"context"
	"sync"
	"time"
)

// FetchFunc loads the value for a key from upstream.
type FetchFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	mu      sync.Mutex
	value   interface{}
	fetched time.Time
	ok      bool
}

// Cache memoizes fetch results for a fixed TTL. Failed fetches are not cached.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New builds a cache with the given TTL. A non-positive TTL disables caching
// entirely (every call goes upstream).
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]*entry{},
	}
}

// WithClock replaces the time source, for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// GetOrFetch returns the cached value for key if its TTL has not elapsed;
// otherwise it invokes fetch, stores a successful result, and returns it.
// At most one fetch per key is in flight at any time: latecomers block on the
// per-key lock and then see the fresh value without a second upstream call.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	if c.ttl <= 0 {
		return fetch(ctx)
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ok && c.now().Sub(e.fetched) < c.ttl {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		e.ok = false
		return nil, err
	}
	e.value = value
	e.fetched = c.now()
	e.ok = true
	return value, nil
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]*entry{}
}

// Len reports the number of keys currently tracked, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
