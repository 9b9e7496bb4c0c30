package di

import (
	"context"
	"sync"
	"time"
)

const cacheSweepInterval = time.Minute

// InMemoryCache is a TTL cache for query results. Reads are lock-shared;
// a background janitor sweeps expired entries so keys that are never
// read again do not accumulate.
type InMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	value    interface{}
	deadline time.Time
}

// A zero deadline never expires.
func (e cacheEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// NewInMemoryCache creates a cache and starts its janitor.
func NewInMemoryCache() *InMemoryCache {
	cache := &InMemoryCache{
		entries: make(map[string]cacheEntry),
		stop:    make(chan struct{}),
	}
	go cache.janitor()
	return cache
}

// Get retrieves a value. Expired entries read as missing even before
// the janitor removes them.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired(time.Now()) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with a TTL in seconds. A TTL of zero or less
// stores the value without an expiry.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.deadline = time.Now().Add(time.Duration(ttl) * time.Second)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Delete removes a single key.
func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear drops every entry.
func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}

// Stop ends the janitor goroutine. The cache stays usable afterwards;
// only the background sweep stops.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *InMemoryCache) janitor() {
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

func (c *InMemoryCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
		}
	}
}
