package imagesearch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	urls       []string
	insertedAt time.Time
}

// Cache is an in-memory map from normalized dish keys to image URLs, with
// single-flight de-duplication of concurrent lookups for the same key. One
// instance per process, injected into the enrichment service so tests can
// substitute a fresh one.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration // 0 means entries never expire
	group   singleflight.Group
}

// NewCache creates a cache whose entries expire after ttl (never, if 0).
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Key derives the cache key for a dish. Case and surrounding/internal
// whitespace are not distinguishing; the language disambiguates identically
// named dishes across cuisines.
func Key(dishName, language string) string {
	name := strings.ToLower(strings.Join(strings.Fields(dishName), " "))
	return name + "|" + strings.ToLower(strings.TrimSpace(language))
}

// Get returns the cached URLs for key, if present and fresh. Expired
// entries are evicted on read so the map does not grow without bound.
func (c *Cache) Get(key string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.urls, true
}

// set replaces the entry wholesale; entries are never mutated in place.
func (c *Cache) set(key string, urls []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{urls: urls, insertedAt: time.Now()}
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrFetch returns the cached URLs for key, or runs fetch exactly once to
// populate them. Concurrent callers for the same key attach to the one
// outstanding fetch and observe its result. A completed fetch is committed
// to the cache even if some waiter's request has since been cancelled.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	if urls, ok := c.Get(key); ok {
		return urls, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A racing caller may have populated the entry between our probe
		// and winning the flight.
		if urls, ok := c.Get(key); ok {
			return urls, nil
		}
		urls, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.set(key, urls)
		return urls, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}
