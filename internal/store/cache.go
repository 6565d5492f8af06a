package store

import (
	"sync"
	"time"
)

// Cache is a read-through cache keyed by entity collection name. The
// reconciler refreshes it on every applied event; list accessors serve
// from it and reconcile with the server in the background.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data      any
	refreshed time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func (c *Cache) Put(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, refreshed: time.Now()}
}

func (c *Cache) Get(key string) (any, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.data, e.refreshed, true
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
