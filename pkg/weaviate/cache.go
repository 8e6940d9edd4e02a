package weaviate

import (
	"context"
	"sync"
	"time"
)

// Cache stores values shared between clients, such as resolved server versions.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached value.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry. A zero expiry never expires.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

type memoryItem struct {
	entry *CacheEntry
	seq   uint64
}

// MemoryCache is an in-process Cache bounded by item count. The oldest entry is evicted first.
type MemoryCache struct {
	mutex   sync.RWMutex
	items   map[string]*memoryItem
	maxSize int
	seq     uint64
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1
	}

	return &MemoryCache{
		items:   make(map[string]*memoryItem),
		maxSize: maxSize,
	}
}

// Get returns the entry for key, or ErrCacheMiss.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mutex.RLock()
	item, ok := c.items[key]
	c.mutex.RUnlock()

	if !ok || item.entry.Expired() {
		return nil, ErrCacheMiss
	}

	return item.entry, nil
}

// Set stores entry under key.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.seq++
	c.items[key] = &memoryItem{entry: entry, seq: c.seq}

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*memoryItem)

	return nil
}

// Has reports whether an unexpired entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// evictOldest removes expired entries, or the oldest entry when none has expired. Callers hold c.mutex.
func (c *MemoryCache) evictOldest() {
	removed := false

	for key, item := range c.items {
		if item.entry.Expired() {
			delete(c.items, key)

			removed = true
		}
	}

	if removed {
		return
	}

	var (
		oldestKey string
		oldestSeq uint64
	)

	for key, item := range c.items {
		if oldestKey == "" || item.seq < oldestSeq {
			oldestKey = key
			oldestSeq = item.seq
		}
	}

	delete(c.items, oldestKey)
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}
