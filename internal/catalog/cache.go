package catalog

import (
	"log/slog"
	"sync"

	"github.com/jewgo/jewgo/internal/domain"
	"github.com/jewgo/jewgo/internal/metrics"
)

// Entry is the accumulated paging state for one (category, query) pair.
type Entry = domain.CachedPage

// CacheKey builds the "{category}-{query}" cache key.
func CacheKey(category, query string) string {
	return category + "-" + query
}

// Cache memoizes page data per (category, query) so a view can resume
// without refetching. Entries have no TTL; they live until a refresh or an
// explicit Delete/Clear. When a store is attached every write goes through
// to it and misses fall back to it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	store  domain.Store
	logger *slog.Logger
}

// NewCache creates a cache. store may be nil for memory only.
func NewCache(store domain.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]Entry),
		store:   store,
		logger:  logger,
	}
}

// Get returns a copy of the entry for (category, query). An entry whose
// LastQuery does not match query is treated as a miss.
func (c *Cache) Get(category, query string) (Entry, bool) {
	key := CacheKey(category, query)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok && c.store != nil {
		e, ok = c.store.GetPage(key)
		if ok {
			c.mu.Lock()
			c.entries[key] = e
			c.mu.Unlock()
		}
	}

	if !ok || e.LastQuery != query {
		metrics.CacheMissesTotal.Inc()
		return Entry{}, false
	}

	metrics.CacheHitsTotal.Inc()
	return copyEntry(e), true
}

// Set replaces the entry for (category, query).
func (c *Cache) Set(category, query string, e Entry) {
	key := CacheKey(category, query)
	e = copyEntry(e)
	e.LastQuery = query

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.SavePage(key, e); err != nil {
			c.logger.Warn("failed to persist page", "error", err, "key", key)
		}
	}
}

// Delete removes the entry for (category, query).
func (c *Cache) Delete(category, query string) {
	key := CacheKey(category, query)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store != nil {
		c.store.DeletePage(key)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	if c.store != nil {
		c.store.InvalidatePages()
	}
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func copyEntry(e Entry) Entry {
	if e.Data != nil {
		data := make([]domain.CategoryItem, len(e.Data))
		copy(data, e.Data)
		e.Data = data
	}
	return e
}
