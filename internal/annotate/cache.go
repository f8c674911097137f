package annotate

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// summaryCache holds environmental summaries per city with a TTL.
// Supplementary data changes slowly, so it is cached longer than the
// weather reports themselves.
type summaryCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry
}

func newSummaryCache(ttl time.Duration) *summaryCache {
	return &summaryCache{
		ttl: ttl,
		m:   make(map[string]cacheEntry),
	}
}

func (c *summaryCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.m[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.value, true
}

func (c *summaryCache) set(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
}
