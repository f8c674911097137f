package weather

import "sync"

// reportCache is a concurrency-safe map of the most recent Report per
// city. One entry per city, no history: a successful refresh overwrites
// the slot, and Clear empties the whole map.
type reportCache struct {
	mu   sync.RWMutex
	data map[string]Report
}

func newReportCache() *reportCache {
	return &reportCache{data: make(map[string]Report)}
}

func (c *reportCache) Get(cityID string) (Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rep, ok := c.data[cityID]
	return rep, ok
}

func (c *reportCache) Put(rep Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[rep.CityID] = rep
}

func (c *reportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]Report)
}
