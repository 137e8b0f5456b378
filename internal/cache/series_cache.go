package cache

import (
	"sync"

	"github.com/amehra/folio/internal/models"
)

// SeriesCache is an in-memory cache of per-security price series. It is
// scoped to a single analytics request, not shared across requests, so
// entries never go stale within their lifetime and need no TTL.
type SeriesCache struct {
	mu     sync.RWMutex
	series map[string]models.PriceSeries
}

// NewSeriesCache creates an empty SeriesCache.
func NewSeriesCache() *SeriesCache {
	return &SeriesCache{
		series: make(map[string]models.PriceSeries),
	}
}

// Get retrieves a cached series. The second return value distinguishes
// "never fetched" from "fetched and empty".
func (c *SeriesCache) Get(securityID string) (models.PriceSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.series[securityID]
	return s, ok
}

// Set stores a series, including empty ones so failed or empty fetches are
// not retried within the request.
func (c *SeriesCache) Set(securityID string, s models.PriceSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series[securityID] = s
}

// Len returns the number of cached securities.
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.series)
}

// Clear removes all cached series.
func (c *SeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.series = make(map[string]models.PriceSeries)
}
