package services

import (
	"context"
	"time"

	"github.com/amehra/folio/internal/cache"
	"github.com/amehra/folio/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// prefetchBatchWidth bounds how many price-series fetches run concurrently
// so a large portfolio cannot overwhelm the price store.
const prefetchBatchWidth = 10

// PriceHistoryStore provides a security's full historical price series,
// sorted ascending by date.
type PriceHistoryStore interface {
	SeriesFor(ctx context.Context, securityID string) (models.PriceSeries, error)
}

// PriceCache answers nearest-date price lookups over cached historical
// series. A cache is scoped to a single analytics request: the first lookup
// for a security pulls its entire available history once and retains it for
// the life of the request. Concurrent reads are safe once populated.
type PriceCache struct {
	store  PriceHistoryStore
	series *cache.SeriesCache
}

// NewPriceCache creates a request-scoped PriceCache over the given store.
func NewPriceCache(store PriceHistoryStore) *PriceCache {
	return &PriceCache{
		store:  store,
		series: cache.NewSeriesCache(),
	}
}

// Prefetch loads the price series for all given securities in bounded
// concurrent waves. Identifiers are normalized and deduplicated; securities
// already cached are skipped. Fetch failures are logged and cached as empty
// so later lookups degrade to the zero sentinel instead of retrying.
func (c *PriceCache) Prefetch(ctx context.Context, securityIDs []string) {
	seen := make(map[string]struct{})
	var pending []string
	for _, raw := range securityIDs {
		id := models.NormalizeID(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, cached := c.series.Get(id); !cached {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchBatchWidth)
	for _, id := range pending {
		id := id
		g.Go(func() error {
			c.fetch(gctx, id)
			return nil
		})
	}
	// Workers never return errors; faults are cached as empty series.
	_ = g.Wait()
}

// PriceOn returns the closing price whose date is nearest to the target
// date, fetching and caching the security's series on first use. It returns
// 0 when the security has no price data at all; callers must treat 0 as
// "no usable price", never as a real zero-valued security.
func (c *PriceCache) PriceOn(ctx context.Context, securityID string, date time.Time) float64 {
	id := models.NormalizeID(securityID)
	if id == "" {
		return 0
	}

	series, ok := c.series.Get(id)
	if !ok {
		series = c.fetch(ctx, id)
	}

	price, ok := series.NearestClose(date)
	if !ok {
		return 0
	}
	return price
}

// fetch pulls a security's series from the store and caches the result.
// The empty series is cached on failure so the fetch is not repeated.
func (c *PriceCache) fetch(ctx context.Context, id string) models.PriceSeries {
	series, err := c.store.SeriesFor(ctx, id)
	if err != nil {
		log.Warnf("price series fetch failed for %s: %v", id, err)
		series = nil
	}
	c.series.Set(id, series)
	return series
}
