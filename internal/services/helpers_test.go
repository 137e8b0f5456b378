package services

import (
	"context"
	"sync"
	"time"

	"github.com/amehra/folio/internal/models"
)

// fakePriceStore is an in-memory PriceHistoryStore that counts fetches per
// security.
type fakePriceStore struct {
	mu      sync.Mutex
	series  map[string]models.PriceSeries
	fetches map[string]int
	err     error
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{
		series:  make(map[string]models.PriceSeries),
		fetches: make(map[string]int),
	}
}

func (f *fakePriceStore) SeriesFor(_ context.Context, securityID string) (models.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[securityID]++
	if f.err != nil {
		return nil, f.err
	}
	return f.series[securityID], nil
}

func (f *fakePriceStore) fetchCount(securityID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[securityID]
}

func (f *fakePriceStore) addPoint(securityID string, date time.Time, close float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[securityID] = append(f.series[securityID], models.PricePoint{Date: date, Close: close})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func buy(id string, d time.Time, qty, price float64) models.Transaction {
	return models.Transaction{
		SecurityID: id, DisplayName: id, Type: models.TransactionBuy,
		Date: d, Quantity: qty, Price: price,
	}
}

func sell(id string, d time.Time, qty, price float64) models.Transaction {
	return models.Transaction{
		SecurityID: id, DisplayName: id, Type: models.TransactionSell,
		Date: d, Quantity: qty, Price: price,
	}
}

func dividend(id string, d time.Time, qty, price float64) models.Transaction {
	return models.Transaction{
		SecurityID: id, DisplayName: id, Type: models.TransactionDividend,
		Date: d, Quantity: qty, Price: price,
	}
}
