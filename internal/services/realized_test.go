package services

import (
	"context"
	"testing"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/stretchr/testify/assert"
)

func realizedFixture() (*RealizedService, *fakePriceStore) {
	store := newFakePriceStore()
	return NewRealizedService(NewPriceCache(store)), store
}

func lot(id, name string, qty, buyValue, sellValue, pl float64, buyDate, sellDate *time.Time) models.RealizedLot {
	return models.RealizedLot{
		SecurityID:       id,
		DisplayName:      name,
		ClosedQuantity:   qty,
		BuyValue:         buyValue,
		SellValue:        sellValue,
		RealizedPLAmount: pl,
		BuyDate:          buyDate,
		SellDate:         sellDate,
	}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestRealizedStocksAggregatesLots(t *testing.T) {
	svc, store := realizedFixture()
	now := date(2025, 6, 15)
	store.addPoint("INE001", now, 12)

	lots := []models.RealizedLot{
		lot("INE001", "Acme", 10, 1000, 1200, 200, datePtr(2023, 1, 1), datePtr(2024, 1, 1)),
		lot("INE001", "Acme", 5, 600, 550, -50, datePtr(2023, 6, 1), datePtr(2024, 6, 1)),
	}

	out := svc.RealizedStocks(context.Background(), lots, nil, nil, now)

	if !assert.Len(t, out, 1) {
		return
	}
	r := out[0]
	assert.Equal(t, "INE001", r.SecurityID)
	assert.Equal(t, 15.0, r.QtySold)
	assert.Equal(t, 1600.0, r.TotalInvested)
	assert.Equal(t, 150.0, r.RealizedPL)
	assert.Equal(t, date(2023, 1, 1), *r.FirstBuyDate)
	assert.Equal(t, date(2024, 6, 1), *r.LastSoldDate)

	// Current price feeds the what-if columns.
	assert.InDelta(t, 15*12, r.CurrentValue, 1e-9)
	assert.InDelta(t, 180-1600, r.UnrealizedPL, 1e-9)
	assert.InDelta(t, 150+(180-1600), r.TotalPL, 1e-9)

	// Per-lot prices were absent, so averages come from value/quantity.
	assert.InDelta(t, 1600.0/15, r.AvgCost, 1e-9)
	assert.InDelta(t, 1750.0/15, r.AvgSoldPrice, 1e-9)

	// 2023-01-01 to 2024-06-01 is 517 days, about 17 months.
	assert.Equal(t, 1, r.HoldingPeriod.Years)
	assert.Equal(t, 5, r.HoldingPeriod.Months)
}

func TestRealizedStocksExcludesHeldPositions(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		// Keyed by name only; the open holding carries an identifier but the
		// same display name, and must still shadow the lot.
		lot("", "Acme Industries", 10, 1000, 1200, 200, datePtr(2024, 1, 1), datePtr(2024, 6, 1)),
		lot("INE002", "Other", 5, 500, 700, 200, datePtr(2024, 1, 1), datePtr(2024, 6, 1)),
	}
	holdings := []models.Holding{{
		SecurityID: "INE001", DisplayName: "ACME INDUSTRIES", OpenQuantity: 3,
	}}

	out := svc.RealizedStocks(context.Background(), lots, holdings, nil, now)

	if assert.Len(t, out, 1) {
		assert.Equal(t, "INE002", out[0].SecurityID)
	}
}

func TestRealizedStocksCaseInsensitiveIdentity(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	// Same ISIN spelled differently across sources collapses to one row.
	lots := []models.RealizedLot{
		lot("ine257a01026", "Acme", 4, 400, 500, 100, datePtr(2024, 1, 1), datePtr(2024, 3, 1)),
		lot(" INE257A01026 ", "Acme", 6, 600, 700, 100, datePtr(2024, 2, 1), datePtr(2024, 4, 1)),
	}

	out := svc.RealizedStocks(context.Background(), lots, nil, nil, now)

	if assert.Len(t, out, 1) {
		assert.Equal(t, "INE257A01026", out[0].SecurityID)
		assert.Equal(t, 10.0, out[0].QtySold)
		assert.Equal(t, 200.0, out[0].RealizedPL)
	}
}

func TestRealizedStocksZeroQuantityRules(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		// Zero quantity, zero P&L: pure noise, dropped.
		lot("INE003", "Noise", 0, 0, 0, 0, nil, nil),
		// Zero quantity with P&L: kept, quantity coerced to 1.
		lot("INE004", "CorpAction", 0, 0, 250, 250, nil, datePtr(2024, 5, 1)),
	}

	out := svc.RealizedStocks(context.Background(), lots, nil, nil, now)

	if !assert.Len(t, out, 1) {
		return
	}
	r := out[0]
	assert.Equal(t, "INE004", r.SecurityID)
	assert.Equal(t, 1.0, r.QtySold)
	assert.Equal(t, 250.0, r.RealizedPL)

	// Single-sided dates substitute across.
	assert.Equal(t, date(2024, 5, 1), *r.FirstBuyDate)
	assert.Equal(t, date(2024, 5, 1), *r.LastSoldDate)
	assert.Equal(t, models.HoldingPeriod{}, r.HoldingPeriod)
}

func TestRealizedStocksTransactionFallback(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	txns := []models.Transaction{
		buy("INE005", date(2024, 1, 1), 10, 100),
		sell("INE005", date(2024, 7, 1), 10, 130),
		// Still accumulating: sold less than bought, not realized.
		buy("INE006", date(2024, 1, 1), 10, 50),
		sell("INE006", date(2024, 7, 1), 4, 60),
	}

	out := svc.RealizedStocks(context.Background(), nil, nil, txns, now)

	if !assert.Len(t, out, 1) {
		return
	}
	r := out[0]
	assert.Equal(t, "INE005", r.SecurityID)
	assert.Equal(t, 10.0, r.QtySold)
	assert.Equal(t, 1000.0, r.TotalInvested)
	assert.Equal(t, 300.0, r.RealizedPL)
	assert.InDelta(t, 100, r.AvgCost, 1e-9)
	assert.InDelta(t, 130, r.AvgSoldPrice, 1e-9)
}

func TestRealizedStocksFallbackSkippedWhenLedgerProduces(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		lot("INE001", "Acme", 10, 1000, 1200, 200, datePtr(2024, 1, 1), datePtr(2024, 6, 1)),
	}
	txns := []models.Transaction{
		buy("INE005", date(2024, 1, 1), 10, 100),
		sell("INE005", date(2024, 7, 1), 10, 130),
	}

	// The ledger is authoritative: INE005's round trip stays out.
	out := svc.RealizedStocks(context.Background(), lots, nil, txns, now)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "INE001", out[0].SecurityID)
	}
}

func TestRealizedStocksCompleteness(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		lot("INE001", "Acme", 10, 1000, 1200, 200, datePtr(2023, 1, 1), datePtr(2024, 1, 1)),
		lot("INE002", "Beta", 5, 500, 450, -50, datePtr(2023, 2, 1), datePtr(2024, 2, 1)),
		lot("", "Gamma Ltd", 8, 800, 900, 100, datePtr(2023, 3, 1), datePtr(2024, 3, 1)),
		lot("INE004", "Held Co", 4, 400, 500, 100, datePtr(2023, 4, 1), datePtr(2024, 4, 1)),
	}
	holdings := []models.Holding{{SecurityID: "INE004", DisplayName: "Held Co", OpenQuantity: 2}}

	out := svc.RealizedStocks(context.Background(), lots, holdings, nil, now)

	// Every distinct non-held identity key appears exactly once.
	seen := make(map[string]int)
	for _, r := range out {
		seen[r.Key()]++
	}
	assert.Equal(t, map[string]int{"INE001": 1, "INE002": 1, "gamma ltd": 1}, seen)
}

func TestRealizedStocksSortedByLastSellDesc(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		lot("INE001", "Old", 1, 100, 110, 10, datePtr(2022, 1, 1), datePtr(2023, 1, 1)),
		lot("INE002", "New", 1, 100, 110, 10, datePtr(2022, 1, 1), datePtr(2025, 1, 1)),
		lot("INE003", "Mid", 1, 100, 110, 10, datePtr(2022, 1, 1), datePtr(2024, 1, 1)),
		// Dateless rows sink to the bottom.
		lot("INE004", "Undated", 1, 100, 90, -10, nil, nil),
	}

	out := svc.RealizedStocks(context.Background(), lots, nil, nil, now)

	if !assert.Len(t, out, 4) {
		return
	}
	assert.Equal(t, "INE002", out[0].SecurityID)
	assert.Equal(t, "INE003", out[1].SecurityID)
	assert.Equal(t, "INE001", out[2].SecurityID)
	assert.Equal(t, "INE004", out[3].SecurityID)
}

func TestRealizedReturnsShortHoldInDays(t *testing.T) {
	svc, _ := realizedFixture()
	now := date(2025, 6, 15)

	lots := []models.RealizedLot{
		lot("INE001", "Flip", 10, 1000, 1100, 100, datePtr(2025, 5, 1), datePtr(2025, 5, 11)),
	}

	out := svc.RealizedStocks(context.Background(), lots, nil, nil, now)

	if !assert.Len(t, out, 1) {
		return
	}
	assert.Equal(t, models.HoldingPeriod{Days: 10}, out[0].HoldingPeriod)
	// Even a 10-day flip annualizes through the floored year fraction.
	assert.Greater(t, out[0].XIRR, 0.0)
}

func TestReconcile(t *testing.T) {
	expected := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	produced := map[string]struct{}{"b": {}}
	assert.Equal(t, []string{"a", "c"}, Reconcile(expected, produced))

	assert.Empty(t, Reconcile(expected, expected))
	assert.Empty(t, Reconcile(nil, nil))
	// Extra produced rows are not an error.
	assert.Empty(t, Reconcile(map[string]struct{}{"a": {}}, map[string]struct{}{"a": {}, "z": {}}))
}
