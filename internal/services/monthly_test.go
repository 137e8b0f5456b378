package services

import (
	"context"
	"testing"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/stretchr/testify/assert"
)

func monthlyFixture() (*MonthlyReturnService, *fakePriceStore) {
	store := newFakePriceStore()
	return NewMonthlyReturnService(NewPriceCache(store)), store
}

func TestMonthlyReturnsWindowAndValuation(t *testing.T) {
	svc, store := monthlyFixture()
	now := date(2025, 6, 15)

	// Bought before the window opens, so the position is held throughout.
	txns := []models.Transaction{buy("AAA", date(2019, 1, 10), 10, 100)}
	store.addPoint("AAA", date(2025, 6, 1), 100)
	store.addPoint("AAA", date(2025, 6, 30), 110)

	out := svc.MonthlyReturns(context.Background(), nil, txns, now)

	assert.Len(t, out, 60)
	assert.Equal(t, "Jul-20", out[0].Month)
	assert.Equal(t, "Jun-25", out[59].Month)

	last := out[59]
	assert.InDelta(t, 100, last.ReturnAmount, 1e-9) // 10 shares, 100 -> 110
	assert.InDelta(t, 10, last.ReturnPercent, 1e-9)

	// Far from any price point, nearest-date lookup flattens the month.
	assert.Zero(t, out[0].ReturnAmount)
	assert.Zero(t, out[0].ReturnPercent)
}

func TestMonthlyReturnsQuantityReplay(t *testing.T) {
	svc, store := monthlyFixture()
	now := date(2025, 3, 20)

	txns := []models.Transaction{
		buy("AAA", date(2025, 1, 5), 10, 100),
		sell("AAA", date(2025, 2, 10), 10, 120),
	}
	for _, d := range []time.Time{
		date(2025, 1, 1), date(2025, 1, 31),
		date(2025, 2, 1), date(2025, 2, 28),
		date(2025, 3, 1), date(2025, 3, 31),
	} {
		store.addPoint("AAA", d, 100)
	}

	out := svc.MonthlyReturns(context.Background(), nil, txns, now)
	byMonth := indexMonthly(out)

	// Not yet bought as of Jan 1, fully exited before Mar 1.
	assert.Zero(t, byMonth["Jan-25"].ReturnAmount)
	assert.Zero(t, byMonth["Mar-25"].ReturnAmount)

	// Held 10 shares across February; flat prices mean zero return but a
	// nonzero valuation path exercised.
	assert.Zero(t, byMonth["Feb-25"].ReturnAmount)
	assert.Zero(t, byMonth["Feb-25"].ReturnPercent)
}

func TestMonthlyReturnsNoHistoryFallsBackToOpenQuantity(t *testing.T) {
	svc, store := monthlyFixture()
	now := date(2025, 2, 15)

	// Transferred-in position: held today but absent from the ledger.
	holdings := []models.Holding{{SecurityID: "BBB", DisplayName: "BBB", OpenQuantity: 5}}
	store.addPoint("BBB", date(2025, 2, 1), 40)
	store.addPoint("BBB", date(2025, 2, 28), 50)

	out := svc.MonthlyReturns(context.Background(), holdings, nil, now)
	byMonth := indexMonthly(out)

	assert.InDelta(t, 50, byMonth["Feb-25"].ReturnAmount, 1e-9) // 5 * (50-40)
	assert.InDelta(t, 25, byMonth["Feb-25"].ReturnPercent, 1e-9)
}

func TestMonthlyReturnsEndPriceFallsBackToStart(t *testing.T) {
	svc, store := monthlyFixture()
	now := date(2025, 1, 20)

	txns := []models.Transaction{buy("AAA", date(2024, 12, 1), 10, 100)}
	store.addPoint("AAA", date(2025, 1, 1), 100)
	// A zero close at month end is treated as unavailable.
	store.addPoint("AAA", date(2025, 1, 31), 0)

	out := svc.MonthlyReturns(context.Background(), nil, txns, now)
	byMonth := indexMonthly(out)

	assert.Zero(t, byMonth["Jan-25"].ReturnAmount)
	assert.Zero(t, byMonth["Jan-25"].ReturnPercent)
}

func TestMonthlyReturnsClamped(t *testing.T) {
	svc, store := monthlyFixture()
	now := date(2025, 1, 20)

	txns := []models.Transaction{buy("AAA", date(2024, 12, 1), 10, 1)}
	store.addPoint("AAA", date(2025, 1, 1), 1)
	store.addPoint("AAA", date(2025, 1, 31), 50) // +4900% raw

	out := svc.MonthlyReturns(context.Background(), nil, txns, now)
	byMonth := indexMonthly(out)

	assert.InDelta(t, monthlyReturnCeiling, byMonth["Jan-25"].ReturnPercent, 1e-9)
	// The absolute amount is not clamped.
	assert.InDelta(t, 490, byMonth["Jan-25"].ReturnAmount, 1e-9)
}

func TestStatistics(t *testing.T) {
	svc, _ := monthlyFixture()
	now := date(2025, 6, 15)

	returns := []models.MonthlyReturn{
		{Month: "Nov-24", ReturnPercent: 10, ReturnAmount: 100},
		{Month: "Dec-24", ReturnPercent: -2, ReturnAmount: -20},
		{Month: "Jan-25", ReturnPercent: 4, ReturnAmount: 40},
		{Month: "Feb-25", ReturnPercent: -6, ReturnAmount: -60},
		{Month: "Mar-25", ReturnPercent: 8, ReturnAmount: 80},
	}

	stats := svc.Statistics(returns, now)

	assert.InDelta(t, 14.0/5, stats.AverageReturnPercent, 1e-9)
	assert.InDelta(t, 140.0/5, stats.AverageReturnAmount, 1e-9)
	assert.InDelta(t, 6.0/3, stats.CurrentYearAvgPercent, 1e-9)
	assert.InDelta(t, 60.0/3, stats.CurrentYearAvgAmount, 1e-9)

	// Best and worst are scoped to the current year, so Nov-24's 10% does
	// not win.
	if assert.NotNil(t, stats.BestMonth) {
		assert.Equal(t, "Mar-25", stats.BestMonth.Month)
	}
	if assert.NotNil(t, stats.WorstMonth) {
		assert.Equal(t, "Feb-25", stats.WorstMonth.Month)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	svc, _ := monthlyFixture()
	stats := svc.Statistics(nil, date(2025, 6, 15))
	assert.Zero(t, stats.AverageReturnPercent)
	assert.Nil(t, stats.BestMonth)
	assert.Nil(t, stats.WorstMonth)
}

func TestQuantityAsOf(t *testing.T) {
	txns := []models.Transaction{
		buy("A", date(2024, 1, 10), 10, 100),
		sell("A", date(2024, 3, 10), 4, 110),
		buy("A", time.Time{}, 99, 1), // undated rows are ignored
	}
	assert.Zero(t, quantityAsOf(txns, date(2024, 1, 1)))
	assert.Equal(t, 10.0, quantityAsOf(txns, date(2024, 1, 10)))
	assert.Equal(t, 6.0, quantityAsOf(txns, date(2024, 12, 31)))
}

func indexMonthly(out []models.MonthlyReturn) map[string]models.MonthlyReturn {
	m := make(map[string]models.MonthlyReturn, len(out))
	for _, r := range out {
		m[r.Month] = r
	}
	return m
}
