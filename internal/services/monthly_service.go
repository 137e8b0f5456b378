package services

import (
	"context"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/amehra/folio/internal/util"
)

// Monthly mark-to-market bounds: the series covers the trailing five years,
// and a single month's return is clamped to suppress pathological ratios
// from thin or penny-stock price data.
const (
	monthlyReturnWindowMonths = 60
	monthlyReturnFloor        = -100.0
	monthlyReturnCeiling      = 200.0
)

// MonthlyReturnService reconstructs month-by-month holdings from the
// transaction ledger and revalues them against historical prices.
type MonthlyReturnService struct {
	prices *PriceCache
}

// NewMonthlyReturnService creates a MonthlyReturnService over a
// request-scoped price cache.
func NewMonthlyReturnService(prices *PriceCache) *MonthlyReturnService {
	return &MonthlyReturnService{prices: prices}
}

// MonthlyReturns produces one mark-to-market entry per calendar month for
// the trailing five years ending at now. Held quantities are replayed from
// the ledger as of each month start; securities with no transaction history
// fall back to their current open quantity. All price series are prefetched
// in bounded batches before the month loop so per-month lookups stay
// in-memory.
func (s *MonthlyReturnService) MonthlyReturns(ctx context.Context, holdings []models.Holding, txns []models.Transaction, now time.Time) []models.MonthlyReturn {
	txnsByKey := make(map[string][]models.Transaction)
	idByKey := make(map[string]string)
	for _, t := range txns {
		key := t.Key()
		txnsByKey[key] = append(txnsByKey[key], t)
		if id := models.NormalizeID(t.SecurityID); id != "" {
			idByKey[key] = id
		}
	}

	currentQty := make(map[string]float64)
	for _, h := range holdings {
		key := h.Key()
		currentQty[key] = h.OpenQuantity
		if id := models.NormalizeID(h.SecurityID); id != "" {
			idByKey[key] = id
		}
	}

	keys := make([]string, 0, len(idByKey))
	ids := make([]string, 0, len(idByKey))
	for key, id := range idByKey {
		keys = append(keys, key)
		ids = append(ids, id)
	}
	s.prices.Prefetch(ctx, ids)

	start := util.MonthStart(now).AddDate(0, -(monthlyReturnWindowMonths - 1), 0)
	var out []models.MonthlyReturn
	for m := start; !m.After(now); m = m.AddDate(0, 1, 0) {
		monthStart := m
		monthEnd := util.MonthEnd(m)

		var valueStart, valueEnd float64
		for _, key := range keys {
			qty := quantityAsOf(txnsByKey[key], monthStart)
			if len(txnsByKey[key]) == 0 {
				qty = currentQty[key]
			}
			if qty <= 0 {
				continue
			}

			priceStart := s.prices.PriceOn(ctx, idByKey[key], monthStart)
			if priceStart <= 0 {
				continue
			}
			priceEnd := s.prices.PriceOn(ctx, idByKey[key], monthEnd)
			if priceEnd <= 0 {
				// Only the start price is known; assume no movement
				// rather than leaving a gap.
				priceEnd = priceStart
			}

			valueStart += qty * priceStart
			valueEnd += qty * priceEnd
		}

		entry := models.MonthlyReturn{
			Month:        monthStart.Format(monthLabel),
			ReturnAmount: valueEnd - valueStart,
		}
		if valueStart > 0 {
			entry.ReturnPercent = clamp((valueEnd-valueStart)/valueStart*100, monthlyReturnFloor, monthlyReturnCeiling)
		}
		out = append(out, entry)
	}
	return out
}

// Statistics derives the overall and current-year averages plus the best
// and worst month of the current year from a monthly return series.
func (s *MonthlyReturnService) Statistics(returns []models.MonthlyReturn, now time.Time) models.ReturnStatistics {
	var stats models.ReturnStatistics
	if len(returns) == 0 {
		return stats
	}

	var sumPct, sumAmt float64
	var yearPct, yearAmt float64
	var yearCount int
	for i := range returns {
		r := returns[i]
		sumPct += r.ReturnPercent
		sumAmt += r.ReturnAmount

		month, err := time.Parse(monthLabel, r.Month)
		if err != nil || month.Year() != now.Year() {
			continue
		}
		yearPct += r.ReturnPercent
		yearAmt += r.ReturnAmount
		yearCount++
		if stats.BestMonth == nil || r.ReturnPercent > stats.BestMonth.ReturnPercent {
			stats.BestMonth = &returns[i]
		}
		if stats.WorstMonth == nil || r.ReturnPercent < stats.WorstMonth.ReturnPercent {
			stats.WorstMonth = &returns[i]
		}
	}

	stats.AverageReturnPercent = sumPct / float64(len(returns))
	stats.AverageReturnAmount = sumAmt / float64(len(returns))
	if yearCount > 0 {
		stats.CurrentYearAvgPercent = yearPct / float64(yearCount)
		stats.CurrentYearAvgAmount = yearAmt / float64(yearCount)
	}
	return stats
}

// quantityAsOf replays buys and sells dated on or before asOf.
func quantityAsOf(txns []models.Transaction, asOf time.Time) float64 {
	var qty float64
	for _, t := range txns {
		if t.Date.IsZero() || t.Date.After(asOf) {
			continue
		}
		switch t.Type {
		case models.TransactionBuy:
			qty += t.Quantity
		case models.TransactionSell:
			qty -= t.Quantity
		}
	}
	return qty
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
