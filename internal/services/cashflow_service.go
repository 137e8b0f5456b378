package services

import (
	"sort"
	"time"

	"github.com/amehra/folio/internal/models"
)

// monthLabel is the "Mon-YY" bucket label used across all monthly views.
const monthLabel = "Jan-06"

// MonthlyInvestments buckets buy and sell transactions into calendar-month
// investment/withdrawal totals with per-security breakdowns. Dividends are
// excluded from this view. Months are ordered by their first-seen
// transaction date; each month's details are sorted descending by amount.
func MonthlyInvestments(txns []models.Transaction) []models.MonthlyCashFlow {
	type bucket struct {
		flow      models.MonthlyCashFlow
		firstSeen time.Time
		invBySec  map[string]*models.SecurityFlow
		wdBySec   map[string]*models.SecurityFlow
	}

	buckets := make(map[string]*bucket)
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		if t.Type != models.TransactionBuy && t.Type != models.TransactionSell {
			continue
		}

		label := t.Date.Format(monthLabel)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{
				flow:      models.MonthlyCashFlow{Month: label},
				firstSeen: t.Date,
				invBySec:  make(map[string]*models.SecurityFlow),
				wdBySec:   make(map[string]*models.SecurityFlow),
			}
			buckets[label] = b
		}
		if t.Date.Before(b.firstSeen) {
			b.firstSeen = t.Date
		}

		value := t.TradeValue()
		key := t.Key()
		switch t.Type {
		case models.TransactionBuy:
			b.flow.Investments += value
			accumulateFlow(b.invBySec, key, t, value)
		case models.TransactionSell:
			b.flow.Withdrawals += value
			accumulateFlow(b.wdBySec, key, t, value)
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		b.flow.InvestmentDetails = sortedFlows(b.invBySec)
		b.flow.WithdrawalDetails = sortedFlows(b.wdBySec)
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].firstSeen.Before(ordered[j].firstSeen)
	})

	out := make([]models.MonthlyCashFlow, len(ordered))
	for i, b := range ordered {
		out[i] = b.flow
	}
	return out
}

// MonthlyDividends buckets dividend transactions into calendar months with
// per-security sub-totals. Dividend value is price × quantity; charges do
// not apply.
func MonthlyDividends(txns []models.Transaction) []models.MonthlyDividend {
	type bucket struct {
		div       models.MonthlyDividend
		firstSeen time.Time
		bySec     map[string]*models.SecurityFlow
	}

	buckets := make(map[string]*bucket)
	for _, t := range txns {
		if t.Date.IsZero() || t.Type != models.TransactionDividend {
			continue
		}

		label := t.Date.Format(monthLabel)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{
				div:       models.MonthlyDividend{Month: label},
				firstSeen: t.Date,
				bySec:     make(map[string]*models.SecurityFlow),
			}
			buckets[label] = b
		}
		if t.Date.Before(b.firstSeen) {
			b.firstSeen = t.Date
		}

		value := t.Price * t.Quantity
		b.div.Amount += value
		accumulateFlow(b.bySec, t.Key(), t, value)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		b.div.Details = sortedFlows(b.bySec)
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].firstSeen.Before(ordered[j].firstSeen)
	})

	out := make([]models.MonthlyDividend, len(ordered))
	for i, b := range ordered {
		out[i] = b.div
	}
	return out
}

func accumulateFlow(bySec map[string]*models.SecurityFlow, key string, t models.Transaction, value float64) {
	f, ok := bySec[key]
	if !ok {
		f = &models.SecurityFlow{
			SecurityID:  models.NormalizeID(t.SecurityID),
			DisplayName: t.DisplayName,
		}
		bySec[key] = f
	}
	f.Quantity += t.Quantity
	f.Amount += value
}

func sortedFlows(bySec map[string]*models.SecurityFlow) []models.SecurityFlow {
	flows := make([]models.SecurityFlow, 0, len(bySec))
	for _, f := range bySec {
		flows = append(flows, *f)
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Amount != flows[j].Amount {
			return flows[i].Amount > flows[j].Amount
		}
		return flows[i].DisplayName < flows[j].DisplayName
	})
	return flows
}
