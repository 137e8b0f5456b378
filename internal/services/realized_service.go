package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/amehra/folio/internal/util"
	log "github.com/sirupsen/logrus"
)

// Day thresholds for the realized holding-period decomposition: exits held
// under a month are reported in days, everything longer in years + months
// via a 30-day month.
const (
	daysPerMonthApprox = 30
	shortHoldDays      = 30
)

// RealizedService produces one summary row per fully-exited security. It
// prefers the realized-lot ledger, falls back to a transaction-derived
// computation only when the ledger is empty, and in both cases enforces
// the completeness invariant: every distinct identity key in the ledger
// that is not currently held appears in the output exactly once.
type RealizedService struct {
	prices *PriceCache
}

// NewRealizedService creates a RealizedService over a request-scoped price
// cache.
func NewRealizedService(prices *PriceCache) *RealizedService {
	return &RealizedService{prices: prices}
}

// RealizedStocks merges the realized-lot ledger with the transaction
// ledger into the final realized-position list, sorted descending by last
// sell date.
func (s *RealizedService) RealizedStocks(ctx context.Context, lots []models.RealizedLot, holdings []models.Holding, txns []models.Transaction, now time.Time) []models.RealizedStockSummary {
	held := heldKeys(holdings)

	lotsByKey := make(map[string][]models.RealizedLot)
	for _, l := range lots {
		key := l.Key()
		if key == "" {
			continue
		}
		lotsByKey[key] = append(lotsByKey[key], l)
	}

	// Prefetch the current price for every realized security that still
	// carries an identifier.
	var ids []string
	for _, group := range lotsByKey {
		for _, l := range group {
			if l.SecurityID != "" {
				ids = append(ids, l.SecurityID)
				break
			}
		}
	}
	s.prices.Prefetch(ctx, ids)

	var out []models.RealizedStockSummary
	for key, group := range lotsByKey {
		if _, open := held[key]; open {
			// A position still held is not realized.
			continue
		}
		if summary := s.aggregateLots(ctx, group, now); summary != nil {
			out = append(out, *summary)
		}
	}

	// Fallback: the ledger produced nothing but the transaction history
	// still knows about completed round trips.
	if len(out) == 0 && len(txns) > 0 {
		out = s.realizedFromTransactions(ctx, txns, held, now)
	}

	// Completeness re-check. This runs unconditionally: identity-key
	// collisions between ISIN-keyed and name-keyed records can silently
	// drop a security even when the aggregation above looks complete.
	expected := make(map[string]struct{}, len(lotsByKey))
	for key := range lotsByKey {
		if _, open := held[key]; !open {
			expected[key] = struct{}{}
		}
	}
	produced := make(map[string]struct{}, len(out))
	for _, r := range out {
		produced[r.Key()] = struct{}{}
	}
	for _, key := range Reconcile(expected, produced) {
		summary := s.aggregateLots(ctx, lotsByKey[key], now)
		if summary == nil {
			// Absent from every source with no usable signal; accept the
			// gap rather than fabricate a row.
			log.Warnf("realized position %q could not be reconstructed from its lots", key)
			AddWarning(ctx, models.Warning{
				Code:    models.WarningUnresolvableRow,
				Message: fmt.Sprintf("realized position %q dropped: no usable quantity or P&L", key),
			})
			continue
		}
		AddWarning(ctx, models.Warning{
			Code:    models.WarningReconciledRow,
			Message: fmt.Sprintf("realized position %q restored by reconciliation", key),
		})
		out = append(out, *summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastSoldDate, out[j].LastSoldDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return out
}

// Reconcile reports the identity keys present in expected but absent from
// produced, sorted for deterministic processing. It is the single merge
// check run after each aggregation stage; callers re-synthesize the missing
// rows from source data.
func Reconcile(expected, produced map[string]struct{}) []string {
	var missing []string
	for key := range expected {
		if _, ok := produced[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// aggregateLots collapses one security's lots into a summary row. A group
// with zero closed quantity and zero realized P&L carries no signal and
// yields nil; a zero-quantity group with P&L is kept with quantity 1 so the
// per-unit math stays defined.
func (s *RealizedService) aggregateLots(ctx context.Context, group []models.RealizedLot, now time.Time) *models.RealizedStockSummary {
	if len(group) == 0 {
		return nil
	}

	sum := models.RealizedStockSummary{
		DisplayName: group[0].DisplayName,
		Sector:      group[0].Sector,
	}
	var buyPrices, sellPrices []float64
	var firstBuy, lastSell *time.Time
	for _, l := range group {
		if sum.SecurityID == "" {
			sum.SecurityID = models.NormalizeID(l.SecurityID)
		}
		if sum.Sector == "" {
			sum.Sector = l.Sector
		}
		sum.QtySold += l.ClosedQuantity
		sum.TotalInvested += l.BuyValue
		sum.RealizedPL += l.RealizedPLAmount

		if l.BuyPrice > 0 {
			buyPrices = append(buyPrices, l.BuyPrice)
		}
		if l.SellPrice > 0 {
			sellPrices = append(sellPrices, l.SellPrice)
		}
		if l.BuyDate != nil && (firstBuy == nil || l.BuyDate.Before(*firstBuy)) {
			firstBuy = l.BuyDate
		}
		if l.SellDate != nil && (lastSell == nil || l.SellDate.After(*lastSell)) {
			lastSell = l.SellDate
		}
	}

	var sellValue float64
	for _, l := range group {
		sellValue += l.SellValue
	}

	if sum.QtySold == 0 && sum.RealizedPL == 0 {
		return nil
	}
	if sum.QtySold == 0 {
		sum.QtySold = 1
	}

	// A single-sided record still gets a holding-period estimate.
	if firstBuy == nil {
		firstBuy = lastSell
	}
	if lastSell == nil {
		lastSell = firstBuy
	}
	sum.FirstBuyDate = firstBuy
	sum.LastSoldDate = lastSell

	sum.AvgCost = meanOr(buyPrices, sum.TotalInvested/sum.QtySold)
	sum.AvgSoldPrice = meanOr(sellPrices, sellValue/sum.QtySold)

	s.finishSummary(ctx, &sum, sellValue, now)
	return &sum
}

// realizedFromTransactions derives realized positions directly from the
// ledger: securities with both buys and sells, cumulative sold quantity at
// least the bought quantity, and no open holding.
func (s *RealizedService) realizedFromTransactions(ctx context.Context, txns []models.Transaction, held map[string]struct{}, now time.Time) []models.RealizedStockSummary {
	type tally struct {
		summary    models.RealizedStockSummary
		boughtQty  float64
		sellValue  float64
		hasBuy     bool
		hasSell    bool
	}

	byKey := make(map[string]*tally)
	for _, t := range txns {
		key := t.Key()
		if key == "" {
			continue
		}
		if _, open := held[key]; open {
			continue
		}
		c, ok := byKey[key]
		if !ok {
			c = &tally{summary: models.RealizedStockSummary{
				SecurityID:  models.NormalizeID(t.SecurityID),
				DisplayName: t.DisplayName,
			}}
			byKey[key] = c
		}
		switch t.Type {
		case models.TransactionBuy:
			c.hasBuy = true
			c.boughtQty += t.Quantity
			c.summary.TotalInvested += t.TradeValue()
			if !t.Date.IsZero() && (c.summary.FirstBuyDate == nil || t.Date.Before(*c.summary.FirstBuyDate)) {
				d := t.Date
				c.summary.FirstBuyDate = &d
			}
		case models.TransactionSell:
			c.hasSell = true
			c.summary.QtySold += t.Quantity
			c.sellValue += t.TradeValue()
			if !t.Date.IsZero() && (c.summary.LastSoldDate == nil || t.Date.After(*c.summary.LastSoldDate)) {
				d := t.Date
				c.summary.LastSoldDate = &d
			}
		}
	}

	var out []models.RealizedStockSummary
	for _, c := range byKey {
		if !c.hasBuy || !c.hasSell || c.summary.QtySold < c.boughtQty || c.summary.QtySold <= 0 {
			continue
		}
		sum := c.summary
		if sum.FirstBuyDate == nil {
			sum.FirstBuyDate = sum.LastSoldDate
		}
		if sum.LastSoldDate == nil {
			sum.LastSoldDate = sum.FirstBuyDate
		}
		sum.AvgCost = sum.TotalInvested / sum.QtySold
		sum.AvgSoldPrice = c.sellValue / sum.QtySold
		sum.RealizedPL = c.sellValue - sum.TotalInvested
		s.finishSummary(ctx, &sum, c.sellValue, now)
		out = append(out, sum)
	}
	return out
}

// finishSummary attaches current-price-dependent fields plus the XIRR,
// CAGR and holding period shared by both reconciliation paths.
func (s *RealizedService) finishSummary(ctx context.Context, sum *models.RealizedStockSummary, sellValue float64, now time.Time) {
	var currentPrice float64
	if sum.SecurityID != "" {
		currentPrice = s.prices.PriceOn(ctx, sum.SecurityID, now)
	}
	sum.TotalPL = sum.RealizedPL
	if currentPrice > 0 {
		sum.CurrentValue = currentPrice * sum.QtySold
		sum.UnrealizedPL = sum.CurrentValue - sum.TotalInvested
		sum.TotalPL += sum.UnrealizedPL
	}
	if sum.TotalInvested > 0 {
		sum.TotalPLPercent = sum.TotalPL / sum.TotalInvested * 100
	}

	if sum.FirstBuyDate != nil && sum.LastSoldDate != nil && sum.TotalInvested > 0 {
		sum.XIRR = annualizedPercent(sellValue/sum.TotalInvested,
			util.YearsBetween(*sum.FirstBuyDate, *sum.LastSoldDate))
		if currentPrice > 0 {
			sum.CAGR = annualizedPercent(sum.CurrentValue/sum.TotalInvested,
				util.YearsBetween(*sum.FirstBuyDate, now))
		}
	}

	if sum.FirstBuyDate != nil && sum.LastSoldDate != nil {
		days := int(sum.LastSoldDate.Sub(*sum.FirstBuyDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		if days < shortHoldDays {
			sum.HoldingPeriod = models.HoldingPeriod{Days: days}
		} else {
			months := days / daysPerMonthApprox
			sum.HoldingPeriod = models.HoldingPeriod{
				Years:  months / 12,
				Months: months % 12,
			}
		}
	}
}

// heldKeys indexes the open holdings by both identifier and name keys so a
// ledger row keyed either way matches its open position.
func heldKeys(holdings []models.Holding) map[string]struct{} {
	held := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if h.OpenQuantity <= 0 {
			continue
		}
		if id := models.NormalizeID(h.SecurityID); id != "" {
			held[id] = struct{}{}
		}
		if name := models.NormalizeName(h.DisplayName); name != "" {
			held[name] = struct{}{}
		}
	}
	return held
}

func meanOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
