package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amehra/folio/internal/models"
	log "github.com/sirupsen/logrus"
)

// slowComputeTimeout bounds the two heaviest computations (monthly
// mark-to-market and realized reconciliation). On expiry the response keeps
// the rest of the payload and substitutes an empty section; partial work is
// discarded, never reused.
const slowComputeTimeout = 30 * time.Second

// topPerformerCount bounds the top/bottom performer lists.
const topPerformerCount = 3

// HoldingsStore supplies the current open holdings snapshot.
type HoldingsStore interface {
	FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.Holding, error)
}

// TransactionStore supplies the chronologically ordered trade ledger.
type TransactionStore interface {
	FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.Transaction, error)
}

// RealizedLotStore supplies the realized-P&L lot ledger.
type RealizedLotStore interface {
	FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.RealizedLot, error)
}

// AnalyticsService turns a portfolio's raw holdings, transactions and
// realized lots plus historical prices into the aggregated dashboard
// payload. Each request operates on its own snapshot and its own price
// cache; there is no cross-request shared state.
type AnalyticsService struct {
	holdings     HoldingsStore
	transactions TransactionStore
	realizedLots RealizedLotStore
	prices       PriceHistoryStore

	slowTimeout time.Duration
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(holdings HoldingsStore, transactions TransactionStore, realizedLots RealizedLotStore, prices PriceHistoryStore) *AnalyticsService {
	return &AnalyticsService{
		holdings:     holdings,
		transactions: transactions,
		realizedLots: realizedLots,
		prices:       prices,
		slowTimeout:  slowComputeTimeout,
	}
}

// PortfolioAnalytics assembles the full dashboard payload for a portfolio.
// The only error it can return is a failure to obtain the base snapshot;
// every per-security, per-month or per-sector fault inside the computation
// is logged and replaced with a neutral default.
func (s *AnalyticsService) PortfolioAnalytics(ctx context.Context, portfolioID int64) (*models.PortfolioAnalytics, error) {
	defer TrackTime("PortfolioAnalytics", time.Now())

	holdings, txns, lots, err := s.snapshot(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	prices := NewPriceCache(s.prices)
	s.refreshHoldingPrices(ctx, prices, holdings, now)
	s.annotateHoldings(holdings, txns, now)

	monthlySvc := NewMonthlyReturnService(prices)
	monthlyReturns := computeWithTimeout(ctx, s.slowTimeout, "monthly mark-to-market",
		func(ctx context.Context) []models.MonthlyReturn {
			return monthlySvc.MonthlyReturns(ctx, holdings, txns, now)
		})

	realizedSvc := NewRealizedService(prices)
	realized := computeWithTimeout(ctx, s.slowTimeout, "realized reconciliation",
		func(ctx context.Context) []models.RealizedStockSummary {
			return realizedSvc.RealizedStocks(ctx, lots, holdings, txns, now)
		})

	top, bottom := rankPerformers(holdings)

	payload := &models.PortfolioAnalytics{
		Summary:              summarize(holdings, txns, realized, now),
		TopPerformers:        top,
		BottomPerformers:     bottom,
		Holdings:             holdings,
		MonthlyInvestments:   MonthlyInvestments(txns),
		MonthlyDividends:     MonthlyDividends(txns),
		MonthlyReturns:       monthlyReturns,
		ReturnStatistics:     monthlySvc.Statistics(monthlyReturns, now),
		IndustryDistribution: IndustryDistribution(holdings, txns, now),
		RealizedStocks:       realized,
		Transactions:         thinTransactions(txns),
	}
	return payload, nil
}

// RealizedStocks serves the realized-position list on its own, for the
// dedicated endpoint.
func (s *AnalyticsService) RealizedStocks(ctx context.Context, portfolioID int64) ([]models.RealizedStockSummary, error) {
	holdings, txns, lots, err := s.snapshot(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	svc := NewRealizedService(NewPriceCache(s.prices))
	return computeWithTimeout(ctx, s.slowTimeout, "realized reconciliation",
		func(ctx context.Context) []models.RealizedStockSummary {
			return svc.RealizedStocks(ctx, lots, holdings, txns, time.Now())
		}), nil
}

// MonthlyReturns serves the monthly mark-to-market series on its own.
func (s *AnalyticsService) MonthlyReturns(ctx context.Context, portfolioID int64) ([]models.MonthlyReturn, models.ReturnStatistics, error) {
	holdings, err := s.holdings.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, models.ReturnStatistics{}, fmt.Errorf("failed to get holdings: %w", err)
	}
	txns, err := s.transactions.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, models.ReturnStatistics{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	sortTransactions(txns)

	now := time.Now()
	svc := NewMonthlyReturnService(NewPriceCache(s.prices))
	returns := computeWithTimeout(ctx, s.slowTimeout, "monthly mark-to-market",
		func(ctx context.Context) []models.MonthlyReturn {
			return svc.MonthlyReturns(ctx, holdings, txns, now)
		})
	return returns, svc.Statistics(returns, now), nil
}

// snapshot fetches the three base data sets. This is the only path whose
// failure is visible to the caller.
func (s *AnalyticsService) snapshot(ctx context.Context, portfolioID int64) ([]models.Holding, []models.Transaction, []models.RealizedLot, error) {
	holdings, err := s.holdings.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	txns, err := s.transactions.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	lots, err := s.realizedLots.FindByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get realized lots: %w", err)
	}
	sortTransactions(txns)
	return holdings, txns, lots, nil
}

// refreshHoldingPrices fills in market prices the ingestion left at zero,
// recomputing the dependent fields. Holdings that still have no usable
// price keep their imported values and produce a warning.
func (s *AnalyticsService) refreshHoldingPrices(ctx context.Context, prices *PriceCache, holdings []models.Holding, now time.Time) {
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if h.MarketPrice <= 0 {
			ids = append(ids, h.SecurityID)
		}
	}
	if len(ids) == 0 {
		return
	}
	prices.Prefetch(ctx, ids)

	for i := range holdings {
		h := &holdings[i]
		if h.MarketPrice > 0 {
			continue
		}
		price := prices.PriceOn(ctx, h.SecurityID, now)
		if price <= 0 {
			AddWarning(ctx, models.Warning{
				Code:    models.WarningMissingPrice,
				Message: fmt.Sprintf("no market price available for %s", h.DisplayName),
			})
			continue
		}
		h.MarketPrice = price
		h.MarketValue = price * h.OpenQuantity
		h.UnrealizedPLAmount = h.MarketValue - h.InvestedAmount
		if h.InvestedAmount > 0 {
			h.UnrealizedPLPercent = h.UnrealizedPLAmount / h.InvestedAmount * 100
		}
	}
}

// annotateHoldings attaches XIRR, CAGR and the holding period to each open
// holding. Failures default the fields to zero values; they never surface.
func (s *AnalyticsService) annotateHoldings(holdings []models.Holding, txns []models.Transaction, now time.Time) {
	byKey := make(map[string][]models.Transaction)
	for _, t := range txns {
		byKey[t.Key()] = append(byKey[t.Key()], t)
	}
	for i := range holdings {
		h := &holdings[i]
		m := PositionReturn(byKey[h.Key()], h, now)
		h.XIRR = m.XIRR
		h.CAGR = m.CAGR
		h.HoldingPeriod = models.HoldingPeriod{Years: m.HoldingYears, Months: m.HoldingMonths}
	}
}

func summarize(holdings []models.Holding, txns []models.Transaction, realized []models.RealizedStockSummary, now time.Time) models.PortfolioSummary {
	var sum models.PortfolioSummary
	for _, h := range holdings {
		sum.CurrentValue += h.MarketValue
		sum.TotalInvested += h.InvestedAmount
	}
	sum.TotalProfitLoss = sum.CurrentValue - sum.TotalInvested
	for _, r := range realized {
		sum.TotalRealizedPL += r.RealizedPL
	}
	sum.TotalReturn = sum.TotalProfitLoss + sum.TotalRealizedPL
	if sum.TotalInvested > 0 {
		sum.TotalReturnPercent = sum.TotalReturn / sum.TotalInvested * 100
	}
	sum.XIRR = PortfolioReturn(txns, holdings, now)
	return sum
}

// rankPerformers returns the top and bottom holdings by unrealized P&L
// percent.
func rankPerformers(holdings []models.Holding) (top, bottom []models.Holding) {
	ranked := make([]models.Holding, len(holdings))
	copy(ranked, holdings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].UnrealizedPLPercent > ranked[j].UnrealizedPLPercent
	})

	n := len(ranked)
	if n == 0 {
		return nil, nil
	}
	topN := min(topPerformerCount, n)
	top = append(top, ranked[:topN]...)
	for i := n - 1; i >= n-topN && i >= 0; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}

func thinTransactions(txns []models.Transaction) []models.TransactionSummary {
	out := make([]models.TransactionSummary, len(txns))
	for i, t := range txns {
		out[i] = models.TransactionSummary{
			SecurityID: models.NormalizeID(t.SecurityID),
			Date:       t.Date,
			Type:       t.Type,
			Price:      t.Price,
			Quantity:   t.Quantity,
			Value:      t.TradeValue(),
		}
	}
	return out
}

func sortTransactions(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})
}

// computeWithTimeout runs fn with a deadline; on expiry the zero value is
// substituted so one slow computation cannot block the whole response.
func computeWithTimeout[T any](ctx context.Context, d time.Duration, name string, fn func(ctx context.Context) T) T {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case v := <-done:
		return v
	case <-ctx.Done():
		log.Warnf("%s did not complete within %s; substituting empty result", name, d)
		var zero T
		return zero
	}
}
