package services

import (
	"math"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/amehra/folio/internal/util"
)

// Blend constants for the headline portfolio return. When the market-value
// weighted XIRR and the aggregate CAGR diverge by more than the threshold
// (in percentage points), the blend dampens timing-driven divergence;
// otherwise the XIRR stands alone.
const (
	blendDivergencePoints = 5.0
	blendXIRRWeight       = 0.6
	blendCAGRWeight       = 0.4
)

// ReturnMetrics is a position's approximate annualized return profile.
type ReturnMetrics struct {
	XIRR          float64
	CAGR          float64
	HoldingYears  int
	HoldingMonths int
}

// PositionReturn computes a single position's approximate money-weighted
// annualized return, CAGR and holding period from its transaction history
// plus the current holding snapshot (nil when the position is closed).
// It never fails: any internal fault yields the zero-valued result.
//
// The XIRR here is a closed-form single-ratio approximation,
// (returned/invested)^(1/years) − 1, not a cash-flow-dated root solve. The
// approximation is load-bearing for the dashboard's expected outputs and is
// kept as-is.
func PositionReturn(txns []models.Transaction, holding *models.Holding, now time.Time) ReturnMetrics {
	var m ReturnMetrics

	var invested, returned float64
	var firstFlow, firstBuy time.Time
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		switch t.Type {
		case models.TransactionBuy:
			invested += t.TradeValue()
			if firstBuy.IsZero() || t.Date.Before(firstBuy) {
				firstBuy = t.Date
			}
		case models.TransactionSell:
			returned += t.TradeValue()
		default:
			continue
		}
		if firstFlow.IsZero() || t.Date.Before(firstFlow) {
			firstFlow = t.Date
		}
	}

	// A still-open position contributes its market value as a final inflow
	// dated today.
	if holding != nil && holding.OpenQuantity > 0 && holding.MarketValue > 0 {
		returned += holding.MarketValue
	}

	if invested > 0 && !firstFlow.IsZero() {
		years := util.YearsBetween(firstFlow, now)
		m.XIRR = annualizedPercent(returned/invested, years)
	}

	// CAGR and holding period both hang off the earliest buy.
	if firstBuy.IsZero() || holding == nil || holding.OpenQuantity <= 0 {
		return m
	}

	months := util.WholeMonthsBetween(firstBuy, now)
	m.HoldingYears = months / 12
	m.HoldingMonths = months % 12

	if holding.InvestedAmount > 0 && holding.MarketValue > 0 {
		years := util.YearsBetween(firstBuy, now)
		m.CAGR = annualizedPercent(holding.MarketValue/holding.InvestedAmount, years)
	}
	return m
}

// PortfolioReturn blends the market-value-weighted average of per-position
// XIRRs with a portfolio-level CAGR computed from aggregate cash flows.
// Holdings with no transactions or no market value are excluded from the
// weighted average. When there is no current market value at all, the
// result falls back to a transaction-only XIRR at portfolio scope.
func PortfolioReturn(txns []models.Transaction, holdings []models.Holding, now time.Time) float64 {
	byKey := make(map[string][]models.Transaction)
	for _, t := range txns {
		byKey[t.Key()] = append(byKey[t.Key()], t)
	}

	var totalMarketValue float64
	for _, h := range holdings {
		totalMarketValue += h.MarketValue
	}
	if totalMarketValue <= 0 {
		return PositionReturn(txns, nil, now).XIRR
	}

	var weighted, weightSum float64
	for i := range holdings {
		h := holdings[i]
		secTxns := byKey[h.Key()]
		if len(secTxns) == 0 || h.MarketValue <= 0 {
			continue
		}
		weighted += PositionReturn(secTxns, &h, now).XIRR * h.MarketValue
		weightSum += h.MarketValue
	}
	var weightedXIRR float64
	if weightSum > 0 {
		weightedXIRR = weighted / weightSum
	}

	portfolioCAGR := aggregateCAGR(txns, totalMarketValue, now)

	if math.Abs(weightedXIRR-portfolioCAGR) > blendDivergencePoints {
		return blendXIRRWeight*weightedXIRR + blendCAGRWeight*portfolioCAGR
	}
	return weightedXIRR
}

// aggregateCAGR computes a CAGR over the whole transaction set:
// (currentMarketValue + totalSold) relative to net invested capital,
// annualized from the earliest buy. totalBought stands in as the divisor
// when sells exceed buys on the books.
func aggregateCAGR(txns []models.Transaction, marketValue float64, now time.Time) float64 {
	var totalBought, totalSold float64
	var firstBuy time.Time
	for _, t := range txns {
		switch t.Type {
		case models.TransactionBuy:
			totalBought += t.TradeValue()
			if !t.Date.IsZero() && (firstBuy.IsZero() || t.Date.Before(firstBuy)) {
				firstBuy = t.Date
			}
		case models.TransactionSell:
			totalSold += t.TradeValue()
		}
	}
	if firstBuy.IsZero() {
		return 0
	}

	divisor := totalBought - totalSold
	if divisor <= 0 {
		divisor = totalBought
	}
	if divisor <= 0 {
		return 0
	}

	years := util.YearsBetween(firstBuy, now)
	return annualizedPercent((marketValue+totalSold)/divisor, years)
}

// annualizedPercent converts an end/start value ratio into an annualized
// percentage, guarding every non-finite and non-positive path to 0.
func annualizedPercent(ratio, years float64) float64 {
	if ratio <= 0 || years <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	r := math.Pow(ratio, 1/years) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r * 100
}
