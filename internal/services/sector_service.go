package services

import (
	"sort"
	"time"

	"github.com/amehra/folio/internal/models"
)

// defaultSector labels holdings whose ingestion carried no sector.
const defaultSector = "Unknown"

// IndustryDistribution groups open holdings by sector, computing each
// sector's value share, P&L and return metrics. Sector-level XIRR and CAGR
// reuse the position/portfolio calculators restricted to that sector's
// holdings and transactions. Output is sorted descending by market value.
func IndustryDistribution(holdings []models.Holding, txns []models.Transaction, now time.Time) []models.SectorDistribution {
	sectorOf := make(map[string]string)
	bySector := make(map[string][]models.Holding)
	var totalMarketValue float64
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = defaultSector
		}
		bySector[sector] = append(bySector[sector], h)
		sectorOf[h.Key()] = sector
		totalMarketValue += h.MarketValue
	}

	txnsBySector := make(map[string][]models.Transaction)
	for _, t := range txns {
		sector, ok := sectorOf[t.Key()]
		if !ok {
			// Transactions for exited securities carry no open holding;
			// they belong to no current sector slice.
			continue
		}
		txnsBySector[sector] = append(txnsBySector[sector], t)
	}

	out := make([]models.SectorDistribution, 0, len(bySector))
	for sector, secHoldings := range bySector {
		d := models.SectorDistribution{
			Sector:       sector,
			HoldingCount: len(secHoldings),
		}
		for _, h := range secHoldings {
			d.MarketValue += h.MarketValue
			d.InvestedAmount += h.InvestedAmount
			d.ProfitLoss += h.UnrealizedPLAmount
		}
		if totalMarketValue > 0 {
			d.Percentage = d.MarketValue / totalMarketValue * 100
		}
		d.XIRR = PortfolioReturn(txnsBySector[sector], secHoldings, now)
		d.CAGR = aggregateCAGR(txnsBySector[sector], d.MarketValue, now)
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MarketValue > out[j].MarketValue
	})
	return out
}
