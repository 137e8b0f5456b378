package repository

import (
	"context"
	"fmt"

	"github.com/amehra/folio/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HoldingsRepository handles database operations for open holdings
type HoldingsRepository struct {
	pool *pgxpool.Pool
}

// NewHoldingsRepository creates a new HoldingsRepository
func NewHoldingsRepository(pool *pgxpool.Pool) *HoldingsRepository {
	return &HoldingsRepository{pool: pool}
}

// FindByPortfolio retrieves all open holdings for a portfolio.
// The row set is replaced wholesale on each ingestion cycle, so a plain
// read is always consistent with the latest import.
func (r *HoldingsRepository) FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.Holding, error) {
	query := `
		SELECT security_id, display_name, COALESCE(sector, ''),
		       open_quantity, avg_cost, invested_amount,
		       market_price, market_value,
		       unrealized_pl_amount, unrealized_pl_percent
		FROM fact_holding
		WHERE portfolio_id = $1 AND open_quantity > 0
		ORDER BY market_value DESC
	`
	rows, err := r.pool.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(
			&h.SecurityID, &h.DisplayName, &h.Sector,
			&h.OpenQuantity, &h.AvgCost, &h.InvestedAmount,
			&h.MarketPrice, &h.MarketValue,
			&h.UnrealizedPLAmount, &h.UnrealizedPLPercent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		h.SecurityID = models.NormalizeID(h.SecurityID)
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
