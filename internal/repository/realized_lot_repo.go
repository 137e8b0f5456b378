package repository

import (
	"context"
	"fmt"

	"github.com/amehra/folio/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RealizedLotRepository handles database operations for the realized-P&L
// lot ledger
type RealizedLotRepository struct {
	pool *pgxpool.Pool
}

// NewRealizedLotRepository creates a new RealizedLotRepository
func NewRealizedLotRepository(pool *pgxpool.Pool) *RealizedLotRepository {
	return &RealizedLotRepository{pool: pool}
}

// FindByPortfolio retrieves all realized lots for a portfolio. Broker
// exports frequently omit the security identifier and either trade date,
// so those columns come back as nullable and stay optional on the model.
func (r *RealizedLotRepository) FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.RealizedLot, error) {
	query := `
		SELECT COALESCE(security_id, ''), display_name, COALESCE(sector, ''),
		       closed_quantity, buy_value, sell_value,
		       COALESCE(buy_price, 0), COALESCE(sell_price, 0),
		       buy_date, sell_date, realized_pl_amount
		FROM fact_realized_lot
		WHERE portfolio_id = $1
		ORDER BY sell_date DESC NULLS LAST
	`
	rows, err := r.pool.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query realized lots: %w", err)
	}
	defer rows.Close()

	var lots []models.RealizedLot
	for rows.Next() {
		var l models.RealizedLot
		if err := rows.Scan(
			&l.SecurityID, &l.DisplayName, &l.Sector,
			&l.ClosedQuantity, &l.BuyValue, &l.SellValue,
			&l.BuyPrice, &l.SellPrice,
			&l.BuyDate, &l.SellDate, &l.RealizedPLAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan realized lot: %w", err)
		}
		l.SecurityID = models.NormalizeID(l.SecurityID)
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
