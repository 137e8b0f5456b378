package repository

import (
	"context"
	"fmt"

	"github.com/amehra/folio/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository handles database operations for the trade ledger
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// FindByPortfolio retrieves a portfolio's transactions in chronological
// order. The ledger is append-only; rows are never mutated after ingestion.
func (r *TransactionRepository) FindByPortfolio(ctx context.Context, portfolioID int64) ([]models.Transaction, error) {
	query := `
		SELECT security_id, display_name, txn_type, txn_date,
		       quantity, price, COALESCE(value, 0), COALESCE(charges, 0)
		FROM fact_transaction
		WHERE portfolio_id = $1
		ORDER BY txn_date ASC
	`
	rows, err := r.pool.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.SecurityID, &t.DisplayName, &t.Type, &t.Date,
			&t.Quantity, &t.Price, &t.Value, &t.Charges,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.SecurityID = models.NormalizeID(t.SecurityID)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
