package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amehra/folio/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceRepository handles database operations for historical prices
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// SeriesFor retrieves a security's full price history, sorted ascending by
// date. An unknown security yields an empty series, not an error.
func (r *PriceRepository) SeriesFor(ctx context.Context, securityID string) (models.PriceSeries, error) {
	query := `
		SELECT price_date, close
		FROM fact_price
		WHERE security_id = $1
		ORDER BY price_date ASC
	`
	rows, err := r.pool.Query(ctx, query, models.NormalizeID(securityID))
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	var series models.PriceSeries
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

// LatestClose retrieves the most recent closing price for a security.
// Returns nil when no price is known.
func (r *PriceRepository) LatestClose(ctx context.Context, securityID string) (*models.PricePoint, error) {
	query := `
		SELECT price_date, close
		FROM fact_price
		WHERE security_id = $1
		ORDER BY price_date DESC
		LIMIT 1
	`
	p := &models.PricePoint{}
	err := r.pool.QueryRow(ctx, query, models.NormalizeID(securityID)).Scan(&p.Date, &p.Close)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}
	return p, nil
}

// StoreSeries upserts price points for a security. Used by the out-of-core
// refresh job; the analytics engine itself only reads.
func (r *PriceRepository) StoreSeries(ctx context.Context, securityID string, series models.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	query := `
		INSERT INTO fact_price (security_id, price_date, close)
		VALUES ($1, $2, $3)
		ON CONFLICT (security_id, price_date) DO UPDATE
		SET close = EXCLUDED.close
	`

	id := models.NormalizeID(securityID)
	batch := &pgx.Batch{}
	for _, p := range series {
		batch.Queue(query, id, p.Date, p.Close)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to store price: %w", err)
		}
	}
	return nil
}

// PruneBefore deletes price points older than cutoff for all securities.
// Retention housekeeping for the refresh job.
func (r *PriceRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fact_price WHERE price_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune prices: %w", err)
	}
	return tag.RowsAffected(), nil
}
