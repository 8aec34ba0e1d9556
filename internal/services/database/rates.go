// Package database provides database operations for the broker quote engine.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"broker-quote-engine/internal/models"
)

// RateRepository handles rate catalog database operations.
type RateRepository struct {
	db *DB
}

// NewRateRepository creates a new rate repository.
func NewRateRepository(db *DB) *RateRepository {
	return &RateRepository{db: db}
}

const rateColumns = `id, set_key, scope, tier_text, tier, product, family,
	rate_text, rate, product_fee_percent, admin_fee, proc_fee_percent,
	min_ltv, max_ltv, min_loan, max_loan, min_term, max_term,
	is_tracker, charge_type, is_retention, ingested_at, source_object`

// ReplaceSet atomically replaces all rows for a rate set with a freshly
// ingested card.
func (r *RateRepository) ReplaceSet(ctx context.Context, setKey string, rows []*models.RateRow) (int, error) {
	inserted := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM rate_rows WHERE set_key = $1", setKey); err != nil {
			return fmt.Errorf("failed to clear rate set: %w", err)
		}

		query := `
			INSERT INTO rate_rows (` + rateColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

		for _, row := range rows {
			_, err := tx.Exec(ctx, query,
				row.ID,
				row.SetKey,
				row.Scope,
				row.TierText,
				row.Tier,
				row.Product,
				string(row.Family),
				row.RateText,
				figurePtr(row.Rate),
				figurePtr(row.ProductFeePercent),
				figurePtr(row.AdminFee),
				figurePtr(row.ProcFeePercent),
				figurePtr(row.MinLTV),
				figurePtr(row.MaxLTV),
				figurePtr(row.MinLoan),
				figurePtr(row.MaxLoan),
				figurePtr(row.MinTerm),
				figurePtr(row.MaxTerm),
				row.IsTracker,
				string(row.ChargeType),
				row.IsRetention,
				row.IngestedAt,
				row.SourceObject,
			)
			if err != nil {
				return fmt.Errorf("failed to insert rate row: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetBySet retrieves all rows for a rate set in ingestion order.
func (r *RateRepository) GetBySet(ctx context.Context, setKey string) ([]*models.RateRow, error) {
	query := `SELECT ` + rateColumns + ` FROM rate_rows WHERE set_key = $1 ORDER BY ingested_at, id`

	rows, err := r.db.QueryContext(ctx, query, setKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate rows: %w", err)
	}
	defer rows.Close()

	var result []*models.RateRow
	for rows.Next() {
		row, err := scanRateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		result = append(result, row)
	}

	return result, nil
}

// GetBySetAndFamily retrieves rows for a rate set filtered by product family.
func (r *RateRepository) GetBySetAndFamily(ctx context.Context, setKey string, family models.ProductFamily) ([]*models.RateRow, error) {
	query := `SELECT ` + rateColumns + ` FROM rate_rows WHERE set_key = $1 AND family = $2 ORDER BY ingested_at, id`

	rows, err := r.db.QueryContext(ctx, query, setKey, string(family))
	if err != nil {
		return nil, fmt.Errorf("failed to query rate rows: %w", err)
	}
	defer rows.Close()

	var result []*models.RateRow
	for rows.Next() {
		row, err := scanRateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		result = append(result, row)
	}

	return result, nil
}

// ListSets returns the distinct rate set keys currently loaded.
func (r *RateRepository) ListSets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT set_key FROM rate_rows ORDER BY set_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list rate sets: %w", err)
	}
	defer rows.Close()

	var sets []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan set key: %w", err)
		}
		sets = append(sets, key)
	}
	return sets, nil
}

func scanRateRow(rows pgx.Rows) (*models.RateRow, error) {
	var row models.RateRow
	var family, chargeType string
	var rate, productFee, adminFee, procFee *float64
	var minLTV, maxLTV, minLoan, maxLoan, minTerm, maxTerm *float64

	err := rows.Scan(
		&row.ID,
		&row.SetKey,
		&row.Scope,
		&row.TierText,
		&row.Tier,
		&row.Product,
		&family,
		&row.RateText,
		&rate,
		&productFee,
		&adminFee,
		&procFee,
		&minLTV,
		&maxLTV,
		&minLoan,
		&maxLoan,
		&minTerm,
		&maxTerm,
		&row.IsTracker,
		&chargeType,
		&row.IsRetention,
		&row.IngestedAt,
		&row.SourceObject,
	)
	if err != nil {
		return nil, err
	}

	row.Family = models.ProductFamily(family)
	row.ChargeType = models.ChargeType(chargeType)
	row.Rate = figureFromPtr(rate)
	row.ProductFeePercent = figureFromPtr(productFee)
	row.AdminFee = figureFromPtr(adminFee)
	row.ProcFeePercent = figureFromPtr(procFee)
	row.MinLTV = figureFromPtr(minLTV)
	row.MaxLTV = figureFromPtr(maxLTV)
	row.MinLoan = figureFromPtr(minLoan)
	row.MaxLoan = figureFromPtr(maxLoan)
	row.MinTerm = figureFromPtr(minTerm)
	row.MaxTerm = figureFromPtr(maxTerm)

	return &row, nil
}

// figurePtr converts a Figure to a nullable float for storage.
func figurePtr(f models.Figure) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// figureFromPtr converts a nullable float back to a Figure.
func figureFromPtr(v *float64) models.Figure {
	if v == nil {
		return models.Unavailable()
	}
	return models.Num(*v)
}
