// Package database provides database operations for the broker quote engine.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"broker-quote-engine/internal/models"
)

// CriteriaRepository handles criteria catalog database operations.
type CriteriaRepository struct {
	db *DB
}

// NewCriteriaRepository creates a new criteria repository.
func NewCriteriaRepository(db *DB) *CriteriaRepository {
	return &CriteriaRepository{db: db}
}

const criteriaColumns = `id, criteria_set, scope, question_key, question_label,
	option_label, tier_text, tier, info_tip, display_order, flag`

// ReplaceSet atomically replaces all rows for a criteria set.
func (r *CriteriaRepository) ReplaceSet(ctx context.Context, criteriaSet string, rows []*models.CriteriaRow) (int, error) {
	inserted := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM criteria_rows WHERE criteria_set = $1", criteriaSet); err != nil {
			return fmt.Errorf("failed to clear criteria set: %w", err)
		}

		query := `
			INSERT INTO criteria_rows (` + criteriaColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		for _, row := range rows {
			_, err := tx.Exec(ctx, query,
				row.ID,
				row.CriteriaSet,
				row.Scope,
				row.QuestionKey,
				row.QuestionLabel,
				row.OptionLabel,
				row.TierText,
				row.Tier,
				row.InfoTip,
				row.DisplayOrder,
				string(row.Flag),
			)
			if err != nil {
				return fmt.Errorf("failed to insert criteria row: %w", err)
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

// GetBySet retrieves all rows for a criteria set in insertion order.
func (r *CriteriaRepository) GetBySet(ctx context.Context, criteriaSet string) ([]*models.CriteriaRow, error) {
	query := `SELECT ` + criteriaColumns + ` FROM criteria_rows WHERE criteria_set = $1 ORDER BY display_order, id`

	rows, err := r.db.QueryContext(ctx, query, criteriaSet)
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria rows: %w", err)
	}
	defer rows.Close()

	var result []*models.CriteriaRow
	for rows.Next() {
		var row models.CriteriaRow
		var flag string
		err := rows.Scan(
			&row.ID,
			&row.CriteriaSet,
			&row.Scope,
			&row.QuestionKey,
			&row.QuestionLabel,
			&row.OptionLabel,
			&row.TierText,
			&row.Tier,
			&row.InfoTip,
			&row.DisplayOrder,
			&flag,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criteria row: %w", err)
		}
		row.Flag = models.CriteriaFlag(flag)
		result = append(result, &row)
	}

	return result, nil
}
