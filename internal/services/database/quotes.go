// Package database provides database operations for the broker quote engine.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"broker-quote-engine/internal/models"
)

// QuoteRepository handles saved quote database operations.
type QuoteRepository struct {
	db *DB
}

// NewQuoteRepository creates a new quote repository.
func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

const quoteColumns = `id, reference, set_key, family, broker_email, client_name,
	tier, product_name, scope, rate_text, rate, fee_bucket, gross_loan, net_loan,
	ltv, net_ltv, icr, product_fee, admin_fee, broker_fee, commission,
	property_value, monthly_rent, top_slicing, created_at`

// Create persists a quote snapshot and returns its reference.
func (r *QuoteRepository) Create(ctx context.Context, quote *models.QuoteCreate) (string, error) {
	if err := models.ValidateQuoteCreate(quote); err != nil {
		return "", err
	}

	reference := uuid.NewString()
	query := `
		INSERT INTO quotes (
			reference, set_key, family, broker_email, client_name, tier,
			product_name, scope, rate_text, rate, fee_bucket, gross_loan,
			net_loan, ltv, net_ltv, icr, product_fee, admin_fee, broker_fee,
			commission, property_value, monthly_rent, top_slicing, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	_, err := r.db.ExecContext(ctx, query,
		reference,
		quote.SetKey,
		string(quote.Family),
		quote.BrokerEmail,
		quote.ClientName,
		quote.Tier,
		quote.ProductName,
		quote.Scope,
		quote.RateText,
		figurePtr(quote.Rate),
		figurePtr(quote.FeeBucket),
		figurePtr(quote.GrossLoan),
		figurePtr(quote.NetLoan),
		figurePtr(quote.LTV),
		figurePtr(quote.NetLTV),
		figurePtr(quote.ICR),
		figurePtr(quote.ProductFee),
		figurePtr(quote.AdminFee),
		figurePtr(quote.BrokerFee),
		figurePtr(quote.Commission),
		quote.PropertyValue,
		quote.MonthlyRent,
		quote.TopSlicing,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create quote: %w", err)
	}

	return reference, nil
}

// GetByReference retrieves a saved quote, or (nil, nil) when absent.
func (r *QuoteRepository) GetByReference(ctx context.Context, reference string) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE reference = $1`

	quote, err := scanQuote(r.db.QueryRowContext(ctx, query, reference))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// ListRecent retrieves the most recently saved quotes.
func (r *QuoteRepository) ListRecent(ctx context.Context, limit int) ([]*models.Quote, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + quoteColumns + ` FROM quotes ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func scanQuote(row pgx.Row) (*models.Quote, error) {
	var quote models.Quote
	var family string
	var rate, feeBucket, gross, net, ltv, netLTV, icr *float64
	var productFee, adminFee, brokerFee, commission *float64

	err := row.Scan(
		&quote.ID,
		&quote.Reference,
		&quote.SetKey,
		&family,
		&quote.BrokerEmail,
		&quote.ClientName,
		&quote.Tier,
		&quote.ProductName,
		&quote.Scope,
		&quote.RateText,
		&rate,
		&feeBucket,
		&gross,
		&net,
		&ltv,
		&netLTV,
		&icr,
		&productFee,
		&adminFee,
		&brokerFee,
		&commission,
		&quote.PropertyValue,
		&quote.MonthlyRent,
		&quote.TopSlicing,
		&quote.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	quote.Family = models.ProductFamily(family)
	quote.Rate = figureFromPtr(rate)
	quote.FeeBucket = figureFromPtr(feeBucket)
	quote.GrossLoan = figureFromPtr(gross)
	quote.NetLoan = figureFromPtr(net)
	quote.LTV = figureFromPtr(ltv)
	quote.NetLTV = figureFromPtr(netLTV)
	quote.ICR = figureFromPtr(icr)
	quote.ProductFee = figureFromPtr(productFee)
	quote.AdminFee = figureFromPtr(adminFee)
	quote.BrokerFee = figureFromPtr(brokerFee)
	quote.Commission = figureFromPtr(commission)

	return &quote, nil
}
