package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"broker-quote-engine/internal/models"
)

// Rate card parser errors
var (
	ErrEmptyCard      = errors.New("card content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("card contains no data rows")
)

// rateRequiredColumns are the columns a rate card must carry.
var rateRequiredColumns = []string{
	"scope",
	"product",
	"rate",
}

// rateColumnAliases maps alternative rate-card column names to canonical
// names. Lender cards are wildly inconsistent; every alias seen in a live
// card belongs here, not in the matching core.
var rateColumnAliases = map[string]string{
	// scope aliases
	"property_type":     "scope",
	"propertytype":      "scope",
	"category":          "scope",
	"sector":            "scope",
	"product_scope":     "scope",

	// product aliases
	"product_name":      "product",
	"productname":       "product",
	"description":       "product",

	// tier aliases
	"band":              "tier",
	"risk_tier":         "tier",
	"tier_band":         "tier",

	// rate aliases
	"initial_rate":      "rate",
	"pay_rate":          "rate",
	"interest_rate":     "rate",
	"rate_pct":          "rate",

	// product fee aliases
	"product_fee":       "product_fee_percent",
	"fee":               "product_fee_percent",
	"fee_percent":       "product_fee_percent",
	"arrangement_fee":   "product_fee_percent",
	"facility_fee":      "product_fee_percent",

	// admin fee aliases
	"admin":             "admin_fee",
	"application_fee":   "admin_fee",
	"assessment_fee":    "admin_fee",

	// proc fee aliases
	"proc_fee":          "proc_fee_percent",
	"proc":              "proc_fee_percent",
	"procuration_fee":   "proc_fee_percent",
	"commission":        "proc_fee_percent",

	// LTV bound aliases
	"ltv_min":           "min_ltv",
	"minimum_ltv":       "min_ltv",
	"ltv_max":           "max_ltv",
	"maximum_ltv":       "max_ltv",
	"ltv":               "max_ltv",

	// loan bound aliases
	"loan_min":          "min_loan",
	"minimum_loan":      "min_loan",
	"loan_max":          "max_loan",
	"maximum_loan":      "max_loan",

	// term bound aliases
	"term_min":          "min_term",
	"minimum_term":      "min_term",
	"term_max":          "max_term",
	"maximum_term":      "max_term",

	// family aliases
	"product_family":    "family",
	"range":             "family",
	"table":             "family",

	// charge aliases
	"charge":            "charge_type",
	"lien":              "charge_type",

	// retention aliases
	"is_retention":      "retention",
	"retention_product": "retention",
}

// RateCardParser parses rate card CSV content into canonical RateRows.
type RateCardParser struct {
	classifier    Classifier
	columnMapping map[string]int
}

// NewRateCardParser creates a rate card parser with the default classifier.
func NewRateCardParser() *RateCardParser {
	return &RateCardParser{classifier: DefaultClassifier{}}
}

// NewRateCardParserWith creates a rate card parser using a custom classifier.
func NewRateCardParserWith(c Classifier) *RateCardParser {
	return &RateCardParser{classifier: c}
}

// Parse parses CSV content into RateRows tagged with setKey and source.
// Row-level problems are collected per line; only structural problems
// (no header, missing required columns) abort the parse.
func (p *RateCardParser) Parse(content, setKey, sourceObject string) ([]*models.RateRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCard}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header, rateColumnAliases, rateRequiredColumns); err != nil {
		return nil, []error{err}
	}

	var rows []*models.RateRow
	var parseErrors []error
	ingestedAt := time.Now().UTC()
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		row := p.parseRow(record, setKey, sourceObject, ingestedAt)
		if strings.TrimSpace(row.Product) == "" {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, models.ErrEmptyProductName))
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// buildColumnMapping maps canonical column names to header indices.
func (p *RateCardParser) buildColumnMapping(header []string, aliases map[string]string, required []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := normalizeKey(col)
		if alias, ok := aliases[normalized]; ok {
			normalized = alias
		}
		if _, exists := p.columnMapping[normalized]; !exists {
			p.columnMapping[normalized] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := p.columnMapping[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow converts one CSV record to a canonical RateRow. Numeric fields
// degrade to unavailable figures rather than erroring.
func (p *RateCardParser) parseRow(record []string, setKey, sourceObject string, ingestedAt time.Time) *models.RateRow {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	tierText := get("tier")
	product := get("product")
	chargeText := get("charge_type")
	familyText := get("family")

	row := &models.RateRow{
		ID:       uuid.NewString(),
		SetKey:   setKey,
		Scope:    get("scope"),
		TierText: tierText,
		Tier:     ExtractTier(tierText),
		Product:  product,
		Family:   p.classifier.Family(familyText, product),

		RateText: get("rate"),
		Rate:     models.ParseFigure(get("rate")),

		ProductFeePercent: models.ParseFigure(get("product_fee_percent")),
		AdminFee:          models.ParseFigure(get("admin_fee")),
		ProcFeePercent:    models.ParseFigure(get("proc_fee_percent")),

		MinLTV:  models.ParseFigure(get("min_ltv")),
		MaxLTV:  models.ParseFigure(get("max_ltv")),
		MinLoan: models.ParseFigure(get("min_loan")),
		MaxLoan: models.ParseFigure(get("max_loan")),
		MinTerm: models.ParseFigure(get("min_term")),
		MaxTerm: models.ParseFigure(get("max_term")),

		IsTracker:    IsTracker(product),
		ChargeType:   p.classifier.Charge(chargeText, product, get("type")),
		IsRetention:  p.classifier.Retention(chargeText, product, get("retention")),
		IngestedAt:   ingestedAt,
		SourceObject: sourceObject,
	}

	return row
}
