// Package models defines the data structures for the broker quote engine.
package models

import (
	"strconv"
	"strings"
	"time"
)

// ProductFamily identifies which rate table a row belongs to. Bridging rate
// cards carry an explicit family key; it is never inferred from pricing.
type ProductFamily string

const (
	FamilyBTL    ProductFamily = "btl"
	FamilyBridge ProductFamily = "bridge"
	FamilyFusion ProductFamily = "fusion"
)

// ChargeType is the lien-priority classification for bridging products.
type ChargeType string

const (
	ChargeTypeAll    ChargeType = "all"
	ChargeTypeFirst  ChargeType = "first"
	ChargeTypeSecond ChargeType = "second"
)

// IsValid reports whether the charge type is a known value.
func (c ChargeType) IsValid() bool {
	switch c {
	case ChargeTypeAll, ChargeTypeFirst, ChargeTypeSecond:
		return true
	}
	return false
}

// RateRow is the canonical, post-normalization shape of a lender rate record.
// Source rate cards use inconsistent column aliases; ingestion maps them to
// this shape once, and classification (retention, charge type, family) is
// tagged here rather than re-derived at filter time.
type RateRow struct {
	ID       string        `json:"id" db:"id"`
	SetKey   string        `json:"set_key" db:"set_key"`
	Scope    string        `json:"scope" db:"scope"`
	TierText string        `json:"tier_text" db:"tier_text"`
	Tier     int           `json:"tier" db:"tier"` // 0 when no numeric tier could be extracted
	Product  string        `json:"product" db:"product"`
	Family   ProductFamily `json:"family" db:"family"`

	RateText string `json:"rate_text" db:"rate_text"`
	Rate     Figure `json:"rate" db:"rate"`

	ProductFeePercent Figure `json:"product_fee_percent" db:"product_fee_percent"`
	AdminFee          Figure `json:"admin_fee" db:"admin_fee"`
	ProcFeePercent    Figure `json:"proc_fee_percent" db:"proc_fee_percent"`

	MinLTV  Figure `json:"min_ltv" db:"min_ltv"`
	MaxLTV  Figure `json:"max_ltv" db:"max_ltv"`
	MinLoan Figure `json:"min_loan" db:"min_loan"`
	MaxLoan Figure `json:"max_loan" db:"max_loan"`
	MinTerm Figure `json:"min_term" db:"min_term"`
	MaxTerm Figure `json:"max_term" db:"max_term"`

	IsTracker    bool       `json:"is_tracker" db:"is_tracker"`
	ChargeType   ChargeType `json:"charge_type" db:"charge_type"`
	IsRetention  bool       `json:"is_retention" db:"is_retention"`
	IngestedAt   time.Time  `json:"ingested_at" db:"ingested_at"`
	SourceObject string     `json:"source_object,omitempty" db:"source_object"`
}

// DedupeKey is the composite identity used when collapsing duplicate rows
// after filtering.
func (r *RateRow) DedupeKey() string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(r.Product)),
		r.RateText,
		strings.ToLower(strings.TrimSpace(r.Scope)),
		r.TierText,
		formatFigure(r.ProductFeePercent),
	}, "|")
}

func formatFigure(f Figure) string {
	if !f.Valid {
		return "-"
	}
	return strconv.FormatFloat(f.Value, 'g', -1, 64)
}

// RetentionBrackets defines the two retention LTV bands the product range
// supports: 65 covers max LTV up to 65, 75 covers above 65 up to 75.
var RetentionBrackets = map[int][2]float64{
	65: {0, 65},
	75: {65, 75},
}

// InRetentionBracket reports whether maxLTV sits inside the selected
// retention bracket. Unknown bracket selections never match.
func InRetentionBracket(bracket int, maxLTV Figure) bool {
	bounds, ok := RetentionBrackets[bracket]
	if !ok || !maxLTV.Valid {
		return false
	}
	return maxLTV.Value > bounds[0] && maxLTV.Value <= bounds[1]
}
