package matcher

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/overlay"
	"broker-quote-engine/internal/utils"
)

// BTLInput carries the selections a buy-to-let matching pass filters against.
type BTLInput struct {
	Tier          int
	Scope         string
	ProductType   string
	Retention     models.RetentionChoice
	RetentionLTV  int
	SelectedRange models.RangeSelection

	// FlatAboveCommercial is true when the criteria question flagged
	// flat-above-commercial was answered "Yes".
	FlatAboveCommercial bool
}

// BTLFilter filters, dedupes and orders buy-to-let rate rows.
type BTLFilter struct {
	overlay *overlay.Overlay
	logger  *zap.Logger
}

// NewBTLFilter creates a buy-to-let filter bound to a resolved overlay.
func NewBTLFilter(ov *overlay.Overlay) *BTLFilter {
	return &BTLFilter{overlay: ov, logger: utils.GetLogger()}
}

// Match runs the buy-to-let eligibility policy over the catalog and returns
// ordered, deduplicated matched rates. An empty product type selection is a
// defined no-selection state and always yields an empty result.
func (f *BTLFilter) Match(rows []*models.RateRow, in BTLInput) []*models.RateRow {
	if strings.TrimSpace(in.ProductType) == "" {
		return []*models.RateRow{}
	}

	matched := make([]*models.RateRow, 0, len(rows))
	for _, row := range rows {
		if row == nil || row.Family != models.FamilyBTL {
			continue
		}
		if !tierMatches(row, in.Tier) {
			continue
		}
		if !productMatches(in.ProductType, row.Product) {
			continue
		}
		if !scopeMatches(in.Scope, row.Scope) {
			continue
		}
		if !f.ltvGatePasses(row, in) {
			continue
		}
		matched = append(matched, row)
	}

	matched = dedupeRows(matched)
	sortByRate(matched)
	matched = f.filterByFeeColumn(matched, in)

	f.logger.Debug("BTL match pass complete",
		zap.Int("catalog", len(rows)),
		zap.Int("matched", len(matched)),
		zap.Int("tier", in.Tier),
		zap.String("scope", in.Scope),
	)

	return matched
}

// MaxAvailableLTV returns the maximum LTV the active rules allow: the
// flat-above-commercial ceiling when that rule applies, otherwise the highest
// max LTV among matched rows.
func (f *BTLFilter) MaxAvailableLTV(matched []*models.RateRow, in BTLInput) models.Figure {
	fac := f.overlay.FlatAboveCommercial
	if in.FlatAboveCommercial && fac.MatchesFlatScope(in.Scope) {
		return models.Num(fac.CeilingForTier(in.Tier))
	}

	best := models.Unavailable()
	for _, row := range matched {
		if row.MaxLTV.Valid && (!best.Valid || row.MaxLTV.Value > best.Value) {
			best = row.MaxLTV
		}
	}
	return best
}

// ltvGatePasses applies the retention/LTV gate. The flat-above-commercial
// override takes precedence over the standard retention policy when its rule
// is enabled, its scope matches and the criteria answer was "Yes".
func (f *BTLFilter) ltvGatePasses(row *models.RateRow, in BTLInput) bool {
	fac := f.overlay.FlatAboveCommercial
	if in.FlatAboveCommercial && fac.MatchesFlatScope(in.Scope) {
		return fac.TierBandContains(in.Tier, row.MaxLTV)
	}

	if in.Retention == models.RetentionYes {
		return row.IsRetention && models.InRetentionBracket(in.RetentionLTV, row.MaxLTV)
	}
	return !row.IsRetention
}

// filterByFeeColumn keeps rows whose product fee is absent or sits in the
// allowed fee set for the resolved column key.
func (f *BTLFilter) filterByFeeColumn(rows []*models.RateRow, in BTLInput) []*models.RateRow {
	key := overlay.FeeColumnKey(in.Scope, in.Retention, in.SelectedRange)
	allowed := f.overlay.FeeColumnsFor(key)

	kept := rows[:0]
	for _, row := range rows {
		if !row.ProductFeePercent.Valid {
			kept = append(kept, row)
			continue
		}
		for _, fee := range allowed {
			if row.ProductFeePercent.Value == fee {
				kept = append(kept, row)
				break
			}
		}
	}
	return kept
}

// tierMatches extracts a numeric tier from the row and compares it to the
// current tier, falling back to case-insensitive string equality when no
// number can be extracted.
func tierMatches(row *models.RateRow, tier int) bool {
	if row.Tier > 0 {
		return row.Tier == tier
	}
	return strings.EqualFold(strings.TrimSpace(row.TierText), strconv.Itoa(tier))
}

// dedupeRows collapses rows sharing the composite dedupe key, keeping the
// first encountered.
func dedupeRows(rows []*models.RateRow) []*models.RateRow {
	seen := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		key := row.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept
}

// sortByRate orders rows ascending by numeric rate, falling back to a lexical
// compare of the raw rate text when either side is non-numeric.
func sortByRate(rows []*models.RateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Rate.Valid && b.Rate.Valid {
			return a.Rate.Value < b.Rate.Value
		}
		return a.RateText < b.RateText
	})
}
