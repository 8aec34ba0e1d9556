// Package overlay resolves the runtime-tunable pricing rule overlay.
//
// The overlay is a JSON blob held in the app_settings store. It is resolved
// once per quoting pass and injected into the filters and calculator; the
// core never reads settings ambiently. Absent or malformed blobs fall back
// to the hardcoded defaults without raising an error.
package overlay

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/utils"
)

// Fee column keys. A column is the set of product-fee percentages a rate
// card segment is allowed to carry.
const (
	ColumnStandard            = "standard"
	ColumnCommercial          = "commercial"
	ColumnSemiCommercial      = "semi_commercial"
	ColumnRetentionCore       = "retention_core"
	ColumnRetentionSpecialist = "retention_specialist"
)

// FlatAboveCommercialRule replaces the standard maximum-LTV lookup with
// tier-banded ceilings for flat-above-commercial cases.
type FlatAboveCommercialRule struct {
	Enabled     bool     `json:"enabled"`
	ScopeTokens []string `json:"scope_tokens"`
	Tier2MaxLTV float64  `json:"tier2_max_ltv"`
	Tier3MaxLTV float64  `json:"tier3_max_ltv"`
}

// BrokerCommissionRule carries the commission default and the tolerance band
// a broker override may move within.
type BrokerCommissionRule struct {
	DefaultPercent   float64 `json:"default_percent"`
	TolerancePercent float64 `json:"tolerance_percent"`
}

// Overlay is the resolved rule overlay.
type Overlay struct {
	FeeColumns          map[string][]float64    `json:"fee_columns"`
	FlatAboveCommercial FlatAboveCommercialRule `json:"flat_above_commercial"`
	BrokerCommission    BrokerCommissionRule    `json:"broker_commission"`
}

// Default returns the hardcoded overlay used when no stored overlay resolves.
func Default() *Overlay {
	return &Overlay{
		FeeColumns: map[string][]float64{
			ColumnStandard:            {2, 3, 5},
			ColumnCommercial:          {2, 3, 5, 7},
			ColumnSemiCommercial:      {2, 3, 5, 7},
			ColumnRetentionCore:       {2},
			ColumnRetentionSpecialist: {3, 5},
		},
		FlatAboveCommercial: FlatAboveCommercialRule{
			Enabled:     false,
			ScopeTokens: []string{"semi commercial", "semi-commercial"},
			Tier2MaxLTV: 65,
			Tier3MaxLTV: 70,
		},
		BrokerCommission: BrokerCommissionRule{
			DefaultPercent:   1.0,
			TolerancePercent: 0.25,
		},
	}
}

// Resolve parses a stored overlay blob, merging it over the defaults. A nil
// or malformed blob resolves to the defaults.
func Resolve(raw []byte) *Overlay {
	resolved := Default()
	if len(raw) == 0 {
		return resolved
	}

	var stored Overlay
	if err := json.Unmarshal(raw, &stored); err != nil {
		utils.GetLogger().Warn("Malformed pricing overlay, using defaults", zap.Error(err))
		return resolved
	}

	for key, fees := range stored.FeeColumns {
		if len(fees) > 0 {
			resolved.FeeColumns[key] = fees
		}
	}
	if len(stored.FlatAboveCommercial.ScopeTokens) > 0 || stored.FlatAboveCommercial.Enabled {
		rule := stored.FlatAboveCommercial
		if len(rule.ScopeTokens) == 0 {
			rule.ScopeTokens = resolved.FlatAboveCommercial.ScopeTokens
		}
		if rule.Tier2MaxLTV <= 0 {
			rule.Tier2MaxLTV = resolved.FlatAboveCommercial.Tier2MaxLTV
		}
		if rule.Tier3MaxLTV <= 0 {
			rule.Tier3MaxLTV = resolved.FlatAboveCommercial.Tier3MaxLTV
		}
		resolved.FlatAboveCommercial = rule
	}
	if stored.BrokerCommission.DefaultPercent > 0 {
		resolved.BrokerCommission.DefaultPercent = stored.BrokerCommission.DefaultPercent
	}
	if stored.BrokerCommission.TolerancePercent > 0 {
		resolved.BrokerCommission.TolerancePercent = stored.BrokerCommission.TolerancePercent
	}

	return resolved
}

// FeeColumnKey resolves the fee column for a scope / retention / range
// combination. Retention products use their own columns split by range.
func FeeColumnKey(scope string, retention models.RetentionChoice, selectedRange models.RangeSelection) string {
	if retention == models.RetentionYes {
		if selectedRange == models.RangeSpecialist {
			return ColumnRetentionSpecialist
		}
		return ColumnRetentionCore
	}

	normalized := NormalizeScope(scope)
	switch {
	case strings.Contains(normalized, "semi") && strings.Contains(normalized, "commercial"):
		return ColumnSemiCommercial
	case strings.Contains(normalized, "commercial"):
		return ColumnCommercial
	}
	return ColumnStandard
}

// FeeColumnsFor returns the allowed fee percentages for a column key, falling
// back to the standard column for unknown keys.
func (o *Overlay) FeeColumnsFor(key string) []float64 {
	if fees, ok := o.FeeColumns[key]; ok && len(fees) > 0 {
		return fees
	}
	return o.FeeColumns[ColumnStandard]
}

// MatchesFlatScope reports whether the flat-above-commercial rule applies to
// the given product scope.
func (r *FlatAboveCommercialRule) MatchesFlatScope(scope string) bool {
	if !r.Enabled {
		return false
	}
	normalized := NormalizeScope(scope)
	for _, token := range r.ScopeTokens {
		if token == "" {
			continue
		}
		if strings.Contains(normalized, NormalizeScope(token)) {
			return true
		}
	}
	return false
}

// TierBandContains reports whether a row's max LTV falls inside the
// tier-banded bracket: Tier 2 up to the tier-2 ceiling, Tier 3 above it up
// to the tier-3 ceiling, any other tier unrestricted.
func (r *FlatAboveCommercialRule) TierBandContains(tier int, maxLTV models.Figure) bool {
	switch tier {
	case 2:
		return maxLTV.Valid && maxLTV.Value <= r.Tier2MaxLTV
	case 3:
		return maxLTV.Valid && maxLTV.Value > r.Tier2MaxLTV && maxLTV.Value <= r.Tier3MaxLTV
	}
	return true
}

// CeilingForTier returns the maximum LTV ceiling the rule imposes for a tier.
// Tiers outside the banded range use the 75 percent default.
func (r *FlatAboveCommercialRule) CeilingForTier(tier int) float64 {
	switch tier {
	case 2:
		return r.Tier2MaxLTV
	case 3:
		return r.Tier3MaxLTV
	}
	return 75
}

// ClampCommission clamps a broker commission override to the tolerance band
// around the default. A zero override means "use the default".
func (o *Overlay) ClampCommission(requested float64) float64 {
	rule := o.BrokerCommission
	if requested <= 0 {
		return rule.DefaultPercent
	}
	low := rule.DefaultPercent - rule.TolerancePercent
	high := rule.DefaultPercent + rule.TolerancePercent
	if requested < low {
		return low
	}
	if requested > high {
		return high
	}
	return requested
}

// NormalizeScope lowercases a scope string and collapses separator noise so
// scope comparisons are alias-tolerant.
func NormalizeScope(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
