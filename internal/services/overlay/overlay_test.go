package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"broker-quote-engine/internal/models"
)

func TestDefault_FeeColumns(t *testing.T) {
	ov := Default()

	assert.Equal(t, []float64{2, 3, 5}, ov.FeeColumns[ColumnStandard])
	assert.Equal(t, []float64{2, 3, 5, 7}, ov.FeeColumns[ColumnCommercial])
	assert.Equal(t, []float64{2}, ov.FeeColumns[ColumnRetentionCore])
	assert.Equal(t, []float64{3, 5}, ov.FeeColumns[ColumnRetentionSpecialist])
}

func TestResolve_NilBlob(t *testing.T) {
	ov := Resolve(nil)

	assert.Equal(t, Default().FeeColumns, ov.FeeColumns)
	assert.Equal(t, 1.0, ov.BrokerCommission.DefaultPercent)
}

func TestResolve_MalformedBlob(t *testing.T) {
	ov := Resolve([]byte("{not json"))

	assert.Equal(t, Default().FeeColumns, ov.FeeColumns)
}

func TestResolve_MergesOverDefaults(t *testing.T) {
	ov := Resolve([]byte(`{
		"fee_columns": {"standard": [2, 4]},
		"broker_commission": {"default_percent": 0.75}
	}`))

	assert.Equal(t, []float64{2, 4}, ov.FeeColumns[ColumnStandard])
	assert.Equal(t, []float64{2, 3, 5, 7}, ov.FeeColumns[ColumnCommercial], "Untouched columns keep defaults")
	assert.Equal(t, 0.75, ov.BrokerCommission.DefaultPercent)
	assert.Equal(t, 0.25, ov.BrokerCommission.TolerancePercent, "Tolerance keeps default")
}

func TestResolve_FlatAboveCommercialFillsGaps(t *testing.T) {
	ov := Resolve([]byte(`{"flat_above_commercial": {"enabled": true}}`))

	assert.True(t, ov.FlatAboveCommercial.Enabled)
	assert.Equal(t, 65.0, ov.FlatAboveCommercial.Tier2MaxLTV)
	assert.Equal(t, 70.0, ov.FlatAboveCommercial.Tier3MaxLTV)
	assert.NotEmpty(t, ov.FlatAboveCommercial.ScopeTokens)
}

func TestFeeColumnKey_Retention(t *testing.T) {
	assert.Equal(t, ColumnRetentionCore, FeeColumnKey("Standard", models.RetentionYes, models.RangeCore))
	assert.Equal(t, ColumnRetentionSpecialist, FeeColumnKey("Standard", models.RetentionYes, models.RangeSpecialist))
}

func TestFeeColumnKey_Scope(t *testing.T) {
	assert.Equal(t, ColumnStandard, FeeColumnKey("Standard", models.RetentionNo, ""))
	assert.Equal(t, ColumnCommercial, FeeColumnKey("Commercial", models.RetentionNo, ""))
	assert.Equal(t, ColumnSemiCommercial, FeeColumnKey("Semi-Commercial", models.RetentionNo, ""))
	assert.Equal(t, ColumnSemiCommercial, FeeColumnKey("semi commercial", models.RetentionNo, ""))
}

func TestFeeColumnsFor_UnknownKeyFallsBack(t *testing.T) {
	ov := Default()

	assert.Equal(t, ov.FeeColumns[ColumnStandard], ov.FeeColumnsFor("no_such_column"))
}

func TestClampCommission(t *testing.T) {
	ov := Default()

	assert.Equal(t, 1.0, ov.ClampCommission(0), "Zero means use the default")
	assert.Equal(t, 1.1, ov.ClampCommission(1.1))
	assert.Equal(t, 1.25, ov.ClampCommission(2.0), "Clamped to the upper band")
	assert.Equal(t, 0.75, ov.ClampCommission(0.1), "Clamped to the lower band")
}

func TestTierBandContains(t *testing.T) {
	rule := &FlatAboveCommercialRule{Enabled: true, Tier2MaxLTV: 65, Tier3MaxLTV: 70}

	assert.True(t, rule.TierBandContains(2, models.Num(65)))
	assert.False(t, rule.TierBandContains(2, models.Num(70)))
	assert.True(t, rule.TierBandContains(3, models.Num(70)))
	assert.False(t, rule.TierBandContains(3, models.Num(65)), "Tier 3 band sits strictly above the tier 2 ceiling")
	assert.True(t, rule.TierBandContains(1, models.Num(75)), "Unbanded tiers are unrestricted")
	assert.False(t, rule.TierBandContains(2, models.Unavailable()))
	assert.False(t, rule.TierBandContains(3, models.Unavailable()))
	assert.True(t, rule.TierBandContains(1, models.Unavailable()), "Unbanded tiers pass rows without a numeric max LTV")
	assert.True(t, rule.TierBandContains(4, models.Unavailable()))
}

func TestMatchesFlatScope(t *testing.T) {
	rule := &FlatAboveCommercialRule{Enabled: true, ScopeTokens: []string{"semi commercial"}}

	assert.True(t, rule.MatchesFlatScope("Semi-Commercial"))
	assert.False(t, rule.MatchesFlatScope("Standard"))

	rule.Enabled = false
	assert.False(t, rule.MatchesFlatScope("Semi-Commercial"), "Disabled rule never matches")
}

func TestNormalizeScope(t *testing.T) {
	assert.Equal(t, "semi commercial", NormalizeScope("Semi-Commercial"))
	assert.Equal(t, "semi commercial", NormalizeScope("  semi_commercial "))
	assert.Equal(t, "standard", NormalizeScope("Standard"))
	assert.Equal(t, "", NormalizeScope("  "))
}
