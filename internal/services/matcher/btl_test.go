package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/overlay"
)

// mockRateRow creates a buy-to-let rate row with default values.
func mockRateRow(overrides map[string]interface{}) *models.RateRow {
	row := &models.RateRow{
		ID:                "row-001",
		SetKey:            "demo",
		Scope:             "Standard",
		TierText:          "1",
		Tier:              1,
		Product:           "5 Year Fix",
		Family:            models.FamilyBTL,
		RateText:          "5.19%",
		Rate:              models.Num(5.19),
		ProductFeePercent: models.Num(5),
		AdminFee:          models.Num(150),
		MaxLTV:            models.Num(75),
		ChargeType:        models.ChargeTypeAll,
	}

	if v, ok := overrides["id"]; ok {
		row.ID = v.(string)
	}
	if v, ok := overrides["scope"]; ok {
		row.Scope = v.(string)
	}
	if v, ok := overrides["tier"]; ok {
		row.Tier = v.(int)
	}
	if v, ok := overrides["tier_text"]; ok {
		row.TierText = v.(string)
	}
	if v, ok := overrides["product"]; ok {
		row.Product = v.(string)
	}
	if v, ok := overrides["family"]; ok {
		row.Family = v.(models.ProductFamily)
	}
	if v, ok := overrides["rate"]; ok {
		row.Rate = models.Num(v.(float64))
	}
	if v, ok := overrides["rate_text"]; ok {
		row.RateText = v.(string)
	}
	if v, ok := overrides["fee"]; ok {
		row.ProductFeePercent = models.Num(v.(float64))
	}
	if v, ok := overrides["max_ltv"]; ok {
		row.MaxLTV = models.Num(v.(float64))
	}
	if v, ok := overrides["is_retention"]; ok {
		row.IsRetention = v.(bool)
	}
	if v, ok := overrides["charge_type"]; ok {
		row.ChargeType = v.(models.ChargeType)
	}

	return row
}

func btlInput(overrides map[string]interface{}) BTLInput {
	in := BTLInput{
		Tier:        1,
		Scope:       "Standard",
		ProductType: "5 Year Fix",
		Retention:   models.RetentionNo,
	}

	if v, ok := overrides["tier"]; ok {
		in.Tier = v.(int)
	}
	if v, ok := overrides["scope"]; ok {
		in.Scope = v.(string)
	}
	if v, ok := overrides["product_type"]; ok {
		in.ProductType = v.(string)
	}
	if v, ok := overrides["retention"]; ok {
		in.Retention = v.(models.RetentionChoice)
	}
	if v, ok := overrides["retention_ltv"]; ok {
		in.RetentionLTV = v.(int)
	}
	if v, ok := overrides["flat_above_commercial"]; ok {
		in.FlatAboveCommercial = v.(bool)
	}

	return in
}

func TestBTLMatch_EmptyProductTypeReturnsEmpty(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{mockRateRow(nil)}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"product_type": ""}))

	assert.NotNil(t, matched)
	assert.Empty(t, matched, "No product selection is a defined empty state")
}

func TestBTLMatch_BasicMatch(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{mockRateRow(nil)}

	matched := filter.Match(rows, btlInput(nil))

	assert.Len(t, matched, 1)
}

func TestBTLMatch_ExcludesOtherFamilies(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"family": models.FamilyBridge, "product": "5 Year Fix"}),
		mockRateRow(map[string]interface{}{"family": models.FamilyFusion, "product": "5 Year Fix"}),
	}

	matched := filter.Match(rows, btlInput(nil))

	assert.Empty(t, matched)
}

func TestBTLMatch_TierMustMatch(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "t1", "tier": 1}),
		mockRateRow(map[string]interface{}{"id": "t2", "tier": 2, "rate": 5.59}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"tier": 2}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "t2", matched[0].ID)
}

func TestBTLMatch_TierTextFallback(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"tier": 0, "tier_text": "2"}),
	}

	assert.Len(t, filter.Match(rows, btlInput(map[string]interface{}{"tier": 2})), 1)
	assert.Empty(t, filter.Match(rows, btlInput(map[string]interface{}{"tier": 1})))
}

func TestBTLMatch_ProductTermMustMatch(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "fix2", "product": "2 Year Fix", "rate": 5.49}),
		mockRateRow(map[string]interface{}{"id": "fix5", "product": "5 Year Fix"}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"product_type": "2 Year Fix"}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "fix2", matched[0].ID)
}

func TestBTLMatch_ProductFamilyMustMatch(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "fix", "product": "2 Year Fix", "rate": 5.49}),
		mockRateRow(map[string]interface{}{"id": "tracker", "product": "2 Year Tracker", "rate": 5.74}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"product_type": "2 Year Tracker"}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "tracker", matched[0].ID)
}

func TestBTLMatch_CommercialExcludesSemiCommercial(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "comm", "scope": "Commercial", "fee": 7.0}),
		mockRateRow(map[string]interface{}{"id": "semi", "scope": "Semi-Commercial", "fee": 7.0, "rate": 6.09}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"scope": "Commercial"}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "comm", matched[0].ID)
}

func TestBTLMatch_SemiCommercialSelectsSemiRows(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "semi", "scope": "Semi-Commercial", "fee": 7.0}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{"scope": "Semi-Commercial"}))

	assert.Len(t, matched, 1)
}

func TestBTLMatch_RetentionYesOnlyRetentionRows(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "std"}),
		mockRateRow(map[string]interface{}{"id": "ret65", "is_retention": true, "max_ltv": 65.0, "fee": 2.0, "rate": 5.99}),
		mockRateRow(map[string]interface{}{"id": "ret75", "is_retention": true, "max_ltv": 75.0, "fee": 2.0, "rate": 6.19}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{
		"retention":     models.RetentionYes,
		"retention_ltv": 65,
	}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "ret65", matched[0].ID)
}

func TestBTLMatch_RetentionNoExcludesRetentionRows(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "std"}),
		mockRateRow(map[string]interface{}{"id": "ret", "is_retention": true, "rate": 5.99}),
	}

	matched := filter.Match(rows, btlInput(nil))

	assert.Len(t, matched, 1)
	assert.Equal(t, "std", matched[0].ID)
}

func TestBTLMatch_RetentionBracket75ExcludesLowerBand(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "ret65", "is_retention": true, "max_ltv": 65.0, "fee": 2.0}),
		mockRateRow(map[string]interface{}{"id": "ret75", "is_retention": true, "max_ltv": 75.0, "fee": 2.0, "rate": 6.19}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{
		"retention":     models.RetentionYes,
		"retention_ltv": 75,
	}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "ret75", matched[0].ID, "The 75 bracket covers (65, 75] only")
}

func TestBTLMatch_FlatAboveCommercialOverridesRetention(t *testing.T) {
	ov := overlay.Default()
	ov.FlatAboveCommercial.Enabled = true
	filter := NewBTLFilter(ov)

	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "low", "scope": "Semi-Commercial", "tier": 2, "max_ltv": 65.0, "fee": 7.0}),
		mockRateRow(map[string]interface{}{"id": "high", "scope": "Semi-Commercial", "tier": 2, "max_ltv": 75.0, "fee": 7.0, "rate": 6.29}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{
		"scope":                 "Semi-Commercial",
		"tier":                  2,
		"flat_above_commercial": true,
	}))

	assert.Len(t, matched, 1)
	assert.Equal(t, "low", matched[0].ID, "Tier 2 band caps max LTV at 65")
}

func TestBTLMatch_FlatAboveCommercialIgnoredWhenDisabled(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"scope": "Semi-Commercial", "tier": 2, "max_ltv": 75.0, "fee": 7.0}),
	}

	matched := filter.Match(rows, btlInput(map[string]interface{}{
		"scope":                 "Semi-Commercial",
		"tier":                  2,
		"flat_above_commercial": true,
	}))

	assert.Len(t, matched, 1, "Disabled rule falls back to the standard gate")
}

func TestBTLMatch_DeduplicatesIdenticalRows(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "a"}),
		mockRateRow(map[string]interface{}{"id": "b"}),
	}

	matched := filter.Match(rows, btlInput(nil))

	assert.Len(t, matched, 1)
	assert.Equal(t, "a", matched[0].ID, "First encountered row wins")
}

func TestBTLMatch_SortsByRateAscending(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "high", "rate": 5.89, "rate_text": "5.89%"}),
		mockRateRow(map[string]interface{}{"id": "low", "rate": 5.19, "rate_text": "5.19%"}),
		mockRateRow(map[string]interface{}{"id": "mid", "rate": 5.49, "rate_text": "5.49%"}),
	}

	matched := filter.Match(rows, btlInput(nil))

	assert.Len(t, matched, 3)
	assert.Equal(t, "low", matched[0].ID)
	assert.Equal(t, "mid", matched[1].ID)
	assert.Equal(t, "high", matched[2].ID)
}

func TestBTLMatch_FeeColumnFiltersDisallowedFees(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	rows := []*models.RateRow{
		mockRateRow(map[string]interface{}{"id": "fee5", "fee": 5.0}),
		mockRateRow(map[string]interface{}{"id": "fee7", "fee": 7.0, "rate": 5.09, "rate_text": "5.09%"}),
	}

	matched := filter.Match(rows, btlInput(nil))

	assert.Len(t, matched, 1)
	assert.Equal(t, "fee5", matched[0].ID, "7 percent is not in the standard fee column")
}

func TestBTLMatch_AbsentFeePassesColumnFilter(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	row := mockRateRow(nil)
	row.ProductFeePercent = models.Unavailable()

	matched := filter.Match([]*models.RateRow{row}, btlInput(nil))

	assert.Len(t, matched, 1)
}

func TestBTLMatch_Idempotent(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	in := btlInput(nil)

	build := func() []*models.RateRow {
		return []*models.RateRow{
			mockRateRow(map[string]interface{}{"id": "a", "rate": 5.49, "rate_text": "5.49%"}),
			mockRateRow(map[string]interface{}{"id": "b", "rate": 5.19, "rate_text": "5.19%"}),
		}
	}

	first := filter.Match(build(), in)
	second := filter.Match(build(), in)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestMaxAvailableLTV_FromMatchedRows(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())
	matched := []*models.RateRow{
		mockRateRow(map[string]interface{}{"max_ltv": 65.0}),
		mockRateRow(map[string]interface{}{"max_ltv": 75.0}),
	}

	best := filter.MaxAvailableLTV(matched, btlInput(nil))

	assert.True(t, best.Valid)
	assert.Equal(t, 75.0, best.Value)
}

func TestMaxAvailableLTV_FlatAboveCommercialCeiling(t *testing.T) {
	ov := overlay.Default()
	ov.FlatAboveCommercial.Enabled = true
	filter := NewBTLFilter(ov)

	best := filter.MaxAvailableLTV(nil, btlInput(map[string]interface{}{
		"scope":                 "Semi-Commercial",
		"tier":                  3,
		"flat_above_commercial": true,
	}))

	assert.True(t, best.Valid)
	assert.Equal(t, 70.0, best.Value)
}

func TestMaxAvailableLTV_NoMatches(t *testing.T) {
	filter := NewBTLFilter(overlay.Default())

	assert.False(t, filter.MaxAvailableLTV(nil, btlInput(nil)).Valid)
}
