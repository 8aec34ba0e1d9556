package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"broker-quote-engine/internal/models"
)

func TestCriteriaCardParser_ValidCard(t *testing.T) {
	content := `Question Key,Question,Option,Tier,Info,Order
property_type,What is the property type?,Standard residential,1,Houses and flats,1
property_type,What is the property type?,Flat above commercial,2,,1
adverse_credit,Any adverse credit?,No,1,,2`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "demo-set")

	assert.Empty(t, errs)
	assert.Len(t, rows, 3)

	row := rows[0]
	assert.Equal(t, "demo-set", row.CriteriaSet)
	assert.Equal(t, "property_type", row.QuestionKey)
	assert.Equal(t, "What is the property type?", row.QuestionLabel)
	assert.Equal(t, "Standard residential", row.OptionLabel)
	assert.Equal(t, 1, row.Tier)
	assert.Equal(t, "Houses and flats", row.InfoTip)
	assert.Equal(t, 1, row.DisplayOrder)
	assert.NotEmpty(t, row.ID)
}

func TestCriteriaCardParser_QuestionKeyNormalized(t *testing.T) {
	content := `Question Key,Question,Option
Flat Above Commercial,Is the flat above commercial premises?,Yes`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "demo-set")

	assert.Empty(t, errs)
	assert.Equal(t, "flat_above_commercial", rows[0].QuestionKey)
}

func TestCriteriaCardParser_FlagResolution(t *testing.T) {
	content := `Question Key,Question,Option
flat_above_commercial,Is the flat above commercial premises?,Yes
flat_above_shop,Is the flat above a shop?,Yes
adverse_credit,Any adverse credit?,No
bedroom_count,How many bedrooms?,Three`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "demo-set")

	assert.Empty(t, errs)
	assert.Equal(t, models.FlagFlatAboveCommercial, rows[0].Flag)
	assert.Equal(t, models.FlagFlatAboveCommercial, rows[1].Flag, "Alias key carries the same flag")
	assert.Equal(t, models.FlagAdverseCredit, rows[2].Flag)
	assert.Equal(t, models.FlagNone, rows[3].Flag, "Unknown keys carry no flag")
}

func TestCriteriaCardParser_MissingColumns(t *testing.T) {
	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse("Question,Tier\nSomething,1", "demo-set")

	assert.Nil(t, rows)
	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingColumns)
}

func TestCriteriaCardParser_MissingOptionCollected(t *testing.T) {
	content := `Question Key,Question,Option
adverse_credit,Any adverse credit?,
adverse_credit,Any adverse credit?,No`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "demo-set")

	assert.Len(t, rows, 1)
	assert.Len(t, errs, 1)
}

func TestCriteriaCardParser_TierTextFallback(t *testing.T) {
	content := `Question Key,Question,Option,Tier
adverse_credit,Any adverse credit?,Heavy,Tier 3
adverse_credit,Any adverse credit?,Unknown,Prime`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "demo-set")

	assert.Empty(t, errs)
	assert.Equal(t, 3, rows[0].Tier)
	assert.Equal(t, 0, rows[1].Tier, "Non-numeric tiers ingest as 0 and never error")
}

func TestCriteriaCardParser_ExplicitRowSet(t *testing.T) {
	content := `Set,Question Key,Question,Option
bridging-2026,exit_strategy,What is the exit strategy?,Sale`

	parser := NewCriteriaCardParser()
	rows, errs := parser.Parse(content, "fallback-set")

	assert.Empty(t, errs)
	assert.Equal(t, "bridging-2026", rows[0].CriteriaSet, "Explicit set column wins over the fallback")
}
