package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLoanType(t *testing.T) {
	testCases := []struct {
		input    string
		expected LoanType
	}{
		{"max_gross", LoanTypeMaxGross},
		{"Maximum Gross", LoanTypeMaxGross},
		{"max-loan", LoanTypeMaxGross},
		{"gross", LoanTypeSpecificGross},
		{"Specific Net", LoanTypeSpecificNet},
		{"net", LoanTypeSpecificNet},
		{"LTV", LoanTypeSpecificLTV},
		{"net_required", LoanTypeNetRequired},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeLoanType(tc.input), "Input: %s", tc.input)
	}
}

func TestNormalizeChargeType(t *testing.T) {
	assert.Equal(t, ChargeTypeAll, NormalizeChargeType(""))
	assert.Equal(t, ChargeTypeAll, NormalizeChargeType("All"))
	assert.Equal(t, ChargeTypeSecond, NormalizeChargeType("2nd Charge"))
	assert.Equal(t, ChargeTypeSecond, NormalizeChargeType("Second"))
	assert.Equal(t, ChargeTypeFirst, NormalizeChargeType("1st charge"))
	assert.Equal(t, ChargeTypeFirst, NormalizeChargeType("First"))
}

func TestChargeType_IsValid(t *testing.T) {
	assert.True(t, ChargeTypeAll.IsValid())
	assert.True(t, ChargeTypeFirst.IsValid())
	assert.True(t, ChargeTypeSecond.IsValid())
	assert.False(t, ChargeType("third").IsValid())
}

func TestLoanType_IsValid(t *testing.T) {
	assert.True(t, LoanTypeMaxGross.IsValid())
	assert.True(t, LoanTypeNetRequired.IsValid())
	assert.False(t, LoanType("interest_only").IsValid())
}

func TestInRetentionBracket_65(t *testing.T) {
	assert.True(t, InRetentionBracket(65, Num(65)))
	assert.True(t, InRetentionBracket(65, Num(60)))
	assert.False(t, InRetentionBracket(65, Num(70)))
	assert.False(t, InRetentionBracket(65, Num(0)))
}

func TestInRetentionBracket_75(t *testing.T) {
	assert.True(t, InRetentionBracket(75, Num(75)))
	assert.True(t, InRetentionBracket(75, Num(70)))
	assert.False(t, InRetentionBracket(75, Num(65)), "65 belongs to the 65 bracket, not 75")
	assert.False(t, InRetentionBracket(75, Num(80)))
}

func TestInRetentionBracket_UnknownOrUnavailable(t *testing.T) {
	assert.False(t, InRetentionBracket(80, Num(70)))
	assert.False(t, InRetentionBracket(65, Unavailable()))
}

func TestRateRow_DedupeKey(t *testing.T) {
	a := &RateRow{Product: "5 Year Fix", RateText: "5.19%", Scope: "Standard", TierText: "1", ProductFeePercent: Num(5)}
	b := &RateRow{Product: " 5 year fix ", RateText: "5.19%", Scope: "standard", TierText: "1", ProductFeePercent: Num(5)}
	c := &RateRow{Product: "5 Year Fix", RateText: "5.19%", Scope: "Standard", TierText: "1", ProductFeePercent: Num(3)}

	assert.Equal(t, a.DedupeKey(), b.DedupeKey(), "Case and whitespace should not split identity")
	assert.NotEqual(t, a.DedupeKey(), c.DedupeKey(), "Different fee buckets are distinct rows")
}

func TestValidateLoanParams_Valid(t *testing.T) {
	p := &LoanParams{
		PropertyValue: 500000,
		LoanType:      LoanTypeMaxGross,
	}

	assert.NoError(t, ValidateLoanParams(p))
}

func TestValidateLoanParams_NegativePropertyValue(t *testing.T) {
	p := &LoanParams{PropertyValue: -1}

	assert.ErrorIs(t, ValidateLoanParams(p), ErrInvalidPropertyVal)
}

func TestValidateLoanParams_InvalidLoanType(t *testing.T) {
	p := &LoanParams{LoanType: "interest_only"}

	assert.ErrorIs(t, ValidateLoanParams(p), ErrInvalidLoanType)
}

func TestValidateLoanParams_RetentionRequiresBracket(t *testing.T) {
	p := &LoanParams{RetentionChoice: RetentionYes, RetentionLTV: 70}
	assert.ErrorIs(t, ValidateLoanParams(p), ErrUnknownRetentionLTV)

	p.RetentionLTV = 65
	assert.NoError(t, ValidateLoanParams(p))
}

func TestValidateQuoteCreate_MissingFields(t *testing.T) {
	assert.ErrorIs(t, ValidateQuoteCreate(&QuoteCreate{}), ErrEmptySetKey)
	assert.ErrorIs(t, ValidateQuoteCreate(&QuoteCreate{SetKey: "demo"}), ErrEmptyProductName)
}

func TestBridgingLoanAmount_PrefersSpecificNet(t *testing.T) {
	p := &LoanParams{SpecificGrossLoan: 400000, SpecificNetLoan: 380000}
	assert.Equal(t, 380000.0, p.BridgingLoanAmount())

	p.SpecificNetLoan = 0
	assert.Equal(t, 400000.0, p.BridgingLoanAmount())
}

func TestAnswerSet_FlagAnsweredYes(t *testing.T) {
	questions := []Question{
		{Key: "flat_above_commercial", Flag: FlagFlatAboveCommercial, Options: []Option{
			{Label: "No", Tier: 1}, {Label: "Yes", Tier: 2},
		}},
	}

	yes := AnswerSet{"flat_above_commercial": &Option{Label: "Yes", Tier: 2}}
	no := AnswerSet{"flat_above_commercial": &Option{Label: "No", Tier: 1}}
	unanswered := AnswerSet{}

	assert.True(t, yes.FlagAnsweredYes(questions, FlagFlatAboveCommercial))
	assert.False(t, no.FlagAnsweredYes(questions, FlagFlatAboveCommercial))
	assert.False(t, unanswered.FlagAnsweredYes(questions, FlagFlatAboveCommercial))
}
