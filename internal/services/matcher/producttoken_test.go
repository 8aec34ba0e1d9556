package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProductToken(t *testing.T) {
	token := parseProductToken("5 Year Fix")
	assert.Equal(t, 5, token.TermYears)
	assert.Equal(t, familyFix, token.Family)

	token = parseProductToken("2yr Tracker")
	assert.Equal(t, 2, token.TermYears)
	assert.Equal(t, familyTracker, token.Family)

	token = parseProductToken("Discounted Variable")
	assert.Equal(t, 0, token.TermYears)
	assert.Equal(t, familyVariable, token.Family)

	token = parseProductToken("Standard Bridge")
	assert.Equal(t, 0, token.TermYears)
	assert.Equal(t, "", token.Family)
}

func TestParseProductToken_IgnoresLTVPercentages(t *testing.T) {
	token := parseProductToken("75% LTV 5 Year Fixed")
	assert.Equal(t, 5, token.TermYears, "The LTV percentage is not a term")
	assert.Equal(t, familyFix, token.Family)

	token = parseProductToken("80% LTV Tracker")
	assert.Equal(t, 0, token.TermYears)
	assert.Equal(t, familyTracker, token.Family)
}

func TestProductMatches_TermAndFamily(t *testing.T) {
	assert.True(t, productMatches("5 Year Fix", "5 Year Fixed Rate"))
	assert.False(t, productMatches("5 Year Fix", "2 Year Fix"))
	assert.False(t, productMatches("5 Year Fix", "5 Year Tracker"))
}

func TestProductMatches_LTVPrefixedRowProduct(t *testing.T) {
	assert.True(t, productMatches("5 Year Fixed", "75% LTV 5 Year Fixed"))
	assert.False(t, productMatches("2 Year Fixed", "75% LTV 5 Year Fixed"))
}

func TestProductMatches_PartialTokens(t *testing.T) {
	assert.True(t, productMatches("Fix", "5 Year Fix"), "Family-only selection accepts any term")
	assert.True(t, productMatches("5 Year", "5yr Fix"), "Term-only selection accepts any family")
}

func TestProductMatches_NoTokensFallsBackToContainment(t *testing.T) {
	assert.True(t, productMatches("Standard Bridge", "Standard Bridge Plus"))
	assert.False(t, productMatches("Standard Bridge", "Fusion"))
}

func TestScopeMatches(t *testing.T) {
	assert.True(t, scopeMatches("Standard", "Standard"))
	assert.True(t, scopeMatches("semi-commercial", "Semi Commercial"))
	assert.True(t, scopeMatches("Commercial", "Commercial Investment"))
	assert.False(t, scopeMatches("Standard", "Commercial"))
}

func TestScopeMatches_CommercialExcludesSemi(t *testing.T) {
	assert.False(t, scopeMatches("Commercial", "Semi-Commercial"))
	assert.False(t, scopeMatches("Commercial", "semi commercial"))
}

func TestScopeMatches_EmptySides(t *testing.T) {
	assert.True(t, scopeMatches("", ""))
	assert.False(t, scopeMatches("Standard", ""))
	assert.False(t, scopeMatches("", "Standard"))
}
