// Package matcher implements the product eligibility filters: the rules
// turning a rate catalog plus borrower selections into ordered matched rates.
package matcher

import (
	"regexp"
	"strings"

	"broker-quote-engine/internal/services/overlay"
)

// Product families recognized in product text.
const (
	familyFix      = "fix"
	familyTracker  = "tracker"
	familyVariable = "variable"
)

// The year unit is required so digit runs like LTV percentages in product
// names ("75% LTV 5 Year Fixed") are not read as terms.
var termPattern = regexp.MustCompile(`(\d+)\s*(?:yr|years?)\b`)

// productToken is the parsed shape of a product selection or a rate row's
// product text: a term in years and a rate family, either of which may be
// missing.
type productToken struct {
	TermYears int
	Family    string
}

// parseProductToken extracts term and family tokens from product text.
func parseProductToken(s string) productToken {
	normalized := strings.ToLower(strings.TrimSpace(s))
	token := productToken{}

	if m := termPattern.FindStringSubmatch(normalized); m != nil {
		years := 0
		for _, c := range m[1] {
			years = years*10 + int(c-'0')
		}
		token.TermYears = years
	}

	switch {
	case strings.Contains(normalized, "fix"):
		token.Family = familyFix
	case strings.Contains(normalized, "track"):
		token.Family = familyTracker
	case strings.Contains(normalized, "var"), strings.Contains(normalized, "discount"):
		token.Family = familyVariable
	}

	return token
}

// productMatches applies the product-selection rule: when both sides parse a
// term, terms must match; when both parse a family, families must match; when
// the selection parses neither, fall back to normalized substring containment
// in either direction.
func productMatches(selection, rowProduct string) bool {
	sel := parseProductToken(selection)
	row := parseProductToken(rowProduct)

	if sel.TermYears == 0 && sel.Family == "" {
		return containsEither(selection, rowProduct)
	}
	if sel.TermYears > 0 && row.TermYears > 0 && sel.TermYears != row.TermYears {
		return false
	}
	if sel.Family != "" && row.Family != "" && sel.Family != row.Family {
		return false
	}
	return true
}

var semiCommercialPattern = regexp.MustCompile(`(?i)semi[\s-]*commercial`)

// scopeMatches applies normalized substring/equality scope matching. A plain
// "Commercial" selection explicitly excludes semi-commercial rows.
func scopeMatches(selection, rowScope string) bool {
	sel := overlay.NormalizeScope(selection)
	row := overlay.NormalizeScope(rowScope)
	if sel == "" || row == "" {
		return sel == row
	}

	if sel == "commercial" && semiCommercialPattern.MatchString(rowScope) {
		return false
	}

	return strings.Contains(row, sel) || strings.Contains(sel, row)
}

// containsEither reports normalized substring containment in either
// direction.
func containsEither(a, b string) bool {
	na := overlay.NormalizeScope(a)
	nb := overlay.NormalizeScope(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
