// Package catalog ingests rate cards and criteria cards into their canonical
// shapes. Column aliasing, numeric cleanup and free-text classification all
// happen here, once, so the matching core only ever sees tagged canonical
// records.
package catalog

import (
	"regexp"
	"strings"

	"broker-quote-engine/internal/models"
)

var (
	secondChargePattern = regexp.MustCompile(`(?i)\b(2nd|second)[\s-]*charge\b`)
	firstChargePattern  = regexp.MustCompile(`(?i)\b(1st|first)[\s-]*charge\b`)
	digitRunPattern     = regexp.MustCompile(`\d+`)
)

// Classifier tags rate rows with retention, charge-type and product-family
// classifications during ingestion. It is pluggable so rate-card variants can
// override the heuristics without touching the filters.
type Classifier interface {
	Retention(chargeText, productText string, explicit string) bool
	Charge(chargeText, productText, typeText string) models.ChargeType
	Family(familyText, productText string) models.ProductFamily
}

// DefaultClassifier implements the stock classification heuristics.
type DefaultClassifier struct{}

// Retention reports whether a row is a retention product: an explicit flag
// column wins, otherwise the product text is scanned for "retention".
func (DefaultClassifier) Retention(chargeText, productText string, explicit string) bool {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "yes", "y", "true", "1", "retention":
		return true
	case "no", "n", "false", "0":
		return false
	}
	return strings.Contains(strings.ToLower(productText), "retention")
}

// Charge classifies lien priority: an explicit charge column wins, otherwise
// charge/product/type text is scanned for first/second charge markers.
func (DefaultClassifier) Charge(chargeText, productText, typeText string) models.ChargeType {
	if chargeText != "" {
		if ct := models.NormalizeChargeType(chargeText); ct.IsValid() {
			return ct
		}
	}
	combined := chargeText + " " + productText + " " + typeText
	if secondChargePattern.MatchString(combined) {
		return models.ChargeTypeSecond
	}
	if firstChargePattern.MatchString(combined) {
		return models.ChargeTypeFirst
	}
	return models.ChargeTypeAll
}

// Family identifies the rate table a row belongs to from its explicit family
// key. Bridging families are never inferred from pricing.
func (DefaultClassifier) Family(familyText, productText string) models.ProductFamily {
	key := strings.ToLower(strings.TrimSpace(familyText))
	if key == "" {
		key = strings.ToLower(productText)
	}
	switch {
	case strings.Contains(key, "fusion"):
		return models.FamilyFusion
	case strings.Contains(key, "bridg"):
		return models.FamilyBridge
	}
	return models.FamilyBTL
}

// ExtractTier pulls a numeric tier out of free text: the first digit run
// found, or 0 when none exists.
func ExtractTier(s string) int {
	match := digitRunPattern.FindString(s)
	if match == "" {
		return 0
	}
	tier := 0
	for _, c := range match {
		tier = tier*10 + int(c-'0')
	}
	return tier
}

// IsTracker reports whether product text names a tracker product.
func IsTracker(productText string) bool {
	return strings.Contains(strings.ToLower(productText), "track")
}
