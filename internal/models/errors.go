// Package models defines the data structures for the broker quote engine.
package models

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrInvalidLoanType     = errors.New("invalid loan type")
	ErrInvalidChargeType   = errors.New("charge type must be all, first or second")
	ErrInvalidPropertyVal  = errors.New("property value cannot be negative")
	ErrEmptySetKey         = errors.New("set_key cannot be empty")
	ErrEmptyProductName    = errors.New("product_name cannot be empty")
	ErrUnknownRetentionLTV = errors.New("retention LTV must be 65 or 75")
)

// NormalizeLoanType converts various loan type spellings to standard values.
func NormalizeLoanType(s string) LoanType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	typeMap := map[string]LoanType{
		"max_gross":      LoanTypeMaxGross,
		"maximum_gross":  LoanTypeMaxGross,
		"max_loan":       LoanTypeMaxGross,
		"specific_gross": LoanTypeSpecificGross,
		"gross":          LoanTypeSpecificGross,
		"specific_net":   LoanTypeSpecificNet,
		"net":            LoanTypeSpecificNet,
		"specific_ltv":   LoanTypeSpecificLTV,
		"ltv":            LoanTypeSpecificLTV,
		"net_required":   LoanTypeNetRequired,
	}

	if mapped, ok := typeMap[normalized]; ok {
		return mapped
	}
	return LoanType(normalized)
}

// NormalizeChargeType converts charge type spellings ("1st charge", "Second")
// to standard values. Empty input means no restriction.
func NormalizeChargeType(s string) ChargeType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch {
	case normalized == "" || normalized == "all":
		return ChargeTypeAll
	case strings.Contains(normalized, "2") || strings.Contains(normalized, "second"):
		return ChargeTypeSecond
	case strings.Contains(normalized, "1") || strings.Contains(normalized, "first"):
		return ChargeTypeFirst
	}
	return ChargeType(normalized)
}

// ValidateQuoteCreate validates a quote before persistence.
func ValidateQuoteCreate(q *QuoteCreate) error {
	if strings.TrimSpace(q.SetKey) == "" {
		return ErrEmptySetKey
	}
	if strings.TrimSpace(q.ProductName) == "" {
		return ErrEmptyProductName
	}
	if q.PropertyValue < 0 {
		return ErrInvalidPropertyVal
	}
	return nil
}

// ValidateLoanParams validates broker-entered loan parameters. Only structural
// problems are errors; malformed optional values degrade downstream.
func ValidateLoanParams(p *LoanParams) error {
	if p.PropertyValue < 0 {
		return ErrInvalidPropertyVal
	}
	if p.LoanType != "" && !p.LoanType.IsValid() {
		return ErrInvalidLoanType
	}
	if p.ChargeType != "" && !p.ChargeType.IsValid() {
		return ErrInvalidChargeType
	}
	if p.RetentionChoice == RetentionYes {
		if _, ok := RetentionBrackets[p.RetentionLTV]; !ok {
			return ErrUnknownRetentionLTV
		}
	}
	return nil
}
