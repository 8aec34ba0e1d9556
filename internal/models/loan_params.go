// Package models defines the data structures for the broker quote engine.
package models

// LoanType selects how the gross loan is derived.
type LoanType string

const (
	LoanTypeMaxGross      LoanType = "max_gross"
	LoanTypeSpecificGross LoanType = "specific_gross"
	LoanTypeSpecificNet   LoanType = "specific_net"
	LoanTypeSpecificLTV   LoanType = "specific_ltv"
	LoanTypeNetRequired   LoanType = "net_required"
)

// IsValid reports whether the loan type is a known value.
func (t LoanType) IsValid() bool {
	switch t {
	case LoanTypeMaxGross, LoanTypeSpecificGross, LoanTypeSpecificNet,
		LoanTypeSpecificLTV, LoanTypeNetRequired:
		return true
	}
	return false
}

// FeeCalcType selects how the broker client fee is expressed.
type FeeCalcType string

const (
	FeeCalcPound   FeeCalcType = "pound"
	FeeCalcPercent FeeCalcType = "percent"
)

// RetentionChoice is the borrower's retention selection.
type RetentionChoice string

const (
	RetentionYes RetentionChoice = "yes"
	RetentionNo  RetentionChoice = "no"
)

// RangeSelection picks between the core and specialist product ranges.
type RangeSelection string

const (
	RangeCore       RangeSelection = "core"
	RangeSpecialist RangeSelection = "specialist"
)

// LoanParams carries the borrower/property inputs for a quoting pass. All
// fields are broker-entered; malformed or missing values degrade rather than
// error (see calculator guards).
type LoanParams struct {
	PropertyValue float64 `json:"property_value"`
	MonthlyRent   float64 `json:"monthly_rent"`

	LoanType          LoanType `json:"loan_type"`
	SpecificGrossLoan float64  `json:"specific_gross_loan,omitempty"`
	SpecificNetLoan   float64  `json:"specific_net_loan,omitempty"`
	TargetLTV         float64  `json:"target_ltv,omitempty"`
	TopSlicing        bool     `json:"top_slicing,omitempty"`

	AdditionalFeeAmount float64     `json:"additional_fee_amount,omitempty"`
	FeeCalculationType  FeeCalcType `json:"fee_calculation_type,omitempty"`
	DeductFeesFromNet   bool        `json:"deduct_fees_from_net,omitempty"`

	RetentionChoice RetentionChoice `json:"retention_choice,omitempty"`
	RetentionLTV    int             `json:"retention_ltv,omitempty"` // 65 or 75

	ProductScope  string         `json:"product_scope"`
	ProductType   string         `json:"product_type"`
	ChargeType    ChargeType     `json:"charge_type,omitempty"`
	SubProduct    string         `json:"sub_product,omitempty"`
	SelectedRange RangeSelection `json:"selected_range,omitempty"`

	// Bridging only.
	FirstChargeValue   float64 `json:"first_charge_value,omitempty"`
	UseSpecificNetLoan bool    `json:"use_specific_net_loan,omitempty"`

	// Optional broker commission override, clamped to the overlay tolerance.
	BrokerCommissionPercent float64 `json:"broker_commission_percent,omitempty"`
}

// BridgingLoanAmount returns the amount used for bridging LTV and loan-size
// checks: a specific net-loan input takes precedence over the gross figure.
func (p *LoanParams) BridgingLoanAmount() float64 {
	if p.SpecificNetLoan > 0 {
		return p.SpecificNetLoan
	}
	return p.SpecificGrossLoan
}
