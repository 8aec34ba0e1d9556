// Package models defines the data structures for the broker quote engine.
package models

import "time"

// CalculatedRate is a matched rate row plus the derived loan economics. Every
// derived field is a Figure: unavailable when any intermediate was non-finite.
type CalculatedRate struct {
	RateRow

	GrossLoan           Figure `json:"gross_loan"`
	NetLoan             Figure `json:"net_loan"`
	LTV                 Figure `json:"ltv"`
	NetLTV              Figure `json:"net_ltv"`
	ICR                 Figure `json:"icr"`
	MonthlyInterestCost Figure `json:"monthly_interest_cost"`
	ProductFeeAmount    Figure `json:"product_fee_amount"`
	AdminFeeAmount      Figure `json:"admin_fee_amount"`
	BrokerClientFee     Figure `json:"broker_client_fee"`
	BrokerCommission    Figure `json:"broker_commission"`
	CommissionPercent   Figure `json:"commission_percent"`
}

// QuoteCreate is the data needed to persist a quote record: the fixed named
// field set the persistence layer expects for a saved quote.
type QuoteCreate struct {
	SetKey        string        `json:"set_key"`
	Family        ProductFamily `json:"family"`
	BrokerEmail   string        `json:"broker_email,omitempty"`
	ClientName    string        `json:"client_name,omitempty"`
	Tier          int           `json:"tier"`
	ProductName   string        `json:"product_name"`
	Scope         string        `json:"scope"`
	RateText      string        `json:"rate_text"`
	Rate          Figure        `json:"rate"`
	FeeBucket     Figure        `json:"fee_bucket"`
	GrossLoan     Figure        `json:"gross_loan"`
	NetLoan       Figure        `json:"net_loan"`
	LTV           Figure        `json:"ltv"`
	NetLTV        Figure        `json:"net_ltv"`
	ICR           Figure        `json:"icr"`
	ProductFee    Figure        `json:"product_fee"`
	AdminFee      Figure        `json:"admin_fee"`
	BrokerFee     Figure        `json:"broker_fee"`
	Commission    Figure        `json:"commission"`
	PropertyValue float64       `json:"property_value"`
	MonthlyRent   float64       `json:"monthly_rent"`
	TopSlicing    bool          `json:"top_slicing"`
}

// Quote is a persisted quote record.
type Quote struct {
	ID        int64     `json:"id" db:"id"`
	Reference string    `json:"reference" db:"reference"`
	QuoteCreate
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FromCalculatedRate builds a QuoteCreate snapshot from a calculated rate and
// the loan parameters it was quoted against.
func FromCalculatedRate(rate *CalculatedRate, params *LoanParams, tier int) *QuoteCreate {
	return &QuoteCreate{
		SetKey:        rate.SetKey,
		Family:        rate.Family,
		Tier:          tier,
		ProductName:   rate.Product,
		Scope:         rate.Scope,
		RateText:      rate.RateText,
		Rate:          rate.Rate,
		FeeBucket:     rate.ProductFeePercent,
		GrossLoan:     rate.GrossLoan,
		NetLoan:       rate.NetLoan,
		LTV:           rate.LTV,
		NetLTV:        rate.NetLTV,
		ICR:           rate.ICR,
		ProductFee:    rate.ProductFeeAmount,
		AdminFee:      rate.AdminFeeAmount,
		BrokerFee:     rate.BrokerClientFee,
		Commission:    rate.BrokerCommission,
		PropertyValue: params.PropertyValue,
		MonthlyRent:   params.MonthlyRent,
		TopSlicing:    params.TopSlicing,
	}
}
