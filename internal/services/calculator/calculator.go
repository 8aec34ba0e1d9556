// Package calculator derives the loan economics for a matched rate: gross and
// net loan, LTV, interest coverage, fees and broker commission. Every
// derivation is a pure function of (rate row, loan params); non-finite
// intermediates propagate as unavailable figures, never NaN.
package calculator

import (
	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/overlay"
)

// Calculator computes CalculatedRates against a resolved overlay (needed for
// the broker commission default and tolerance).
type Calculator struct {
	overlay *overlay.Overlay
}

// New creates a calculator bound to a resolved overlay.
func New(ov *overlay.Overlay) *Calculator {
	return &Calculator{overlay: ov}
}

// CalculateBTL derives the buy-to-let economics for one matched rate.
func (c *Calculator) CalculateBTL(row *models.RateRow, p *models.LoanParams) *models.CalculatedRate {
	out := &models.CalculatedRate{RateRow: *row}

	out.GrossLoan = c.btlGrossLoan(row, p)
	out.ProductFeeAmount = feeAmount(out.GrossLoan, row.ProductFeePercent)
	out.AdminFeeAmount = row.AdminFee
	out.BrokerClientFee = brokerClientFee(out.GrossLoan, p)
	out.NetLoan = netLoan(out.GrossLoan, out.ProductFeeAmount, row.AdminFee, out.BrokerClientFee, p.DeductFeesFromNet)

	out.LTV = ltvPercent(out.GrossLoan, p.PropertyValue)
	out.NetLTV = ltvPercent(out.NetLoan, p.PropertyValue)

	out.MonthlyInterestCost = monthlyInterest(out.GrossLoan, row.Rate)
	out.ICR = icrPercent(p.MonthlyRent, out.MonthlyInterestCost)

	out.CommissionPercent = c.commissionPercent(row, p)
	out.BrokerCommission = feeAmount(out.GrossLoan, out.CommissionPercent)

	return out
}

// CalculateBridging derives the bridging economics for one matched rate.
// The gross loan is a direct input and is never derived from property value;
// a specific net-loan input bypasses the fee subtraction.
func (c *Calculator) CalculateBridging(row *models.RateRow, p *models.LoanParams) *models.CalculatedRate {
	out := &models.CalculatedRate{RateRow: *row}

	out.GrossLoan = models.Num(p.SpecificGrossLoan)
	out.ProductFeeAmount = feeAmount(out.GrossLoan, row.ProductFeePercent)
	out.AdminFeeAmount = row.AdminFee
	out.BrokerClientFee = brokerClientFee(out.GrossLoan, p)

	if p.UseSpecificNetLoan {
		out.NetLoan = models.Num(p.SpecificNetLoan)
	} else {
		out.NetLoan = netLoan(out.GrossLoan, out.ProductFeeAmount, row.AdminFee, out.BrokerClientFee, p.DeductFeesFromNet)
	}

	// Bridging treats LTV and net LTV as the same figure, computed against
	// the combined exposure including any first charge.
	ltv := bridgingLTV(p)
	out.LTV = ltv
	out.NetLTV = ltv

	out.MonthlyInterestCost = monthlyInterest(out.GrossLoan, row.Rate)
	out.ICR = icrPercent(p.MonthlyRent, out.MonthlyInterestCost)

	out.CommissionPercent = c.commissionPercent(row, p)
	out.BrokerCommission = feeAmount(out.GrossLoan, out.CommissionPercent)

	return out
}

// btlGrossLoan derives the gross loan per loan type.
func (c *Calculator) btlGrossLoan(row *models.RateRow, p *models.LoanParams) models.Figure {
	switch p.LoanType {
	case models.LoanTypeSpecificGross:
		return models.Num(p.SpecificGrossLoan)

	case models.LoanTypeSpecificNet, models.LoanTypeNetRequired:
		// Inverts the fee deduction: net / (1 - fee%/100).
		fee := row.ProductFeePercent.Or(0)
		denominator := 1 - fee/100
		if denominator <= 0 {
			return models.Unavailable()
		}
		return models.SafeDiv(p.SpecificNetLoan, denominator)

	case models.LoanTypeSpecificLTV:
		if p.TargetLTV <= 0 {
			return models.Unavailable()
		}
		return models.Num(p.PropertyValue * p.TargetLTV / 100)

	default: // max gross
		maxLTV := row.MaxLTV.Or(p.TargetLTV)
		if maxLTV <= 0 {
			return models.Unavailable()
		}
		return models.Num(p.PropertyValue * maxLTV / 100)
	}
}

// commissionPercent resolves the procuration fee percentage: the rate row's
// own proc fee when it carries one, else the broker's requested override
// clamped to the overlay tolerance, else the overlay default.
func (c *Calculator) commissionPercent(row *models.RateRow, p *models.LoanParams) models.Figure {
	if row.ProcFeePercent.Valid {
		return row.ProcFeePercent
	}
	return models.Num(c.overlay.ClampCommission(p.BrokerCommissionPercent))
}

// bridgingLTV computes (loanAmount + firstCharge) / propertyValue × 100,
// preferring a specific net-loan input over gross.
func bridgingLTV(p *models.LoanParams) models.Figure {
	if p.PropertyValue <= 0 {
		return models.Unavailable()
	}
	return models.SafeDiv((p.BridgingLoanAmount()+p.FirstChargeValue)*100, p.PropertyValue)
}

// feeAmount computes percent-of-gross fee figures. An absent percentage
// yields a zero amount; an unavailable gross propagates.
func feeAmount(gross, percent models.Figure) models.Figure {
	if !gross.Valid {
		return models.Unavailable()
	}
	if !percent.Valid {
		return models.Num(0)
	}
	return models.Num(gross.Value * percent.Value / 100)
}

// brokerClientFee resolves the additional broker fee as entered: a literal
// amount or a percentage of the gross loan.
func brokerClientFee(gross models.Figure, p *models.LoanParams) models.Figure {
	if p.AdditionalFeeAmount <= 0 {
		return models.Num(0)
	}
	if p.FeeCalculationType == models.FeeCalcPercent {
		if !gross.Valid {
			return models.Unavailable()
		}
		return models.Num(gross.Value * p.AdditionalFeeAmount / 100)
	}
	return models.Num(p.AdditionalFeeAmount)
}

// netLoan computes gross minus fees. The broker client fee is only deducted
// when the deduct-fees toggle is set.
func netLoan(gross, productFee, adminFee, clientFee models.Figure, deductClientFee bool) models.Figure {
	if !gross.Valid {
		return models.Unavailable()
	}
	net := gross.Value - productFee.Or(0) - adminFee.Or(0)
	if deductClientFee {
		if !clientFee.Valid {
			return models.Unavailable()
		}
		net -= clientFee.Value
	}
	return models.Num(net)
}

// ltvPercent computes loan / propertyValue × 100.
func ltvPercent(loan models.Figure, propertyValue float64) models.Figure {
	if !loan.Valid || propertyValue <= 0 {
		return models.Unavailable()
	}
	return models.SafeDiv(loan.Value*100, propertyValue)
}

// monthlyInterest computes gross × rate% / 12.
func monthlyInterest(gross, rate models.Figure) models.Figure {
	if !gross.Valid || !rate.Valid {
		return models.Unavailable()
	}
	return models.Num(gross.Value * rate.Value / 100 / 12)
}

// icrPercent computes monthlyRent / monthlyInterest × 100, undefined when the
// interest cost is not positive.
func icrPercent(monthlyRent float64, interest models.Figure) models.Figure {
	if !interest.Valid || interest.Value <= 0 {
		return models.Unavailable()
	}
	return models.SafeDiv(monthlyRent*100, interest.Value)
}
