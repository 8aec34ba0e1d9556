package matcher

import (
	"go.uber.org/zap"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/overlay"
	"broker-quote-engine/internal/utils"
)

// BridgingInput carries the selections a bridging matching pass filters
// against.
type BridgingInput struct {
	Scope      string
	ChargeType models.ChargeType
	SubProduct string

	PropertyValue    float64
	GrossLoan        float64
	SpecificNetLoan  float64
	FirstChargeValue float64
}

// LoanAmount returns the amount used for LTV and loan-size containment: a
// specific net-loan input takes precedence over the gross figure.
func (in *BridgingInput) LoanAmount() float64 {
	if in.SpecificNetLoan > 0 {
		return in.SpecificNetLoan
	}
	return in.GrossLoan
}

// ComputedLTV returns (loanAmount + firstCharge) / propertyValue × 100, or an
// unavailable figure when the property value is not positive.
func (in *BridgingInput) ComputedLTV() models.Figure {
	if in.PropertyValue <= 0 {
		return models.Unavailable()
	}
	return models.SafeDiv((in.LoanAmount()+in.FirstChargeValue)*100, in.PropertyValue)
}

// BridgingResult is the outcome of a bridging matching pass, split by product
// family with a single representative row selected per family.
type BridgingResult struct {
	Bridge     []*models.RateRow
	Fusion     []*models.RateRow
	BestBridge *models.RateRow
	BestFusion *models.RateRow
}

// BridgingFilter filters bridging rate rows and picks best-match candidates.
type BridgingFilter struct {
	overlay *overlay.Overlay
	logger  *zap.Logger
}

// NewBridgingFilter creates a bridging filter bound to a resolved overlay.
func NewBridgingFilter(ov *overlay.Overlay) *BridgingFilter {
	return &BridgingFilter{overlay: ov, logger: utils.GetLogger()}
}

// Match splits the catalog by family and applies each family's policy.
// Bridge rows gate on scope, charge type, sub-product and LTV containment;
// Fusion rows gate on scope and loan size only and never serve second-charge
// cases.
func (f *BridgingFilter) Match(rows []*models.RateRow, in BridgingInput) *BridgingResult {
	result := &BridgingResult{}
	ltv := in.ComputedLTV()
	loanAmount := in.LoanAmount()

	for _, row := range rows {
		if row == nil {
			continue
		}
		switch row.Family {
		case models.FamilyBridge:
			if f.bridgePasses(row, in, ltv) {
				result.Bridge = append(result.Bridge, row)
			}
		case models.FamilyFusion:
			if f.fusionPasses(row, in, loanAmount) {
				result.Fusion = append(result.Fusion, row)
			}
		}
	}

	if ltv.Valid {
		result.BestBridge = BestMatch(result.Bridge, ltv.Value, ltvBucket)
	} else if len(result.Bridge) > 0 {
		result.BestBridge = result.Bridge[0]
	}
	result.BestFusion = BestMatch(result.Fusion, loanAmount, loanBucket)

	f.logger.Debug("Bridging match pass complete",
		zap.Int("catalog", len(rows)),
		zap.Int("bridge", len(result.Bridge)),
		zap.Int("fusion", len(result.Fusion)),
	)

	return result
}

func (f *BridgingFilter) bridgePasses(row *models.RateRow, in BridgingInput, ltv models.Figure) bool {
	if !scopeMatches(in.Scope, row.Scope) {
		return false
	}

	rowIsSecond := row.ChargeType == models.ChargeTypeSecond
	switch in.ChargeType {
	case models.ChargeTypeSecond:
		if !rowIsSecond {
			return false
		}
	case models.ChargeTypeFirst:
		if rowIsSecond {
			return false
		}
	}

	// Sub-product selection only narrows first-charge style cases.
	if in.ChargeType != models.ChargeTypeSecond && in.SubProduct != "" {
		if !containsEither(in.SubProduct, row.Product) {
			return false
		}
	}

	return ltvContains(row, ltv)
}

func (f *BridgingFilter) fusionPasses(row *models.RateRow, in BridgingInput, loanAmount float64) bool {
	if in.ChargeType == models.ChargeTypeSecond {
		return false
	}
	if !scopeMatches(in.Scope, row.Scope) {
		return false
	}
	return loanContains(row, loanAmount)
}

// ltvContains checks the row's LTV bucket against the computed LTV. Missing
// bounds are treated as unbounded on that side.
func ltvContains(row *models.RateRow, ltv models.Figure) bool {
	if !ltv.Valid {
		return true
	}
	if row.MinLTV.Valid && ltv.Value < row.MinLTV.Value {
		return false
	}
	if row.MaxLTV.Valid && ltv.Value > row.MaxLTV.Value {
		return false
	}
	return true
}

// loanContains checks the row's loan-size bucket against the loan amount.
func loanContains(row *models.RateRow, loanAmount float64) bool {
	if loanAmount <= 0 {
		return true
	}
	if row.MinLoan.Valid && loanAmount < row.MinLoan.Value {
		return false
	}
	if row.MaxLoan.Valid && loanAmount > row.MaxLoan.Value {
		return false
	}
	return true
}

func ltvBucket(row *models.RateRow) (models.Figure, models.Figure) {
	return row.MinLTV, row.MaxLTV
}

func loanBucket(row *models.RateRow) (models.Figure, models.Figure) {
	return row.MinLoan, row.MaxLoan
}
