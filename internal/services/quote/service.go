// Package quote orchestrates the quoting pipeline: criteria resolution,
// overlay resolution, eligibility filtering and loan economics.
package quote

import (
	"context"
	"time"

	"go.uber.org/zap"

	"broker-quote-engine/internal/config"
	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/calculator"
	"broker-quote-engine/internal/services/criteria"
	"broker-quote-engine/internal/services/database"
	"broker-quote-engine/internal/services/matcher"
	"broker-quote-engine/internal/services/overlay"
	"broker-quote-engine/internal/services/ses"
	"broker-quote-engine/internal/utils"
)

// Service runs quoting passes and persists selected quotes.
type Service struct {
	rates    *database.RateRepository
	criteria *database.CriteriaRepository
	quotes   *database.QuoteRepository
	settings *database.SettingsRepository
	emailer  *ses.Service
	config   *config.Config
	logger   *zap.Logger
}

// NewService creates a quote service. The emailer may be nil; quote
// notifications are then skipped.
func NewService(db *database.DB, cfg *config.Config, emailer *ses.Service) *Service {
	return &Service{
		rates:    database.NewRateRepository(db),
		criteria: database.NewCriteriaRepository(db),
		quotes:   database.NewQuoteRepository(db),
		settings: database.NewSettingsRepository(db),
		emailer:  emailer,
		config:   cfg,
		logger:   utils.GetLogger(),
	}
}

// BTLQuoteRequest is one buy-to-let quoting invocation.
type BTLQuoteRequest struct {
	SetKey      string            `json:"set_key"`
	CriteriaSet string            `json:"criteria_set"`
	Params      models.LoanParams `json:"params"`
	// Answers maps question keys to selected option IDs (or labels).
	Answers map[string]string `json:"answers"`
}

// BTLQuoteResult is the outcome of a buy-to-let quoting pass.
type BTLQuoteResult struct {
	Tier            int                      `json:"tier"`
	Questions       []models.Question        `json:"questions"`
	MaxAvailableLTV models.Figure            `json:"max_available_ltv"`
	Rates           []*models.CalculatedRate `json:"rates"`
	ProcessingMs    int64                    `json:"processing_ms"`
}

// QuoteBTL runs the full buy-to-let pipeline: build questions, resolve
// answers and tier, filter the catalog, compute economics. The pass is pure
// given its loaded inputs; an empty catalog yields an empty result.
func (s *Service) QuoteBTL(ctx context.Context, req *BTLQuoteRequest) (*BTLQuoteResult, error) {
	startTime := time.Now()

	if err := models.ValidateLoanParams(&req.Params); err != nil {
		return nil, err
	}

	criteriaRows, err := s.criteria.GetBySet(ctx, req.CriteriaSet)
	if err != nil {
		return nil, err
	}
	rateRows, err := s.rates.GetBySetAndFamily(ctx, req.SetKey, models.FamilyBTL)
	if err != nil {
		return nil, err
	}
	ov := s.resolveOverlay(ctx)

	questions := criteria.BuildQuestions(criteriaRows, req.Params.ProductScope, criteria.OrderByTier)
	answers := criteria.ResolveAnswers(questions, req.Answers)
	tier := criteria.ComputeTier(answers)

	input := matcher.BTLInput{
		Tier:                tier,
		Scope:               req.Params.ProductScope,
		ProductType:         req.Params.ProductType,
		Retention:           req.Params.RetentionChoice,
		RetentionLTV:        req.Params.RetentionLTV,
		SelectedRange:       req.Params.SelectedRange,
		FlatAboveCommercial: answers.FlagAnsweredYes(questions, models.FlagFlatAboveCommercial),
	}

	filter := matcher.NewBTLFilter(ov)
	matched := filter.Match(rateRows, input)

	calc := calculator.New(ov)
	rates := make([]*models.CalculatedRate, 0, len(matched))
	for _, row := range matched {
		rates = append(rates, calc.CalculateBTL(row, &req.Params))
	}

	result := &BTLQuoteResult{
		Tier:            tier,
		Questions:       questions,
		MaxAvailableLTV: filter.MaxAvailableLTV(matched, input),
		Rates:           rates,
		ProcessingMs:    time.Since(startTime).Milliseconds(),
	}

	s.logger.Info("BTL quote pass complete",
		zap.String("set_key", req.SetKey),
		zap.Int("tier", tier),
		zap.Int("catalog", len(rateRows)),
		zap.Int("matched", len(rates)),
		zap.Int64("processing_ms", result.ProcessingMs),
	)

	return result, nil
}

// BridgingQuoteRequest is one bridging quoting invocation.
type BridgingQuoteRequest struct {
	SetKey      string            `json:"set_key"`
	CriteriaSet string            `json:"criteria_set"`
	Params      models.LoanParams `json:"params"`
	Answers     map[string]string `json:"answers"`
}

// BridgingQuoteResult is the outcome of a bridging quoting pass.
type BridgingQuoteResult struct {
	Tier         int                      `json:"tier"`
	Questions    []models.Question        `json:"questions"`
	Bridge       []*models.CalculatedRate `json:"bridge"`
	Fusion       []*models.CalculatedRate `json:"fusion"`
	BestBridge   *models.CalculatedRate   `json:"best_bridge,omitempty"`
	BestFusion   *models.CalculatedRate   `json:"best_fusion,omitempty"`
	ProcessingMs int64                    `json:"processing_ms"`
}

// QuoteBridging runs the bridging pipeline across both product families.
func (s *Service) QuoteBridging(ctx context.Context, req *BridgingQuoteRequest) (*BridgingQuoteResult, error) {
	startTime := time.Now()

	if err := models.ValidateLoanParams(&req.Params); err != nil {
		return nil, err
	}

	criteriaRows, err := s.criteria.GetBySet(ctx, req.CriteriaSet)
	if err != nil {
		return nil, err
	}
	rateRows, err := s.rates.GetBySet(ctx, req.SetKey)
	if err != nil {
		return nil, err
	}
	ov := s.resolveOverlay(ctx)

	questions := criteria.BuildQuestions(criteriaRows, req.Params.ProductScope, criteria.OrderByLabel)
	answers := criteria.ResolveAnswers(questions, req.Answers)
	tier := criteria.ComputeTier(answers)

	input := matcher.BridgingInput{
		Scope:            req.Params.ProductScope,
		ChargeType:       req.Params.ChargeType,
		SubProduct:       req.Params.SubProduct,
		PropertyValue:    req.Params.PropertyValue,
		GrossLoan:        req.Params.SpecificGrossLoan,
		SpecificNetLoan:  req.Params.SpecificNetLoan,
		FirstChargeValue: req.Params.FirstChargeValue,
	}

	filter := matcher.NewBridgingFilter(ov)
	matched := filter.Match(rateRows, input)

	calc := calculator.New(ov)
	result := &BridgingQuoteResult{Tier: tier, Questions: questions}
	for _, row := range matched.Bridge {
		calculated := calc.CalculateBridging(row, &req.Params)
		result.Bridge = append(result.Bridge, calculated)
		if row == matched.BestBridge {
			result.BestBridge = calculated
		}
	}
	for _, row := range matched.Fusion {
		calculated := calc.CalculateBridging(row, &req.Params)
		result.Fusion = append(result.Fusion, calculated)
		if row == matched.BestFusion {
			result.BestFusion = calculated
		}
	}
	result.ProcessingMs = time.Since(startTime).Milliseconds()

	s.logger.Info("Bridging quote pass complete",
		zap.String("set_key", req.SetKey),
		zap.Int("bridge", len(result.Bridge)),
		zap.Int("fusion", len(result.Fusion)),
		zap.Int64("processing_ms", result.ProcessingMs),
	)

	return result, nil
}

// Questions returns the criteria questions for a scope without running a
// matching pass.
func (s *Service) Questions(ctx context.Context, criteriaSet, scope string, order criteria.OptionOrder) ([]models.Question, error) {
	rows, err := s.criteria.GetBySet(ctx, criteriaSet)
	if err != nil {
		return nil, err
	}
	return criteria.BuildQuestions(rows, scope, order), nil
}

// SaveQuote persists a quote snapshot and sends the broker notification when
// an emailer is configured.
func (s *Service) SaveQuote(ctx context.Context, quote *models.QuoteCreate) (string, error) {
	reference, err := s.quotes.Create(ctx, quote)
	if err != nil {
		return "", err
	}

	if s.emailer != nil && quote.BrokerEmail != "" {
		if err := s.emailer.SendQuoteSummary(ctx, reference, quote); err != nil {
			// Notification failure never fails the save.
			s.logger.Warn("Failed to send quote notification",
				zap.String("reference", reference),
				zap.Error(err),
			)
		}
	}

	return reference, nil
}

// GetQuote retrieves a saved quote by reference, or (nil, nil) when absent.
func (s *Service) GetQuote(ctx context.Context, reference string) (*models.Quote, error) {
	return s.quotes.GetByReference(ctx, reference)
}

// ListQuotes retrieves the most recently saved quotes.
func (s *Service) ListQuotes(ctx context.Context, limit int) ([]*models.Quote, error) {
	return s.quotes.ListRecent(ctx, limit)
}

// resolveOverlay loads and resolves the pricing overlay for this pass.
// Retrieval or parse failure degrades to the defaults.
func (s *Service) resolveOverlay(ctx context.Context) *overlay.Overlay {
	raw, err := s.settings.Get(ctx, s.config.OverlaySettingKey)
	if err != nil {
		s.logger.Warn("Failed to load pricing overlay, using defaults", zap.Error(err))
		return overlay.Default()
	}
	return overlay.Resolve(raw)
}
