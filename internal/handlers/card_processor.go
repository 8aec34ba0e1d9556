// Package handlers provides Lambda handlers for the broker quote engine.
package handlers

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "broker-quote-engine/internal/config"
	"broker-quote-engine/internal/services/catalog"
	"broker-quote-engine/internal/services/database"
	s3service "broker-quote-engine/internal/services/s3"
	"broker-quote-engine/internal/utils"
)

// CardProcessorHandler handles S3 events for rate and criteria card files.
type CardProcessorHandler struct {
	s3Client     *s3.Client
	db           *database.DB
	rateRepo     *database.RateRepository
	criteriaRepo *database.CriteriaRepository
	cards        *s3service.Service
	config       *appConfig.Config
}

// NewCardProcessorHandler creates a new card processor handler.
func NewCardProcessorHandler() (*CardProcessorHandler, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cards, err := s3service.NewService(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	return &CardProcessorHandler{
		s3Client:     s3.NewFromConfig(awsCfg),
		db:           db,
		rateRepo:     database.NewRateRepository(db),
		criteriaRepo: database.NewCriteriaRepository(db),
		cards:        cards,
		config:       cfg,
	}, nil
}

// CardProcessResult is the result of processing a card file.
type CardProcessResult struct {
	Message  string   `json:"message"`
	SetKey   string   `json:"set_key"`
	CardType string   `json:"card_type"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded card files. The object key prefix
// decides whether the file is a rate card or a criteria card; the file stem
// becomes the set key.
func (h *CardProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (CardProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CardProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CardProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing card file",
		utils.String("bucket", bucket),
		utils.String("key", key))

	content, err := h.cards.DownloadCardFrom(ctx, bucket, key)
	if err != nil {
		logger.Error("Failed to download card", utils.Error(err))
		return CardProcessResult{}, fmt.Errorf("failed to download card: %w", err)
	}

	setKey := setKeyFromObject(key)

	if strings.HasPrefix(key, h.config.CriteriaCardPrefix) {
		return h.processCriteriaCard(ctx, string(content), setKey)
	}
	return h.processRateCard(ctx, string(content), setKey, key)
}

func (h *CardProcessorHandler) processRateCard(ctx context.Context, content, setKey, sourceObject string) (CardProcessResult, error) {
	logger := utils.GetLogger()

	parser := catalog.NewRateCardParser()
	rows, parseErrors := parser.Parse(content, setKey, sourceObject)

	result := CardProcessResult{
		SetKey:   setKey,
		CardType: "rate",
		Failed:   len(parseErrors),
	}
	for _, e := range parseErrors {
		result.Errors = append(result.Errors, e.Error())
	}

	if len(rows) == 0 {
		result.Message = "No valid rate rows in card"
		return result, nil
	}

	inserted, err := h.rateRepo.ReplaceSet(ctx, setKey, rows)
	if err != nil {
		logger.Error("Failed to store rate card", utils.Error(err))
		return result, fmt.Errorf("failed to store rate card: %w", err)
	}

	result.Inserted = inserted
	result.Message = fmt.Sprintf("Rate card %s ingested", setKey)

	logger.Info("Rate card ingested",
		utils.String("set_key", setKey),
		utils.Int("inserted", inserted),
		utils.Int("failed", len(parseErrors)))

	return result, nil
}

func (h *CardProcessorHandler) processCriteriaCard(ctx context.Context, content, setKey string) (CardProcessResult, error) {
	logger := utils.GetLogger()

	parser := catalog.NewCriteriaCardParser()
	rows, parseErrors := parser.Parse(content, setKey)

	result := CardProcessResult{
		SetKey:   setKey,
		CardType: "criteria",
		Failed:   len(parseErrors),
	}
	for _, e := range parseErrors {
		result.Errors = append(result.Errors, e.Error())
	}

	if len(rows) == 0 {
		result.Message = "No valid criteria rows in card"
		return result, nil
	}

	inserted, err := h.criteriaRepo.ReplaceSet(ctx, setKey, rows)
	if err != nil {
		logger.Error("Failed to store criteria card", utils.Error(err))
		return result, fmt.Errorf("failed to store criteria card: %w", err)
	}

	result.Inserted = inserted
	result.Message = fmt.Sprintf("Criteria card %s ingested", setKey)

	logger.Info("Criteria card ingested",
		utils.String("set_key", setKey),
		utils.Int("inserted", inserted),
		utils.Int("failed", len(parseErrors)))

	return result, nil
}

// Close cleans up resources.
func (h *CardProcessorHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// setKeyFromObject derives the rate/criteria set key from an object key:
// the filename without extension, lowercased.
func setKeyFromObject(key string) string {
	base := path.Base(key)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.ToLower(strings.TrimSpace(base))
}
