// Package main provides a local HTTP server for development and testing.
// It exposes the quoting API the broker frontend uses: criteria questions,
// BTL and bridging quote passes, saved quotes and card uploads.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"

	"broker-quote-engine/internal/config"
	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/catalog"
	"broker-quote-engine/internal/services/criteria"
	"broker-quote-engine/internal/services/database"
	"broker-quote-engine/internal/services/quote"
	s3service "broker-quote-engine/internal/services/s3"
	"broker-quote-engine/internal/services/ses"
	"broker-quote-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db           *database.DB
	rateRepo     *database.RateRepository
	criteriaRepo *database.CriteriaRepository
	quotes       *quote.Service
	cards        *s3service.Service
	config       *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// UploadResponse contains card upload processing results
type UploadResponse struct {
	SetKey    string   `json:"set_key"`
	CardType  string   `json:"card_type"`
	TotalRows int      `json:"total_rows"`
	Errors    []string `json:"errors,omitempty"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()

	server := &Server{
		db:           db,
		rateRepo:     database.NewRateRepository(db),
		criteriaRepo: database.NewCriteriaRepository(db),
		config:       cfg,
	}

	// Emailer is optional locally (no SES credentials needed for quoting)
	emailer, err := ses.NewService(context.Background())
	if err != nil {
		log.Printf("Warning: Could not initialize SES service: %v", err)
		emailer = nil
	}
	server.quotes = quote.NewService(db, cfg, emailer)

	// S3 is optional locally too; /api/upload covers local card ingestion
	cards, err := s3service.NewService(context.Background())
	if err != nil {
		log.Printf("Warning: Could not initialize S3 service: %v", err)
	}
	server.cards = cards

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	mux.HandleFunc("/api/criteria", server.criteriaHandler)
	mux.HandleFunc("/api/quote/btl", server.quoteBTLHandler)
	mux.HandleFunc("/api/quote/bridging", server.quoteBridgingHandler)

	mux.HandleFunc("/api/quotes", server.quotesHandler)
	mux.HandleFunc("/api/quotes/", server.quoteByReferenceHandler)

	mux.HandleFunc("/api/presigned-url", server.presignedURLHandler)
	mux.HandleFunc("/api/upload", server.uploadHandler)

	// CORS middleware for local frontend development
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(mux)

	addr := ":8080"
	log.Printf("Quote engine server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "connected"
	if err := s.db.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, Response{
		Success: status == "healthy",
		Data: map[string]string{
			"status":    status,
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// criteriaHandler returns the questions for a criteria set and scope.
// Query params: set, scope, order (tier|label).
func (s *Server) criteriaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	set := r.URL.Query().Get("set")
	if set == "" {
		writeError(w, http.StatusBadRequest, "set parameter required")
		return
	}

	order := criteria.OrderByTier
	if r.URL.Query().Get("order") == "label" {
		order = criteria.OrderByLabel
	}

	questions, err := s.quotes.Questions(r.Context(), set, r.URL.Query().Get("scope"), order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: questions})
}

func (s *Server) quoteBTLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req quote.BTLQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.quotes.QuoteBTL(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

func (s *Server) quoteBridgingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req quote.BridgingQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.quotes.QuoteBridging(r.Context(), &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// quotesHandler saves a quote (POST) or lists recent quotes (GET).
func (s *Server) quotesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var create models.QuoteCreate
		if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		reference, err := s.quotes.SaveQuote(r.Context(), &create)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, Response{
			Success: true,
			Data:    map[string]string{"reference": reference},
		})

	case http.MethodGet:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		quotes, err := s.quotes.ListQuotes(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: quotes})

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

func (s *Server) quoteByReferenceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	reference := strings.TrimPrefix(r.URL.Path, "/api/quotes/")
	if reference == "" {
		writeError(w, http.StatusBadRequest, "reference required")
		return
	}

	saved, err := s.quotes.GetQuote(r.Context(), reference)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if saved == nil {
		writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: saved})
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if s.cards == nil {
		writeError(w, http.StatusServiceUnavailable, "S3 not configured")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" || !strings.HasSuffix(filename, ".csv") {
		writeError(w, http.StatusBadRequest, "a .csv filename is required")
		return
	}

	prefix := s.config.RateCardPrefix
	if r.URL.Query().Get("card_type") == "criteria" {
		prefix = s.config.CriteriaCardPrefix
	}

	result, err := s.cards.GeneratePresignedUploadURL(r.Context(), prefix+filename, "text/csv", 60)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// uploadHandler ingests a card CSV directly, for local development without
// the S3 round trip. Query params: set (required), card_type (rate|criteria).
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	setKey := r.URL.Query().Get("set")
	if setKey == "" {
		writeError(w, http.StatusBadRequest, "set parameter required")
		return
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	resp := UploadResponse{SetKey: setKey}

	if r.URL.Query().Get("card_type") == "criteria" {
		resp.CardType = "criteria"
		rows, parseErrors := catalog.NewCriteriaCardParser().Parse(string(content), setKey)
		for _, e := range parseErrors {
			resp.Errors = append(resp.Errors, e.Error())
		}
		if len(rows) > 0 {
			inserted, err := s.criteriaRepo.ReplaceSet(r.Context(), setKey, rows)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.TotalRows = inserted
		}
	} else {
		resp.CardType = "rate"
		rows, parseErrors := catalog.NewRateCardParser().Parse(string(content), setKey, "local-upload")
		for _, e := range parseErrors {
			resp.Errors = append(resp.Errors, e.Error())
		}
		if len(rows) > 0 {
			inserted, err := s.rateRepo.ReplaceSet(r.Context(), setKey, rows)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.TotalRows = inserted
		}
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}
