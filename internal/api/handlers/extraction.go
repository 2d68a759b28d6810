// Package handlers holds the HTTP handlers for the extraction API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/internal/store"
	"github.com/razor389/sec-queries/pkg/logger"
)

// ExtractionHandler handles extraction API endpoints.
type ExtractionHandler struct {
	service *extract.Service
	reports *store.ReportRepository
	logger  *logger.Logger
}

// NewExtractionHandler creates an extraction handler. reports may be nil
// when the server runs without a database.
func NewExtractionHandler(service *extract.Service, reports *store.ReportRepository, log *logger.Logger) *ExtractionHandler {
	return &ExtractionHandler{
		service: service,
		reports: reports,
		logger:  log,
	}
}

// Extract runs a synchronous extraction for one ticker.
// POST /api/extract
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req extract.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	report, err := h.service.Extract(ctx, req)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", req.Ticker).Error("Extraction failed")
		respondError(w, http.StatusBadGateway, "Extraction failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetReport returns the most recent stored report for a ticker.
// GET /api/reports/{ticker}
func (h *ExtractionHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	ticker := mux.Vars(r)["ticker"]
	report, err := h.reports.GetLatest(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load report")
		respondError(w, http.StatusInternalServerError, "Failed to load report")
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "No report stored for "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ListFilings returns stored filings for a ticker, newest first.
// GET /api/reports/{ticker}/filings?limit=N
func (h *ExtractionHandler) ListFilings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	ticker := mux.Vars(r)["ticker"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	filings, err := h.reports.ListExtractions(ctx, ticker, limit)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to list filings")
		respondError(w, http.StatusInternalServerError, "Failed to list filings")
		return
	}

	respondJSON(w, http.StatusOK, filings)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
