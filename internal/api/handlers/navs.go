package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/validation"
)

// NavHandler handles NAV-related HTTP requests
type NavHandler struct {
	navService *service.NavService
}

// NewNavHandler creates a new NavHandler
func NewNavHandler(navService *service.NavService) *NavHandler {
	return &NavHandler{
		navService: navService,
	}
}

// History handles GET requests for NAV history over a date range. When start
// or end are omitted the range is open on that side.
//
// Endpoint: GET /api/nav?start=2025-01-01&end=2025-12-31
// Response: 200 OK with array of DailyNavSnapshot
func (h *NavHandler) History(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	var err error

	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = validation.ParseDate(v); err != nil {
			respondServiceError(w, "Invalid start date", err)
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = validation.ParseDate(v); err != nil {
			respondServiceError(w, "Invalid end date", err)
			return
		}
	} else {
		end = time.Now().UTC()
	}

	snapshots, err := h.navService.History(start, end)
	if err != nil {
		respondServiceError(w, "Failed to retrieve NAV history", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshots)
}

// Latest handles GET requests for the most recent NAV snapshot.
//
// Endpoint: GET /api/nav/latest
// Response: 200 OK with DailyNavSnapshot
// Error: 404 Not Found before the first snapshot exists
func (h *NavHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.navService.LatestSnapshot()
	if err != nil {
		respondServiceError(w, "Failed to retrieve latest NAV", err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// Compute handles POST requests to run the daily NAV computation for a date
// from an externally supplied total portfolio value. Re-running a date is
// rejected, never overwritten.
//
// Endpoint: POST /api/nav (admin)
// Response: 201 Created with the new DailyNavSnapshot
// Error: 400 on validation failure, 409 if a snapshot already exists
func (h *NavHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req request.ComputeNavRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateComputeNav(req); err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	snapshot, err := h.navService.ComputeDailyNav(date, req.TotalPortfolioValue)
	if err != nil {
		respondServiceError(w, "Failed to compute NAV", err)
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}
