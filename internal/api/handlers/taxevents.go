package handlers

import (
	"net/http"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/validation"
)

// TaxEventHandler handles tax-event reporting endpoints
type TaxEventHandler struct {
	taxService *service.TaxService
}

// NewTaxEventHandler creates a new TaxEventHandler
func NewTaxEventHandler(taxService *service.TaxService) *TaxEventHandler {
	return &TaxEventHandler{
		taxService: taxService,
	}
}

func dateRangeFromQuery(r *http.Request) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = validation.ParseDate(v); err != nil {
			return start, end, err
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = validation.ParseDate(v); err != nil {
			return start, end, err
		}
	} else {
		end = time.Now().UTC()
	}
	return start, end, nil
}

// TaxEvents handles GET requests for tax events, optionally filtered by
// investorId and a date range.
//
// Endpoint: GET /api/tax-events?investorId=...&start=...&end=...
// Response: 200 OK with array of TaxEvent
func (h *TaxEventHandler) TaxEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeFromQuery(r)
	if err != nil {
		respondServiceError(w, "Invalid date range", err)
		return
	}

	events, err := h.taxService.GetEvents(r.URL.Query().Get("investorId"), start, end)
	if err != nil {
		respondServiceError(w, "Failed to retrieve tax events", err)
		return
	}

	respondJSON(w, http.StatusOK, events)
}

// QuarterlySummary handles GET requests for per-investor aggregated realized
// gains and tax owed over a settlement period.
//
// Endpoint: GET /api/tax-events/quarterly-summary?start=...&end=...
// Response: 200 OK with array of QuarterlyTaxSummary
func (h *TaxEventHandler) QuarterlySummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeFromQuery(r)
	if err != nil {
		respondServiceError(w, "Invalid date range", err)
		return
	}

	summaries, err := h.taxService.QuarterlySummary(start, end)
	if err != nil {
		respondServiceError(w, "Failed to retrieve quarterly tax summary", err)
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}
