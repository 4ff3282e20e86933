package handlers

import (
	"net/http"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

// ValidationHandler exposes the ledger validation suite over HTTP
type ValidationHandler struct {
	validationService *service.ValidationService
}

// NewValidationHandler creates a new ValidationHandler
func NewValidationHandler(validationService *service.ValidationService) *ValidationHandler {
	return &ValidationHandler{
		validationService: validationService,
	}
}

// ValidationRunResponse is the outcome of one full validation run
type ValidationRunResponse struct {
	RanAt  time.Time           `json:"ranAt"`
	Passed bool                `json:"passed"`
	Checks []model.CheckResult `json:"checks"`
}

// Run executes every invariant check against the current ledger state and
// reports the per-check results. A failing check does not make the request
// fail; the caller inspects the payload.
//
// Endpoint: GET /api/validation/run
// Response: 200 OK with ValidationRunResponse
func (h *ValidationHandler) Run(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	checks, err := h.validationService.RunAll(r.Context(), now)
	if err != nil {
		respondServiceError(w, "Failed to run validation suite", err)
		return
	}

	passed := true
	for _, c := range checks {
		if !c.Passed {
			passed = false
			break
		}
	}

	respondJSON(w, http.StatusOK, ValidationRunResponse{
		RanAt:  now,
		Passed: passed,
		Checks: checks,
	})
}
