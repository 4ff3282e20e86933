package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps service-layer errors onto HTTP status codes:
// validation problems are 400, missing entities 404, illegal lifecycle
// transitions 409, invariant rollbacks 422, everything else 500.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError

	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, apperrors.ErrNegativeAmount),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrNotTradingDay),
		errors.Is(err, apperrors.ErrInvestorNotActive),
		errors.Is(err, apperrors.ErrInsufficientValue),
		errors.Is(err, validation.ErrInvalidUUID):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvestorNotFound),
		errors.Is(err, apperrors.ErrSnapshotNotFound),
		errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrFundFlowNotFound),
		errors.Is(err, apperrors.ErrBrokerageConfigNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrDuplicateSnapshot),
		errors.Is(err, apperrors.ErrTradeAlreadyMatched),
		errors.Is(err, apperrors.ErrTransactionReversed),
		errors.Is(err, apperrors.ErrNoNavAvailable):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvariantViolation):
		status = http.StatusUnprocessableEntity
	}

	respondJSON(w, status, map[string]string{
		"error":  message,
		"detail": err.Error(),
	})
}
