package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

// TransactionHandler handles transaction lookup and reversal endpoints
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Transaction handles GET requests for a single transaction.
//
// Endpoint: GET /api/transactions/{uuid}
// Response: 200 OK with Transaction
func (h *TransactionHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactionService.GetTransaction(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve transaction", err)
		return
	}

	respondJSON(w, http.StatusOK, txn)
}

// Reverse handles POST requests to reverse a transaction. The original record
// is kept and marked; a compensating adjustment entry restores the investor's
// balances.
//
// Endpoint: POST /api/transactions/{uuid}/reverse (admin)
// Response: 201 Created with the adjustment Transaction
// Error: 409 Conflict if the transaction was already reversed
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req request.ReverseTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if req.Reason == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Validation failed",
			"detail": "reason is required",
		})
		return
	}

	reversal, err := h.transactionService.ReverseTransaction(chi.URLParam(r, "uuid"), req.Reason)
	if err != nil {
		respondServiceError(w, "Failed to reverse transaction", err)
		return
	}

	respondJSON(w, http.StatusCreated, reversal)
}
