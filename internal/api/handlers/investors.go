package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/validation"
)

// InvestorHandler handles investor-related HTTP requests.
// It parses requests and delegates business logic to the services.
type InvestorHandler struct {
	investorService    *service.InvestorService
	transactionService *service.TransactionService
}

// NewInvestorHandler creates a new InvestorHandler
func NewInvestorHandler(investorService *service.InvestorService, transactionService *service.TransactionService) *InvestorHandler {
	return &InvestorHandler{
		investorService:    investorService,
		transactionService: transactionService,
	}
}

// Investors handles GET requests to list investors, optionally filtered by
// the status query parameter.
//
// Endpoint: GET /api/investors?status=active
// Response: 200 OK with array of Investor
func (h *InvestorHandler) Investors(w http.ResponseWriter, r *http.Request) {
	filter := repository.InvestorFilter{
		Status: model.InvestorStatus(r.URL.Query().Get("status")),
	}

	investors, err := h.investorService.GetInvestors(filter)
	if err != nil {
		respondServiceError(w, "Failed to retrieve investors", err)
		return
	}

	respondJSON(w, http.StatusOK, investors)
}

// Investor handles GET requests for a single investor.
//
// Endpoint: GET /api/investors/{uuid}
// Response: 200 OK with Investor
// Error: 404 Not Found if the investor does not exist
func (h *InvestorHandler) Investor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	investor, err := h.investorService.GetInvestor(id)
	if err != nil {
		respondServiceError(w, "Failed to retrieve investor", err)
		return
	}

	respondJSON(w, http.StatusOK, investor)
}

// CreateInvestor handles POST requests to register a new investor.
//
// Endpoint: POST /api/investors
// Response: 201 Created with the new Investor
// Error: 400 Bad Request on validation failure
func (h *InvestorHandler) CreateInvestor(w http.ResponseWriter, r *http.Request) {
	var req request.CreateInvestorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateCreateInvestor(req); err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	joinDate, err := validation.ParseDate(req.JoinDate)
	if err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	investor, err := h.investorService.CreateInvestor(req.Name, joinDate)
	if err != nil {
		respondServiceError(w, "Failed to create investor", err)
		return
	}

	respondJSON(w, http.StatusCreated, investor)
}

// Position handles GET requests for an investor's current position: shares,
// ownership percentage, current value at the latest NAV, unrealized gain and
// the withdrawal amount eligible after estimated tax.
//
// Endpoint: GET /api/investors/{uuid}/position
// Response: 200 OK with InvestorPosition
func (h *InvestorHandler) Position(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	position, err := h.investorService.GetPosition(id)
	if err != nil {
		respondServiceError(w, "Failed to retrieve position", err)
		return
	}

	respondJSON(w, http.StatusOK, position)
}

// Transactions handles GET requests for an investor's transaction history.
//
// Endpoint: GET /api/investors/{uuid}/transactions
// Response: 200 OK with array of Transaction
func (h *InvestorHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	transactions, err := h.transactionService.GetTransactionsForInvestor(id)
	if err != nil {
		respondServiceError(w, "Failed to retrieve transactions", err)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}
