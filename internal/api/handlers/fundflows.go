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

// FundFlowHandler handles the contribution/withdrawal request lifecycle over
// HTTP. All state changes go through the FundFlowService transitions; the
// handler never touches balances itself.
type FundFlowHandler struct {
	fundFlowService *service.FundFlowService
}

// NewFundFlowHandler creates a new FundFlowHandler
func NewFundFlowHandler(fundFlowService *service.FundFlowService) *FundFlowHandler {
	return &FundFlowHandler{
		fundFlowService: fundFlowService,
	}
}

// Submit handles POST requests to open a new contribution or withdrawal
// request in the pending state.
//
// Endpoint: POST /api/fund-flows
// Response: 201 Created with the new FundFlowRequest
// Error: 400 on validation failure or when the investor cannot transact
func (h *FundFlowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitFundFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateSubmitFundFlow(req); err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	flow, err := h.fundFlowService.Submit(req.InvestorID, model.FlowType(req.FlowType), req.Amount, req.Notes)
	if err != nil {
		respondServiceError(w, "Failed to submit fund flow request", err)
		return
	}

	respondJSON(w, http.StatusCreated, flow)
}

// FundFlows handles GET requests to list requests, optionally filtered by
// investorId and status query parameters.
//
// Endpoint: GET /api/fund-flows?investorId=...&status=pending
// Response: 200 OK with array of FundFlowRequest
func (h *FundFlowHandler) FundFlows(w http.ResponseWriter, r *http.Request) {
	filter := repository.FundFlowFilter{
		InvestorID: r.URL.Query().Get("investorId"),
		Status:     model.FlowStatus(r.URL.Query().Get("status")),
	}

	flows, err := h.fundFlowService.ListRequests(filter)
	if err != nil {
		respondServiceError(w, "Failed to retrieve fund flow requests", err)
		return
	}

	respondJSON(w, http.StatusOK, flows)
}

// FundFlow handles GET requests for a single request.
//
// Endpoint: GET /api/fund-flows/{uuid}
// Response: 200 OK with FundFlowRequest
func (h *FundFlowHandler) FundFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.fundFlowService.GetRequest(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// Approve moves a pending request to approved.
//
// Endpoint: POST /api/fund-flows/{uuid}/approve (admin)
// Response: 200 OK with the updated FundFlowRequest
// Error: 409 Conflict if the request is not pending
func (h *FundFlowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	flow, err := h.fundFlowService.Approve(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to approve fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// AwaitingFunds marks an approved contribution as waiting for the wire to
// arrive. Withdrawals skip this state.
//
// Endpoint: POST /api/fund-flows/{uuid}/awaiting-funds (admin)
// Response: 200 OK with the updated FundFlowRequest
func (h *FundFlowHandler) AwaitingFunds(w http.ResponseWriter, r *http.Request) {
	flow, err := h.fundFlowService.MarkAwaitingFunds(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to mark fund flow request awaiting funds", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// Match ties a request to an executed brokerage trade. Re-matching with the
// same trade ID is a no-op; a different trade ID is rejected.
//
// Endpoint: POST /api/fund-flows/{uuid}/match (admin)
// Response: 200 OK with the updated FundFlowRequest
func (h *FundFlowHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req request.MatchFundFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateMatchFundFlow(req); err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	flow, err := h.fundFlowService.Match(chi.URLParam(r, "uuid"), req.MatchedTradeID, req.ActualAmount)
	if err != nil {
		respondServiceError(w, "Failed to match fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// Process executes the share accounting for a matched request atomically:
// share delta, transaction record, tax event for withdrawals, and the ledger
// checks. On a check failure everything is rolled back and the diagnostic is
// stored on the request.
//
// Endpoint: POST /api/fund-flows/{uuid}/process (admin)
// Response: 200 OK with the processed FundFlowRequest
// Error: 422 Unprocessable Entity when a ledger check fails
func (h *FundFlowHandler) Process(w http.ResponseWriter, r *http.Request) {
	flow, err := h.fundFlowService.Process(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to process fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// Reject declines a pending or approved request with a reason.
//
// Endpoint: POST /api/fund-flows/{uuid}/reject (admin)
// Response: 200 OK with the updated FundFlowRequest
func (h *FundFlowHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req request.RejectFundFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "Invalid request body",
			"detail": err.Error(),
		})
		return
	}

	if err := validation.ValidateRejectFundFlow(req); err != nil {
		respondServiceError(w, "Validation failed", err)
		return
	}

	flow, err := h.fundFlowService.Reject(chi.URLParam(r, "uuid"), req.Reason)
	if err != nil {
		respondServiceError(w, "Failed to reject fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}

// Cancel withdraws a request at the investor's initiative before it is
// matched.
//
// Endpoint: POST /api/fund-flows/{uuid}/cancel
// Response: 200 OK with the updated FundFlowRequest
func (h *FundFlowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	flow, err := h.fundFlowService.Cancel(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to cancel fund flow request", err)
		return
	}

	respondJSON(w, http.StatusOK, flow)
}
