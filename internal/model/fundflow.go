package model

import "time"

// FlowType distinguishes money moving into or out of the fund.
type FlowType string

const (
	FlowContribution FlowType = "contribution"
	FlowWithdrawal   FlowType = "withdrawal"
)

// Valid reports whether the flow type is recognized.
func (f FlowType) Valid() bool {
	return f == FlowContribution || f == FlowWithdrawal
}

// FlowStatus is the state of a fund-flow request in its lifecycle.
//
// Happy path: pending -> approved -> awaiting_funds -> matched -> processed.
// rejected and cancelled are terminal and reachable from any non-terminal
// state. awaiting_funds applies to contributions waiting on an incoming wire;
// withdrawals go straight from approved to matched.
type FlowStatus string

const (
	FlowPending       FlowStatus = "pending"
	FlowApproved      FlowStatus = "approved"
	FlowAwaitingFunds FlowStatus = "awaiting_funds"
	FlowMatched       FlowStatus = "matched"
	FlowProcessed     FlowStatus = "processed"
	FlowRejected      FlowStatus = "rejected"
	FlowCancelled     FlowStatus = "cancelled"
)

// flowTransitions is the closed transition table for the request lifecycle.
// Illegal transitions are rejected here rather than by string checks at call
// sites.
var flowTransitions = map[FlowStatus][]FlowStatus{
	FlowPending:       {FlowApproved, FlowRejected, FlowCancelled},
	FlowApproved:      {FlowAwaitingFunds, FlowMatched, FlowRejected, FlowCancelled},
	FlowAwaitingFunds: {FlowMatched, FlowRejected, FlowCancelled},
	FlowMatched:       {FlowProcessed, FlowRejected, FlowCancelled},
	FlowProcessed:     {},
	FlowRejected:      {},
	FlowCancelled:     {},
}

// Valid reports whether the status is one of the recognized values.
func (s FlowStatus) Valid() bool {
	_, ok := flowTransitions[s]
	return ok
}

// Terminal reports whether the status admits no further transitions.
func (s FlowStatus) Terminal() bool {
	return len(flowTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition.
func (s FlowStatus) CanTransitionTo(next FlowStatus) bool {
	for _, allowed := range flowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FundFlowRequest tracks one contribution or withdrawal from submission to
// completed share accounting. The request is mutated only through the defined
// state transitions and never deleted.
type FundFlowRequest struct {
	ID                     string     `json:"id"`
	InvestorID             string     `json:"investorId"`
	FlowType               FlowType   `json:"flowType"`
	RequestedAmount        float64    `json:"requestedAmount"`
	ActualAmount           float64    `json:"actualAmount"`
	Status                 FlowStatus `json:"status"`
	MatchedTradeID         string     `json:"matchedTradeId,omitempty"`
	SharesTransacted       float64    `json:"sharesTransacted"`
	NavPerShareAtProcessing float64   `json:"navPerShareAtProcessing"`
	RealizedGain           float64    `json:"realizedGain"`
	RejectionReason        string     `json:"rejectionReason,omitempty"`
	ProcessingNote         string     `json:"processingNote,omitempty"` // diagnostic from a rolled-back process attempt
	Notes                  string     `json:"notes,omitempty"`
	RequestDate            time.Time  `json:"requestDate"`
	ProcessedDate          *time.Time `json:"processedDate,omitempty"`
}
