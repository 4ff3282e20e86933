package request

type SubmitFundFlowRequest struct {
	InvestorID string  `json:"investorId"`
	FlowType   string  `json:"flowType"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes,omitempty"`
}

type MatchFundFlowRequest struct {
	MatchedTradeID string   `json:"matchedTradeId"`
	ActualAmount   *float64 `json:"actualAmount,omitempty"`
}

type RejectFundFlowRequest struct {
	Reason string `json:"reason"`
}
