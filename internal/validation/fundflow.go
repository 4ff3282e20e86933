package validation

import (
	"fmt"
	"strings"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// ValidateSubmitFundFlow validates a fund-flow submission request.
//
// Required fields:
//   - investorId: Must be a valid UUID
//   - flowType: Must be "contribution" or "withdrawal"
//   - amount: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateSubmitFundFlow(req request.SubmitFundFlowRequest) error {
	if err := ValidateUUID(req.InvestorID); err != nil {
		return err
	}

	errors := make(map[string]string)

	if strings.TrimSpace(req.FlowType) == "" {
		errors["flowType"] = "flowType is required"
	} else if !model.FlowType(req.FlowType).Valid() {
		errors["flowType"] = fmt.Sprintf("invalid flowType: %s", req.FlowType)
	}

	if req.Amount <= 0.0 {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateMatchFundFlow validates a match request.
// The trade id is the external brokerage transfer reference and must be present.
func ValidateMatchFundFlow(req request.MatchFundFlowRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.MatchedTradeID) == "" {
		errors["matchedTradeId"] = "matchedTradeId is required"
	}

	if req.ActualAmount != nil && *req.ActualAmount <= 0.0 {
		errors["actualAmount"] = "actualAmount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateRejectFundFlow validates a rejection request. A reason is required
// so the terminal state carries an audit trail.
func ValidateRejectFundFlow(req request.RejectFundFlowRequest) error {
	if strings.TrimSpace(req.Reason) == "" {
		return &Error{Fields: map[string]string{"reason": "reason is required"}}
	}
	return nil
}
