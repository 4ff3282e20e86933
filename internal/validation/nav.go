package validation

import (
	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
)

// ValidateComputeNav validates a manual NAV computation request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - totalPortfolioValue: Must be non-negative
//
// Trading-day and duplicate-date rules are enforced by the NAV engine itself;
// this only rejects malformed input before it reaches the service.
func ValidateComputeNav(req request.ComputeNavRequest) error {
	errors := make(map[string]string)

	if _, err := ParseDate(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if req.TotalPortfolioValue < 0 {
		errors["totalPortfolioValue"] = "totalPortfolioValue cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
