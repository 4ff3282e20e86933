package validation

import (
	"strings"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/request"
)

// ValidateCreateInvestor validates an investor creation request.
//
// Required fields:
//   - name: Must be non-empty
//   - joinDate: Must be in YYYY-MM-DD format
func ValidateCreateInvestor(req request.CreateInvestorRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if _, err := ParseDate(req.JoinDate); err != nil {
		errors["joinDate"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
