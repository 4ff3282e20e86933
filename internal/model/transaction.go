package model

import "time"

// TransactionType classifies a ledger transaction.
type TransactionType string

const (
	TransactionInitial      TransactionType = "initial"
	TransactionContribution TransactionType = "contribution"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionTaxPayment   TransactionType = "tax_payment"
	TransactionFee          TransactionType = "fee"
	TransactionAdjustment   TransactionType = "adjustment"
)

// Valid reports whether the type is one of the recognized values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionInitial, TransactionContribution, TransactionWithdrawal,
		TransactionTaxPayment, TransactionFee, TransactionAdjustment:
		return true
	}
	return false
}

// Transaction is an immutable financial event on the ledger. Rows are never
// updated after insertion; a reversal appends a new offsetting transaction
// referencing the original via ReversalOf. Contribution and initial amounts
// are positive, withdrawal principal is negative, so per-investor amount sums
// reconstruct net investment directly.
type Transaction struct {
	ID               string          `json:"id"`
	InvestorID       string          `json:"investorId"`
	Date             time.Time       `json:"date"`
	Type             TransactionType `json:"type"`
	Amount           float64         `json:"amount"`
	NavAtTransaction float64         `json:"navAtTransaction"`
	SharesDelta      float64         `json:"sharesDelta"`
	ReferenceID      string          `json:"referenceId,omitempty"` // originating fund-flow request
	ReversalOf       string          `json:"reversalOf,omitempty"`  // original transaction for adjustments
	IsDeleted        bool            `json:"isDeleted"`             // marker set on a reversed original
	CreatedAt        time.Time       `json:"createdAt,omitempty"`
}
