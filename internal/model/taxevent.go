package model

import "time"

// TaxEvent records the realized gain of one processed withdrawal for
// quarterly settlement. Rows are immutable and created exactly once per
// withdrawal. The policy and rate in effect at creation time are stored with
// the event so historical records stay reproducible after a policy change.
type TaxEvent struct {
	ID               string    `json:"id"`
	InvestorID       string    `json:"investorId"`
	Date             time.Time `json:"date"`
	WithdrawalAmount float64   `json:"withdrawalAmount"`
	RealizedGain     float64   `json:"realizedGain"`
	TaxDue           float64   `json:"taxDue"` // 0 under quarterly settlement
	NetProceeds      float64   `json:"netProceeds"`
	TaxRate          float64   `json:"taxRate"`
	TaxPolicy        string    `json:"taxPolicy"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// QuarterlyTaxSummary aggregates an investor's tax events for one quarter.
type QuarterlyTaxSummary struct {
	InvestorID        string  `json:"investorId"`
	InvestorName      string  `json:"investorName"`
	TotalWithdrawals  float64 `json:"totalWithdrawals"`
	TotalRealizedGain float64 `json:"totalRealizedGain"`
	TotalTaxDue       float64 `json:"totalTaxDue"`
	EventCount        int     `json:"eventCount"`
}
