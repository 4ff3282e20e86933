package model

import "time"

// InvestorStatus represents the lifecycle status of an investor account.
type InvestorStatus string

const (
	// InvestorActive indicates the investor holds shares and participates in NAV allocation.
	InvestorActive InvestorStatus = "active"

	// InvestorInactive indicates the investor has fully withdrawn. The record
	// is retained permanently; shares are zero.
	InvestorInactive InvestorStatus = "inactive"

	// InvestorSuspended indicates the investor is blocked from new fund flows
	// but still holds shares.
	InvestorSuspended InvestorStatus = "suspended"
)

// Valid reports whether the status is one of the recognized values.
func (s InvestorStatus) Valid() bool {
	switch s {
	case InvestorActive, InvestorInactive, InvestorSuspended:
		return true
	}
	return false
}

// Investor represents an investor's identity and current ownership state.
// Shares and net investment are mutated only by the fund-flow lifecycle when
// a request reaches its processed state. Investors are never hard-deleted;
// account closure sets status to inactive with zero shares.
type Investor struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Status        InvestorStatus `json:"status"`
	CurrentShares float64        `json:"currentShares"` // 4-decimal precision
	NetInvestment float64        `json:"netInvestment"` // cost basis
	JoinDate      time.Time      `json:"joinDate"`
	CreatedAt     time.Time      `json:"createdAt,omitempty"`
}

// InvestorPosition is an investor's current holding priced at the latest NAV.
// All derived fields come from the stored snapshot, never from a recomputed NAV.
type InvestorPosition struct {
	InvestorID         string  `json:"investorId"`
	Name               string  `json:"name"`
	Status             InvestorStatus `json:"status"`
	CurrentShares      float64 `json:"currentShares"`
	NetInvestment      float64 `json:"netInvestment"`
	NavPerShare        float64 `json:"navPerShare"`
	NavDate            string  `json:"navDate"` // YYYY-MM-DD
	CurrentValue       float64 `json:"currentValue"`
	UnrealizedGain     float64 `json:"unrealizedGain"`
	PercentageOfFund   float64 `json:"percentageOfFund"`
	EligibleWithdrawal float64 `json:"eligibleWithdrawal"`
}
