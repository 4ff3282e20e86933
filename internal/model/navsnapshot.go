package model

import "time"

// DailyNavSnapshot is the immutable end-of-day valuation record for the fund.
// Exactly one exists per trading day. nav_per_share is the only NAV value any
// other component is permitted to consume; nothing outside the NAV engine
// constructs or rewrites these records.
type DailyNavSnapshot struct {
	ID                    string    `json:"id"`
	Date                  time.Time `json:"date"`
	TotalPortfolioValue   float64   `json:"totalPortfolioValue"`
	TotalSharesOutstanding float64  `json:"totalSharesOutstanding"`
	NavPerShare           float64   `json:"navPerShare"` // 4-decimal precision
	DailyChangeDollars    float64   `json:"dailyChangeDollars"`
	DailyChangePercent    float64   `json:"dailyChangePercent"`
	CreatedAt             time.Time `json:"createdAt,omitempty"`
}
