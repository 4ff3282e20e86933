package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// InvestorBuilder provides a fluent interface for creating test investors.
//
// Example usage:
//
//	// Simple creation with defaults
//	investor := testutil.NewInvestor().Build(t, db)
//
//	// Customized investor
//	investor := testutil.NewInvestor().
//	    WithName("Alice").
//	    WithShares(15000, 15000).
//	    Build(t, db)
type InvestorBuilder struct {
	ID            string
	Name          string
	Status        model.InvestorStatus
	CurrentShares float64
	NetInvestment float64
	JoinDate      time.Time
}

// NewInvestor creates an InvestorBuilder with sensible defaults.
func NewInvestor() *InvestorBuilder {
	return &InvestorBuilder{
		ID:       MakeID(),
		Name:     MakeInvestorName("Test Investor"),
		Status:   model.InvestorActive,
		JoinDate: Date("2025-01-02"),
	}
}

// WithID sets a custom ID.
func (b *InvestorBuilder) WithID(id string) *InvestorBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *InvestorBuilder) WithName(name string) *InvestorBuilder {
	b.Name = name
	return b
}

// WithStatus sets a custom status.
func (b *InvestorBuilder) WithStatus(status model.InvestorStatus) *InvestorBuilder {
	b.Status = status
	return b
}

// WithShares sets current shares and net investment together.
func (b *InvestorBuilder) WithShares(shares, netInvestment float64) *InvestorBuilder {
	b.CurrentShares = shares
	b.NetInvestment = netInvestment
	return b
}

// WithJoinDate sets a custom join date.
func (b *InvestorBuilder) WithJoinDate(date time.Time) *InvestorBuilder {
	b.JoinDate = date
	return b
}

// Suspended marks the investor as suspended.
func (b *InvestorBuilder) Suspended() *InvestorBuilder {
	b.Status = model.InvestorSuspended
	return b
}

// Build creates the investor in the database and returns it.
func (b *InvestorBuilder) Build(t *testing.T, db *sql.DB) model.Investor {
	t.Helper()

	query := `
		INSERT INTO investor (id, name, status, current_shares, net_investment, join_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, string(b.Status), b.CurrentShares,
		b.NetInvestment, b.JoinDate.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to create test investor: %v", err)
	}

	return model.Investor{
		ID:            b.ID,
		Name:          b.Name,
		Status:        b.Status,
		CurrentShares: b.CurrentShares,
		NetInvestment: b.NetInvestment,
		JoinDate:      b.JoinDate,
	}
}

// SnapshotBuilder provides a fluent interface for creating daily NAV
// snapshots directly, bypassing the NAV engine. Tests that exercise the
// engine itself should call ComputeDailyNav instead.
type SnapshotBuilder struct {
	ID                     string
	Date                   time.Time
	TotalPortfolioValue    float64
	TotalSharesOutstanding float64
	NavPerShare            float64
	DailyChangeDollars     float64
	DailyChangePercent     float64
}

// NewSnapshot creates a SnapshotBuilder with sensible defaults: an inception
// snapshot at NAV 1.0000.
func NewSnapshot() *SnapshotBuilder {
	return &SnapshotBuilder{
		ID:                     MakeID(),
		Date:                   Date("2025-01-02"),
		TotalPortfolioValue:    17000,
		TotalSharesOutstanding: 17000,
		NavPerShare:            1.0,
	}
}

// WithDate sets a custom date.
func (b *SnapshotBuilder) WithDate(date time.Time) *SnapshotBuilder {
	b.Date = date
	return b
}

// WithValues sets portfolio value, shares outstanding and NAV together.
func (b *SnapshotBuilder) WithValues(portfolioValue, shares, nav float64) *SnapshotBuilder {
	b.TotalPortfolioValue = portfolioValue
	b.TotalSharesOutstanding = shares
	b.NavPerShare = nav
	return b
}

// Build creates the snapshot in the database and returns it.
func (b *SnapshotBuilder) Build(t *testing.T, db *sql.DB) model.DailyNavSnapshot {
	t.Helper()

	query := `
		INSERT INTO daily_nav_snapshot (id, date, total_portfolio_value,
			total_shares_outstanding, nav_per_share, daily_change_dollars, daily_change_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Date.Format("2006-01-02"), b.TotalPortfolioValue,
		b.TotalSharesOutstanding, b.NavPerShare, b.DailyChangeDollars, b.DailyChangePercent)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}

	return model.DailyNavSnapshot{
		ID:                     b.ID,
		Date:                   b.Date,
		TotalPortfolioValue:    b.TotalPortfolioValue,
		TotalSharesOutstanding: b.TotalSharesOutstanding,
		NavPerShare:            b.NavPerShare,
		DailyChangeDollars:     b.DailyChangeDollars,
		DailyChangePercent:     b.DailyChangePercent,
	}
}

// FundFlowBuilder provides a fluent interface for creating fund flow
// requests in an arbitrary lifecycle state.
type FundFlowBuilder struct {
	ID              string
	InvestorID      string
	FlowType        model.FlowType
	RequestedAmount float64
	ActualAmount    float64
	Status          model.FlowStatus
	MatchedTradeID  string
	Notes           string
	RequestDate     time.Time
}

// NewFundFlow creates a FundFlowBuilder with sensible defaults: a pending
// contribution of 1000.
func NewFundFlow(investorID string) *FundFlowBuilder {
	return &FundFlowBuilder{
		ID:              MakeID(),
		InvestorID:      investorID,
		FlowType:        model.FlowContribution,
		RequestedAmount: 1000,
		Status:          model.FlowPending,
		RequestDate:     Date("2025-01-02"),
	}
}

// WithFlowType sets a custom flow type.
func (b *FundFlowBuilder) WithFlowType(flowType model.FlowType) *FundFlowBuilder {
	b.FlowType = flowType
	return b
}

// WithAmount sets a custom requested amount.
func (b *FundFlowBuilder) WithAmount(amount float64) *FundFlowBuilder {
	b.RequestedAmount = amount
	return b
}

// WithStatus sets a custom lifecycle status.
func (b *FundFlowBuilder) WithStatus(status model.FlowStatus) *FundFlowBuilder {
	b.Status = status
	return b
}

// Matched sets the status to matched with the given trade and settled amount.
func (b *FundFlowBuilder) Matched(tradeID string, actualAmount float64) *FundFlowBuilder {
	b.Status = model.FlowMatched
	b.MatchedTradeID = tradeID
	b.ActualAmount = actualAmount
	return b
}

// Build creates the fund flow request in the database and returns it.
func (b *FundFlowBuilder) Build(t *testing.T, db *sql.DB) model.FundFlowRequest {
	t.Helper()

	query := `
		INSERT INTO fund_flow_request (id, investor_id, flow_type, requested_amount,
			actual_amount, status, matched_trade_id, notes, request_date)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.InvestorID, string(b.FlowType), b.RequestedAmount,
		b.ActualAmount, string(b.Status), b.MatchedTradeID, b.Notes,
		b.RequestDate.Format("2006-01-02"))
	if err != nil {
		t.Fatalf("Failed to create test fund flow request: %v", err)
	}

	return model.FundFlowRequest{
		ID:              b.ID,
		InvestorID:      b.InvestorID,
		FlowType:        b.FlowType,
		RequestedAmount: b.RequestedAmount,
		ActualAmount:    b.ActualAmount,
		Status:          b.Status,
		MatchedTradeID:  b.MatchedTradeID,
		Notes:           b.Notes,
		RequestDate:     b.RequestDate,
	}
}

// TransactionBuilder provides a fluent interface for creating ledger
// transactions directly.
type TransactionBuilder struct {
	ID               string
	InvestorID       string
	Date             time.Time
	Type             model.TransactionType
	Amount           float64
	NavAtTransaction float64
	SharesDelta      float64
	ReferenceID      string
}

// NewTransaction creates a TransactionBuilder with sensible defaults: a
// contribution of 1000 at NAV 1.0.
func NewTransaction(investorID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:               MakeID(),
		InvestorID:       investorID,
		Date:             Date("2025-01-02"),
		Type:             model.TransactionContribution,
		Amount:           1000,
		NavAtTransaction: 1.0,
		SharesDelta:      1000,
	}
}

// WithType sets a custom transaction type.
func (b *TransactionBuilder) WithType(txType model.TransactionType) *TransactionBuilder {
	b.Type = txType
	return b
}

// WithAmounts sets amount, NAV and shares delta together.
func (b *TransactionBuilder) WithAmounts(amount, nav, sharesDelta float64) *TransactionBuilder {
	b.Amount = amount
	b.NavAtTransaction = nav
	b.SharesDelta = sharesDelta
	return b
}

// WithDate sets a custom date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, investor_id, date, type, amount,
			nav_at_transaction, shares_delta, reference_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))
	`

	_, err := db.Exec(query, b.ID, b.InvestorID, b.Date.Format("2006-01-02"),
		string(b.Type), b.Amount, b.NavAtTransaction, b.SharesDelta, b.ReferenceID)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:               b.ID,
		InvestorID:       b.InvestorID,
		Date:             b.Date,
		Type:             b.Type,
		Amount:           b.Amount,
		NavAtTransaction: b.NavAtTransaction,
		SharesDelta:      b.SharesDelta,
		ReferenceID:      b.ReferenceID,
	}
}

// Convenience functions

// CreateInvestor creates an active investor with the given holdings.
//
// Example usage:
//
//	investor := testutil.CreateInvestor(t, db, "Alice", 15000, 15000)
func CreateInvestor(t *testing.T, db *sql.DB, name string, shares, netInvestment float64) model.Investor {
	t.Helper()
	return NewInvestor().WithName(name).WithShares(shares, netInvestment).Build(t, db)
}

// CreateSnapshot creates a NAV snapshot for a date.
//
// Example usage:
//
//	testutil.CreateSnapshot(t, db, "2025-06-30", 23712.18, 19000, 1.248)
func CreateSnapshot(t *testing.T, db *sql.DB, date string, portfolioValue, shares, nav float64) model.DailyNavSnapshot {
	t.Helper()
	return NewSnapshot().WithDate(Date(date)).WithValues(portfolioValue, shares, nav).Build(t, db)
}
