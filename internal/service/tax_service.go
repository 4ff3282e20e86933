package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// TaxService computes proportional realized gains and tax liability for
// withdrawals. The same code path backs the Process transition, the
// eligible-withdrawal estimate shown to investors, and the quarterly
// settlement queries, so the engine and the portal can never drift apart.
type TaxService struct {
	taxEventRepo *repository.TaxEventRepository
	policy       TaxPolicy
}

// NewTaxService creates a new TaxService with the provided repository and the
// tax policy in effect for new withdrawals.
func NewTaxService(taxEventRepo *repository.TaxEventRepository, policy TaxPolicy) *TaxService {
	return &TaxService{
		taxEventRepo: taxEventRepo,
		policy:       policy,
	}
}

// Policy returns the tax policy in effect for new withdrawals.
func (s *TaxService) Policy() TaxPolicy {
	return s.policy
}

// GainBreakdown is the result of a realized-gain computation for one
// withdrawal amount.
type GainBreakdown struct {
	CurrentValue   float64 `json:"currentValue"`
	UnrealizedGain float64 `json:"unrealizedGain"`
	Proportion     float64 `json:"proportion"` // withdrawal's share of current value, 1 exactly for a full close
	RealizedGain   float64 `json:"realizedGain"`
	TaxDue         float64 `json:"taxDue"`
	NetProceeds    float64 `json:"netProceeds"`
}

// EstimateGain computes the realized gain, tax due, and net proceeds for
// withdrawing withdrawalAmount from the investor's position at the given NAV.
//
// current_value = shares * nav; unrealized_gain = max(0, value - cost basis);
// realized_gain = unrealized_gain * withdrawal/value. Losses never produce a
// negative gain. A withdrawal of the full position pins the proportion to
// exactly 1 rather than recomputing the ratio, so position closure realizes
// the entire unrealized gain without floating-point residue.
func (s *TaxService) EstimateGain(investor model.Investor, withdrawalAmount, navPerShare float64) GainBreakdown {
	currentValue := roundMoney(decimal.NewFromFloat(investor.CurrentShares).
		Mul(decimal.NewFromFloat(navPerShare)).
		InexactFloat64())

	breakdown := GainBreakdown{CurrentValue: currentValue}

	unrealizedGain := roundMoney(currentValue - investor.NetInvestment)
	if unrealizedGain < 0 {
		unrealizedGain = 0
	}
	breakdown.UnrealizedGain = unrealizedGain

	if currentValue <= 0 {
		breakdown.TaxDue, breakdown.NetProceeds = s.policy.Assess(withdrawalAmount, 0)
		return breakdown
	}

	proportion := 1.0
	if withdrawalAmount < currentValue {
		proportion = decimal.NewFromFloat(withdrawalAmount).
			Div(decimal.NewFromFloat(currentValue)).
			InexactFloat64()
	}
	breakdown.Proportion = proportion

	breakdown.RealizedGain = roundMoney(decimal.NewFromFloat(unrealizedGain).
		Mul(decimal.NewFromFloat(proportion)).
		InexactFloat64())

	breakdown.TaxDue, breakdown.NetProceeds = s.policy.Assess(withdrawalAmount, breakdown.RealizedGain)
	return breakdown
}

// EligibleWithdrawal returns the investor-facing self-service estimate:
// current value less the tax that would fall due on the full unrealized gain.
// It rides on EstimateGain so the shown figure always matches what the engine
// would compute.
func (s *TaxService) EligibleWithdrawal(investor model.Investor, navPerShare float64) float64 {
	breakdown := s.EstimateGain(investor, 0, navPerShare)
	return roundMoney(breakdown.CurrentValue - breakdown.UnrealizedGain*s.policy.Rate())
}

// BuildTaxEvent constructs the immutable tax event for one processed
// withdrawal, recording the policy and rate in effect.
func (s *TaxService) BuildTaxEvent(id string, investorID string, date time.Time, withdrawalAmount float64, breakdown GainBreakdown) model.TaxEvent {
	return model.TaxEvent{
		ID:               id,
		InvestorID:       investorID,
		Date:             date,
		WithdrawalAmount: roundMoney(withdrawalAmount),
		RealizedGain:     breakdown.RealizedGain,
		TaxDue:           breakdown.TaxDue,
		NetProceeds:      breakdown.NetProceeds,
		TaxRate:          s.policy.Rate(),
		TaxPolicy:        s.policy.Name(),
	}
}

// RecordEventTx persists a tax event inside the Process transaction.
func (s *TaxService) RecordEventTx(q repository.DBTX, event model.TaxEvent) error {
	return s.taxEventRepo.InsertTx(q, event)
}

// GetEvents retrieves tax events in the inclusive date range, optionally
// filtered by investor, for quarterly and year-end reconciliation.
func (s *TaxService) GetEvents(investorID string, startDate, endDate time.Time) ([]model.TaxEvent, error) {
	if endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.taxEventRepo.GetEvents(investorID, startDate, endDate)
}

// QuarterlySummary aggregates realized gains and tax due per investor for the
// inclusive date range. This backs the quarterly settlement report.
func (s *TaxService) QuarterlySummary(startDate, endDate time.Time) ([]model.QuarterlyTaxSummary, error) {
	if endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.taxEventRepo.QuarterlySummary(startDate, endDate)
}
