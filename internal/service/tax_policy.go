package service

import (
	"fmt"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
)

// TaxPolicy decides how much tax is collected at withdrawal time. It is an
// injected strategy so the policy in effect can change without touching the
// gain calculation, and each TaxEvent records which policy produced it.
type TaxPolicy interface {
	// Name is the stable identifier stored on TaxEvent records.
	Name() string

	// Rate is the applicable tax rate on realized gains.
	Rate() float64

	// Assess returns the tax due now and the net proceeds paid out for a
	// withdrawal with the given realized gain.
	Assess(withdrawalAmount, realizedGain float64) (taxDue, netProceeds float64)
}

// WithholdAtWithdrawal collects tax on the realized gain at withdrawal time;
// the investor receives the withdrawal amount less tax.
type WithholdAtWithdrawal struct {
	TaxRate float64
}

func (p WithholdAtWithdrawal) Name() string  { return config.TaxPolicyWithholdAtWithdrawal }
func (p WithholdAtWithdrawal) Rate() float64 { return p.TaxRate }

func (p WithholdAtWithdrawal) Assess(withdrawalAmount, realizedGain float64) (float64, float64) {
	taxDue := roundMoney(realizedGain * p.TaxRate)
	return taxDue, roundMoney(withdrawalAmount - taxDue)
}

// QuarterlySettlement defers tax collection to the quarterly settlement
// process: the investor receives the withdrawal in full and the realized gain
// is recorded for later batch settlement.
type QuarterlySettlement struct {
	TaxRate float64
}

func (p QuarterlySettlement) Name() string  { return config.TaxPolicyQuarterlySettlement }
func (p QuarterlySettlement) Rate() float64 { return p.TaxRate }

func (p QuarterlySettlement) Assess(withdrawalAmount, realizedGain float64) (float64, float64) {
	return 0, roundMoney(withdrawalAmount)
}

// NewTaxPolicy builds the configured policy.
func NewTaxPolicy(cfg config.TaxConfig) (TaxPolicy, error) {
	switch cfg.Policy {
	case config.TaxPolicyWithholdAtWithdrawal:
		return WithholdAtWithdrawal{TaxRate: cfg.Rate}, nil
	case config.TaxPolicyQuarterlySettlement:
		return QuarterlySettlement{TaxRate: cfg.Rate}, nil
	default:
		return nil, fmt.Errorf("unknown tax policy: %s", cfg.Policy)
	}
}
