package service_test

import (
	"errors"
	"testing"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/testutil"
)

// TestTaxService_EstimateGain tests the proportional realized-gain math.
//
// WHY: realized gain determines both the investor's payout and the fund's tax
// liability. The reference case: a position worth $23,712.18 with a $19,000
// cost basis, withdrawing $50, realizes $9.94 of gain.
func TestTaxService_EstimateGain(t *testing.T) {
	investor := model.Investor{
		ID:            testutil.MakeID(),
		CurrentShares: 23712.18,
		NetInvestment: 19000,
	}

	t.Run("partial withdrawal realizes a proportional slice of the gain", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		breakdown := svc.EstimateGain(investor, 50, 1.0)

		if breakdown.CurrentValue != 23712.18 {
			t.Errorf("Expected current value 23712.18, got %v", breakdown.CurrentValue)
		}
		if breakdown.UnrealizedGain != 4712.18 {
			t.Errorf("Expected unrealized gain 4712.18, got %v", breakdown.UnrealizedGain)
		}
		if breakdown.RealizedGain != 9.94 {
			t.Errorf("Expected realized gain 9.94, got %v", breakdown.RealizedGain)
		}
		if breakdown.TaxDue != 3.68 {
			t.Errorf("Expected tax due 3.68, got %v", breakdown.TaxDue)
		}
		if breakdown.NetProceeds != 46.32 {
			t.Errorf("Expected net proceeds 46.32, got %v", breakdown.NetProceeds)
		}
	})

	t.Run("quarterly settlement defers tax and pays out in full", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyQuarterlySettlement, 0.37)

		breakdown := svc.EstimateGain(investor, 50, 1.0)

		if breakdown.RealizedGain != 9.94 {
			t.Errorf("Expected realized gain 9.94, got %v", breakdown.RealizedGain)
		}
		if breakdown.TaxDue != 0 {
			t.Errorf("Expected deferred tax 0, got %v", breakdown.TaxDue)
		}
		if breakdown.NetProceeds != 50 {
			t.Errorf("Expected net proceeds 50, got %v", breakdown.NetProceeds)
		}
	})

	t.Run("no tax is realized on a losing position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		underwater := model.Investor{
			ID:            testutil.MakeID(),
			CurrentShares: 10000,
			NetInvestment: 12000,
		}

		breakdown := svc.EstimateGain(underwater, 500, 1.0)

		if breakdown.UnrealizedGain != 0 {
			t.Errorf("Expected unrealized gain 0 on a loss, got %v", breakdown.UnrealizedGain)
		}
		if breakdown.RealizedGain != 0 || breakdown.TaxDue != 0 {
			t.Errorf("Expected no realized gain or tax on a loss, got %v / %v",
				breakdown.RealizedGain, breakdown.TaxDue)
		}
		if breakdown.NetProceeds != 500 {
			t.Errorf("Expected full payout 500, got %v", breakdown.NetProceeds)
		}
	})

	t.Run("full position withdrawal pins the proportion to exactly 1", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		breakdown := svc.EstimateGain(investor, 23712.18, 1.0)

		if breakdown.Proportion != 1.0 {
			t.Errorf("Expected proportion exactly 1, got %v", breakdown.Proportion)
		}
		if breakdown.RealizedGain != breakdown.UnrealizedGain {
			t.Errorf("Expected the full unrealized gain %v to be realized, got %v",
				breakdown.UnrealizedGain, breakdown.RealizedGain)
		}
	})

	t.Run("a withdrawal above current value also pins to 1", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		breakdown := svc.EstimateGain(investor, 30000, 1.0)

		if breakdown.Proportion != 1.0 {
			t.Errorf("Expected proportion capped at 1, got %v", breakdown.Proportion)
		}
	})
}

func TestTaxService_EligibleWithdrawal(t *testing.T) {
	t.Run("deducts estimated tax on the full unrealized gain", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		investor := model.Investor{
			ID:            testutil.MakeID(),
			CurrentShares: 23712.18,
			NetInvestment: 19000,
		}

		// 23712.18 - 4712.18 * 0.37 = 21968.67 (rounded to cents)
		eligible := svc.EligibleWithdrawal(investor, 1.0)

		testutil.AssertClose(t, "EligibleWithdrawal", eligible, 21968.67, 0.005)
	})

	t.Run("equals current value when there is no gain", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyWithholdAtWithdrawal, 0.37)

		investor := model.Investor{
			ID:            testutil.MakeID(),
			CurrentShares: 10000,
			NetInvestment: 12000,
		}

		if got := svc.EligibleWithdrawal(investor, 1.0); got != 10000 {
			t.Errorf("Expected eligible withdrawal 10000, got %v", got)
		}
	})
}

func TestTaxService_GetEvents(t *testing.T) {
	t.Run("rejects an inverted date range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyQuarterlySettlement, 0.37)

		_, err := svc.GetEvents("", testutil.Date("2025-06-30"), testutil.Date("2025-04-01"))

		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("filters by investor and range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyQuarterlySettlement, 0.37)

		alice := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		bob := testutil.CreateInvestor(t, db, "Bob", 5000, 5000)

		events := []model.TaxEvent{
			svc.BuildTaxEvent(testutil.MakeID(), alice.ID, testutil.Date("2025-04-15"), 100,
				svc.EstimateGain(alice, 100, 1.2)),
			svc.BuildTaxEvent(testutil.MakeID(), alice.ID, testutil.Date("2025-07-15"), 100,
				svc.EstimateGain(alice, 100, 1.2)),
			svc.BuildTaxEvent(testutil.MakeID(), bob.ID, testutil.Date("2025-04-20"), 50,
				svc.EstimateGain(bob, 50, 1.2)),
		}
		for _, e := range events {
			if err := svc.RecordEventTx(db, e); err != nil {
				t.Fatalf("RecordEventTx() returned unexpected error: %v", err)
			}
		}

		got, err := svc.GetEvents(alice.ID, testutil.Date("2025-04-01"), testutil.Date("2025-06-30"))
		if err != nil {
			t.Fatalf("GetEvents() returned unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 event for Alice in Q2, got %d", len(got))
		}
		if got[0].TaxPolicy != config.TaxPolicyQuarterlySettlement {
			t.Errorf("Expected stored policy %q, got %q",
				config.TaxPolicyQuarterlySettlement, got[0].TaxPolicy)
		}
		if got[0].TaxRate != 0.37 {
			t.Errorf("Expected stored rate 0.37, got %v", got[0].TaxRate)
		}
	})
}

func TestTaxService_QuarterlySummary(t *testing.T) {
	t.Run("aggregates per investor over the period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTaxService(t, db, config.TaxPolicyQuarterlySettlement, 0.37)

		alice := testutil.CreateInvestor(t, db, "Alice", 20000, 10000)

		for _, date := range []string{"2025-04-15", "2025-05-15"} {
			event := svc.BuildTaxEvent(testutil.MakeID(), alice.ID, testutil.Date(date), 100,
				svc.EstimateGain(alice, 100, 1.0))
			if err := svc.RecordEventTx(db, event); err != nil {
				t.Fatalf("RecordEventTx() returned unexpected error: %v", err)
			}
		}

		summaries, err := svc.QuarterlySummary(testutil.Date("2025-04-01"), testutil.Date("2025-06-30"))
		if err != nil {
			t.Fatalf("QuarterlySummary() returned unexpected error: %v", err)
		}
		if len(summaries) != 1 {
			t.Fatalf("Expected 1 summary row, got %d", len(summaries))
		}

		s := summaries[0]
		if s.EventCount != 2 {
			t.Errorf("Expected 2 events, got %d", s.EventCount)
		}
		if s.TotalWithdrawals != 200 {
			t.Errorf("Expected total withdrawals 200, got %v", s.TotalWithdrawals)
		}
		// Each $100 withdrawal of a 2x position realizes $50 of gain.
		if s.TotalRealizedGain != 100 {
			t.Errorf("Expected total realized gain 100, got %v", s.TotalRealizedGain)
		}
	})
}
