package service_test

import (
	"errors"
	"testing"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/testutil"
)

func TestInvestorService_CreateInvestor(t *testing.T) {
	t.Run("registers an active investor with zero holdings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)

		investor, err := svc.CreateInvestor("Alice", testutil.Date("2025-01-02"))

		if err != nil {
			t.Fatalf("CreateInvestor() returned unexpected error: %v", err)
		}
		if investor.Status != model.InvestorActive {
			t.Errorf("Expected active status, got %s", investor.Status)
		}
		if investor.CurrentShares != 0 || investor.NetInvestment != 0 {
			t.Errorf("Expected zero holdings, got %v shares / %v invested",
				investor.CurrentShares, investor.NetInvestment)
		}

		stored, err := svc.GetInvestor(investor.ID)
		if err != nil {
			t.Fatalf("GetInvestor() returned unexpected error: %v", err)
		}
		if stored.Name != "Alice" {
			t.Errorf("Expected name Alice, got %q", stored.Name)
		}
	})
}

func TestInvestorService_GetInvestors(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)

		testutil.CreateInvestor(t, db, "Alice", 1000, 1000)
		testutil.NewInvestor().WithName("Bob").Suspended().Build(t, db)

		active, err := svc.GetInvestors(repository.InvestorFilter{Status: model.InvestorActive})
		if err != nil {
			t.Fatalf("GetInvestors() returned unexpected error: %v", err)
		}
		if len(active) != 1 {
			t.Fatalf("Expected 1 active investor, got %d", len(active))
		}
		if active[0].Name != "Alice" {
			t.Errorf("Expected Alice, got %q", active[0].Name)
		}

		all, err := svc.GetInvestors(repository.InvestorFilter{})
		if err != nil {
			t.Fatalf("GetInvestors() returned unexpected error: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 investors with no filter, got %d", len(all))
		}
	})
}

func TestInvestorService_SetStatus(t *testing.T) {
	t.Run("suspends and reactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)
		investor := testutil.CreateInvestor(t, db, "Alice", 1000, 1000)

		if err := svc.SetStatus(investor.ID, model.InvestorSuspended); err != nil {
			t.Fatalf("SetStatus() returned unexpected error: %v", err)
		}
		updated, _ := svc.GetInvestor(investor.ID)
		if updated.Status != model.InvestorSuspended {
			t.Errorf("Expected suspended, got %s", updated.Status)
		}

		if err := svc.SetStatus(investor.ID, model.InvestorActive); err != nil {
			t.Fatalf("SetStatus() returned unexpected error: %v", err)
		}
		updated, _ = svc.GetInvestor(investor.ID)
		if updated.Status != model.InvestorActive {
			t.Errorf("Expected active, got %s", updated.Status)
		}
	})

	t.Run("refuses administrative closure", func(t *testing.T) {
		// Inactive is reachable only through a full withdrawal.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)
		investor := testutil.CreateInvestor(t, db, "Alice", 1000, 1000)

		err := svc.SetStatus(investor.ID, model.InvestorInactive)

		if !errors.Is(err, apperrors.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestInvestorService_GetPosition(t *testing.T) {
	t.Run("prices the holding at the latest stored NAV", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)

		alice := testutil.CreateInvestor(t, db, "Alice", 15000, 15000)
		testutil.CreateInvestor(t, db, "Bob", 5000, 5000)
		testutil.CreateSnapshot(t, db, "2025-06-30", 25000, 20000, 1.25)

		position, err := svc.GetPosition(alice.ID)

		if err != nil {
			t.Fatalf("GetPosition() returned unexpected error: %v", err)
		}
		if position.NavPerShare != 1.25 {
			t.Errorf("Expected NAV 1.25, got %v", position.NavPerShare)
		}
		if position.CurrentValue != 18750 {
			t.Errorf("Expected current value 18750, got %v", position.CurrentValue)
		}
		if position.UnrealizedGain != 3750 {
			t.Errorf("Expected unrealized gain 3750, got %v", position.UnrealizedGain)
		}
		if position.PercentageOfFund != 75 {
			t.Errorf("Expected 75%% of fund, got %v", position.PercentageOfFund)
		}
		// 18750 - 3750 * 0.37 = 17362.50
		testutil.AssertClose(t, "EligibleWithdrawal", position.EligibleWithdrawal, 17362.50, 0.005)
		if position.NavDate != "2025-06-30" {
			t.Errorf("Expected NAV date 2025-06-30, got %q", position.NavDate)
		}
	})

	t.Run("fails before the first NAV snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)
		investor := testutil.CreateInvestor(t, db, "Alice", 1000, 1000)

		_, err := svc.GetPosition(investor.ID)

		if !errors.Is(err, apperrors.ErrNoNavAvailable) {
			t.Errorf("Expected ErrNoNavAvailable, got %v", err)
		}
	})

	t.Run("returns not found for an unknown investor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestInvestorService(t, db)

		_, err := svc.GetPosition(testutil.MakeID())

		if !errors.Is(err, apperrors.ErrInvestorNotFound) {
			t.Errorf("Expected ErrInvestorNotFound, got %v", err)
		}
	})
}
