package service_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/testutil"
)

// nextTradingDay returns the first trading day strictly after from.
// Lifecycle transactions are stamped with the wall-clock date, so checks that
// compare ledger dates against snapshot dates need snapshots placed relative
// to today rather than at fixed dates.
func nextTradingDay(from time.Time) time.Time {
	d := from.AddDate(0, 0, 1)
	for !service.IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func checkByName(t *testing.T, results []model.CheckResult, name string) model.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("Check %q not found in results", name)
	return model.CheckResult{}
}

// TestValidationService_RunAll tests the invariant suite end to end.
//
// WHY: the validation suite is the safety net that catches ledger corruption
// the individual operations missed. It must pass on a consistent fund and
// pinpoint the broken invariant on an inconsistent one.
func TestValidationService_RunAll(t *testing.T) {
	t.Run("all checks pass on a consistent fund", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		flows := testutil.NewTestFundFlowService(t, db)
		navSvc := testutil.NewTestNavService(t, db)
		checks := testutil.NewTestValidationService(t, db)

		alice := testutil.CreateInvestor(t, db, "Alice", 0, 0)
		bob := testutil.CreateInvestor(t, db, "Bob", 0, 0)
		contribute(t, flows, alice.ID, 15000)
		contribute(t, flows, bob.ID, 2000)

		// Close on the next trading day so today's ledger entries fall on or
		// before the snapshot date.
		closeDate := nextTradingDay(time.Now().UTC())
		if _, err := navSvc.ComputeDailyNav(closeDate, 17000); err != nil {
			t.Fatalf("ComputeDailyNav() returned unexpected error: %v", err)
		}

		results, err := checks.RunAll(context.Background(), closeDate.AddDate(0, 0, 7))

		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}
		if len(results) != 8 {
			t.Fatalf("Expected 8 check results, got %d", len(results))
		}
		if !sort.SliceIsSorted(results, func(i, j int) bool { return results[i].Name < results[j].Name }) {
			t.Error("Expected results sorted by check name")
		}
		for _, r := range results {
			if !r.Passed {
				t.Errorf("Check %q failed: %s", r.Name, r.Detail)
			}
		}
	})

	t.Run("passes on an empty fund", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		results, err := checks.RunAll(context.Background(), testutil.Date("2025-01-03"))

		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}
		for _, r := range results {
			if !r.Passed {
				t.Errorf("Check %q failed on empty fund: %s", r.Name, r.Detail)
			}
		}
	})

	t.Run("share totals bridge fund flows processed after the snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		flows := testutil.NewTestFundFlowService(t, db)
		checks := testutil.NewTestValidationService(t, db)

		// An established fund whose last close predates today.
		alice := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		testutil.NewTransaction(alice.ID).
			WithType(model.TransactionInitial).
			WithAmounts(10000, 1.0, 10000).
			WithDate(time.Now().UTC().AddDate(0, 0, -10)).
			Build(t, db)
		testutil.NewSnapshot().
			WithDate(time.Now().UTC().AddDate(0, 0, -5)).
			WithValues(10000, 10000, 1.0).
			Build(t, db)

		// Contribution processed today: investor shares now lead the
		// snapshot's outstanding total by exactly the post-close delta.
		contribute(t, flows, alice.ID, 500)

		results, err := checks.RunAll(context.Background(), time.Now().UTC().AddDate(0, 0, 7))
		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}

		result := checkByName(t, results, "share-total-consistency")
		if !result.Passed {
			t.Errorf("Expected share totals to reconcile via post-snapshot deltas: %s", result.Detail)
		}
	})

	t.Run("flags a first snapshot priced away from 1.0000", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		testutil.CreateSnapshot(t, db, "2025-01-02", 10500, 10000, 1.05)

		results, err := checks.RunAll(context.Background(), testutil.Date("2025-01-03"))
		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}

		if result := checkByName(t, results, "inception-nav-1.0000"); result.Passed {
			t.Error("Expected inception NAV check to fail for a 1.05 first snapshot")
		}
	})

	t.Run("flags a snapshot that does not reconstruct", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		// nav * shares = 15000, recorded value 20000.
		testutil.CreateSnapshot(t, db, "2025-01-02", 20000, 10000, 1.5)

		results, err := checks.RunAll(context.Background(), testutil.Date("2025-01-03"))
		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}

		if result := checkByName(t, results, "nav-reconstruction"); result.Passed {
			t.Error("Expected NAV reconstruction check to fail")
		}
	})

	t.Run("flags transaction sums that disagree with net investment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		// Balance claims 10000 invested but the ledger only shows 4000.
		alice := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		testutil.NewTransaction(alice.ID).WithAmounts(4000, 1.0, 4000).Build(t, db)

		results, err := checks.RunAll(context.Background(), testutil.Date("2025-01-03"))
		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}

		if result := checkByName(t, results, "transaction-sum-net-investment"); result.Passed {
			t.Error("Expected transaction sum check to fail")
		}
	})

	t.Run("skips brokerage reconciliation when no feed is configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		results, err := checks.RunAll(context.Background(), testutil.Date("2025-01-03"))
		if err != nil {
			t.Fatalf("RunAll() returned unexpected error: %v", err)
		}

		result := checkByName(t, results, "brokerage-reconciliation")
		if !result.Passed {
			t.Errorf("Expected skipped brokerage check to pass, got: %s", result.Detail)
		}
	})
}

func TestValidationService_CheckLedgerTx(t *testing.T) {
	t.Run("returns no failures for a consistent ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		alice := testutil.CreateInvestor(t, db, "Alice", 10000, 10000)
		testutil.NewTransaction(alice.ID).WithAmounts(10000, 1.0, 10000).Build(t, db)

		failures, err := checks.CheckLedgerTx(db)

		if err != nil {
			t.Fatalf("CheckLedgerTx() returned unexpected error: %v", err)
		}
		if len(failures) != 0 {
			t.Errorf("Expected no failures, got %+v", failures)
		}
	})

	t.Run("reports a transaction sum mismatch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		checks := testutil.NewTestValidationService(t, db)

		testutil.CreateInvestor(t, db, "Alice", 10000, 10000)

		failures, err := checks.CheckLedgerTx(db)

		if err != nil {
			t.Fatalf("CheckLedgerTx() returned unexpected error: %v", err)
		}
		if len(failures) != 1 {
			t.Fatalf("Expected 1 failure, got %d", len(failures))
		}
		if failures[0].Name != "transaction-sum-net-investment" {
			t.Errorf("Expected transaction-sum failure, got %q", failures[0].Name)
		}
	})
}
