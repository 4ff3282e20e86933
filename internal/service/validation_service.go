package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// Tolerances for the reconciliation checks. Shares and percentages drift by
// rounding at 4 decimal places; money at cents.
const (
	shareTolerance   = 0.01
	percentTolerance = 0.01
	moneyTolerance   = 0.01
)

// PositionFetcher reads the brokerage-reported holdings for the external
// reconciliation check. Implemented by brokerage.Client; nil when no
// brokerage is configured.
type PositionFetcher interface {
	AccountEquity(ctx context.Context) (float64, error)
	Positions(ctx context.Context) ([]model.BrokeragePosition, error)
}

// ValidationService is the read-only invariant and reconciliation suite. It
// never mutates data; each check reports pass/fail with diagnostic detail.
// Failures are surfaced, not fatal; only the fund-flow Process transition
// treats its own post-condition subset as a hard abort.
type ValidationService struct {
	investorRepo    *repository.InvestorRepository
	snapshotRepo    *repository.SnapshotRepository
	transactionRepo *repository.TransactionRepository
	nav             NavReader
	brokerage       PositionFetcher
}

// NewValidationService creates a new ValidationService with the provided
// repositories. brokerage may be nil; the external reconciliation check is
// then skipped.
func NewValidationService(
	investorRepo *repository.InvestorRepository,
	snapshotRepo *repository.SnapshotRepository,
	transactionRepo *repository.TransactionRepository,
	nav NavReader,
	brokerage PositionFetcher,
) *ValidationService {
	return &ValidationService{
		investorRepo:    investorRepo,
		snapshotRepo:    snapshotRepo,
		transactionRepo: transactionRepo,
		nav:             nav,
		brokerage:       brokerage,
	}
}

// RunAll executes every check concurrently against the latest committed
// state and returns the results sorted by check name. The asOf date scopes
// the NAV-history checks; zero means the full history.
func (s *ValidationService) RunAll(ctx context.Context, asOf time.Time) ([]model.CheckResult, error) {
	checks := []func(context.Context) model.CheckResult{
		func(context.Context) model.CheckResult { return s.checkShareTotals() },
		func(context.Context) model.CheckResult { return s.checkPercentageSum() },
		func(context.Context) model.CheckResult { return s.checkNavReconstruction(asOf) },
		func(context.Context) model.CheckResult { return s.checkInceptionNav() },
		func(context.Context) model.CheckResult { return s.checkInceptionPortfolio() },
		func(context.Context) model.CheckResult { return s.checkNoNegativeValues() },
		func(context.Context) model.CheckResult { return s.checkTransactionSums() },
		s.checkBrokerageReconciliation,
	}

	results := make([]model.CheckResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			results[i] = check(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// CheckLedgerTx runs the core ledger invariants against an open transaction
// and returns only the failures. This is the fund-flow Process post-condition:
// the caller rolls back if anything comes back.
func (s *ValidationService) CheckLedgerTx(q repository.DBTX) ([]model.CheckResult, error) {
	investors, err := s.investorRepo.GetInvestorsTx(q, repository.InvestorFilter{})
	if err != nil {
		return nil, err
	}
	sums, err := s.transactionRepo.SumAmountsByInvestorTx(q)
	if err != nil {
		return nil, err
	}

	var failures []model.CheckResult
	if result := negativeValueCheck(investors, nil); !result.Passed {
		failures = append(failures, result)
	}
	if result := transactionSumCheck(investors, sums); !result.Passed {
		failures = append(failures, result)
	}
	return failures, nil
}

func (s *ValidationService) checkShareTotals() model.CheckResult {
	result := model.CheckResult{Name: "share-total-consistency", Passed: true}

	latest, err := s.nav.LatestSnapshot()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		result.Detail = "no snapshots recorded yet"
		return result
	}
	if err != nil {
		return checkError(result.Name, err)
	}

	activeTotal, err := s.investorRepo.ActiveShareTotal()
	if err != nil {
		return checkError(result.Name, err)
	}

	// Fund flows processed since the snapshot move the investor total ahead
	// of the recorded outstanding shares; bridge with the post-snapshot
	// share deltas from the transaction log.
	deltaSince, err := s.transactionRepo.SumSharesDeltaAfter(latest.Date)
	if err != nil {
		return checkError(result.Name, err)
	}

	expected := latest.TotalSharesOutstanding + deltaSince
	if math.Abs(activeTotal-expected) > shareTolerance {
		result.Passed = false
		result.Detail = fmt.Sprintf("active investor shares %.4f != snapshot outstanding %.4f + post-snapshot delta %.4f",
			activeTotal, latest.TotalSharesOutstanding, deltaSince)
		return result
	}
	result.Detail = fmt.Sprintf("active shares %.4f reconcile with snapshot %s", activeTotal, latest.Date.Format("2006-01-02"))
	return result
}

func (s *ValidationService) checkPercentageSum() model.CheckResult {
	result := model.CheckResult{Name: "percentage-sum-100", Passed: true}

	investors, err := s.investorRepo.GetInvestors(repository.InvestorFilter{Status: model.InvestorActive})
	if err != nil {
		return checkError(result.Name, err)
	}

	var totalShares float64
	for _, inv := range investors {
		totalShares += inv.CurrentShares
	}
	if totalShares == 0 {
		result.Detail = "no outstanding shares"
		return result
	}

	var percentSum float64
	for _, inv := range investors {
		percentSum += inv.CurrentShares / totalShares * 100
	}
	if math.Abs(percentSum-100.0) > percentTolerance {
		result.Passed = false
		result.Detail = fmt.Sprintf("ownership percentages sum to %.4f%%", percentSum)
		return result
	}
	result.Detail = fmt.Sprintf("ownership percentages sum to %.4f%% across %d active investors", percentSum, len(investors))
	return result
}

func (s *ValidationService) checkNavReconstruction(asOf time.Time) model.CheckResult {
	result := model.CheckResult{Name: "nav-reconstruction", Passed: true}

	end := asOf
	if end.IsZero() {
		end = time.Now().UTC()
	}
	snapshots, err := s.nav.History(time.Time{}, end)
	if err != nil {
		return checkError(result.Name, err)
	}

	for _, snap := range snapshots {
		if snap.TotalSharesOutstanding == 0 {
			// Zero-shares convention: nav pinned to 1.0000, nothing to reconstruct.
			continue
		}
		reconstructed := snap.NavPerShare * snap.TotalSharesOutstanding
		if math.Abs(reconstructed-snap.TotalPortfolioValue) > moneyTolerance+snap.TotalSharesOutstanding*0.00005 {
			result.Passed = false
			result.Detail = fmt.Sprintf("%s: nav %.4f * shares %.4f = %.2f, recorded value %.2f",
				snap.Date.Format("2006-01-02"), snap.NavPerShare, snap.TotalSharesOutstanding,
				reconstructed, snap.TotalPortfolioValue)
			return result
		}
	}
	result.Detail = fmt.Sprintf("%d snapshots reconstruct portfolio value", len(snapshots))
	return result
}

func (s *ValidationService) checkInceptionNav() model.CheckResult {
	result := model.CheckResult{Name: "inception-nav-1.0000", Passed: true}

	first, err := s.snapshotRepo.GetFirst()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		result.Detail = "no snapshots recorded yet"
		return result
	}
	if err != nil {
		return checkError(result.Name, err)
	}

	if math.Abs(first.NavPerShare-1.0) >= 0.0001 {
		result.Passed = false
		result.Detail = fmt.Sprintf("first snapshot %s has nav %.4f", first.Date.Format("2006-01-02"), first.NavPerShare)
		return result
	}
	result.Detail = fmt.Sprintf("first snapshot %s has nav 1.0000", first.Date.Format("2006-01-02"))
	return result
}

func (s *ValidationService) checkInceptionPortfolio() model.CheckResult {
	result := model.CheckResult{Name: "inception-portfolio-sum", Passed: true}

	first, err := s.snapshotRepo.GetFirst()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		result.Detail = "no snapshots recorded yet"
		return result
	}
	if err != nil {
		return checkError(result.Name, err)
	}

	transactions, err := s.transactionRepo.GetByDateRange(time.Time{}, first.Date)
	if err != nil {
		return checkError(result.Name, err)
	}

	var initialSum float64
	for _, t := range transactions {
		if t.Type == model.TransactionInitial {
			initialSum += t.Amount
		}
	}
	if initialSum == 0 {
		result.Detail = "no inception contributions recorded on or before first snapshot"
		return result
	}

	if math.Abs(first.TotalPortfolioValue-initialSum) > moneyTolerance {
		result.Passed = false
		result.Detail = fmt.Sprintf("first snapshot value %.2f != inception contributions %.2f",
			first.TotalPortfolioValue, initialSum)
		return result
	}
	result.Detail = fmt.Sprintf("inception value %.2f equals initial contributions", first.TotalPortfolioValue)
	return result
}

func (s *ValidationService) checkNoNegativeValues() model.CheckResult {
	investors, err := s.investorRepo.GetInvestors(repository.InvestorFilter{})
	if err != nil {
		return checkError("no-negative-values", err)
	}
	snapshots, err := s.snapshotRepo.GetHistory(time.Time{}, time.Now().UTC())
	if err != nil {
		return checkError("no-negative-values", err)
	}
	return negativeValueCheck(investors, snapshots)
}

func (s *ValidationService) checkTransactionSums() model.CheckResult {
	investors, err := s.investorRepo.GetInvestors(repository.InvestorFilter{})
	if err != nil {
		return checkError("transaction-sum-net-investment", err)
	}
	sums, err := s.transactionRepo.SumAmountsByInvestor()
	if err != nil {
		return checkError("transaction-sum-net-investment", err)
	}
	return transactionSumCheck(investors, sums)
}

func (s *ValidationService) checkBrokerageReconciliation(ctx context.Context) model.CheckResult {
	result := model.CheckResult{Name: "brokerage-reconciliation", Passed: true}

	if s.brokerage == nil {
		result.Detail = "no brokerage configured, check skipped"
		return result
	}

	latest, err := s.nav.LatestSnapshot()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		result.Detail = "no snapshots recorded yet"
		return result
	}
	if err != nil {
		return checkError(result.Name, err)
	}

	equity, err := s.brokerage.AccountEquity(ctx)
	if err != nil {
		// Feed problems are a reconciliation warning, not a system failure.
		result.Passed = false
		result.Detail = fmt.Sprintf("brokerage feed unavailable: %v", err)
		return result
	}

	// Intraday drift is expected; flag only when the brokerage moved more
	// than 5% away from the recorded close.
	if latest.TotalPortfolioValue > 0 {
		drift := math.Abs(equity-latest.TotalPortfolioValue) / latest.TotalPortfolioValue
		if drift > 0.05 {
			result.Passed = false
			result.Detail = fmt.Sprintf("brokerage equity %.2f differs %.1f%% from snapshot value %.2f",
				equity, drift*100, latest.TotalPortfolioValue)
			return result
		}
	}
	result.Detail = fmt.Sprintf("brokerage equity %.2f within tolerance of snapshot %.2f", equity, latest.TotalPortfolioValue)
	return result
}

func negativeValueCheck(investors []model.Investor, snapshots []model.DailyNavSnapshot) model.CheckResult {
	result := model.CheckResult{Name: "no-negative-values", Passed: true}
	for _, inv := range investors {
		if inv.CurrentShares < 0 || inv.NetInvestment < 0 {
			result.Passed = false
			result.Detail = fmt.Sprintf("investor %s has shares %.4f, net investment %.2f",
				inv.ID, inv.CurrentShares, inv.NetInvestment)
			return result
		}
	}
	for _, snap := range snapshots {
		if snap.TotalPortfolioValue < 0 || snap.NavPerShare < 0 {
			result.Passed = false
			result.Detail = fmt.Sprintf("snapshot %s has value %.2f, nav %.4f",
				snap.Date.Format("2006-01-02"), snap.TotalPortfolioValue, snap.NavPerShare)
			return result
		}
	}
	result.Detail = "no negative balances"
	return result
}

func transactionSumCheck(investors []model.Investor, sums map[string]float64) model.CheckResult {
	result := model.CheckResult{Name: "transaction-sum-net-investment", Passed: true}
	for _, inv := range investors {
		sum := sums[inv.ID]
		if math.Abs(sum-inv.NetInvestment) > moneyTolerance {
			result.Passed = false
			result.Detail = fmt.Sprintf("investor %s: transaction sum %.2f != net investment %.2f",
				inv.ID, sum, inv.NetInvestment)
			return result
		}
	}
	result.Detail = fmt.Sprintf("transaction sums match net investment for %d investors", len(investors))
	return result
}

func checkError(name string, err error) model.CheckResult {
	return model.CheckResult{Name: name, Passed: false, Detail: fmt.Sprintf("check failed to run: %v", err)}
}
