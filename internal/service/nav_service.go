package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// BalanceFetcher reads the brokerage-reported total account equity.
// Implemented by brokerage.Client; nil when no brokerage is configured.
type BalanceFetcher interface {
	AccountEquity(ctx context.Context) (float64, error)
}

// NavService is the NAV engine: the single authorized computation path for
// net asset value per share. It is the only component that constructs
// DailyNavSnapshot records; everything else reads them through NavReader.
type NavService struct {
	snapshotRepo *repository.SnapshotRepository
	investorRepo *repository.InvestorRepository
	balances     BalanceFetcher
}

// NewNavService creates a new NavService with the provided repository
// dependencies. balances may be nil when no brokerage feed is configured;
// RunDailyClose then refuses to run and ComputeDailyNav must be invoked with
// an operator-supplied value.
func NewNavService(
	snapshotRepo *repository.SnapshotRepository,
	investorRepo *repository.InvestorRepository,
	balances BalanceFetcher,
) *NavService {
	return &NavService{
		snapshotRepo: snapshotRepo,
		investorRepo: investorRepo,
		balances:     balances,
	}
}

// LatestSnapshot implements NavReader.
func (s *NavService) LatestSnapshot() (model.DailyNavSnapshot, error) {
	return s.snapshotRepo.GetLatest()
}

// SnapshotOn implements NavReader.
func (s *NavService) SnapshotOn(date time.Time) (model.DailyNavSnapshot, error) {
	return s.snapshotRepo.GetByDate(date)
}

// History implements NavReader.
func (s *NavService) History(startDate, endDate time.Time) ([]model.DailyNavSnapshot, error) {
	if endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.snapshotRepo.GetHistory(startDate, endDate)
}

// ComputeDailyNav computes and stores the daily NAV snapshot for a trading
// date from the externally sourced total portfolio value.
//
// Preconditions:
//   - totalPortfolioValue is non-negative and finite
//   - date is a trading day (weekends rejected)
//   - no snapshot exists for the date (re-invocation is rejected with
//     apperrors.ErrDuplicateSnapshot, never silently overwritten)
//
// nav_per_share = totalPortfolioValue / SUM(active investor shares), rounded
// to 4 decimal places with banker's rounding. With zero shares outstanding
// the NAV is 1.0000 by convention (fund inception). The very first snapshot
// must itself come out at 1.0000: inception portfolio value equals the sum of
// inception contributions, so any other result means the inputs are wrong and
// the run is rejected.
func (s *NavService) ComputeDailyNav(date time.Time, totalPortfolioValue float64) (model.DailyNavSnapshot, error) {
	if totalPortfolioValue < 0 {
		return model.DailyNavSnapshot{}, apperrors.ErrNegativeAmount
	}
	if math.IsNaN(totalPortfolioValue) || math.IsInf(totalPortfolioValue, 0) {
		return model.DailyNavSnapshot{}, fmt.Errorf("total portfolio value is not a finite number")
	}
	if !IsTradingDay(date) {
		return model.DailyNavSnapshot{}, apperrors.ErrNotTradingDay
	}
	if _, err := s.snapshotRepo.GetByDate(date); err == nil {
		return model.DailyNavSnapshot{}, apperrors.ErrDuplicateSnapshot
	} else if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return model.DailyNavSnapshot{}, err
	}

	totalShares, err := s.investorRepo.ActiveShareTotal()
	if err != nil {
		return model.DailyNavSnapshot{}, err
	}
	totalShares = roundShares(totalShares)

	navPerShare := 1.0
	if totalShares > 0 {
		navPerShare = decimal.NewFromFloat(totalPortfolioValue).
			Div(decimal.NewFromFloat(totalShares)).
			RoundBank(4).
			InexactFloat64()
	}

	previous, err := s.snapshotRepo.GetLatest()
	isFirst := errors.Is(err, apperrors.ErrSnapshotNotFound)
	if err != nil && !isFirst {
		return model.DailyNavSnapshot{}, err
	}

	if isFirst && totalShares > 0 && math.Abs(navPerShare-1.0) >= 0.0001 {
		return model.DailyNavSnapshot{}, fmt.Errorf("%w: computed %.4f from value %.2f over %.4f shares",
			apperrors.ErrInceptionNavMismatch, navPerShare, totalPortfolioValue, totalShares)
	}

	var changeDollars, changePercent float64
	if !isFirst {
		if !date.After(previous.Date) {
			return model.DailyNavSnapshot{}, fmt.Errorf("date %s is not after latest snapshot %s",
				date.Format("2006-01-02"), previous.Date.Format("2006-01-02"))
		}
		changeDollars = roundMoney(totalPortfolioValue - previous.TotalPortfolioValue)
		if previous.TotalPortfolioValue > 0 {
			changePercent = decimal.NewFromFloat(changeDollars).
				Div(decimal.NewFromFloat(previous.TotalPortfolioValue)).
				Mul(decimal.NewFromInt(100)).
				RoundBank(4).
				InexactFloat64()
		}
	}

	snapshot := model.DailyNavSnapshot{
		ID:                     uuid.NewString(),
		Date:                   date,
		TotalPortfolioValue:    roundMoney(totalPortfolioValue),
		TotalSharesOutstanding: totalShares,
		NavPerShare:            navPerShare,
		DailyChangeDollars:     changeDollars,
		DailyChangePercent:     changePercent,
	}

	if err := s.snapshotRepo.Insert(snapshot); err != nil {
		return model.DailyNavSnapshot{}, err
	}

	log.Printf("nav: %s nav_per_share=%.4f portfolio=%.2f shares=%.4f",
		snapshot.Date.Format("2006-01-02"), snapshot.NavPerShare,
		snapshot.TotalPortfolioValue, snapshot.TotalSharesOutstanding)

	return snapshot, nil
}

// RunDailyClose is the scheduled end-of-day path: fetch the brokerage account
// equity and compute the day's snapshot. If the feed is unavailable the run
// is skipped for the day; no partial or estimated snapshot is ever written.
func (s *NavService) RunDailyClose(ctx context.Context, date time.Time) (model.DailyNavSnapshot, error) {
	if s.balances == nil {
		return model.DailyNavSnapshot{}, apperrors.ErrBrokerageConfigNotFound
	}

	equity, err := s.balances.AccountEquity(ctx)
	if err != nil {
		return model.DailyNavSnapshot{}, fmt.Errorf("skipping nav run for %s: %w",
			date.Format("2006-01-02"), err)
	}

	return s.ComputeDailyNav(date, equity)
}

// IsTradingDay reports whether the date falls on a trading day. Weekends are
// rejected; exchange holidays are not modeled here, the close job simply has
// no print to consume on those days.
func IsTradingDay(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}
