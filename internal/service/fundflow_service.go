package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// FundFlowService drives contribution and withdrawal requests through their
// lifecycle. Process is the only transition that touches ledger balances; it
// runs per-investor serialized, inside a single database transaction, and is
// rolled back entirely if the post-condition invariant checks fail.
type FundFlowService struct {
	db              *sql.DB
	fundFlowRepo    *repository.FundFlowRepository
	investorRepo    *repository.InvestorRepository
	transactionRepo *repository.TransactionRepository
	taxService      *TaxService
	nav             NavReader
	checks          *ValidationService
	locks           *investorLocks
}

// NewFundFlowService creates a new FundFlowService with the provided
// dependencies. The NavReader is the stored-snapshot view; this service never
// computes a NAV of its own.
func NewFundFlowService(
	db *sql.DB,
	fundFlowRepo *repository.FundFlowRepository,
	investorRepo *repository.InvestorRepository,
	transactionRepo *repository.TransactionRepository,
	taxService *TaxService,
	nav NavReader,
	checks *ValidationService,
) *FundFlowService {
	return &FundFlowService{
		db:              db,
		fundFlowRepo:    fundFlowRepo,
		investorRepo:    investorRepo,
		transactionRepo: transactionRepo,
		taxService:      taxService,
		nav:             nav,
		checks:          checks,
		locks:           newInvestorLocks(),
	}
}

// Submit creates a new pending request.
//
// Contributions only require a positive amount and an active investor.
// Withdrawals are additionally checked against the investor's current value
// at the latest NAV; this is advisory, the value can move before processing.
func (s *FundFlowService) Submit(investorID string, flowType model.FlowType, amount float64, notes string) (model.FundFlowRequest, error) {
	if amount <= 0 {
		return model.FundFlowRequest{}, apperrors.ErrNegativeAmount
	}
	if !flowType.Valid() {
		return model.FundFlowRequest{}, fmt.Errorf("invalid flow type: %s", flowType)
	}

	investor, err := s.investorRepo.GetInvestor(investorID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if investor.Status != model.InvestorActive {
		return model.FundFlowRequest{}, apperrors.ErrInvestorNotActive
	}

	if flowType == model.FlowWithdrawal {
		navPerShare, _, err := s.pricingNav()
		if err != nil {
			return model.FundFlowRequest{}, err
		}
		currentValue := roundMoney(investor.CurrentShares * navPerShare)
		if amount > currentValue {
			return model.FundFlowRequest{}, fmt.Errorf("%w: requested %.2f, current value %.2f",
				apperrors.ErrInsufficientValue, amount, currentValue)
		}
	}

	request := model.FundFlowRequest{
		ID:              uuid.NewString(),
		InvestorID:      investorID,
		FlowType:        flowType,
		RequestedAmount: roundMoney(amount),
		ActualAmount:    roundMoney(amount),
		Status:          model.FlowPending,
		Notes:           notes,
		RequestDate:     time.Now().UTC(),
	}

	if err := s.fundFlowRepo.Create(request); err != nil {
		return model.FundFlowRequest{}, err
	}
	return request, nil
}

// Approve is the administrative gate from pending to approved. No ledger side effects.
func (s *FundFlowService) Approve(requestID string) (model.FundFlowRequest, error) {
	return s.transition(requestID, model.FlowApproved)
}

// MarkAwaitingFunds marks an approved contribution as waiting on an incoming
// wire or ACH transfer. Withdrawals never enter this state.
func (s *FundFlowService) MarkAwaitingFunds(requestID string) (model.FundFlowRequest, error) {
	request, err := s.fundFlowRepo.GetRequest(requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if request.FlowType != model.FlowContribution {
		return model.FundFlowRequest{}, fmt.Errorf("%w: only contributions await funds", apperrors.ErrInvalidTransition)
	}
	return s.transition(requestID, model.FlowAwaitingFunds)
}

// Match links the request to an external brokerage transfer record and pins
// the actual transferred amount. Re-matching the same trade id is a no-op;
// matching a different id after an existing match is rejected.
func (s *FundFlowService) Match(requestID, tradeID string, actualAmount *float64) (model.FundFlowRequest, error) {
	request, err := s.fundFlowRepo.GetRequest(requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}

	if request.MatchedTradeID != "" {
		if request.MatchedTradeID == tradeID {
			return request, nil
		}
		return model.FundFlowRequest{}, apperrors.ErrTradeAlreadyMatched
	}

	if !request.Status.CanTransitionTo(model.FlowMatched) {
		return model.FundFlowRequest{}, fmt.Errorf("%w: %s -> %s",
			apperrors.ErrInvalidTransition, request.Status, model.FlowMatched)
	}

	amount := request.ActualAmount
	if actualAmount != nil {
		if *actualAmount <= 0 {
			return model.FundFlowRequest{}, apperrors.ErrNegativeAmount
		}
		amount = roundMoney(*actualAmount)
	}

	if err := s.fundFlowRepo.SetMatch(requestID, request.Status, tradeID, amount); err != nil {
		return model.FundFlowRequest{}, err
	}
	return s.fundFlowRepo.GetRequest(requestID)
}

// Reject terminally rejects the request with a reason. No ledger mutation.
func (s *FundFlowService) Reject(requestID, reason string) (model.FundFlowRequest, error) {
	request, err := s.fundFlowRepo.GetRequest(requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if !request.Status.CanTransitionTo(model.FlowRejected) {
		return model.FundFlowRequest{}, fmt.Errorf("%w: %s -> %s",
			apperrors.ErrInvalidTransition, request.Status, model.FlowRejected)
	}
	if err := s.fundFlowRepo.SetRejection(requestID, request.Status, reason); err != nil {
		return model.FundFlowRequest{}, err
	}
	return s.fundFlowRepo.GetRequest(requestID)
}

// Cancel terminally cancels the request prior to processing. No ledger mutation.
func (s *FundFlowService) Cancel(requestID string) (model.FundFlowRequest, error) {
	return s.transition(requestID, model.FlowCancelled)
}

// GetRequest retrieves one request by ID.
func (s *FundFlowService) GetRequest(requestID string) (model.FundFlowRequest, error) {
	return s.fundFlowRepo.GetRequest(requestID)
}

// ListRequests retrieves requests matching the filter.
func (s *FundFlowService) ListRequests(filter repository.FundFlowFilter) ([]model.FundFlowRequest, error) {
	return s.fundFlowRepo.List(filter)
}

// Process executes the share accounting for a matched request. It is the only
// transition that mutates Investor, Transaction, and TaxEvent state.
//
// The transition is serialized per investor and runs inside one database
// transaction: share issuance or redemption at the stored latest NAV, the
// ledger transaction append, the tax event for withdrawals, and the status
// flip to processed all commit together or not at all. Before committing, the
// core ledger invariants are re-checked against the uncommitted state; a
// failure rolls everything back, leaves the request in matched, and attaches
// the diagnostic to the request.
func (s *FundFlowService) Process(requestID string) (model.FundFlowRequest, error) {
	request, err := s.fundFlowRepo.GetRequest(requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if request.Status != model.FlowMatched {
		return model.FundFlowRequest{}, fmt.Errorf("%w: process requires matched, got %s",
			apperrors.ErrInvalidTransition, request.Status)
	}

	unlock := s.locks.Lock(request.InvestorID)
	defer unlock()

	// NAV is read from the committed snapshot store before the atomic
	// section; the engine is never consulted mid-transaction.
	navPerShare, _, err := s.pricingNav()
	if err != nil {
		return model.FundFlowRequest{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.FundFlowRequest{}, fmt.Errorf("failed to begin process transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	// Re-read under the lock: another operator may have won the race
	// between the status check above and lock acquisition.
	request, err = s.fundFlowRepo.GetRequestTx(tx, requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if request.Status != model.FlowMatched {
		return model.FundFlowRequest{}, fmt.Errorf("%w: process requires matched, got %s",
			apperrors.ErrInvalidTransition, request.Status)
	}

	investor, err := s.investorRepo.GetInvestorTx(tx, request.InvestorID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}

	amount := request.ActualAmount
	if amount <= 0 {
		amount = request.RequestedAmount
	}
	now := time.Now().UTC()

	switch request.FlowType {
	case model.FlowContribution:
		err = s.processContribution(tx, request, investor, amount, navPerShare, now)
	case model.FlowWithdrawal:
		err = s.processWithdrawal(tx, request, investor, amount, navPerShare, now)
	default:
		err = fmt.Errorf("invalid flow type: %s", request.FlowType)
	}
	if err != nil {
		return model.FundFlowRequest{}, err
	}

	// Post-condition: the ledger invariants must hold on the uncommitted
	// state. Any failure aborts the whole transition.
	if failures, err := s.checks.CheckLedgerTx(tx); err != nil {
		return model.FundFlowRequest{}, err
	} else if len(failures) > 0 {
		detail := failures[0].Name + ": " + failures[0].Detail
		if rbErr := tx.Rollback(); rbErr != nil {
			return model.FundFlowRequest{}, fmt.Errorf("failed to roll back process transaction: %w", rbErr)
		}
		if noteErr := s.fundFlowRepo.SetProcessingNote(requestID, detail); noteErr != nil {
			log.Printf("fund-flow %s: failed to attach diagnostic: %v", requestID, noteErr)
		}
		return model.FundFlowRequest{}, fmt.Errorf("%w: %s", apperrors.ErrInvariantViolation, detail)
	}

	if err := tx.Commit(); err != nil {
		return model.FundFlowRequest{}, fmt.Errorf("failed to commit process transaction: %w", err)
	}

	return s.fundFlowRepo.GetRequest(requestID)
}

func (s *FundFlowService) processContribution(tx *sql.Tx, request model.FundFlowRequest, investor model.Investor, amount, navPerShare float64, now time.Time) error {
	sharesIssued := roundShares(decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(navPerShare)).
		InexactFloat64())

	if err := s.investorRepo.ApplyBalanceDeltaTx(tx, investor.ID, sharesIssued, roundMoney(amount)); err != nil {
		return err
	}

	txType := model.TransactionContribution
	if investor.CurrentShares == 0 && investor.NetInvestment == 0 {
		txType = model.TransactionInitial
	}
	if err := s.transactionRepo.InsertTx(tx, model.Transaction{
		ID:               uuid.NewString(),
		InvestorID:       investor.ID,
		Date:             now,
		Type:             txType,
		Amount:           roundMoney(amount),
		NavAtTransaction: navPerShare,
		SharesDelta:      sharesIssued,
		ReferenceID:      request.ID,
	}); err != nil {
		return err
	}

	return s.fundFlowRepo.SetProcessedTx(tx, request.ID, sharesIssued, navPerShare, 0, now)
}

func (s *FundFlowService) processWithdrawal(tx *sql.Tx, request model.FundFlowRequest, investor model.Investor, amount, navPerShare float64, now time.Time) error {
	breakdown := s.taxService.EstimateGain(investor, amount, navPerShare)
	if breakdown.CurrentValue <= 0 {
		return fmt.Errorf("%w: investor holds no value", apperrors.ErrInsufficientValue)
	}

	sharesRedeemed := roundShares(decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(navPerShare)).
		InexactFloat64())

	// Principal portion reduces cost basis; the gain portion is carried on
	// the tax event, so transaction amount sums keep matching net investment.
	principal := roundMoney(amount - breakdown.RealizedGain)

	fullClose := sharesRedeemed >= investor.CurrentShares || amount >= breakdown.CurrentValue
	if fullClose {
		sharesRedeemed = investor.CurrentShares
		principal = investor.NetInvestment
		if err := s.investorRepo.CloseAccountTx(tx, investor.ID, -principal); err != nil {
			return err
		}
	} else {
		if err := s.investorRepo.ApplyBalanceDeltaTx(tx, investor.ID, -sharesRedeemed, -principal); err != nil {
			return err
		}
	}

	if err := s.transactionRepo.InsertTx(tx, model.Transaction{
		ID:               uuid.NewString(),
		InvestorID:       investor.ID,
		Date:             now,
		Type:             model.TransactionWithdrawal,
		Amount:           -principal,
		NavAtTransaction: navPerShare,
		SharesDelta:      -sharesRedeemed,
		ReferenceID:      request.ID,
	}); err != nil {
		return err
	}

	event := s.taxService.BuildTaxEvent(uuid.NewString(), investor.ID, now, amount, breakdown)
	if err := s.taxService.RecordEventTx(tx, event); err != nil {
		return err
	}

	return s.fundFlowRepo.SetProcessedTx(tx, request.ID, sharesRedeemed, navPerShare, breakdown.RealizedGain, now)
}

// pricingNav returns the NAV used to price issuance and redemption: the
// latest committed snapshot, or 1.0000 by convention before the first
// snapshot exists (fund inception, when initial contributions are processed
// ahead of the first daily close).
func (s *FundFlowService) pricingNav() (float64, time.Time, error) {
	snapshot, err := s.nav.LatestSnapshot()
	if errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return 1.0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return snapshot.NavPerShare, snapshot.Date, nil
}

// transition applies a status-only lifecycle change guarded by the state machine.
func (s *FundFlowService) transition(requestID string, to model.FlowStatus) (model.FundFlowRequest, error) {
	request, err := s.fundFlowRepo.GetRequest(requestID)
	if err != nil {
		return model.FundFlowRequest{}, err
	}
	if !request.Status.CanTransitionTo(to) {
		return model.FundFlowRequest{}, fmt.Errorf("%w: %s -> %s",
			apperrors.ErrInvalidTransition, request.Status, to)
	}
	if err := s.fundFlowRepo.TransitionStatus(requestID, request.Status, to); err != nil {
		return model.FundFlowRequest{}, err
	}
	return s.fundFlowRepo.GetRequest(requestID)
}
