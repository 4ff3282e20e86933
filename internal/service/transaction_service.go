package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
)

// TransactionService handles ledger transaction queries and reversals. The
// ledger is append-only: a reversal is a new offsetting transaction that
// references the original, never a mutation, so the audit log stays complete
// and amount sums keep reconstructing net investment.
type TransactionService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	investorRepo    *repository.InvestorRepository
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	investorRepo *repository.InvestorRepository,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		investorRepo:    investorRepo,
	}
}

// GetTransaction retrieves a single transaction by ID.
func (s *TransactionService) GetTransaction(id string) (model.Transaction, error) {
	return s.transactionRepo.GetTransaction(id)
}

// GetTransactionsForInvestor retrieves an investor's full transaction
// history, oldest first.
func (s *TransactionService) GetTransactionsForInvestor(investorID string) ([]model.Transaction, error) {
	if _, err := s.investorRepo.GetInvestor(investorID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetByInvestor(investorID)
}

// ReverseTransaction appends an offsetting adjustment for a booked
// transaction and applies the inverse balance deltas to the investor. The
// original row is only flagged, never rewritten; flagging doubles as the
// idempotency guard, so a transaction can be reversed at most once.
func (s *TransactionService) ReverseTransaction(id, reason string) (model.Transaction, error) {
	original, err := s.transactionRepo.GetTransaction(id)
	if err != nil {
		return model.Transaction{}, err
	}
	if original.IsDeleted {
		return model.Transaction{}, apperrors.ErrTransactionReversed
	}
	if original.Type == model.TransactionAdjustment {
		return model.Transaction{}, fmt.Errorf("%w: adjustments cannot be reversed", apperrors.ErrTransactionReversed)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if err := s.transactionRepo.MarkReversedTx(tx, id); err != nil {
		return model.Transaction{}, err
	}

	reversal := model.Transaction{
		ID:               uuid.NewString(),
		InvestorID:       original.InvestorID,
		Date:             time.Now().UTC(),
		Type:             model.TransactionAdjustment,
		Amount:           -original.Amount,
		NavAtTransaction: original.NavAtTransaction,
		SharesDelta:      -original.SharesDelta,
		ReferenceID:      original.ReferenceID,
		ReversalOf:       original.ID,
	}
	if err := s.transactionRepo.InsertTx(tx, reversal); err != nil {
		return model.Transaction{}, err
	}

	if err := s.investorRepo.ApplyBalanceDeltaTx(tx, original.InvestorID, -original.SharesDelta, -original.Amount); err != nil {
		return model.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to commit reversal transaction: %w", err)
	}

	log.Printf("transaction %s reversed by %s: %s", original.ID, reversal.ID, reason)
	return reversal, nil
}
