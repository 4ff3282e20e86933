package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// table. The table is append-only: rows are inserted by the fund-flow Process
// transition or by a reversal, never updated (the is_deleted marker on a
// reversed original is the single exception, set alongside the offsetting
// insert).
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, investor_id, date, type, amount, nav_at_transaction,
	shares_delta, reference_id, reversal_of, is_deleted, created_at`

// InsertTx appends a transaction inside an open transaction.
func (r *TransactionRepository) InsertTx(q DBTX, t model.Transaction) error {
	_, err := q.Exec(`
		INSERT INTO "transaction"
			(id, investor_id, date, type, amount, nav_at_transaction,
			 shares_delta, reference_id, reversal_of, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.InvestorID, FormatDate(t.Date), string(t.Type), t.Amount, t.NavAtTransaction,
		t.SharesDelta, nullString(t.ReferenceID), nullString(t.ReversalOf), t.IsDeleted)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no record exists.
func (r *TransactionRepository) GetTransaction(id string) (model.Transaction, error) {
	return scanTransaction(r.db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE id = ?
	`, id))
}

// GetByInvestor retrieves all transactions for one investor, oldest first.
func (r *TransactionRepository) GetByInvestor(investorID string) ([]model.Transaction, error) {
	return r.queryTransactions(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE investor_id = ?
		ORDER BY date ASC, created_at ASC
	`, investorID)
}

// GetByDateRange retrieves all transactions within the inclusive date range, oldest first.
func (r *TransactionRepository) GetByDateRange(startDate, endDate time.Time) ([]model.Transaction, error) {
	return r.queryTransactions(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, created_at ASC
	`, FormatDate(startDate), FormatDate(endDate))
}

// SumAmountsByInvestor returns per-investor transaction amount sums.
// Reversal pairs cancel out arithmetically, so no is_deleted filter is
// applied: the sums must reconstruct net_investment from the raw ledger.
func (r *TransactionRepository) SumAmountsByInvestor() (map[string]float64, error) {
	return r.sumAmountsByInvestor(r.db)
}

// SumAmountsByInvestorTx is SumAmountsByInvestor inside an open transaction.
func (r *TransactionRepository) SumAmountsByInvestorTx(q DBTX) (map[string]float64, error) {
	return r.sumAmountsByInvestor(q)
}

func (r *TransactionRepository) sumAmountsByInvestor(q DBTX) (map[string]float64, error) {
	rows, err := q.Query(`
		SELECT investor_id, SUM(amount)
		FROM "transaction"
		GROUP BY investor_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]float64)
	for rows.Next() {
		var investorID string
		var sum float64
		if err := rows.Scan(&investorID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan transaction sums: %w", err)
		}
		sums[investorID] = sum
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction sums: %w", err)
	}

	return sums, nil
}

// SumSharesDeltaAfter returns the net share movement recorded strictly after
// the given date. The share-total check uses it to bridge the gap between the
// latest snapshot and fund flows processed since.
func (r *TransactionRepository) SumSharesDeltaAfter(date time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM(shares_delta)
		FROM "transaction"
		WHERE date > ?
	`, FormatDate(date)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum share deltas: %w", err)
	}
	return total.Float64, nil
}

// MarkReversedTx flags the original transaction of a reversal pair. Reports
// apperrors.ErrTransactionReversed if the row is already flagged, which makes
// reversal idempotent under concurrent attempts.
func (r *TransactionRepository) MarkReversedTx(q DBTX, id string) error {
	result, err := q.Exec(`
		UPDATE "transaction"
		SET is_deleted = TRUE
		WHERE id = ? AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark transaction reversed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionReversed
	}
	return nil
}

func (r *TransactionRepository) queryTransactions(query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var txType, dateStr, createdAtStr string
		var referenceID, reversalOf sql.NullString
		err := rows.Scan(&t.ID, &t.InvestorID, &dateStr, &txType, &t.Amount, &t.NavAtTransaction,
			&t.SharesDelta, &referenceID, &reversalOf, &t.IsDeleted, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		t.Type = model.TransactionType(txType)
		t.ReferenceID = referenceID.String
		t.ReversalOf = reversalOf.String
		t.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row *sql.Row) (model.Transaction, error) {
	var t model.Transaction
	var txType, dateStr, createdAtStr string
	var referenceID, reversalOf sql.NullString
	err := row.Scan(&t.ID, &t.InvestorID, &dateStr, &txType, &t.Amount, &t.NavAtTransaction,
		&t.SharesDelta, &referenceID, &reversalOf, &t.IsDeleted, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}
	t.Type = model.TransactionType(txType)
	t.ReferenceID = referenceID.String
	t.ReversalOf = reversalOf.String
	t.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}
	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
