package repository

import (
	"database/sql"
	"fmt"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// InvestorRepository provides data access methods for the investor table.
// Investor balances are mutated only through the fund-flow Process transition,
// which passes its *sql.Tx into the Tx-suffixed methods.
type InvestorRepository struct {
	db *sql.DB
}

// NewInvestorRepository creates a new InvestorRepository with the provided database connection.
func NewInvestorRepository(db *sql.DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// InvestorFilter for querying investors
type InvestorFilter struct {
	Status model.InvestorStatus // empty matches all statuses
}

const investorColumns = `id, name, status, current_shares, net_investment, join_date, created_at`

// Create inserts a new investor record.
func (r *InvestorRepository) Create(inv model.Investor) error {
	_, err := r.db.Exec(`
		INSERT INTO investor (id, name, status, current_shares, net_investment, join_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Name, string(inv.Status), inv.CurrentShares, inv.NetInvestment, FormatDate(inv.JoinDate))
	if err != nil {
		return fmt.Errorf("failed to insert investor: %w", err)
	}
	return nil
}

// GetInvestor retrieves a single investor by ID.
// Returns apperrors.ErrInvestorNotFound if no record exists.
func (r *InvestorRepository) GetInvestor(id string) (model.Investor, error) {
	return scanInvestor(r.db.QueryRow(`
		SELECT `+investorColumns+`
		FROM investor
		WHERE id = ?
	`, id))
}

// GetInvestorTx retrieves a single investor inside an open transaction.
// Used by the fund-flow Process transition to read pre-mutation state from
// the same consistent view it will mutate.
func (r *InvestorRepository) GetInvestorTx(q DBTX, id string) (model.Investor, error) {
	return scanInvestor(q.QueryRow(`
		SELECT `+investorColumns+`
		FROM investor
		WHERE id = ?
	`, id))
}

// GetInvestors retrieves investors matching the filter, sorted by join date.
func (r *InvestorRepository) GetInvestors(filter InvestorFilter) ([]model.Investor, error) {
	return r.getInvestors(r.db, filter)
}

// GetInvestorsTx is GetInvestors inside an open transaction, used by the
// invariant checks that run against uncommitted Process state.
func (r *InvestorRepository) GetInvestorsTx(q DBTX, filter InvestorFilter) ([]model.Investor, error) {
	return r.getInvestors(q, filter)
}

func (r *InvestorRepository) getInvestors(q DBTX, filter InvestorFilter) ([]model.Investor, error) {
	query := `
		SELECT ` + investorColumns + `
		FROM investor
	`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY join_date ASC, name ASC`

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query investor table: %w", err)
	}
	defer rows.Close()

	investors := []model.Investor{}
	for rows.Next() {
		var inv model.Investor
		var status, joinDateStr, createdAtStr string
		err := rows.Scan(&inv.ID, &inv.Name, &status, &inv.CurrentShares, &inv.NetInvestment, &joinDateStr, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investor table results: %w", err)
		}
		inv.Status = model.InvestorStatus(status)
		inv.JoinDate, err = ParseTime(joinDateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		inv.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		investors = append(investors, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investor table: %w", err)
	}

	return investors, nil
}

// ActiveShareTotal returns the sum of current shares across active investors.
// This is the outstanding share count the NAV engine divides into portfolio value.
func (r *InvestorRepository) ActiveShareTotal() (float64, error) {
	return r.activeShareTotal(r.db)
}

// ActiveShareTotalTx is ActiveShareTotal inside an open transaction.
func (r *InvestorRepository) ActiveShareTotalTx(q DBTX) (float64, error) {
	return r.activeShareTotal(q)
}

func (r *InvestorRepository) activeShareTotal(q DBTX) (float64, error) {
	var total sql.NullFloat64
	err := q.QueryRow(`
		SELECT SUM(current_shares)
		FROM investor
		WHERE status = ?
	`, string(model.InvestorActive)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum active shares: %w", err)
	}
	return total.Float64, nil
}

// ApplyBalanceDeltaTx adjusts an investor's shares and net investment inside
// an open transaction. The CHECK constraints on the table reject negative
// results, backstopping the service-level guards.
func (r *InvestorRepository) ApplyBalanceDeltaTx(q DBTX, id string, sharesDelta, netInvestmentDelta float64) error {
	result, err := q.Exec(`
		UPDATE investor
		SET current_shares = current_shares + ?,
		    net_investment = net_investment + ?
		WHERE id = ?
	`, sharesDelta, netInvestmentDelta, id)
	if err != nil {
		return fmt.Errorf("failed to update investor balances: %w", err)
	}
	return requireOneRow(result, apperrors.ErrInvestorNotFound)
}

// CloseAccountTx zeroes an investor's shares exactly and marks the account
// inactive. Used for full withdrawals so no residual share dust survives the
// redemption.
func (r *InvestorRepository) CloseAccountTx(q DBTX, id string, netInvestmentDelta float64) error {
	result, err := q.Exec(`
		UPDATE investor
		SET current_shares = 0,
		    net_investment = MAX(0, net_investment + ?),
		    status = ?
		WHERE id = ?
	`, netInvestmentDelta, string(model.InvestorInactive), id)
	if err != nil {
		return fmt.Errorf("failed to close investor account: %w", err)
	}
	return requireOneRow(result, apperrors.ErrInvestorNotFound)
}

// SetStatus updates only the investor status (suspend/reactivate).
func (r *InvestorRepository) SetStatus(id string, status model.InvestorStatus) error {
	result, err := r.db.Exec(`
		UPDATE investor SET status = ? WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update investor status: %w", err)
	}
	return requireOneRow(result, apperrors.ErrInvestorNotFound)
}

func scanInvestor(row *sql.Row) (model.Investor, error) {
	var inv model.Investor
	var status, joinDateStr, createdAtStr string
	err := row.Scan(&inv.ID, &inv.Name, &status, &inv.CurrentShares, &inv.NetInvestment, &joinDateStr, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Investor{}, apperrors.ErrInvestorNotFound
	}
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to scan investor table results: %w", err)
	}
	inv.Status = model.InvestorStatus(status)
	inv.JoinDate, err = ParseTime(joinDateStr)
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to parse date: %w", err)
	}
	inv.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return inv, nil
}

func requireOneRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
