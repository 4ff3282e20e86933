package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// TaxEventRepository provides data access methods for the tax_event table.
// Events are written once per processed withdrawal and read by the quarterly
// settlement consumer; they are never updated or deleted.
type TaxEventRepository struct {
	db *sql.DB
}

// NewTaxEventRepository creates a new TaxEventRepository with the provided database connection.
func NewTaxEventRepository(db *sql.DB) *TaxEventRepository {
	return &TaxEventRepository{db: db}
}

const taxEventColumns = `id, investor_id, date, withdrawal_amount, realized_gain,
	tax_due, net_proceeds, tax_rate, tax_policy, created_at`

// InsertTx appends a tax event inside an open transaction.
func (r *TaxEventRepository) InsertTx(q DBTX, e model.TaxEvent) error {
	_, err := q.Exec(`
		INSERT INTO tax_event
			(id, investor_id, date, withdrawal_amount, realized_gain,
			 tax_due, net_proceeds, tax_rate, tax_policy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.InvestorID, FormatDate(e.Date), e.WithdrawalAmount, e.RealizedGain,
		e.TaxDue, e.NetProceeds, e.TaxRate, e.TaxPolicy)
	if err != nil {
		return fmt.Errorf("failed to insert tax event: %w", err)
	}
	return nil
}

// GetEvents retrieves tax events within the inclusive date range, optionally
// filtered by investor, oldest first.
func (r *TaxEventRepository) GetEvents(investorID string, startDate, endDate time.Time) ([]model.TaxEvent, error) {
	query := `
		SELECT ` + taxEventColumns + `
		FROM tax_event
		WHERE date >= ? AND date <= ?
	`
	args := []any{FormatDate(startDate), FormatDate(endDate)}
	if investorID != "" {
		query += ` AND investor_id = ?`
		args = append(args, investorID)
	}
	query += ` ORDER BY date ASC, created_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_event table: %w", err)
	}
	defer rows.Close()

	events := []model.TaxEvent{}
	for rows.Next() {
		var e model.TaxEvent
		var dateStr, createdAtStr string
		err := rows.Scan(&e.ID, &e.InvestorID, &dateStr, &e.WithdrawalAmount, &e.RealizedGain,
			&e.TaxDue, &e.NetProceeds, &e.TaxRate, &e.TaxPolicy, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax_event table results: %w", err)
		}
		e.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		e.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_event table: %w", err)
	}

	return events, nil
}

// QuarterlySummary aggregates tax events per investor for the inclusive date
// range, joined with investor names for the settlement report.
func (r *TaxEventRepository) QuarterlySummary(startDate, endDate time.Time) ([]model.QuarterlyTaxSummary, error) {
	rows, err := r.db.Query(`
		SELECT e.investor_id, i.name,
		       SUM(e.withdrawal_amount), SUM(e.realized_gain), SUM(e.tax_due), COUNT(*)
		FROM tax_event e
		JOIN investor i ON e.investor_id = i.id
		WHERE e.date >= ? AND e.date <= ?
		GROUP BY e.investor_id, i.name
		ORDER BY i.name ASC
	`, FormatDate(startDate), FormatDate(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query quarterly tax summary: %w", err)
	}
	defer rows.Close()

	summaries := []model.QuarterlyTaxSummary{}
	for rows.Next() {
		var s model.QuarterlyTaxSummary
		err := rows.Scan(&s.InvestorID, &s.InvestorName,
			&s.TotalWithdrawals, &s.TotalRealizedGain, &s.TotalTaxDue, &s.EventCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quarterly tax summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quarterly tax summary: %w", err)
	}

	return summaries, nil
}
