package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// SnapshotRepository provides data access methods for the daily_nav_snapshot
// table. Inserts go through the NAV engine only; every other consumer holds
// this repository behind the read-only service.NavReader interface.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

const snapshotColumns = `id, date, total_portfolio_value, total_shares_outstanding,
	nav_per_share, daily_change_dollars, daily_change_percent, created_at`

// Insert writes a new daily snapshot. The UNIQUE constraint on date turns a
// same-day re-run into apperrors.ErrDuplicateSnapshot rather than an overwrite.
func (r *SnapshotRepository) Insert(s model.DailyNavSnapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO daily_nav_snapshot
			(id, date, total_portfolio_value, total_shares_outstanding,
			 nav_per_share, daily_change_dollars, daily_change_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, FormatDate(s.Date), s.TotalPortfolioValue, s.TotalSharesOutstanding,
		s.NavPerShare, s.DailyChangeDollars, s.DailyChangePercent)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return apperrors.ErrDuplicateSnapshot
		}
		return fmt.Errorf("failed to insert nav snapshot: %w", err)
	}
	return nil
}

// GetLatest returns the most recent committed snapshot.
// Returns apperrors.ErrSnapshotNotFound when the history is empty.
func (r *SnapshotRepository) GetLatest() (model.DailyNavSnapshot, error) {
	return r.getLatest(r.db)
}

// GetLatestTx is GetLatest inside an open transaction.
func (r *SnapshotRepository) GetLatestTx(q DBTX) (model.DailyNavSnapshot, error) {
	return r.getLatest(q)
}

func (r *SnapshotRepository) getLatest(q DBTX) (model.DailyNavSnapshot, error) {
	return scanSnapshot(q.QueryRow(`
		SELECT ` + snapshotColumns + `
		FROM daily_nav_snapshot
		ORDER BY date DESC
		LIMIT 1
	`))
}

// GetByDate returns the snapshot for one date, or apperrors.ErrSnapshotNotFound.
func (r *SnapshotRepository) GetByDate(date time.Time) (model.DailyNavSnapshot, error) {
	return scanSnapshot(r.db.QueryRow(`
		SELECT `+snapshotColumns+`
		FROM daily_nav_snapshot
		WHERE date = ?
	`, FormatDate(date)))
}

// GetFirst returns the inception snapshot (earliest date).
func (r *SnapshotRepository) GetFirst() (model.DailyNavSnapshot, error) {
	return scanSnapshot(r.db.QueryRow(`
		SELECT ` + snapshotColumns + `
		FROM daily_nav_snapshot
		ORDER BY date ASC
		LIMIT 1
	`))
}

// GetHistory returns snapshots within the inclusive date range, ascending.
func (r *SnapshotRepository) GetHistory(startDate, endDate time.Time) ([]model.DailyNavSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT `+snapshotColumns+`
		FROM daily_nav_snapshot
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, FormatDate(startDate), FormatDate(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily_nav_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.DailyNavSnapshot{}
	for rows.Next() {
		var s model.DailyNavSnapshot
		var dateStr, createdAtStr string
		err := rows.Scan(&s.ID, &dateStr, &s.TotalPortfolioValue, &s.TotalSharesOutstanding,
			&s.NavPerShare, &s.DailyChangeDollars, &s.DailyChangePercent, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily_nav_snapshot table results: %w", err)
		}
		s.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		s.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily_nav_snapshot table: %w", err)
	}

	return snapshots, nil
}

// Count returns the number of committed snapshots.
func (r *SnapshotRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM daily_nav_snapshot`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count nav snapshots: %w", err)
	}
	return count, nil
}

func scanSnapshot(row *sql.Row) (model.DailyNavSnapshot, error) {
	var s model.DailyNavSnapshot
	var dateStr, createdAtStr string
	err := row.Scan(&s.ID, &dateStr, &s.TotalPortfolioValue, &s.TotalSharesOutstanding,
		&s.NavPerShare, &s.DailyChangeDollars, &s.DailyChangePercent, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.DailyNavSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return model.DailyNavSnapshot{}, fmt.Errorf("failed to scan daily_nav_snapshot table results: %w", err)
	}
	s.Date, err = ParseTime(dateStr)
	if err != nil {
		return model.DailyNavSnapshot{}, fmt.Errorf("failed to parse date: %w", err)
	}
	s.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.DailyNavSnapshot{}, fmt.Errorf("failed to parse date: %w", err)
	}
	return s, nil
}
