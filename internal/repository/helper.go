package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Mutation methods that must participate in the fund-flow Process
// transaction accept a DBTX so the same code runs inside or outside a
// transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
// Note: mirrors validation.ParseDate; kept local to avoid a cross-layer import.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// FormatDate renders a time as the canonical YYYY-MM-DD storage format.
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
