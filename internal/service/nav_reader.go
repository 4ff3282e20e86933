package service

import (
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// NavReader is the read-only view of the NAV history. Every component that
// prices shares or reports values depends on this interface, which can only
// fetch stored snapshots. Construction of snapshots is reserved to the
// NavService, turning the single-source-of-truth rule into a module boundary
// instead of a convention.
type NavReader interface {
	// LatestSnapshot returns the most recent committed snapshot, or
	// apperrors.ErrSnapshotNotFound when the history is empty.
	LatestSnapshot() (model.DailyNavSnapshot, error)

	// SnapshotOn returns the snapshot for one date, or
	// apperrors.ErrSnapshotNotFound.
	SnapshotOn(date time.Time) (model.DailyNavSnapshot, error)

	// History returns snapshots within the inclusive date range, ascending.
	History(startDate, endDate time.Time) ([]model.DailyNavSnapshot, error)
}
