package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrInvestorNotFound indicates that an investor with the given ID does not exist.
	ErrInvestorNotFound = errors.New("investor not found")

	// ErrSnapshotNotFound indicates no NAV snapshot exists for the requested date,
	// or the snapshot history is empty.
	ErrSnapshotNotFound = errors.New("nav snapshot not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrFundFlowNotFound indicates that a fund-flow request with the given ID does not exist.
	ErrFundFlowNotFound = errors.New("fund-flow request not found")

	// ErrBrokerageConfigNotFound indicates brokerage configuration has not been set up.
	ErrBrokerageConfigNotFound = errors.New("brokerage configuration not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrDuplicateSnapshot indicates a NAV snapshot already exists for the date.
	// Re-running the engine for a recorded date is rejected, never overwritten.
	ErrDuplicateSnapshot = errors.New("nav snapshot already exists for date")

	// ErrNotTradingDay indicates the date is not a recognized trading day.
	ErrNotTradingDay = errors.New("date is not a trading day")

	// ErrInceptionNavMismatch indicates the first snapshot did not come out at
	// exactly 1.0000 per share, meaning the inception portfolio value does not
	// equal the sum of inception contributions.
	ErrInceptionNavMismatch = errors.New("inception nav must equal 1.0000")

	// ErrInvalidTransition indicates a fund-flow state change not permitted by
	// the lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid fund-flow state transition")

	// ErrTradeAlreadyMatched indicates the request is already matched to a
	// different brokerage trade.
	ErrTradeAlreadyMatched = errors.New("request already matched to a different trade")

	// ErrInvestorNotActive indicates the investor cannot submit fund flows.
	ErrInvestorNotActive = errors.New("investor is not active")

	// ErrInsufficientValue indicates a withdrawal request exceeds the
	// investor's current value.
	ErrInsufficientValue = errors.New("withdrawal exceeds current investor value")

	// ErrNegativeAmount indicates an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoNavAvailable indicates no committed NAV snapshot exists yet, so
	// fund-flow pricing and position queries cannot proceed.
	ErrNoNavAvailable = errors.New("no nav snapshot available for pricing")

	// ErrTransactionReversed indicates the transaction has already been
	// reversed; a second offsetting entry would double-apply the inverse.
	ErrTransactionReversed = errors.New("transaction already reversed")
)

// Invariant errors represent post-condition failures detected after a
// mutation. The triggering transition is rolled back entirely; the ledger is
// never left in an inconsistent state.
var (
	// ErrInvariantViolation indicates a ledger invariant check failed after a
	// Process transition. The transaction was rolled back.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

// External dependency errors represent failures of collaborators outside the
// accounting core.
var (
	// ErrBrokerageUnavailable indicates the brokerage balance feed could not
	// be reached. The NAV run for the day is skipped, never estimated.
	ErrBrokerageUnavailable = errors.New("brokerage feed unavailable")
)
