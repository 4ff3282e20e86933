package testutil

import (
	"database/sql"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

// NewTestNavService builds a NavService on the test database without a
// brokerage feed.
func NewTestNavService(t *testing.T, db *sql.DB) *service.NavService {
	t.Helper()

	snapshotRepo := repository.NewSnapshotRepository(db)
	investorRepo := repository.NewInvestorRepository(db)

	return service.NewNavService(
		snapshotRepo,
		investorRepo,
		nil,
	)
}

// NewTestTaxService builds a TaxService with the given policy name and rate.
func NewTestTaxService(t *testing.T, db *sql.DB, policy string, rate float64) *service.TaxService {
	t.Helper()

	taxPolicy, err := service.NewTaxPolicy(config.TaxConfig{Policy: policy, Rate: rate})
	if err != nil {
		t.Fatalf("Failed to build tax policy: %v", err)
	}

	return service.NewTaxService(
		repository.NewTaxEventRepository(db),
		taxPolicy,
	)
}

// NewTestValidationService builds a ValidationService on the test database
// without a brokerage feed.
func NewTestValidationService(t *testing.T, db *sql.DB) *service.ValidationService {
	t.Helper()

	return service.NewValidationService(
		repository.NewInvestorRepository(db),
		repository.NewSnapshotRepository(db),
		repository.NewTransactionRepository(db),
		NewTestNavService(t, db),
		nil,
	)
}

// NewTestFundFlowService builds a fully wired FundFlowService with the
// default quarterly-settlement tax policy at 37%.
func NewTestFundFlowService(t *testing.T, db *sql.DB) *service.FundFlowService {
	t.Helper()
	return NewTestFundFlowServiceWithPolicy(t, db, config.TaxPolicyQuarterlySettlement, 0.37)
}

// NewTestFundFlowServiceWithPolicy builds a fully wired FundFlowService with
// an explicit tax policy.
func NewTestFundFlowServiceWithPolicy(t *testing.T, db *sql.DB, policy string, rate float64) *service.FundFlowService {
	t.Helper()

	return service.NewFundFlowService(
		db,
		repository.NewFundFlowRepository(db),
		repository.NewInvestorRepository(db),
		repository.NewTransactionRepository(db),
		NewTestTaxService(t, db, policy, rate),
		NewTestNavService(t, db),
		NewTestValidationService(t, db),
	)
}

// NewTestInvestorService builds an InvestorService on the test database.
func NewTestInvestorService(t *testing.T, db *sql.DB) *service.InvestorService {
	t.Helper()

	return service.NewInvestorService(
		repository.NewInvestorRepository(db),
		NewTestTaxService(t, db, config.TaxPolicyQuarterlySettlement, 0.37),
		NewTestNavService(t, db),
	)
}

// NewTestTransactionService builds a TransactionService on the test database.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewInvestorRepository(db),
	)
}

// NewTestSystemService builds a SystemService on the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// MakeID generates a new UUID string for testing.
func MakeID() string {
	return uuid.New().String()
}

// MakeInvestorName generates a unique investor name for testing.
func MakeInvestorName(base string) string {
	if base == "" {
		base = "Investor"
	}
	return base + " " + randomAlphanumeric(6)
}

// Date parses a YYYY-MM-DD string, panicking on malformed input. Test dates
// are literals, so a parse failure is a bug in the test itself.
func Date(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic("testutil: bad date literal: " + value)
	}
	return d
}

// AssertClose fails the test when got is not within tolerance of want.
func AssertClose(t *testing.T, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tolerance)
	}
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
