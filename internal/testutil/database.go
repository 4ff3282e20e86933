package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pool connection gets its own :memory: database, so the pool
	// must be pinned to a single connection or concurrent queries see an
	// empty schema.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Investor table
		CREATE TABLE IF NOT EXISTS investor (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'active',
			current_shares FLOAT NOT NULL DEFAULT 0,
			net_investment FLOAT NOT NULL DEFAULT 0,
			join_date DATE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK (current_shares >= 0),
			CHECK (net_investment >= 0)
		);

		-- Daily NAV snapshot table
		CREATE TABLE IF NOT EXISTS daily_nav_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			date DATE NOT NULL UNIQUE,
			total_portfolio_value FLOAT NOT NULL,
			total_shares_outstanding FLOAT NOT NULL,
			nav_per_share FLOAT NOT NULL,
			daily_change_dollars FLOAT NOT NULL DEFAULT 0,
			daily_change_percent FLOAT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK (total_portfolio_value >= 0),
			CHECK (nav_per_share >= 0)
		);

		-- Fund flow request table
		CREATE TABLE IF NOT EXISTS fund_flow_request (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			investor_id VARCHAR(36) NOT NULL,
			flow_type VARCHAR(12) NOT NULL,
			requested_amount FLOAT NOT NULL,
			actual_amount FLOAT NOT NULL DEFAULT 0,
			status VARCHAR(14) NOT NULL DEFAULT 'pending',
			matched_trade_id VARCHAR(64),
			shares_transacted FLOAT NOT NULL DEFAULT 0,
			nav_per_share_at_processing FLOAT NOT NULL DEFAULT 0,
			realized_gain FLOAT NOT NULL DEFAULT 0,
			rejection_reason TEXT,
			processing_note TEXT,
			notes TEXT,
			request_date DATE NOT NULL,
			processed_date DATE,
			FOREIGN KEY(investor_id) REFERENCES investor(id)
		);

		-- Transaction table
		CREATE TABLE IF NOT EXISTS "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			investor_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			type VARCHAR(14) NOT NULL,
			amount FLOAT NOT NULL,
			nav_at_transaction FLOAT NOT NULL,
			shares_delta FLOAT NOT NULL,
			reference_id VARCHAR(36),
			reversal_of VARCHAR(36),
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(investor_id) REFERENCES investor(id),
			FOREIGN KEY(reversal_of) REFERENCES "transaction"(id)
		);

		-- Tax event table
		CREATE TABLE IF NOT EXISTS tax_event (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			investor_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			withdrawal_amount FLOAT NOT NULL,
			realized_gain FLOAT NOT NULL,
			tax_due FLOAT NOT NULL,
			net_proceeds FLOAT NOT NULL,
			tax_rate FLOAT NOT NULL,
			tax_policy VARCHAR(24) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(investor_id) REFERENCES investor(id)
		);

		-- Brokerage config table
		CREATE TABLE IF NOT EXISTS brokerage_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(64) NOT NULL,
			base_url VARCHAR(255) NOT NULL,
			encrypted_token TEXT NOT NULL,
			token_expires_at DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_transaction_investor ON "transaction"(investor_id, date);
		CREATE INDEX IF NOT EXISTS idx_tax_event_investor ON tax_event(investor_id, date);
		CREATE INDEX IF NOT EXISTS idx_fund_flow_status ON fund_flow_request(status, request_date);
	`

	_, err := db.Exec(schema)
	return err
}
