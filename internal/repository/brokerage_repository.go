package repository

import (
	"database/sql"
	"fmt"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// BrokerageRepository provides data access for the brokerage_config singleton
// row. The API token is stored fernet-encrypted; decryption happens in the
// brokerage package when the client is built.
type BrokerageRepository struct {
	db *sql.DB
}

// NewBrokerageRepository creates a new BrokerageRepository with the provided database connection.
func NewBrokerageRepository(db *sql.DB) *BrokerageRepository {
	return &BrokerageRepository{db: db}
}

// GetConfig retrieves the brokerage configuration.
// Returns apperrors.ErrBrokerageConfigNotFound if none has been set up.
func (r *BrokerageRepository) GetConfig() (model.BrokerageConfig, error) {
	var cfg model.BrokerageConfig
	var tokenExpiresAt, updatedAt sql.NullString
	err := r.db.QueryRow(`
		SELECT id, account_id, base_url, encrypted_token, token_expires_at, updated_at
		FROM brokerage_config
		LIMIT 1
	`).Scan(&cfg.ID, &cfg.AccountID, &cfg.BaseURL, &cfg.EncryptedToken, &tokenExpiresAt, &updatedAt)
	if err == sql.ErrNoRows {
		return model.BrokerageConfig{}, apperrors.ErrBrokerageConfigNotFound
	}
	if err != nil {
		return model.BrokerageConfig{}, fmt.Errorf("failed to scan brokerage_config table results: %w", err)
	}
	if tokenExpiresAt.Valid {
		expires, err := ParseTime(tokenExpiresAt.String)
		if err != nil {
			return model.BrokerageConfig{}, fmt.Errorf("failed to parse date: %w", err)
		}
		cfg.TokenExpiresAt = &expires
	}
	if updatedAt.Valid {
		cfg.UpdatedAt, err = ParseTime(updatedAt.String)
		if err != nil {
			return model.BrokerageConfig{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return cfg, nil
}

// UpsertConfig replaces the brokerage configuration row.
func (r *BrokerageRepository) UpsertConfig(cfg model.BrokerageConfig) error {
	var expires any
	if cfg.TokenExpiresAt != nil {
		expires = cfg.TokenExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	_, err := r.db.Exec(`
		INSERT INTO brokerage_config (id, account_id, base_url, encrypted_token, token_expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			base_url = excluded.base_url,
			encrypted_token = excluded.encrypted_token,
			token_expires_at = excluded.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, cfg.ID, cfg.AccountID, cfg.BaseURL, cfg.EncryptedToken, expires)
	if err != nil {
		return fmt.Errorf("failed to upsert brokerage config: %w", err)
	}
	return nil
}
