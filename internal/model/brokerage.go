package model

import "time"

// BrokerageConfig holds the connection settings for the external brokerage
// account backing the fund. A single row exists; the API token is stored
// fernet-encrypted and decrypted only when building the client.
type BrokerageConfig struct {
	ID             string     `json:"id"`
	AccountID      string     `json:"accountId"`
	BaseURL        string     `json:"baseUrl"`
	EncryptedToken string     `json:"-"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenWarning   string     `json:"tokenWarning,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
}

// BrokeragePosition is one holding reported by the brokerage positions feed.
// Consumed only by the external reconciliation check.
type BrokeragePosition struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	MarketValue float64 `json:"marketValue"`
}
