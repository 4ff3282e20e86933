// Package brokerage provides a read-only client for the external brokerage
// account backing the fund: end-of-day total equity for the NAV engine and a
// positions feed for the external reconciliation check. Nothing in this
// package writes to the brokerage.
package brokerage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/model"
)

// Client fetches account data from the brokerage REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountID  string
	token      string
}

// NewClient builds a client from the stored configuration, decrypting the API
// token with the provided fernet key.
func NewClient(cfg model.BrokerageConfig, fernetKey string) (*Client, error) {
	key, err := fernet.DecodeKey(fernetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}

	token := fernet.VerifyAndDecrypt([]byte(cfg.EncryptedToken), 0, []*fernet.Key{key})
	if token == nil {
		return nil, fmt.Errorf("failed to decrypt brokerage token")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BaseURL,
		accountID:  cfg.AccountID,
		token:      string(token),
	}, nil
}

// EncryptToken encrypts a plaintext API token for storage.
func EncryptToken(token, fernetKey string) (string, error) {
	key, err := fernet.DecodeKey(fernetKey)
	if err != nil {
		return "", fmt.Errorf("failed to decode fernet key: %w", err)
	}
	encrypted, err := fernet.EncryptAndSign([]byte(token), key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt brokerage token: %w", err)
	}
	return string(encrypted), nil
}

// AccountEquity returns the brokerage-reported total account equity in USD.
// This is the post-market-close figure the NAV engine divides by outstanding
// shares; a fetch failure skips the day's NAV run rather than estimating.
func (c *Client) AccountEquity(ctx context.Context) (float64, error) {
	var summary accountSummaryResponse
	url := fmt.Sprintf("%s/v1/accounts/%s/summary", c.baseURL, c.accountID)
	if err := c.getJSON(ctx, url, &summary); err != nil {
		return 0, err
	}
	if summary.Account.TotalEquity < 0 {
		return 0, fmt.Errorf("brokerage reported negative equity: %v", summary.Account.TotalEquity)
	}
	return summary.Account.TotalEquity, nil
}

// Positions returns the brokerage-reported holdings. Consumed only by the
// external reconciliation check.
func (c *Client) Positions(ctx context.Context) ([]model.BrokeragePosition, error) {
	var resp positionsResponse
	url := fmt.Sprintf("%s/v1/accounts/%s/positions", c.baseURL, c.accountID)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	positions := make([]model.BrokeragePosition, len(resp.Positions))
	for i, p := range resp.Positions {
		positions[i] = model.BrokeragePosition{
			Symbol:      p.Symbol,
			Quantity:    p.Quantity,
			MarketValue: p.MarketValue,
		}
	}
	return positions, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build brokerage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBrokerageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", apperrors.ErrBrokerageUnavailable, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode brokerage response: %w", err)
	}
	return nil
}

// TokenWarning returns a human-readable warning when the stored token expires
// within 30 days, or an empty string.
func TokenWarning(cfg model.BrokerageConfig) string {
	if cfg.TokenExpiresAt == nil || cfg.TokenExpiresAt.IsZero() {
		return ""
	}
	diff := time.Until(*cfg.TokenExpiresAt)
	if diff.Hours() <= 720.0 {
		return fmt.Sprintf("Token expires in %d days", int64(diff.Hours()/24))
	}
	return ""
}
