// Package recall provides the execution venue client for the Recall
// sandbox API: balance queries and trade submission.
package recall

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/meletis/driftguard/internal/domain"
	"github.com/rs/zerolog"
)

// ErrNoAPIKey is returned when trade execution is attempted without
// credentials. Balance queries fail the same way; preview-only deployments
// never call either.
var ErrNoAPIKey = errors.New("recall API key not configured")

// Client for the Recall sandbox API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Recall client.
func NewClient(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
		log:     log.With().Str("client", "recall").Logger(),
	}
}

// GetBalances returns whole-token balances per symbol.
func (c *Client) GetBalances() (domain.Holdings, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/balance", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build balance request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("balance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("balance API returned status %d", resp.StatusCode)
	}

	var holdings domain.Holdings
	if err := json.NewDecoder(resp.Body).Decode(&holdings); err != nil {
		return nil, fmt.Errorf("failed to parse balance response: %w", err)
	}

	return holdings, nil
}

// tradeRequest is the /api/trade/execute payload. Amount is an integer
// string in the asset's smallest units.
type tradeRequest struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

type tradeResponse struct {
	Status string `json:"status"`
}

// ExecuteTrade submits one swap and returns the venue's status string.
func (c *Client) ExecuteTrade(fromToken, toToken, baseUnits, reason string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	payload, err := json.Marshal(tradeRequest{
		FromToken: fromToken,
		ToToken:   toToken,
		Amount:    baseUnits,
		Reason:    reason,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal trade request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/trade/execute", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build trade request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("trade request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("trade API returned status %d", resp.StatusCode)
	}

	var result tradeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse trade response: %w", err)
	}
	if result.Status == "" {
		result.Status = "unknown"
	}

	return result.Status, nil
}

// SetBaseURL overrides the API base URL. Tests point this at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}
