// Package risk answers on-demand address-security lookups against the
// GoPlus public API. Stateless request/response only.
package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"

	"nightwatcher/internal/config"
	"nightwatcher/internal/models"
)

// goplusResponse is the GoPlus address_security envelope. Result maps
// risk flag names to "0"/"1" strings.
type goplusResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Result  map[string]string `json:"result"`
}

// Client queries address risk from GoPlus. The public endpoint needs no
// API key.
type Client struct {
	client  *http.Client
	baseURL string
	chainID string
}

// NewClient creates a risk client for Ethereum mainnet.
func NewClient() *Client {
	slog.Info("risk client initialized",
		"baseURL", config.GoPlusAPIURL,
		"chainID", config.GoPlusChainID,
	)
	return NewClientWithURL(config.GoPlusAPIURL)
}

// NewClientWithURL creates a risk client with a custom base URL (for testing).
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: config.RiskRequestTimeout},
		baseURL: baseURL,
		chainID: config.GoPlusChainID,
	}
}

// Check returns the risk verdict for address. Transport failures,
// non-200 statuses, and malformed envelopes surface as
// config.ErrRiskCheckFailed.
func (c *Client) Check(ctx context.Context, address string) (*models.RiskVerdict, error) {
	reqURL := fmt.Sprintf("%s/%s?chain_id=%s",
		c.baseURL, url.PathEscape(address), url.QueryEscape(c.chainID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", config.ErrRiskCheckFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrRiskCheckFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", config.ErrRiskCheckFailed, resp.StatusCode)
	}

	var envelope goplusResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", config.ErrRiskCheckFailed, err)
	}

	if envelope.Code != 1 || envelope.Result == nil {
		return nil, fmt.Errorf("%w: unexpected response code %d", config.ErrRiskCheckFailed, envelope.Code)
	}

	var flags []string
	for flag, value := range envelope.Result {
		if value == "1" {
			flags = append(flags, flag)
		}
	}
	sort.Strings(flags)

	verdict := &models.RiskVerdict{
		Address:   address,
		Malicious: len(flags) > 0,
		Flags:     flags,
	}

	slog.Info("risk check completed",
		"address", address,
		"malicious", verdict.Malicious,
		"flags", len(flags),
	)
	return verdict, nil
}
