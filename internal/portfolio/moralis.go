// Package portfolio answers on-demand wallet-portfolio lookups against
// the Moralis token API. Stateless request/response only; nothing here
// touches the store.
package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"nightwatcher/internal/config"
	"nightwatcher/internal/models"
)

// moralisToken is a single entry of the Moralis wallet tokens response.
type moralisToken struct {
	Symbol      string  `json:"symbol"`
	Balance     string  `json:"balance"`
	Decimals    int     `json:"decimals"`
	USDValue    float64 `json:"usd_value"`
	NativeToken bool    `json:"native_token"`
}

// moralisResponse is the Moralis wallet tokens envelope.
type moralisResponse struct {
	Result []moralisToken `json:"result"`
}

// Client queries wallet portfolios from Moralis.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a portfolio client with the default Moralis base URL.
func NewClient(apiKey string) *Client {
	slog.Info("portfolio client initialized",
		"baseURL", config.MoralisAPIURL,
		"hasAPIKey", apiKey != "",
	)
	return NewClientWithURL(config.MoralisAPIURL, apiKey)
}

// NewClientWithURL creates a portfolio client with a custom base URL (for testing).
func NewClientWithURL(baseURL, apiKey string) *Client {
	return &Client{
		client:  &http.Client{Timeout: config.PortfolioRequestTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Fetch returns a portfolio snapshot for address on the given chain.
// Unavailability surfaces as config.ErrPortfolioUnavailable.
func (c *Client) Fetch(ctx context.Context, address, chain string) (*models.PortfolioSnapshot, error) {
	reqURL := fmt.Sprintf("%s/wallets/%s/tokens?chain=%s",
		c.baseURL, url.PathEscape(address), url.QueryEscape(chain))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", config.ErrPortfolioUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("moralis request failed",
			"address", address,
			"chain", chain,
			"error", err,
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return nil, fmt.Errorf("%w: %v", config.ErrPortfolioUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("moralis non-200 response",
			"address", address,
			"chain", chain,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: HTTP %d", config.ErrPortfolioUnavailable, resp.StatusCode)
	}

	var envelope moralisResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", config.ErrPortfolioUnavailable, err)
	}

	snapshot := buildSnapshot(address, chain, envelope.Result)

	slog.Info("portfolio fetched",
		"address", address,
		"chain", chain,
		"tokens", snapshot.TokenCount,
		"totalUSD", snapshot.TotalUSD,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return snapshot, nil
}

// buildSnapshot aggregates raw token entries into a PortfolioSnapshot.
func buildSnapshot(address, chain string, tokens []moralisToken) *models.PortfolioSnapshot {
	snapshot := &models.PortfolioSnapshot{
		Address: address,
		Chain:   chain,
	}

	var holdings []models.TokenHolding
	for _, t := range tokens {
		if t.NativeToken {
			snapshot.NativeSymbol = t.Symbol
			snapshot.NativeBalance = humanBalance(t.Balance, t.Decimals)
			snapshot.NativeUSD = t.USDValue
			continue
		}
		snapshot.TokenCount++
		snapshot.TokenUSD += t.USDValue
		holdings = append(holdings, models.TokenHolding{
			Symbol:   t.Symbol,
			USDValue: t.USDValue,
		})
	}
	snapshot.TotalUSD = snapshot.NativeUSD + snapshot.TokenUSD

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].USDValue > holdings[j].USDValue
	})
	if len(holdings) > config.PortfolioTopTokens {
		holdings = holdings[:config.PortfolioTopTokens]
	}
	snapshot.TopTokens = holdings

	return snapshot
}

// humanBalance converts a raw token amount string to a float using the
// token's decimals. Returns 0 on unparseable input.
func humanBalance(raw string, decimals int) float64 {
	var amount float64
	if _, err := fmt.Sscanf(raw, "%f", &amount); err != nil {
		return 0
	}
	if decimals <= 0 {
		decimals = 18
	}
	return amount / math.Pow10(decimals)
}
