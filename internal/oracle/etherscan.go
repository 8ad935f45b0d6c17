package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"

	"nightwatcher/internal/config"
)

// etherscanResponse is the top-level Etherscan API response envelope.
type etherscanResponse struct {
	Status  string `json:"status"` // "1" = success, "0" = error
	Message string `json:"message"`
	Result  string `json:"result"` // balance in wei
}

// EtherscanOracle fetches native balances via the Etherscan account API.
// This is the reference oracle binding.
type EtherscanOracle struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *RateLimiter
	breaker     *CircuitBreaker
}

// NewEtherscanOracle creates an Etherscan oracle with the default base URL.
func NewEtherscanOracle(client *http.Client, apiKey string) *EtherscanOracle {
	slog.Info("etherscan oracle created",
		"baseURL", config.EtherscanAPIURL,
		"hasAPIKey", apiKey != "",
	)
	return newEtherscanOracle(client, config.EtherscanAPIURL, apiKey)
}

// NewEtherscanOracleWithURL creates an Etherscan oracle pointing at a
// custom base URL (for testing).
func NewEtherscanOracleWithURL(client *http.Client, baseURL, apiKey string) *EtherscanOracle {
	return newEtherscanOracle(client, baseURL, apiKey)
}

func newEtherscanOracle(client *http.Client, baseURL, apiKey string) *EtherscanOracle {
	return &EtherscanOracle{
		client:      client,
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: NewRateLimiter("etherscan", config.RateLimitEtherscan),
		breaker:     NewCircuitBreaker(config.CircuitBreakerThreshold, config.CircuitBreakerCooldown),
	}
}

func (o *EtherscanOracle) Name() string { return "etherscan" }

// Balance returns the current ETH balance of address. Timeouts, non-200
// responses, explorer error statuses, and malformed bodies all surface as
// config.ErrOracleUnavailable.
func (o *EtherscanOracle) Balance(ctx context.Context, address string) (float64, error) {
	if !o.breaker.Allow() {
		return 0, fmt.Errorf("%w: %v", config.ErrOracleUnavailable, config.ErrCircuitOpen)
	}

	if err := o.rateLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: rate limiter: %v", config.ErrOracleUnavailable, err)
	}

	balance, err := o.fetchBalance(ctx, address)
	if err != nil {
		o.breaker.RecordFailure()
		return 0, err
	}

	o.breaker.RecordSuccess()
	return balance, nil
}

func (o *EtherscanOracle) fetchBalance(ctx context.Context, address string) (float64, error) {
	reqURL := fmt.Sprintf("%s?module=account&action=balance&address=%s&tag=latest&apikey=%s",
		o.baseURL, url.QueryEscape(address), url.QueryEscape(o.apiKey))

	slog.Debug("fetching balance from etherscan", "address", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", config.ErrOracleUnavailable, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", config.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read response body: %v", config.ErrOracleUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("%w: rate limited (HTTP 429)", config.ErrOracleUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d", config.ErrOracleUnavailable, resp.StatusCode)
	}

	var envelope etherscanResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("%w: parse response: %v", config.ErrOracleUnavailable, err)
	}

	if envelope.Status != "1" {
		return 0, fmt.Errorf("%w: etherscan API error: %s", config.ErrOracleUnavailable, envelope.Message)
	}

	balance, ok := weiToETH(envelope.Result)
	if !ok {
		return 0, fmt.Errorf("%w: malformed wei amount %q", config.ErrOracleUnavailable, envelope.Result)
	}

	slog.Debug("balance fetched",
		"oracle", "etherscan",
		"address", address,
		"balance", balance,
	)
	return balance, nil
}

// weiToETH converts a decimal wei string to ETH.
func weiToETH(wei string) (float64, bool) {
	amount := new(big.Float)
	if _, ok := amount.SetString(wei); !ok {
		return 0, false
	}
	eth, _ := new(big.Float).Quo(amount, big.NewFloat(config.WeiPerETH)).Float64()
	return eth, true
}
