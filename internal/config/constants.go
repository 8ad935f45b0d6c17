package config

import "time"

// Polling
const (
	// PollInterval is the fixed delay between balance scan cycles.
	// A tunable constant, not configurable per wallet.
	PollInterval = 15 * time.Second

	// BalanceEpsilon is the tolerance band around zero used to treat
	// near-equal balances as unchanged. 1e-9 ETH is one gwei, below any
	// balance unit a user cares about.
	BalanceEpsilon = 1e-9
)

// Oracle
const (
	OracleRequestTimeout = 10 * time.Second
	WeiPerETH            = 1e18

	RateLimitEtherscan = 5 // requests per second, free tier

	CircuitBreakerThreshold   = 5
	CircuitBreakerCooldown    = 30 * time.Second
	CircuitBreakerHalfOpenMax = 1
)

// Circuit breaker states
const (
	CircuitClosed   = "closed"
	CircuitOpen     = "open"
	CircuitHalfOpen = "half-open"
)

// External API base URLs
const (
	EtherscanAPIURL = "https://api.etherscan.io/api"
	MoralisAPIURL   = "https://deep-index.moralis.io/api/v2.2"
	GoPlusAPIURL    = "https://api.gopluslabs.io/api/v1/address_security"
	TelegramAPIURL  = "https://api.telegram.org"

	// GoPlusChainID selects Ethereum mainnet for risk lookups.
	GoPlusChainID = "1"
)

// Collaborator timeouts
const (
	PortfolioRequestTimeout = 15 * time.Second
	RiskRequestTimeout      = 10 * time.Second
	NotifyRequestTimeout    = 10 * time.Second
)

// Database
const (
	DBBusyTimeout = 5000 // milliseconds
)

// Server
const (
	ServerReadTimeout  = 30 * time.Second
	ServerWriteTimeout = 60 * time.Second
)

// Graceful shutdown
const (
	ShutdownTimeout = 10 * time.Second
)

// Logging
const (
	LogFilePrefix = "nightwatcher-"
	LogMaxAgeDays = 14
)

// Portfolio
const (
	PortfolioTopTokens = 3
)
