package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidAddress       = errors.New("invalid ethereum address")
	ErrAlreadyTracked       = errors.New("wallet already tracked by this user")
	ErrOracleUnavailable    = errors.New("balance oracle unavailable")
	ErrPortfolioUnavailable = errors.New("portfolio provider unavailable")
	ErrRiskCheckFailed      = errors.New("risk check failed")
	ErrNotificationFailed   = errors.New("notification delivery failed")
	ErrCircuitOpen          = errors.New("circuit breaker is open")
)

// Error codes shared with API consumers via error responses.
const (
	ErrorInvalidAddress       = "ERROR_INVALID_ADDRESS"
	ErrorAlreadyTracked       = "ERROR_ALREADY_TRACKED"
	ErrorInvalidRequest       = "ERROR_INVALID_REQUEST"
	ErrorDatabase             = "ERROR_DATABASE"
	ErrorPortfolioUnavailable = "ERROR_PORTFOLIO_UNAVAILABLE"
	ErrorRiskCheckFailed      = "ERROR_RISK_CHECK_FAILED"
)
