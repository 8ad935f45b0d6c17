package models

// User is an owner of tracked wallets, identified by an opaque chat ID.
type User struct {
	ID     int64 `json:"id"`
	ChatID int64 `json:"chat_id"`
}

// Wallet is a tracked Ethereum address with its last observed native balance.
type Wallet struct {
	ID          int64   `json:"id"`
	Address     string  `json:"address"`
	UserID      int64   `json:"user_id"`
	LastBalance float64 `json:"last_balance"`
	// BalanceSeeded is false when the initial balance could not be fetched
	// at registration. The first successful observation of such a wallet is
	// persisted without a notification.
	BalanceSeeded bool `json:"balance_seeded"`
}

// TrackedWallet pairs a wallet with its owner for one poll cycle.
type TrackedWallet struct {
	Wallet Wallet
	Owner  User
}

// TokenHolding is a single ERC-20 position inside a portfolio snapshot.
type TokenHolding struct {
	Symbol   string  `json:"symbol"`
	USDValue float64 `json:"usd_value"`
}

// PortfolioSnapshot summarizes a wallet's holdings on one chain.
type PortfolioSnapshot struct {
	Address       string         `json:"address"`
	Chain         string         `json:"chain"`
	NativeSymbol  string         `json:"native_symbol"`
	NativeBalance float64        `json:"native_balance"`
	NativeUSD     float64        `json:"native_usd"`
	TokenCount    int            `json:"token_count"`
	TokenUSD      float64        `json:"token_usd"`
	TotalUSD      float64        `json:"total_usd"`
	TopTokens     []TokenHolding `json:"top_tokens"`
}

// RiskVerdict is the outcome of an address security lookup.
type RiskVerdict struct {
	Address   string   `json:"address"`
	Malicious bool     `json:"malicious"`
	Flags     []string `json:"flags"`
}
