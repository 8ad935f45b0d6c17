// Package oracle provides native-balance lookups for Ethereum addresses.
//
// An Oracle reports the current balance of an address or signals
// unavailability by returning an error wrapping
// config.ErrOracleUnavailable. It never fabricates an amount: the poller
// treats unavailability as "skip this wallet until next cycle".
package oracle

import "context"

// Oracle is the balance collaborator consumed by the registration
// boundary and the poller. Any HTTP or RPC balance source satisfying
// this contract is substitutable.
type Oracle interface {
	// Name returns the binding identifier (e.g. "etherscan", "ethrpc").
	Name() string
	// Balance returns the current native balance of address in ETH.
	Balance(ctx context.Context, address string) (float64, error)
}
