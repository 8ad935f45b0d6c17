package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"nightwatcher/internal/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCOracle fetches native balances from an Ethereum JSON-RPC node via
// go-ethereum's ethclient. Substitutable for the explorer binding when a
// node URL is configured.
type RPCOracle struct {
	client *ethclient.Client
	url    string
}

// DialRPC connects to the JSON-RPC endpoint at rawURL.
func DialRPC(ctx context.Context, rawURL string) (*RPCOracle, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial eth rpc %q: %w", rawURL, err)
	}

	slog.Info("eth rpc oracle created", "url", rawURL)
	return &RPCOracle{client: client, url: rawURL}, nil
}

func (o *RPCOracle) Name() string { return "ethrpc" }

// Balance returns the latest ETH balance of address.
func (o *RPCOracle) Balance(ctx context.Context, address string) (float64, error) {
	wei, err := o.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", config.ErrOracleUnavailable, err)
	}

	eth, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei),
		big.NewFloat(config.WeiPerETH),
	).Float64()

	slog.Debug("balance fetched",
		"oracle", "ethrpc",
		"address", address,
		"balance", eth,
	)
	return eth, nil
}

// Close releases the underlying RPC connection.
func (o *RPCOracle) Close() {
	o.client.Close()
}
