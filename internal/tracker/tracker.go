// Package tracker is the registration boundary between command handlers
// and the store. It validates input before any store or oracle
// interaction and surfaces typed outcomes, never unhandled faults.
package tracker

import (
	"context"
	"errors"
	"log/slog"

	"nightwatcher/internal/config"
	"nightwatcher/internal/models"
	"nightwatcher/internal/oracle"
	"nightwatcher/internal/store"
	"nightwatcher/internal/validate"
)

// Tracker wires wallet registration, listing, and deregistration.
type Tracker struct {
	store  *store.Store
	oracle oracle.Oracle
}

// New creates a Tracker over the given store and balance oracle.
func New(st *store.Store, o oracle.Oracle) *Tracker {
	return &Tracker{store: st, oracle: o}
}

// Track registers address for the chat's user. The address is validated
// and lowercase-normalized first; malformed input never reaches the
// store. The initial balance is seeded from one synchronous oracle query;
// when the oracle is unavailable the wallet is seeded 0 and flagged so
// the poller's first real observation is persisted without a spurious
// change notification.
func (t *Tracker) Track(ctx context.Context, chatID int64, address string) (*models.Wallet, error) {
	normalized, err := validate.Address(address)
	if err != nil {
		return nil, err
	}

	user, err := t.store.GetOrCreateUser(chatID)
	if err != nil {
		return nil, err
	}

	seedCtx, cancel := context.WithTimeout(ctx, config.OracleRequestTimeout)
	balance, err := t.oracle.Balance(seedCtx, normalized)
	cancel()

	seeded := true
	if err != nil {
		if !errors.Is(err, config.ErrOracleUnavailable) {
			return nil, err
		}
		slog.Warn("initial balance unavailable, seeding zero",
			"chatID", chatID,
			"address", normalized,
			"error", err,
		)
		balance = 0
		seeded = false
	}

	wallet, err := t.store.AddWallet(user.ID, normalized, balance, seeded)
	if err != nil {
		if errors.Is(err, config.ErrAlreadyTracked) {
			slog.Info("duplicate registration ignored",
				"chatID", chatID,
				"address", normalized,
			)
		}
		return nil, err
	}

	slog.Info("wallet tracked",
		"chatID", chatID,
		"address", normalized,
		"initialBalance", balance,
	)
	return wallet, nil
}

// List returns the chat's tracked addresses in insertion order. An
// unknown chat yields an empty list, not an error.
func (t *Tracker) List(ctx context.Context, chatID int64) ([]string, error) {
	return t.store.ListWallets(chatID)
}

// StopTracking removes every wallet owned by the chat's user and the
// user record itself. Safe to call for a chat that tracks nothing.
func (t *Tracker) StopTracking(ctx context.Context, chatID int64) error {
	return t.store.RemoveAll(chatID)
}
