package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"nightwatcher/internal/config"
	"nightwatcher/internal/models"
)

// CycleStats summarizes one poll cycle.
type CycleStats struct {
	Scanned        int  `json:"scanned"`
	Changed        int  `json:"changed"`
	Seeded         int  `json:"seeded"`
	Unavailable    int  `json:"unavailable"`
	NotifyFailures int  `json:"notify_failures"`
	StoreFailures  int  `json:"store_failures"`
	Aborted        bool `json:"aborted"`
}

// RunCycle executes one full scan over all tracked wallets. Exported so
// tests and callers can drive cycles without the timer.
//
// Per-wallet failure handling is degraded-continue: an unreachable
// oracle or an unreachable user never blocks tracking for the rest of
// the fleet. Only globally unavailable storage aborts the remainder of a
// cycle.
func (w *Watcher) RunCycle(ctx context.Context) CycleStats {
	var stats CycleStats

	pairs, err := w.store.AllTrackedPairs()
	if err != nil {
		slog.Error("snapshot read failed, skipping cycle", "error", err)
		stats.Aborted = true
		return stats
	}

	for _, pair := range pairs {
		if ctx.Err() != nil {
			stats.Aborted = true
			return stats
		}
		stats.Scanned++

		balanceCtx, cancel := context.WithTimeout(ctx, config.OracleRequestTimeout)
		balance, err := w.oracle.Balance(balanceCtx, pair.Wallet.Address)
		cancel()
		if err != nil {
			// Absorbed per wallet; naturally retried next cycle.
			slog.Warn("balance unavailable, skipping wallet",
				"address", pair.Wallet.Address,
				"chatID", pair.Owner.ChatID,
				"error", err,
			)
			stats.Unavailable++
			continue
		}

		if !pair.Wallet.BalanceSeeded {
			// First successful observation of a wallet whose seed query
			// failed at registration: persist silently, no notification.
			if !w.persistBalance(pair, balance, &stats) {
				if stats.Aborted {
					return stats
				}
				continue
			}
			slog.Info("initial balance observed",
				"address", pair.Wallet.Address,
				"chatID", pair.Owner.ChatID,
				"balance", balance,
			)
			stats.Seeded++
			continue
		}

		delta := balance - pair.Wallet.LastBalance
		if math.Abs(delta) <= config.BalanceEpsilon {
			continue
		}

		// Persist before notifying: a failed delivery leaves state
		// correct, the user just misses one message.
		if !w.persistBalance(pair, balance, &stats) {
			if stats.Aborted {
				return stats
			}
			continue
		}
		stats.Changed++

		slog.Info("balance change detected",
			"address", pair.Wallet.Address,
			"chatID", pair.Owner.ChatID,
			"delta", delta,
			"newBalance", balance,
		)

		msg := formatChange(pair.Wallet.Address, delta, balance)
		if err := w.sink.Send(ctx, pair.Owner.ChatID, msg); err != nil {
			slog.Warn("notification delivery failed",
				"sink", w.sink.Name(),
				"chatID", pair.Owner.ChatID,
				"address", pair.Wallet.Address,
				"error", err,
			)
			stats.NotifyFailures++
		}
	}

	return stats
}

// persistBalance commits a balance observation. A single-record failure
// is logged distinctly from oracle failures and skips only that wallet;
// when the store itself is unreachable the cycle is aborted.
func (w *Watcher) persistBalance(pair models.TrackedWallet, balance float64, stats *CycleStats) bool {
	if err := w.store.UpdateBalance(pair.Wallet.ID, balance); err != nil {
		stats.StoreFailures++
		if pingErr := w.store.Ping(); pingErr != nil {
			slog.Error("storage unavailable, aborting cycle",
				"error", err,
				"pingError", pingErr,
			)
			stats.Aborted = true
			return false
		}
		slog.Error("balance persist failed for wallet",
			"walletID", pair.Wallet.ID,
			"address", pair.Wallet.Address,
			"error", err,
		)
		return false
	}
	return true
}

// formatChange renders the notification body: wallet address, signed
// delta with a direction glyph, and the new balance.
func formatChange(address string, delta, newBalance float64) string {
	sign := "⬆️"
	if delta < 0 {
		sign = "⬇️"
	}
	return fmt.Sprintf("Wallet: %s\n%s Balance changed by %+.6f ETH\nNew balance: %.6f ETH",
		address, sign, delta, newBalance)
}
