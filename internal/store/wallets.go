package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"nightwatcher/internal/config"
	"nightwatcher/internal/models"
)

// AddWallet registers address for the given user with its seed balance.
// Returns config.ErrAlreadyTracked when the (address, user) pair exists.
// The same address may be tracked by different users independently.
func (s *Store) AddWallet(userID int64, address string, initialBalance float64, seeded bool) (*models.Wallet, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin add-wallet transaction: %w", err)
	}

	var existingID int64
	err = tx.QueryRow(
		`SELECT id FROM wallets WHERE address = ? AND user_id = ?`, address, userID,
	).Scan(&existingID)
	if err == nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %s", config.ErrAlreadyTracked, address)
	}
	if err != sql.ErrNoRows {
		tx.Rollback()
		return nil, fmt.Errorf("failed to check existing wallet %s: %w", address, err)
	}

	res, err := tx.Exec(`
		INSERT INTO wallets (address, user_id, last_balance, balance_seeded)
		VALUES (?, ?, ?, ?)`,
		address, userID, initialBalance, boolToInt(seeded),
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert wallet %s for user %d: %w", address, userID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to read new wallet id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit wallet %s for user %d: %w", address, userID, err)
	}

	slog.Info("wallet added",
		"walletID", id,
		"address", address,
		"userID", userID,
		"initialBalance", initialBalance,
		"seeded", seeded,
	)

	return &models.Wallet{
		ID:            id,
		Address:       address,
		UserID:        userID,
		LastBalance:   initialBalance,
		BalanceSeeded: seeded,
	}, nil
}

// ListWallets returns the addresses tracked by the chat's user in
// insertion order. Empty (not an error) when the user is absent.
func (s *Store) ListWallets(chatID int64) ([]string, error) {
	rows, err := s.conn.Query(`
		SELECT w.address
		FROM wallets w
		JOIN users u ON u.id = w.user_id
		WHERE u.chat_id = ?
		ORDER BY w.id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for chat %d: %w", chatID, err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan wallet address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	return addresses, rows.Err()
}

// AllTrackedPairs returns a full snapshot of every (wallet, owner) pair.
// Used exclusively by the poller; wallets registered after the snapshot
// are picked up on the next cycle.
func (s *Store) AllTrackedPairs() ([]models.TrackedWallet, error) {
	rows, err := s.conn.Query(`
		SELECT w.id, w.address, w.user_id, w.last_balance, w.balance_seeded,
		       u.id, u.chat_id
		FROM wallets w
		JOIN users u ON u.id = w.user_id
		ORDER BY w.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot tracked pairs: %w", err)
	}
	defer rows.Close()

	var pairs []models.TrackedWallet
	for rows.Next() {
		var (
			tw     models.TrackedWallet
			seeded int
		)
		if err := rows.Scan(
			&tw.Wallet.ID, &tw.Wallet.Address, &tw.Wallet.UserID,
			&tw.Wallet.LastBalance, &seeded,
			&tw.Owner.ID, &tw.Owner.ChatID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tracked pair: %w", err)
		}
		tw.Wallet.BalanceSeeded = seeded != 0
		pairs = append(pairs, tw)
	}
	return pairs, rows.Err()
}

// UpdateBalance persists a newly observed balance and marks the wallet
// seeded. Must be committed before any notification for the change is
// attempted.
func (s *Store) UpdateBalance(walletID int64, newBalance float64) error {
	res, err := s.conn.Exec(`
		UPDATE wallets SET last_balance = ?, balance_seeded = 1 WHERE id = ?`,
		newBalance, walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance for wallet %d: %w", walletID, err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		// Wallet deregistered between snapshot and update. Not an error.
		slog.Debug("balance update matched no wallet", "walletID", walletID)
	}
	return nil
}

// CountWallets returns the number of tracked wallets. Used by the status endpoint.
func (s *Store) CountWallets() (int64, error) {
	var n int64
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
