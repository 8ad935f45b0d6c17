package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"nightwatcher/internal/models"
)

// GetOrCreateUser returns the user for chatID, creating it if absent.
// Idempotent: repeated calls return the same row.
func (s *Store) GetOrCreateUser(chatID int64) (*models.User, error) {
	u, err := s.UserByChatID(chatID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	res, err := s.conn.Exec(`INSERT INTO users (chat_id) VALUES (?)`, chatID)
	if err != nil {
		// Lost a race with a concurrent insert, re-read.
		if existing, readErr := s.UserByChatID(chatID); readErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to insert user for chat %d: %w", chatID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id for chat %d: %w", chatID, err)
	}

	slog.Info("user created", "userID", id, "chatID", chatID)
	return &models.User{ID: id, ChatID: chatID}, nil
}

// UserByChatID returns the user for chatID, or nil if none exists.
func (s *Store) UserByChatID(chatID int64) (*models.User, error) {
	u := &models.User{}
	err := s.conn.QueryRow(`SELECT id, chat_id FROM users WHERE chat_id = ?`, chatID).
		Scan(&u.ID, &u.ChatID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user for chat %d: %w", chatID, err)
	}
	return u, nil
}

// RemoveAll deletes all wallets owned by the chat's user, then the user
// itself, in a single transaction. No-op when the user is absent.
func (s *Store) RemoveAll(chatID int64) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin remove-all transaction: %w", err)
	}

	var userID int64
	err = tx.QueryRow(`SELECT id FROM users WHERE chat_id = ?`, chatID).Scan(&userID)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil
	}
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to look up user for chat %d: %w", chatID, err)
	}

	res, err := tx.Exec(`DELETE FROM wallets WHERE user_id = ?`, userID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete wallets for user %d: %w", userID, err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, userID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit remove-all for chat %d: %w", chatID, err)
	}

	slog.Info("user removed", "userID", userID, "chatID", chatID, "walletsRemoved", removed)
	return nil
}

// CountUsers returns the number of users. Used by the status endpoint.
func (s *Store) CountUsers() (int64, error) {
	var n int64
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
