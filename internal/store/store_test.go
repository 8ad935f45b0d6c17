package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a temporary SQLite store for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.sqlite")

	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := st.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	t.Cleanup(func() { st.Close() })
	return st
}

func TestNew_CreatesDatabaseFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "sub", "dir", "test.sqlite")

	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file should exist after New()")
	}
}

func TestRunMigrations_CreatesAllTables(t *testing.T) {
	st := newTestStore(t)

	tables := []string{"users", "wallets"}
	for _, table := range tables {
		var name string
		err := st.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist: %v", table, err)
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	st := newTestStore(t)

	// Running migrations again must be a no-op.
	if err := st.RunMigrations(); err != nil {
		t.Errorf("RunMigrations() second call error = %v", err)
	}
}

func TestWalletsTable_UniquePerUser(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Conn().Exec(`INSERT INTO users (id, chat_id) VALUES (1, 100)`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := st.Conn().Exec(
		`INSERT INTO wallets (address, user_id) VALUES ('0xabc', 1)`); err != nil {
		t.Fatalf("insert wallet: %v", err)
	}

	_, err := st.Conn().Exec(`INSERT INTO wallets (address, user_id) VALUES ('0xabc', 1)`)
	if err == nil {
		t.Error("duplicate (address, user_id) insert should violate UNIQUE constraint")
	}
}

func TestPing(t *testing.T) {
	st := newTestStore(t)

	if err := st.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
