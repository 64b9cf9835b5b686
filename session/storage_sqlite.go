package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStorage keeps entries in a single-table SQLite database, the same
// shape a browser uses for local storage.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStorage, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}
	// one connection also keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating session storage schema: %w", err)
	}
	if path != ":memory:" {
		_ = os.Chmod(path, 0o600)
	}
	return &SQLiteStorage{db: db}, nil
}

// Get implements [Storage].
func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, nil
}

// Set implements [Storage]. ttl is ignored.
func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// Delete implements [Storage].
func (s *SQLiteStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
