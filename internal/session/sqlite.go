package session

import (
	"context"
	"database/sql"
	"errors"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the credential in a key-value table of a local SQLite file.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens the database at path and creates the key-value table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}

	// A single connection keeps ":memory:" databases shared across calls.
	conn.SetMaxOpenConns(1)

	_, err = conn.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		conn.Close()
		return nil, &StorageError{Op: "migrate", Err: err}
	}

	return &SQLiteStore{conn: conn}, nil
}

// Save upserts the credential row.
func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, TokenKey, token)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

// Get reads the credential row.
func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	var token string
	err := s.conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "get", Err: err}
	}
	return token, true, nil
}

// Clear deletes the credential row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", TokenKey); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
