package compilecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteCache is a single-file, zero-setup Cache backend, the natural choice
// for a single developer's checkout. Schema is one table: key/value, value
// holding the JSON encoding of T.
type SQLiteCache[T any] struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (creating if absent) a SQLite-backed cache at path.
// Use ":memory:" for a cache that never touches disk.
func NewSQLiteCache[T any](path string) (*SQLiteCache[T], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("compilecache: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("compilecache: enable WAL: %w", err)
	}
	schema := `
		CREATE TABLE IF NOT EXISTS compile_cache (
			key TEXT NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("compilecache: create schema: %w", err)
	}

	return &SQLiteCache[T]{db: db}, nil
}

func (c *SQLiteCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	var raw string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM compile_cache WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("compilecache: query: %w", err)
	}
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return zero, fmt.Errorf("compilecache: decode cached value: %w", err)
	}
	return value, nil
}

func (c *SQLiteCache[T]) Put(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("compilecache: encode value: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO compile_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("compilecache: write: %w", err)
	}
	return nil
}

func (c *SQLiteCache[T]) Close() error { return c.db.Close() }
