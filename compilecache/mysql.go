package compilecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLCache is a shared Cache backend for a build farm or CI fleet where
// every runner should see artifacts another runner already produced for the
// same content hash.
type MySQLCache[T any] struct {
	db *sql.DB
}

// NewMySQLCache opens a cache backed by an existing MySQL database. dsn
// follows go-sql-driver/mysql's DSN format. The compile_cache table is
// created if it doesn't already exist.
func NewMySQLCache[T any](ctx context.Context, dsn string) (*MySQLCache[T], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("compilecache: open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("compilecache: ping mysql: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS compile_cache (
			cache_key VARCHAR(191) NOT NULL PRIMARY KEY,
			value LONGTEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("compilecache: create schema: %w", err)
	}

	return &MySQLCache[T]{db: db}, nil
}

func (c *MySQLCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	var raw string
	err := c.db.QueryRowContext(ctx, "SELECT value FROM compile_cache WHERE cache_key = ?", key).Scan(&raw)
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

func (c *MySQLCache[T]) Put(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("compilecache: encode value: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO compile_cache (cache_key, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("compilecache: write: %w", err)
	}
	return nil
}

func (c *MySQLCache[T]) Close() error { return c.db.Close() }
