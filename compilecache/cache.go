// Package compilecache provides a pluggable key/value cache the compiler
// uses to skip re-analyzing source files and re-flattening blueprints that
// haven't changed since the last build. It is adapted from the teacher's
// runtime checkpoint store, narrowed to a single get/put contract since the
// compiler has no need for step history, named checkpoints, or an event
// outbox.
package compilecache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when key has no cached entry.
var ErrNotFound = errors.New("compilecache: not found")

// Cache stores compiler-internal artifacts (a file analyzer's discovered
// exports, a builder's flattened blueprint) keyed by a content hash the
// caller computes. T must be JSON-serializable.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, error)
	Put(ctx context.Context, key string, value T) error
	Close() error
}
