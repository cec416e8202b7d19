// Package store provides the durable key-value backends behind the hint cache.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value store. Values are opaque bytes and the last Set
// for a key wins. Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the store.
	Close() error
}
