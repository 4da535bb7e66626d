// Package cache stores chain responses between runs.
//
// Every backend implements [Cache]. Misses are reported with ok == false and
// a nil error; errors are reserved for backend failures, which callers treat
// as a miss after logging.
//
// Backends:
//
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers and CI runners
//   - [NullCache]: stores nothing (--no-cache)
//
// Keys are built with [TokenKey] so that every backend shares one layout.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is how long token metadata stays cached. Token URIs of a
// revealed collection do not change, so the window is long.
const DefaultTTL = 7 * 24 * time.Hour
