package common

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheInterface defines the contract for cache implementations. Values are
// stored as JSON so both backends hand back the same concrete types.
type CacheInterface interface {
	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get decodes the value stored under key into dest, or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Name identifies the backend in health checks
	Name() string

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
