package cache

import (
	"context"
	"time"
)

// Cache is the contract for the shared cache layer.
// Allows swapping the implementation (Redis in deployment, fakes in tests).
type Cache interface {
	// Get reads a key and unmarshals it into dest.
	// Returns (found, error):
	//   - found = true: cache hit, data unmarshaled into dest
	//   - found = false: cache miss, dest untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error

	// Counter operations used by the rate limiter.
	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}
