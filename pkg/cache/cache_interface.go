package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer.
// Implementations: Redis (internal/infrastructure/cache) and Nop.
type Cache interface {
	// Get loads key into dest.
	// Returns (found, error):
	// - found = true: cache hit, dest holds the value
	// - found = false: cache miss, dest is untouched
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL. ttl == 0 keeps it forever.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error

	// Ping checks the connection
	Ping(ctx context.Context) error
}

// Nop is a Cache that never hits. Used when Redis is disabled and in tests.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) (bool, error)          { return false, nil }
func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error                         { return nil }
func (Nop) Ping(context.Context) error                                      { return nil }
