package ports

import (
	"context"
	"time"
)

// Cache is a shared byte-oriented key-value cache (Redis in production).
// Implementations should degrade gracefully so callers can fall back to the
// primary datastore on error.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 means no expiration).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the keys; absence is not an error.
	Delete(ctx context.Context, keys ...string) error
}
