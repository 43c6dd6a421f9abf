// Package cache provides the key/value stores behind the repository cache.
package cache

import (
	"context"
	"time"
)

// Store keeps JSON-encoded values under string keys with a fixed expiry.
//
// Get reports false on a miss. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
