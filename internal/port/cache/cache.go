// Package cache defines the port interface for the content-addressed result cache.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value result caching. Get returns
// ok=false for both missing and expired entries (lazy expiry; no eager
// sweep). Set fully overwrites any existing entry under the key.
// Implementations must serialize concurrent access to the same key without
// contending unrelated keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
