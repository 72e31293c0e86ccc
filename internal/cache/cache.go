// Package cache provides the byte stores behind the directory cache.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key/value store. A miss is (nil, false, nil).
type Store interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
