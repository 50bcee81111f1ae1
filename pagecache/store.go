package pagecache

import (
	"context"
	"time"
)

// Store is the page cache contract.
//
// Get reports whether key is present (ok) together with its value. Set writes
// the value for key; ttl <= 0 means the store's default TTL.
type Store interface {
	Driver() Driver
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	clone := make([]byte, len(value))
	copy(clone, value)
	return clone
}
