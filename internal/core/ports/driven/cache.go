package driven

import (
	"context"
	"time"
)

// CacheStore is key-value persistence with TTL support, used for both
// candidate pools and per-item embeddings.
//
// It is a performance cache, not a correctness-critical store: a read
// concurrent with a write to the same key may observe either value, and
// expired entries are equivalent to absent ones. An absent or expired
// key is domain.ErrCacheMiss.
type CacheStore interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	// A non-positive ttl means the entry never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the value stored under key. Deleting an absent key
	// is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}
