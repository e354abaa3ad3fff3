// Package responsecache stores fetched responses under a key for a fixed
// lifetime. Entries are never invalidated explicitly, they only expire.
package responsecache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Store.Get when there is no live entry for a key,
// an expired entry is reported the same way as a missing one.
var ErrNotFound = errors.New("responsecache: entry not found")

type Entry struct {
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is a key-value store with expiry. Implementations must be safe for
// concurrent use and atomic per key, concurrent writers of the same key
// resolve to the last write.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
