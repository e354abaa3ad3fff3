package responsecache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"moderngov/internal/components/assert"
	"moderngov/internal/components/chrono"

	"github.com/allegro/bigcache/v3"
)

const entryHeaderSize = 16

// MemoryStore is an in-process store on bigcache. Each value is prefixed by
// its creation and expiry time so expiry follows the injected clock rather
// than bigcache's own eviction window.
type MemoryStore struct {
	cache *bigcache.BigCache
	clock chrono.API
}

type MemoryOptions struct {
	// SizeMB bounds the memory held by the store, 0 means unbounded.
	SizeMB int
	// MaxTTL is the longest lifetime any entry will be given, bigcache drops
	// entries older than this on its own.
	MaxTTL time.Duration
}

func NewMemoryStore(ctx context.Context, opts MemoryOptions, clock chrono.API) (*MemoryStore, error) {
	assert.NotNil(clock)

	lifeWindow := opts.MaxTTL
	if lifeWindow <= 0 {
		lifeWindow = time.Hour * 24
	}

	config := bigcache.DefaultConfig(lifeWindow)
	// few shards so that a single large response still fits in one
	config.Shards = 16
	config.HardMaxCacheSize = opts.SizeMB
	config.Verbose = false

	cache, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &MemoryStore{cache: cache, clock: clock}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, error) {
	data, err := s.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read memory entry: %w", err)
	}
	if len(data) < entryHeaderSize {
		s.cache.Delete(key)
		return Entry{}, ErrNotFound
	}

	createdAt := time.UnixMilli(int64(binary.BigEndian.Uint64(data[0:8])))
	expiresAt := time.UnixMilli(int64(binary.BigEndian.Uint64(data[8:16])))
	if !s.clock.Now().Before(expiresAt) {
		s.cache.Delete(key)
		return Entry{}, ErrNotFound
	}

	value := make([]byte, len(data)-entryHeaderSize)
	copy(value, data[entryHeaderSize:])
	return Entry{
		Value:     value,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.clock.Now()

	data := make([]byte, entryHeaderSize+len(value))
	binary.BigEndian.PutUint64(data[0:8], uint64(now.UnixMilli()))
	binary.BigEndian.PutUint64(data[8:16], uint64(now.Add(ttl).UnixMilli()))
	copy(data[entryHeaderSize:], value)

	err := s.cache.Set(key, data)
	if err != nil {
		return fmt.Errorf("write memory entry: %w", err)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return s.cache.Close()
}
