package responsecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"moderngov/internal/components/assert"
	"moderngov/internal/components/chrono"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS response_cache (
	key TEXT PRIMARY KEY NOT NULL,
	value BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS response_cache_expires_at ON response_cache(expires_at);
`

// SQLStore keeps entries in a response_cache table, it works with both the
// local sqlite driver and a remote libsql database.
type SQLStore struct {
	db    *sql.DB
	clock chrono.API
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open cache db: %w", err)
}

// OpenSQLite opens (creating if necessary) a sqlite cache at path, ":memory:"
// gives a throwaway database.
func OpenSQLite(path string, clock chrono.API) (*SQLStore, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// sqlite only supports a single writer, one connection also keeps
	// ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, wrapOpenDB(err)
		}
	}

	return NewSQLStore(db, clock)
}

// OpenLibsql connects to a remote libsql database so several machines can
// share one cache.
func OpenLibsql(dbUrl, authToken string, clock chrono.API) (*SQLStore, error) {
	if authToken != "" {
		parsed, err := url.Parse(dbUrl)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		query := parsed.Query()
		query.Set("authToken", authToken)
		parsed.RawQuery = query.Encode()
		dbUrl = parsed.String()
	}

	db, err := sql.Open("libsql", dbUrl)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return NewSQLStore(db, clock)
}

// NewSQLStore creates the cache table if needed and drops rows that have
// already expired.
func NewSQLStore(db *sql.DB, clock chrono.API) (*SQLStore, error) {
	assert.NotNil(db)
	assert.NotNil(clock)

	_, err := db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	_, err = db.Exec(
		"DELETE FROM response_cache WHERE expires_at <= ?",
		clock.Now().UnixMilli(),
	)
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return &SQLStore{db: db, clock: clock}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		"SELECT value, created_at, expires_at FROM response_cache WHERE key = ? AND expires_at > ?",
		key,
		s.clock.Now().UnixMilli(),
	)

	var value []byte
	var createdAt, expiresAt int64
	err := row.Scan(&value, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("read cache entry: %w", err)
	}

	return Entry{
		Value:     value,
		CreatedAt: time.UnixMilli(createdAt),
		ExpiresAt: time.UnixMilli(expiresAt),
	}, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.clock.Now()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO response_cache (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		key,
		value,
		now.UnixMilli(),
		now.Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
