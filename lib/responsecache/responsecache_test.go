package responsecache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"moderngov/internal/components/chrono"
	"moderngov/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func openSQLite(t *testing.T, clock chrono.API) *SQLStore {
	t.Helper()
	store, err := OpenSQLite(":memory:", clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func openMemory(t *testing.T, clock chrono.API) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(context.Background(), MemoryOptions{SizeMB: 8}, clock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// testStoreExpiry is shared by every Store implementation.
func testStoreExpiry(t *testing.T, store Store, clock *chrono.ManualImpl) {
	ctx := context.Background()

	_, err := store.Get(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees")
	require.ErrorIs(t, err, ErrNotFound)

	err = store.Set(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees", []byte(`{"committees":null}`), time.Hour*24)
	require.NoError(t, err)

	entry, err := store.Get(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"committees":null}`), entry.Value)
	require.True(t, entry.CreatedAt.Equal(start))
	require.True(t, entry.ExpiresAt.Equal(start.Add(time.Hour*24)))

	_, err = store.Get(ctx, "https://other.gov.uk/mgWebService.asmx/GetCommittees")
	require.ErrorIs(t, err, ErrNotFound)

	clock.Advance(time.Hour*24 - time.Second)
	_, err = store.Get(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = store.Get(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees")
	require.ErrorIs(t, err, ErrNotFound)

	err = store.Set(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees", []byte("second"), time.Hour)
	require.NoError(t, err)
	entry, err = store.Get(ctx, "https://example.gov.uk/mgWebService.asmx/GetCommittees")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), entry.Value)
}

func TestSQLStore(t *testing.T) {
	clock := chrono.NewManualImpl(start)
	testStoreExpiry(t, openSQLite(t, clock), clock)
}

func TestMemoryStore(t *testing.T) {
	clock := chrono.NewManualImpl(start)
	testStoreExpiry(t, openMemory(t, clock), clock)
}

func TestSQLStorePersists(t *testing.T) {
	clock := chrono.NewManualImpl(start)
	path := filepath.Join(t.TempDir(), "nested", "mgq.cache.db")
	ctx := context.Background()

	first, err := OpenSQLite(path, clock)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "live", []byte("a"), time.Hour))
	require.NoError(t, first.Set(ctx, "short", []byte("b"), time.Minute))
	require.NoError(t, first.Close())

	clock.Advance(time.Minute * 2)

	second, err := OpenSQLite(path, clock)
	require.NoError(t, err)
	defer second.Close()

	entry, err := second.Get(ctx, "live")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), entry.Value)

	_, err = second.Get(ctx, "short")
	require.ErrorIs(t, err, ErrNotFound)

	var rows int
	err = second.db.QueryRow("SELECT COUNT(*) FROM response_cache").Scan(&rows)
	require.NoError(t, err)
	require.Equal(t, 1, rows, "expired rows are dropped on open")
}

type failingStore struct{}

var errBroken = errors.New("disk on fire")

func (failingStore) Get(context.Context, string) (Entry, error) {
	return Entry{}, errBroken
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errBroken
}

func (failingStore) Close() error { return nil }

func TestLayeredBackfill(t *testing.T) {
	clock := chrono.NewManualImpl(start)
	ctx := context.Background()
	memory := openMemory(t, clock)
	disk := openSQLite(t, clock)
	layered := NewLayered(clock, telemetry.NewRecorder(), memory, disk)

	require.NoError(t, disk.Set(ctx, "key", []byte("value"), time.Hour))
	clock.Advance(time.Minute * 10)

	entry, err := layered.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), entry.Value)

	backfilled, err := memory.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), backfilled.Value)
	require.True(t, backfilled.ExpiresAt.Equal(start.Add(time.Hour)), "backfill keeps the original expiry")

	require.NoError(t, layered.Set(ctx, "other", []byte("x"), time.Hour))
	_, err = memory.Get(ctx, "other")
	require.NoError(t, err)
	_, err = disk.Get(ctx, "other")
	require.NoError(t, err)
}

func TestLayeredFailingLayer(t *testing.T) {
	clock := chrono.NewManualImpl(start)
	ctx := context.Background()
	recorder := telemetry.NewRecorder()
	disk := openSQLite(t, clock)
	layered := NewLayered(clock, recorder, failingStore{}, disk)

	require.NoError(t, layered.Set(ctx, "key", []byte("value"), time.Hour))
	entry, err := layered.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), entry.Value)
	require.NotEmpty(t, recorder.Reports("warning"))

	_, err = layered.Get(ctx, "missing")
	require.ErrorIs(t, err, errBroken)

	onlyBroken := NewLayered(clock, recorder, failingStore{})
	require.ErrorIs(t, onlyBroken.Set(ctx, "key", nil, time.Hour), errBroken)
}
