package responsecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moderngov/internal/components/chrono"
	"moderngov/internal/components/telemetry"
)

const (
	report_layered_get      = "layered.get"
	report_layered_set      = "layered.set"
	report_layered_backfill = "layered.backfill"
)

// Layered tries each store in order, the first store is meant to be the
// fastest. A hit in a later store is copied into the earlier ones for the
// rest of its lifetime.
type Layered struct {
	stores []Store
	clock  chrono.API
	tel    telemetry.API
}

func NewLayered(clock chrono.API, tel telemetry.API, stores ...Store) Layered {
	return Layered{
		stores: stores,
		clock:  clock,
		tel:    telemetry.NewScopedAPI("responsecache", tel),
	}
}

// Get returns the first live entry. A failing layer is reported and skipped,
// it only surfaces as an error when no layer could answer.
func (l Layered) Get(ctx context.Context, key string) (Entry, error) {
	var errs []error
	for i, store := range l.stores {
		entry, err := store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			l.tel.ReportWarning(report_layered_get, fmt.Errorf("layer %d: %w", i, err), key)
			errs = append(errs, err)
			continue
		}
		l.backfill(ctx, i, key, entry)
		return entry, nil
	}
	if len(errs) > 0 {
		return Entry{}, errors.Join(errs...)
	}
	return Entry{}, ErrNotFound
}

func (l Layered) backfill(ctx context.Context, found int, key string, entry Entry) {
	remaining := entry.ExpiresAt.Sub(l.clock.Now())
	if remaining <= 0 {
		return
	}
	for i := 0; i < found; i++ {
		err := l.stores[i].Set(ctx, key, entry.Value, remaining)
		if err != nil {
			l.tel.ReportWarning(report_layered_backfill, fmt.Errorf("layer %d: %w", i, err), key)
		}
	}
}

// Set writes to every layer, it fails only when every layer failed.
func (l Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var errs []error
	for i, store := range l.stores {
		err := store.Set(ctx, key, value, ttl)
		if err != nil {
			l.tel.ReportWarning(report_layered_set, fmt.Errorf("layer %d: %w", i, err), key)
			errs = append(errs, err)
		}
	}
	if len(errs) == len(l.stores) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (l Layered) Close() error {
	var errs []error
	for _, store := range l.stores {
		err := store.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
