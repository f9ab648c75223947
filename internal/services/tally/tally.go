// Package tally holds the process-wide scan counters.
package tally

import (
	"context"
	"log/slog"
	"sync"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

// Tally is loaded once at start-up and persisted after every increment.
type Tally struct {
	mu     sync.Mutex
	store  ports.CounterStore
	counts domain.Counts
}

// Load reads the stored counters. A store error starts the tally at zero.
func Load(ctx context.Context, store ports.CounterStore) *Tally {
	c, err := store.Load(ctx)
	if err != nil {
		slog.Warn("counter store unreadable, starting from zero", "err", err)
		c = domain.Counts{}
	}
	return &Tally{store: store, counts: c}
}

// Record counts one completed scan and persists the result. The in-memory
// counters advance even when persisting fails.
func (t *Tally) Record(ctx context.Context, s domain.Status) (domain.Counts, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if inc, ok := t.store.(ports.CounterIncrementer); ok {
		c, err := inc.Increment(ctx, s)
		if err != nil {
			t.counts = t.counts.Add(s)
			return t.counts, err
		}
		t.counts = c
		return c, nil
	}
	t.counts = t.counts.Add(s)
	return t.counts, t.store.Save(ctx, t.counts)
}

// Snapshot returns the current counters.
func (t *Tally) Snapshot() domain.Counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts
}
