// Package memory is an in-process scan history used when no database is configured.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

type History struct {
	mu     sync.Mutex
	nextID int64
	data   []domain.ScanRecord
}

var (
	_ ports.HistoryRepository       = (*History)(nil)
	_ ports.DomainHistoryRepository = (*History)(nil)
)

func NewHistory() *History { return &History{} }

func (h *History) Save(ctx context.Context, rec domain.ScanRecord) (domain.ScanRecord, error) {
	h.mu.Lock()
	h.nextID++
	rec.ID = h.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	h.data = append(h.data, rec)
	h.mu.Unlock()
	slog.Debug("stored scan", "id", rec.ID, "url", rec.URL)
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	return h.collect(limit, func(domain.ScanRecord) bool { return true }), nil
}

func (h *History) ByDomain(ctx context.Context, registrable string, limit int) ([]domain.ScanRecord, error) {
	return h.collect(limit, func(r domain.ScanRecord) bool { return r.Domain == registrable }), nil
}

func (h *History) collect(limit int, keep func(domain.ScanRecord) bool) []domain.ScanRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []domain.ScanRecord{}
	for i := len(h.data) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(h.data[i]) {
			out = append(out, h.data[i])
		}
	}
	return out
}
