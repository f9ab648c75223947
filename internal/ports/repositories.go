package ports

import (
	"context"

	"riskscan/internal/domain"
)

// HistoryRepository persists completed scans.
type HistoryRepository interface {
	Save(ctx context.Context, rec domain.ScanRecord) (domain.ScanRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error)
}

// DomainHistoryRepository reads persisted scans for one registrable domain, newest first.
type DomainHistoryRepository interface {
	ByDomain(ctx context.Context, registrable string, limit int) ([]domain.ScanRecord, error)
}

// CounterStore loads and saves the per-status scan counters. Load must return
// zero counters, not an error, when nothing has been stored yet.
type CounterStore interface {
	Load(ctx context.Context) (domain.Counts, error)
	Save(ctx context.Context, c domain.Counts) error
}

// CounterIncrementer is implemented by stores that can increment atomically.
type CounterIncrementer interface {
	Increment(ctx context.Context, s domain.Status) (domain.Counts, error)
}
