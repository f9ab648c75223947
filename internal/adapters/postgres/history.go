package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

var (
	_ ports.HistoryRepository       = (*DB)(nil)
	_ ports.DomainHistoryRepository = (*DB)(nil)
)

// Save inserts a scan record and returns it with its id and timestamp.
func (db *DB) Save(ctx context.Context, rec domain.ScanRecord) (domain.ScanRecord, error) {
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO scan_history (url, domain, result)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, rec.URL, strings.ToLower(rec.Domain), rec.Result).Scan(&rec.ID, &rec.CreatedAt)
	return rec, err
}

// Recent returns the latest scans, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, url, domain, result, created_at
        FROM scan_history
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// ByDomain returns the latest scans for one registrable domain.
func (db *DB) ByDomain(ctx context.Context, registrable string, limit int) ([]domain.ScanRecord, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, url, domain, result, created_at
        FROM scan_history
        WHERE domain = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, strings.ToLower(registrable), limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]domain.ScanRecord, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScanRecord, error) {
		var r domain.ScanRecord
		err := row.Scan(&r.ID, &r.URL, &r.Domain, &r.Result, &r.CreatedAt)
		return r, err
	})
	if out == nil {
		out = []domain.ScanRecord{}
	}
	return out, err
}
