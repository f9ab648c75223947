// Package app assembles adapters from configuration for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"riskscan/internal/adapters/backend"
	"riskscan/internal/adapters/counterfile"
	"riskscan/internal/adapters/memory"
	"riskscan/internal/adapters/phishstats"
	pg "riskscan/internal/adapters/postgres"
	rediscounts "riskscan/internal/adapters/redis"
	"riskscan/internal/adapters/urlscan"
	"riskscan/internal/config"
	"riskscan/internal/ports"
	"riskscan/internal/services/scanner"
)

// History is a scan history that may hold resources.
type History interface {
	ports.HistoryRepository
	ports.DomainHistoryRepository
	Close()
}

type memoryHistory struct{ *memory.History }

func (memoryHistory) Close() {}

// OpenHistory connects to Postgres and migrates it, or falls back to memory
// when no database is configured.
func OpenHistory(ctx context.Context, cfg config.Config) (History, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, scan history kept in memory")
		return memoryHistory{memory.NewHistory()}, nil
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenCounterStore prefers Redis when REDIS_URL is set, otherwise the local file.
func OpenCounterStore(ctx context.Context, cfg config.Config) (ports.CounterStore, func(), error) {
	if cfg.RedisURL == "" {
		return counterfile.New(cfg.CountsFile), func() {}, nil
	}
	s, err := rediscounts.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// DirectScanner runs the poll workflow in-process against urlscan.io.
// It returns nil when no API key is configured.
func DirectScanner(cfg config.Config) ports.Scanner {
	if cfg.URLScanAPIKey == "" {
		return nil
	}
	c := urlscan.New(cfg.URLScanBaseURL, cfg.URLScanAPIKey, cfg.HTTPTimeout)
	c.Visibility = cfg.URLScanVisibility
	return scanner.New(c)
}

// RemoteBackend returns a client for BACKEND_URL. Its timeout covers a full
// poll cycle on the server.
func RemoteBackend(cfg config.Config) *backend.Client {
	budget := scanner.DefaultPollDelay*scanner.DefaultMaxAttempts + 2*cfg.HTTPTimeout
	return backend.New(cfg.BackendURL, budget+5*time.Second)
}

func Reputation(cfg config.Config) ports.Reputation {
	return phishstats.New(cfg.PhishStatsBaseURL, cfg.HTTPTimeout)
}
