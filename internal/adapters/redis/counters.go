// Package redis keeps scan counters in a Redis hash so several processes can
// share one tally.
package redis

import (
	"context"
	"fmt"

	log "log/slog"

	"github.com/redis/go-redis/v9"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

// DefaultKey is the hash holding the counters.
const DefaultKey = "riskscan:counts"

const (
	fieldSafe       = "safe"
	fieldSuspicious = "suspicious"
	fieldMalicious  = "malicious"
)

type CounterStore struct {
	Client *redis.Client
	Key    string
}

var (
	_ ports.CounterStore       = (*CounterStore)(nil)
	_ ports.CounterIncrementer = (*CounterStore)(nil)
)

// Open connects using a redis:// URL.
func Open(ctx context.Context, url string) (*CounterStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis counter store connected", "addr", opts.Addr, "db", opts.DB)
	return New(c), nil
}

func New(c *redis.Client) *CounterStore {
	return &CounterStore{Client: c, Key: DefaultKey}
}

func (s *CounterStore) Close() error { return s.Client.Close() }

// Load reads the counters; missing or non-numeric fields are zero.
func (s *CounterStore) Load(ctx context.Context) (domain.Counts, error) {
	m, err := s.Client.HGetAll(ctx, s.Key).Result()
	if err != nil {
		return domain.Counts{}, err
	}
	return fromHash(m), nil
}

func (s *CounterStore) Save(ctx context.Context, c domain.Counts) error {
	return s.Client.HSet(ctx, s.Key,
		fieldSafe, c.Safe,
		fieldSuspicious, c.Suspicious,
		fieldMalicious, c.Malicious,
	).Err()
}

// Increment bumps the counter for st and returns the resulting counters in
// one MULTI/EXEC round trip.
func (s *CounterStore) Increment(ctx context.Context, st domain.Status) (domain.Counts, error) {
	field := fieldSafe
	switch st {
	case domain.StatusMalicious:
		field = fieldMalicious
	case domain.StatusSuspicious:
		field = fieldSuspicious
	}
	var all *redis.MapStringStringCmd
	_, err := s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, s.Key, field, 1)
		all = p.HGetAll(ctx, s.Key)
		return nil
	})
	if err != nil {
		return domain.Counts{}, err
	}
	return fromHash(all.Val()), nil
}

func fromHash(m map[string]string) domain.Counts {
	return domain.Counts{
		Safe:       domain.ParseCount(m[fieldSafe]),
		Suspicious: domain.ParseCount(m[fieldSuspicious]),
		Malicious:  domain.ParseCount(m[fieldMalicious]),
	}
}
