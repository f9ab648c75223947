package checker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"riskscan/internal/domain"
	"riskscan/internal/metrics"
	"riskscan/internal/ports"
	"riskscan/internal/services/tally"
)

// Service runs the scan and the reputation lookup side by side and records
// the outcome.
type Service struct {
	scanner    ports.Scanner
	reputation ports.Reputation
	history    ports.HistoryRepository
	tally      *tally.Tally
}

var _ ports.Checker = (*Service)(nil)

// New builds a checker. history may be nil to disable persistence.
func New(scanner ports.Scanner, reputation ports.Reputation, history ports.HistoryRepository, t *tally.Tally) *Service {
	return &Service{scanner: scanner, reputation: reputation, history: history, tally: t}
}

// Check produces the combined report for an already validated URL. Any branch
// failure is returned as *domain.AggregationError and leaves no side effects.
func (s *Service) Check(ctx context.Context, url string) (domain.Report, error) {
	host, err := domain.Hostname(url)
	if err != nil {
		return domain.Report{}, err
	}

	var (
		scan domain.ScanOutcome
		rep  domain.ReputationMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.scanner.Scan(gctx, url)
		if err != nil {
			metrics.CheckFailures.WithLabelValues("scan").Inc()
			return err
		}
		scan = out
		return nil
	})
	g.Go(func() error {
		m, err := s.reputation.Lookup(gctx, host)
		if err != nil {
			metrics.CheckFailures.WithLabelValues("reputation").Inc()
			return err
		}
		rep = m
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("check failed", "url", url, "err", err)
		return domain.Report{}, &domain.AggregationError{Err: err}
	}

	metrics.ScansTotal.WithLabelValues(string(scan.Status)).Inc()
	counts, err := s.tally.Record(ctx, scan.Status)
	if err != nil {
		slog.Warn("counter store write failed", "err", err)
	}
	s.persist(ctx, url, host, scan, rep)

	return domain.Report{
		URL:        url,
		Scan:       scan,
		Reputation: rep,
		Counts:     counts,
		Text:       domain.RenderText(scan, rep),
	}, nil
}

// persist is best effort; failures are logged and dropped.
func (s *Service) persist(ctx context.Context, url, host string, scan domain.ScanOutcome, rep domain.ReputationMatch) {
	if s.history == nil {
		return
	}
	rec := domain.ScanRecord{
		URL:    url,
		Domain: domain.Registrable(host),
		Result: domain.ResultString(scan.Status, rep.Details()),
	}
	if _, err := s.history.Save(ctx, rec); err != nil {
		metrics.HistoryWriteFailures.Inc()
		slog.Warn("failed to save scan", "url", url, "err", err)
	}
}
