package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"riskscan/internal/domain"
	"riskscan/internal/metrics"
	"riskscan/internal/ports"
)

// Fixed poll policy: the scanning service needs processing time, so every
// result fetch is preceded by the same delay.
const (
	DefaultPollDelay   = 3 * time.Second
	DefaultMaxAttempts = 10
)

// Service submits scan jobs and polls them until a verdict is ready.
type Service struct {
	jobs     ports.JobAPI
	delay    time.Duration
	attempts int
}

// Option adjusts a Service.
type Option func(*Service)

// WithPollSchedule overrides the delay and attempt budget. Intended for tests.
func WithPollSchedule(delay time.Duration, attempts int) Option {
	return func(s *Service) {
		if delay > 0 {
			s.delay = delay
		}
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

func New(jobs ports.JobAPI, opts ...Option) *Service {
	s := &Service{jobs: jobs, delay: DefaultPollDelay, attempts: DefaultMaxAttempts}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scan submits url and waits for its verdict. It fails with *domain.SubmitError,
// *domain.PollError, domain.ErrPollTimeout or the context error.
func (s *Service) Scan(ctx context.Context, url string) (domain.ScanOutcome, error) {
	id, err := s.jobs.Submit(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return domain.ScanOutcome{}, ctx.Err()
		}
		var se *domain.SubmitError
		if !errors.As(err, &se) {
			err = &domain.SubmitError{Err: err}
		}
		return domain.ScanOutcome{}, err
	}
	log := slog.With("job", id, "url", url)
	log.Debug("scan submitted")

	res, err := s.poll(ctx, log, id)
	if err != nil {
		return domain.ScanOutcome{}, err
	}
	out := domain.Outcome(res.Verdict, res.ReportURL)
	log.Info("scan classified", "status", out.Status)
	return out, nil
}

func (s *Service) poll(ctx context.Context, log *slog.Logger, id domain.JobID) (ports.JobResult, error) {
	// The first check is never immediate.
	select {
	case <-ctx.Done():
		return ports.JobResult{}, ctx.Err()
	case <-time.After(s.delay):
	}

	var (
		res     ports.JobResult
		attempt int
	)
	b := retry.WithMaxRetries(uint64(s.attempts-1), retry.NewConstant(s.delay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		r, err := s.jobs.FetchResult(ctx, id)
		if errors.Is(err, domain.ErrJobPending) {
			log.Debug("scan result pending", "attempt", attempt)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	metrics.PollAttempts.Observe(float64(attempt))

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return ports.JobResult{}, ctx.Err()
	case errors.Is(err, domain.ErrJobPending):
		log.Warn("scan result never became ready", "attempts", attempt)
		return ports.JobResult{}, fmt.Errorf("job %s: %w", id, domain.ErrPollTimeout)
	}
	var pe *domain.PollError
	if !errors.As(err, &pe) {
		err = &domain.PollError{Err: err}
	}
	log.Error("scan result fetch failed", "attempt", attempt, "err", err)
	return ports.JobResult{}, err
}
