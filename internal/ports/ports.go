package ports

import (
	"context"

	"riskscan/internal/domain"
)

// Scanner runs one URL through the external scanning service and returns its outcome.
type Scanner interface {
	Scan(ctx context.Context, url string) (domain.ScanOutcome, error)
}

// Reputation looks up historical phishing reports for a domain.
type Reputation interface {
	Lookup(ctx context.Context, host string) (domain.ReputationMatch, error)
}

// Checker produces a combined report for a URL.
type Checker interface {
	Check(ctx context.Context, url string) (domain.Report, error)
}

// Profiles provides the latest verdict per registrable domain.
type Profiles interface {
	GetLatest(ctx context.Context, registrable string) (domain.Profile, error)
}
