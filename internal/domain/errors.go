package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrJobPending is returned by a result fetch while the job is still processing.
	ErrJobPending = errors.New("scan job still processing")
	// ErrPollTimeout is returned when a job never became ready within the poll budget.
	ErrPollTimeout = errors.New("scan result not ready after poll budget")
	// ErrInvalidURL is returned for input that cannot be turned into an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrNotFound is returned by read models when nothing matches.
	ErrNotFound = errors.New("not found")
)

// SubmitError reports a rejected job creation.
type SubmitError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan submit failed: %v", e.Err)
	}
	return fmt.Sprintf("scan submit failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// PollError reports a result fetch that failed for a reason other than "not ready".
type PollError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PollError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan result failed: %v", e.Err)
	}
	return fmt.Sprintf("scan result failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *PollError) Unwrap() error { return e.Err }

// ReputationLookupError reports a failed reputation lookup.
type ReputationLookupError struct {
	Domain string
	Err    error
}

func (e *ReputationLookupError) Error() string {
	return fmt.Sprintf("reputation lookup for %s failed: %v", e.Domain, e.Err)
}

func (e *ReputationLookupError) Unwrap() error { return e.Err }

// AggregationError is the single failure surfaced when either branch of a
// combined check fails. The cause stays reachable through errors.Is/As.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string { return "error running checks" }

func (e *AggregationError) Unwrap() error { return e.Err }
