package ports

import (
	"context"

	"riskscan/internal/domain"
)

// JobResult is a completed job as reported by the scanning service.
type JobResult struct {
	Verdict   domain.RawVerdict
	ReportURL string
}

// JobAPI is the job-creation and job-result surface of the scanning service.
// FetchResult returns domain.ErrJobPending while the job is still processing.
type JobAPI interface {
	Submit(ctx context.Context, url string) (domain.JobID, error)
	FetchResult(ctx context.Context, id domain.JobID) (JobResult, error)
}
