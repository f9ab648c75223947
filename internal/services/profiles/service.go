package profiles

import (
	"context"

	"riskscan/internal/domain"
	"riskscan/internal/ports"
)

// window bounds how many past scans feed a profile.
const window = 100

type Service struct {
	scans ports.DomainHistoryRepository
}

var _ ports.Profiles = (*Service)(nil)

func New(scans ports.DomainHistoryRepository) *Service { return &Service{scans: scans} }

// GetLatest returns the newest verdict for a registrable domain together with
// per-status totals over its recent scans.
func (s *Service) GetLatest(ctx context.Context, registrable string) (domain.Profile, error) {
	registrable = domain.Registrable(registrable)
	recs, err := s.scans.ByDomain(ctx, registrable, window)
	if err != nil {
		return domain.Profile{}, err
	}
	if len(recs) == 0 {
		return domain.Profile{}, domain.ErrNotFound
	}
	prof := domain.Profile{Domain: registrable, Latest: recs[0], Scans: len(recs)}
	prof.Status, _ = domain.StatusFromResult(recs[0].Result)
	for _, r := range recs {
		if st, ok := domain.StatusFromResult(r.Result); ok {
			prof.Statuses = prof.Statuses.Add(st)
		}
	}
	return prof, nil
}
