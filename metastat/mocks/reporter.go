package mocks

import (
	"context"
	"sync"

	"mstat/metastat"
	"mstat/metastat/defs"
)

// Reporter records written reports. Widths listed in Fail are rejected.
type Reporter struct {
	mu      sync.Mutex
	Reports []*metastat.Report
	Fail    map[float64]error
}

func (r *Reporter) Write(_ context.Context, rep *metastat.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Fail[rep.Width]; ok {
		return err
	}
	r.Reports = append(r.Reports, rep)
	return nil
}

// Source serves fixed readings.
type Source struct {
	Samples []defs.Sample
	Err     error
}

func (s *Source) Readings(_ context.Context, _, _ int) ([]defs.Sample, error) {
	return s.Samples, s.Err
}
