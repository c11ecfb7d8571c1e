package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"
)

type sampleKey struct {
	t        int64
	category defs.Category
	source   string
}

// Store keeps samples and reports in memory.
type Store struct {
	mu      sync.Mutex
	samples map[sampleKey]defs.Sample
	reports map[string]*metastat.Report

	Err error
}

func NewStore() *Store {
	return &Store{
		samples: make(map[sampleKey]defs.Sample),
		reports: make(map[string]*metastat.Report),
	}
}

func (s *Store) WriteSamples(_ context.Context, ss []defs.Sample) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	var inserted int
	for _, smp := range ss {
		k := sampleKey{t: smp.Time.UnixNano(), category: smp.Category, source: smp.Source}
		if _, ok := s.samples[k]; ok {
			continue
		}
		s.samples[k] = smp
		inserted++
	}
	return inserted, nil
}

func (s *Store) ReadSamples(_ context.Context, start, end time.Time) ([]defs.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	ss := make([]defs.Sample, 0)
	for _, smp := range s.samples {
		if smp.Time.Before(start) || smp.Time.After(end) {
			continue
		}
		ss = append(ss, smp)
	}
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Time.Equal(ss[j].Time) {
			return ss[i].Source < ss[j].Source
		}
		return ss[i].Time.Before(ss[j].Time)
	})
	return ss, nil
}

func (s *Store) WriteReport(_ context.Context, r *metastat.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.reports[r.ID] = r
	return nil
}

func (s *Store) ReadReport(_ context.Context, id string) (*metastat.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("no report found: %s", id)
	}
	return r, nil
}
