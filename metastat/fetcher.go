package metastat

import (
	"context"
	"fmt"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/dexcom"

	"go.uber.org/zap"
)

type SampleWriter interface {
	WriteSamples(ctx context.Context, ss []defs.Sample) (int, error)
}

// Fetcher imports the latest continuous glucose readings into a store.
type Fetcher struct {
	Source dexcom.SampleSource
	Store  SampleWriter

	Logger *zap.Logger
}

// FetchAndLoad returns the number of samples not stored before.
func (f *Fetcher) FetchAndLoad(ctx context.Context) (int, error) {
	ss, err := f.Source.Readings(ctx, dexcom.MinuteLimit, dexcom.CountLimit)
	if err != nil {
		return 0, fmt.Errorf("unable to fetch readings: %w", err)
	}

	n, err := f.Store.WriteSamples(ctx, ss)
	if err != nil {
		return n, fmt.Errorf("unable to write samples to store: %w", err)
	}

	if f.Logger != nil {
		f.Logger.Debug("loaded readings", zap.Int("fetched", len(ss)), zap.Int("new", n))
	}
	return n, nil
}

// ExecuteTask runs task immediately and then every interval until ctx is done.
func ExecuteTask(ctx context.Context, interval time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		task()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
