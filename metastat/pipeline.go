package metastat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/pkg/bucket"
	"mstat/metastat/pkg/fuel"
	"mstat/metastat/pkg/gki"
	"mstat/metastat/pkg/interp"
	"mstat/metastat/pkg/merge"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline turns samples into reports, one per bucket width.
type Pipeline struct {
	Config    defs.Config
	Reporters []Reporter

	Logger *zap.Logger
}

// Run buckets samples at width days, merges the glucose series, repairs
// invalid buckets and derives the glucose-ketone index. Samples must be
// ordered by time and are not modified.
func (p *Pipeline) Run(ctx context.Context, samples []defs.Sample, width float64) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := p.logger().With(zap.Float64("width", width))

	epoch, err := p.Config.EpochTime()
	if err != nil {
		return nil, err
	}
	filter, err := p.Config.Filter.Resolve()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve filter: %w", err)
	}

	b := &bucket.Bucketer{Epoch: epoch, Width: width, Filter: filter, Logger: logger}
	res, err := b.Run(samples)
	if err != nil {
		return nil, fmt.Errorf("unable to bucket samples: %w", err)
	}
	logger.Info("bucketed samples",
		zap.Int("count", res.Count),
		zap.Int("rejected", res.Rejected),
		zap.Int("skipped", res.Skipped),
		zap.Duration("span", res.Span()),
	)

	glucose := merge.Glucose(res.Series(defs.ContinuousGlucose), res.Series(defs.FingerstickGlucose), logger)
	fuel.SortByStart(glucose)

	bk := &interp.Interpolator{Series: defs.Ketone.Prefix(), Policy: p.Config.Interpolation.Ketone, Logger: logger}
	ketone, err := bk.Run(res.Series(defs.Ketone))
	if err != nil {
		return nil, fmt.Errorf("unable to interpolate ketone: %w", err)
	}

	mgl := &interp.Interpolator{Series: merge.Prefix, Policy: p.Config.Interpolation.Glucose, Logger: logger}
	glucose, err = mgl.Run(glucose)
	if err != nil {
		return nil, fmt.Errorf("unable to interpolate glucose: %w", err)
	}

	return &Report{
		ID:        uuid.New().String(),
		Width:     width,
		Epoch:     epoch,
		CreatedAt: time.Now(),
		Count:     res.Count,
		Rejected:  res.Rejected,
		Skipped:   res.Skipped,
		Span:      res.Span(),
		Ketone:    ketone,
		Glucose:   glucose,
		GKI:       gki.Derive(glucose, ketone, p.Config.Mmol, logger),
	}, nil
}

// RunAll runs and writes one report per width, at most Config.Workers at a
// time. A failing width does not stop the others; its error is part of the
// joined error and nothing is written for it. Reports keep the width order.
func (p *Pipeline) RunAll(ctx context.Context, samples []defs.Sample, widths []float64) ([]*Report, error) {
	logger := p.logger()

	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}

	reports := make([]*Report, len(widths))
	errs := make([]error, len(widths))

	// Widths sharing a label would write to the same report files.
	labels := make(map[string]float64, len(widths))
	for i, w := range widths {
		label := defs.WidthLabel(w)
		if prev, ok := labels[label]; ok {
			errs[i] = fmt.Errorf("width %v: %w: same label %s as width %v", w, defs.ErrDuplicateWidth, label, prev)
			logger.Error("width pass skipped", zap.Float64("width", w), zap.Error(errs[i]))
			continue
		}
		labels[label] = w
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, w := range widths {
		if errs[i] != nil {
			continue
		}
		i, w := i, w
		g.Go(func() error {
			r, err := p.Run(ctx, samples, w)
			if err != nil {
				logger.Error("width pass failed", zap.Float64("width", w), zap.Error(err))
				errs[i] = fmt.Errorf("width %v: %w", w, err)
				return nil
			}
			if err := p.write(ctx, r); err != nil {
				errs[i] = fmt.Errorf("width %v: %w", w, err)
			}
			reports[i] = r
			return nil
		})
	}
	// Workers never fail the group, width errors are collected in errs.
	_ = g.Wait()

	out := make([]*Report, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, errors.Join(errs...)
}

func (p *Pipeline) write(ctx context.Context, r *Report) error {
	var errs []error
	for _, rep := range p.Reporters {
		if err := rep.Write(ctx, r); err != nil {
			p.logger().Error("unable to write report",
				zap.String("id", r.ID),
				zap.Float64("width", r.Width),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
