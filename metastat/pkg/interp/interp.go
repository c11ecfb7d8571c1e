package interp

import (
	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"

	"go.uber.org/zap"
)

// Interpolator repairs invalid buckets by merging their immediate
// neighbours into a copy of the bucket. The first and last buckets have a
// single neighbour and are never repaired.
type Interpolator struct {
	Series string
	Policy defs.SeriesPolicy

	Logger *zap.Logger
}

// Pass runs one repair pass over a series ordered by bucket start. Repairs
// read the neighbours as they were before the pass. The input is never
// mutated.
func (ip *Interpolator) Pass(in []*fuel.Stat) []*fuel.Stat {
	logger := ip.logger()

	out := make([]*fuel.Stat, len(in))
	copy(out, in)

	for i := 1; i < len(in)-1; i++ {
		if !in[i].IsInvalid() {
			continue
		}

		candidate := in[i].Clone()
		candidate.Merge(in[i-1].Accumulator)
		candidate.Merge(in[i+1].Accumulator)
		if candidate.IsInvalid() {
			// Left for a later pass.
			continue
		}

		candidate.Interpolations++
		out[i] = candidate
		logger.Info("bucket interpolation",
			zap.String("series", ip.Series),
			zap.String("bucket", in[i].Name),
			zap.Float64("n", in[i].N),
		)
	}

	return out
}

// Run applies up to Policy.Passes passes, stopping early once every interior
// bucket is valid. Interior buckets left invalid are an error for fatal
// series and a warning otherwise; the returned series is usable in both
// cases. Invalid edge buckets are only reported.
func (ip *Interpolator) Run(in []*fuel.Stat) ([]*fuel.Stat, error) {
	logger := ip.logger()

	out := in
	for pass := 1; pass <= ip.Policy.Passes; pass++ {
		invalid := countInterior(out)
		if invalid == 0 {
			break
		}
		logger.Info("invalid buckets before interpolation pass",
			zap.String("series", ip.Series),
			zap.Int("invalid", invalid),
			zap.Int("pass", pass),
		)
		out = ip.Pass(out)
	}

	if edges := fuel.CountInvalid(out) - countInterior(out); edges > 0 {
		logger.Warn("invalid edge buckets cannot be interpolated",
			zap.String("series", ip.Series),
			zap.Int("invalid", edges),
		)
	}

	remaining := countInterior(out)
	if remaining == 0 {
		return out, nil
	}

	err := &defs.ExhaustedError{Series: ip.Series, Passes: ip.Policy.Passes, Remaining: remaining}
	if ip.Policy.Fatal {
		logger.Error("interpolation is failing", zap.Error(err))
		return out, err
	}

	logger.Warn("invalid buckets remain after interpolation", zap.Error(err))
	return out, nil
}

func countInterior(ss []*fuel.Stat) int {
	if len(ss) < 3 {
		return 0
	}
	return fuel.CountInvalid(ss[1 : len(ss)-1])
}

func (ip *Interpolator) logger() *zap.Logger {
	if ip.Logger == nil {
		return zap.NewNop()
	}
	return ip.Logger
}
