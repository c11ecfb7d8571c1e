package merge

import (
	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"

	"go.uber.org/zap"
)

// Prefix names merged glucose buckets.
const Prefix = "MGL"

// Glucose combines continuous and fingerstick glucose buckets that share a
// bucket key. A bucket present on one side only is carried over on its own.
// Inputs are never mutated; the output order is unspecified, sort it before
// use.
func Glucose(cgm, bg []*fuel.Stat, logger *zap.Logger) []*fuel.Stat {
	if logger == nil {
		logger = zap.NewNop()
	}

	bgByKey := make(map[int64]*fuel.Stat, len(bg))
	for _, s := range bg {
		bgByKey[s.Key.ID()] = s
	}
	cgmByKey := make(map[int64]*fuel.Stat, len(cgm))
	for _, s := range cgm {
		cgmByKey[s.Key.ID()] = s
	}

	merged := make([]*fuel.Stat, 0, len(cgm)+len(bg))
	for _, c := range cgm {
		mgl := c.Rename(Prefix, defs.ContinuousGlucose)
		if b, ok := bgByKey[c.Key.ID()]; ok {
			mgl.Merge(b.Accumulator)
			mgl.Interpolations += b.Interpolations
		} else {
			logMissing(logger, "BG", c)
		}
		merged = append(merged, mgl)
	}

	for _, b := range bg {
		if _, ok := cgmByKey[b.Key.ID()]; ok {
			continue
		}
		logMissing(logger, "CGM", b)
		merged = append(merged, b.Rename(Prefix, defs.FingerstickGlucose))
	}

	return merged
}

func logMissing(logger *zap.Logger, series string, using *fuel.Stat) {
	logger.Warn("missing counterpart",
		zap.Error(&defs.CounterpartError{Series: series, Bucket: fuel.Name(series, using.Key)}),
		zap.String("using", using.Name),
		zap.Float64("n", using.N),
	)
}
