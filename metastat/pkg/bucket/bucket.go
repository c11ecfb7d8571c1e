package bucket

import (
	"fmt"
	"math"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"

	"go.uber.org/zap"
)

// Bucketer assigns samples to fixed width buckets aligned on Epoch and
// accumulates one fuel.Stat per category and bucket.
type Bucketer struct {
	Epoch  time.Time
	Width  float64 // Days, may be fractional.
	Filter defs.FilterConfig

	Logger *zap.Logger
}

type Result struct {
	Buckets map[string]*fuel.Stat

	Count    int // Samples accumulated, rejected ones included.
	Rejected int // Samples routed to an error bucket.
	Skipped  int // Unrecognized or pre-epoch samples.
	MinTime  time.Time
	MaxTime  time.Time
}

// Span is the time covered by the accumulated samples.
func (r *Result) Span() time.Duration {
	if r.Count == 0 {
		return 0
	}
	return r.MaxTime.Sub(r.MinTime)
}

// Series returns the buckets of one category ordered by start.
func (r *Result) Series(c defs.Category) []*fuel.Stat {
	ss := make([]*fuel.Stat, 0)
	for _, s := range r.Buckets {
		if s.Category == c {
			ss = append(ss, s)
		}
	}
	fuel.SortByStart(ss)
	return ss
}

// ErrBucket names the bucket collecting rejected samples of a category.
func ErrBucket(c defs.Category) string {
	return c.Prefix() + "_err"
}

// WidthDuration converts a width in days to a duration, rounded to the
// nanosecond.
func WidthDuration(days float64) time.Duration {
	return time.Duration(math.Round(days * float64(24*time.Hour)))
}

// Run buckets samples, which must be ordered by time. Bucket boundaries only
// depend on Epoch and Width.
func (b *Bucketer) Run(samples []defs.Sample) (*Result, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if !(b.Width >= defs.MinWidthDays) {
		return nil, fmt.Errorf("%w: %v days, expected at least %.4f", defs.ErrWidthTooSmall, b.Width, defs.MinWidthDays)
	}
	width := WidthDuration(b.Width)

	res := &Result{Buckets: make(map[string]*fuel.Stat)}
	index := make(map[bucketID]*fuel.Stat)

	for i, s := range samples {
		if i > 0 && s.Time.Before(samples[i-1].Time) {
			return nil, &defs.SequenceError{Index: i, Previous: samples[i-1].Time, Current: s.Time}
		}

		if s.Time.Before(b.Epoch) {
			logger.Warn("skipped sample before epoch",
				zap.Time("time", s.Time),
				zap.Time("epoch", b.Epoch),
			)
			res.Skipped++
			continue
		}

		key := b.keyOf(s.Time, width)

		value := s.Clamped()
		name, category, ok := b.route(s.Category, value, key)
		if !ok {
			logger.Info("skipped sample",
				zap.String("source", s.Source),
				zap.Time("time", s.Time),
				zap.Float64("value", s.Value),
			)
			res.Skipped++
			continue
		}
		if category == defs.Invalid {
			res.Rejected++
		}

		id := bucketID{series: s.Category, start: key.ID()}
		if category == defs.Invalid {
			key = fuel.Key{}
			id = bucketID{series: s.Category, rejected: true}
		}
		stat, found := index[id]
		if !found {
			stat = fuel.New(name, category, key)
			index[id] = stat
			res.Buckets[name] = stat
			logger.Debug("new bucket", zap.String("name", name))
		}
		stat.AddReading(value, s.Time)

		if res.Count == 0 || s.Time.Before(res.MinTime) {
			res.MinTime = s.Time
		}
		if res.Count == 0 || s.Time.After(res.MaxTime) {
			res.MaxTime = s.Time
		}
		res.Count++
	}

	return res, nil
}

// bucketID identifies a bucket independently of its display name.
type bucketID struct {
	series   defs.Category
	rejected bool
	start    int64
}

// keyOf returns the [start, end) bucket holding t, t not before Epoch.
// Start is Epoch plus a whole number of widths.
func (b *Bucketer) keyOf(t time.Time, width time.Duration) fuel.Key {
	start := b.Epoch.Add(t.Sub(b.Epoch) / width * width)
	return fuel.Key{Start: start, End: start.Add(width)}
}

// route picks the bucket of a sample. Rejected samples go to the category's
// error bucket with category Invalid; unrecognized categories are not routed.
func (b *Bucketer) route(c defs.Category, value float64, key fuel.Key) (string, defs.Category, bool) {
	switch c {
	case defs.ContinuousGlucose:
		if value < b.Filter.CGMFloor {
			return ErrBucket(c), defs.Invalid, true
		}
	case defs.FingerstickGlucose:
		if value < b.Filter.BGFloor || value >= b.Filter.BGCeiling {
			return ErrBucket(c), defs.Invalid, true
		}
	case defs.Ketone:
	default:
		return "", defs.Invalid, false
	}
	return fuel.Name(c.Prefix(), key), c, true
}
