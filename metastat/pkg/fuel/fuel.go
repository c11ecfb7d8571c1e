package fuel

import (
	"fmt"
	"sort"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/pkg/stats"
)

const dayNanos = float64(24 * time.Hour)

// Days expresses t in fractional days since the Unix epoch, so that a slope
// is a change of value per day.
func Days(t time.Time) float64 {
	return float64(t.UnixNano()) / dayNanos
}

// FromDays is the inverse of Days.
func FromDays(d float64) time.Time {
	return time.Unix(0, int64(d*dayNanos))
}

// Key is a half-open bucket interval [Start, End).
type Key struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// ID identifies the bucket independently of the key's location.
func (k Key) ID() int64 {
	return k.Start.UnixNano()
}

func (k Key) Contains(t time.Time) bool {
	return !t.Before(k.Start) && t.Before(k.End)
}

// Label renders the interval as a short date range. Sub-day intervals carry
// the time of day so that labels stay unique.
func (k Key) Label() string {
	layout := "1/2/2006"
	if k.End.Sub(k.Start) < 24*time.Hour {
		layout = "1/2/2006 15:04"
	}
	return k.Start.Format(layout) + "-" + k.End.Format(layout)
}

// Name composes a bucket name from a series prefix and the key label.
func Name(prefix string, k Key) string {
	return prefix + "-" + k.Label()
}

// Stat is the statistic of one bucket of one series. X holds the measured
// value and Y the time in fractional days.
type Stat struct {
	stats.Accumulator `bson:",inline"`

	Name           string        `bson:"name" json:"name"`
	Category       defs.Category `bson:"category" json:"category"`
	Key            Key           `bson:"key" json:"key"`
	Interpolations int           `bson:"interpolations" json:"interpolations"`
}

func New(name string, c defs.Category, k Key) *Stat {
	return &Stat{
		Accumulator: stats.New(),
		Name:        name,
		Category:    c,
		Key:         k,
	}
}

// AddReading accumulates value at instant t.
func (s *Stat) AddReading(value float64, t time.Time) {
	s.Add(value, Days(t))
}

// Clone returns an independent copy.
func (s *Stat) Clone() *Stat {
	c := *s
	return &c
}

// Rename returns a copy carrying a new name and category.
func (s *Stat) Rename(prefix string, c defs.Category) *Stat {
	r := s.Clone()
	r.Name = Name(prefix, s.Key)
	r.Category = c
	return r
}

func (s *Stat) IsInterpolated() bool {
	return s.Interpolations > 0
}

// From is the instant of the earliest sample.
func (s *Stat) From() time.Time {
	return FromDays(s.MinY)
}

// To is the instant of the latest sample.
func (s *Stat) To() time.Time {
	return FromDays(s.MaxY)
}

func (s *Stat) Span() time.Duration {
	if s.N == 0 {
		return 0
	}
	return s.To().Sub(s.From())
}

func (s *Stat) String() string {
	if s.Slope().Reason == stats.Vertical {
		return fmt.Sprintf("NaN - %s - %v", s.Name, s.N)
	}
	return fmt.Sprintf("%s (%d) %s", s.Name, s.Interpolations, s.Accumulator.String())
}

// SortByStart orders stats by bucket start, then name.
func SortByStart(ss []*Stat) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Key.Start.Equal(ss[j].Key.Start) {
			return ss[i].Name < ss[j].Name
		}
		return ss[i].Key.Start.Before(ss[j].Key.Start)
	})
}

// CountInvalid counts the stats that cannot support a regression.
func CountInvalid(ss []*Stat) int {
	var n int
	for _, s := range ss {
		if s.IsInvalid() {
			n++
		}
	}
	return n
}
