package defs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultDB = "metastat"

// DefaultEpoch is the bucket alignment anchor. Widths that are base 12
// fractions of a year line buckets up on year and month boundaries.
const DefaultEpoch = "2015-01-01T00:00:00-08:00"

// Bucket widths in days: 1/12 year, 1/4 year and their halvings.
const (
	QuarterDays = 91.31058
	MonthDays   = 30.43685
	WeekDays    = 7.6092125
	DayDays     = 0.9615155
)

// MinWidthDays is the narrowest accepted bucket width, one hour. Bucket
// labels resolve to the minute.
const MinWidthDays = 1.0 / 24

// WidthLabel is the width as it appears in report titles and file names.
func WidthLabel(days float64) string {
	return fmt.Sprintf("%.2f", days)
}

// Intervals.
const (
	TimeoutInterval    = 2 * time.Second
	DownloaderInterval = 5 * time.Minute
)

// Unit conversion from mg/dL to mmol/L.
const MgdlPerMmol = 18

// Report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type Config struct {
	Input         string              `yaml:"input"`
	Output        string              `yaml:"output"`
	Epoch         string              `yaml:"epoch"`
	Widths        []float64           `yaml:"widths"`
	Mmol          bool                `yaml:"mmol"`
	Formats       []string            `yaml:"formats"`
	Workers       int                 `yaml:"workers"`
	Filter        FilterConfig        `yaml:"filter"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Dexcom        DexcomConfig        `yaml:"dexcom"`
	HTTP          HTTPConfig          `yaml:"http"`
	Timezone      string              `yaml:"timezone"`
	Logger        *zap.Logger         `yaml:"_,omitempty"`
}

// FilterConfig holds the validity thresholds applied while bucketing.
// Revision selects a historical preset; explicit thresholds win over it.
type FilterConfig struct {
	Revision  int     `yaml:"revision"`
	CGMFloor  float64 `yaml:"cgmFloor"`
	BGFloor   float64 `yaml:"bgFloor"`
	BGCeiling float64 `yaml:"bgCeiling"`
}

var filterRevisions = map[int]FilterConfig{
	1: {Revision: 1, CGMFloor: 35, BGFloor: 35, BGCeiling: 220},
	2: {Revision: 2, CGMFloor: 35, BGFloor: 35, BGCeiling: 300},
}

const LatestFilterRevision = 2

// FilterRevision returns the thresholds of a historical revision.
func FilterRevision(rev int) (FilterConfig, error) {
	fc, ok := filterRevisions[rev]
	if !ok {
		return FilterConfig{}, fmt.Errorf("unknown filter revision: %d", rev)
	}
	return fc, nil
}

// Resolve fills unset thresholds from the selected revision.
func (fc FilterConfig) Resolve() (FilterConfig, error) {
	rev := fc.Revision
	if rev == 0 {
		rev = LatestFilterRevision
	}
	base, err := FilterRevision(rev)
	if err != nil {
		return FilterConfig{}, err
	}
	if fc.CGMFloor != 0 {
		base.CGMFloor = fc.CGMFloor
	}
	if fc.BGFloor != 0 {
		base.BGFloor = fc.BGFloor
	}
	if fc.BGCeiling != 0 {
		base.BGCeiling = fc.BGCeiling
	}
	return base, nil
}

type InterpolationConfig struct {
	Ketone  SeriesPolicy `yaml:"ketone"`
	Glucose SeriesPolicy `yaml:"glucose"`
}

// SeriesPolicy bounds the interpolation passes of one series. Fatal series
// abort the width pass when invalid buckets survive every pass.
type SeriesPolicy struct {
	Passes int  `yaml:"passes"`
	Fatal  bool `yaml:"fatal"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type DexcomConfig struct {
	Account  string `yaml:"account"`
	Password string `yaml:"password"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig uses monthly buckets, the latest filter revision and two
// passes per series with ketone exhaustion being fatal.
func DefaultConfig() Config {
	return Config{
		Output:  ".",
		Epoch:   DefaultEpoch,
		Widths:  []float64{MonthDays},
		Formats: []string{FormatCSV},
		Workers: 1,
		Interpolation: InterpolationConfig{
			Ketone:  SeriesPolicy{Passes: 2, Fatal: true},
			Glucose: SeriesPolicy{Passes: 2, Fatal: false},
		},
		HTTP: HTTPConfig{Addr: ":4242"},
	}
}

// EpochTime parses the configured epoch, falling back to DefaultEpoch.
func (c Config) EpochTime() (time.Time, error) {
	epoch := c.Epoch
	if epoch == "" {
		epoch = DefaultEpoch
	}
	t, err := time.Parse(time.RFC3339, epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse epoch: %w", err)
	}
	return t, nil
}

// Location loads the configured timezone used for rendering report dates.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
