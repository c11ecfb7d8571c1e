package gki

import (
	"fmt"
	"math"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"
	"mstat/metastat/pkg/stats"

	"go.uber.org/zap"
)

// Prefix names glucose-ketone index buckets.
const Prefix = "GKI"

// Stat is the glucose-ketone index of one bucket. The ratios are ratios of
// means (and bounds) of the two contributing statistics, computed once by New.
type Stat struct {
	Name    string     `bson:"name" json:"name"`
	Key     fuel.Key   `bson:"key" json:"key"`
	Glucose *fuel.Stat `bson:"glucose" json:"glucose"`
	Ketone  *fuel.Stat `bson:"ketone" json:"ketone"`
	Mmol    bool       `bson:"mmol" json:"mmol"`

	MeanRatio     float64 `bson:"meanRatio" json:"meanRatio"`
	MinRatio      float64 `bson:"minRatio" json:"minRatio"`
	MaxRatio      float64 `bson:"maxRatio" json:"maxRatio"`
	VarianceRatio float64 `bson:"varianceRatio" json:"varianceRatio"`
	StdDevRatio   float64 `bson:"stdDevRatio" json:"stdDevRatio"`

	MeanY float64 `bson:"meanY" json:"meanY"`
	MinY  float64 `bson:"minY" json:"minY"`
	MaxY  float64 `bson:"maxY" json:"maxY"`
}

// Conversion is the glucose divisor that brings glucose to mmol/L.
func Conversion(mmol bool) float64 {
	if mmol {
		return 1
	}
	return defs.MgdlPerMmol
}

// New derives the index from a glucose and a ketone statistic of the same
// bucket. When either input is invalid the ratios are left at zero.
//
// VarianceRatio divides the variances the same way the means are divided.
// It has never been validated as a statistic of the ratio.
func New(glucose, ketone *fuel.Stat, name string, mmol bool) *Stat {
	s := &Stat{
		Name:    name,
		Key:     ketone.Key,
		Glucose: glucose,
		Ketone:  ketone,
		Mmol:    mmol,
		MeanY:   (glucose.MeanY() + ketone.MeanY()) / 2,
		MinY:    math.Min(glucose.MinY, ketone.MinY),
		MaxY:    math.Max(glucose.MaxY, ketone.MaxY),
	}
	if s.IsInvalid() {
		return s
	}

	conv := Conversion(mmol)
	s.MeanRatio = glucose.MeanX() / conv / ketone.MeanX()
	s.MinRatio = glucose.MinX / conv / ketone.MinX
	s.MaxRatio = glucose.MaxX / conv / ketone.MaxX
	s.VarianceRatio = ratio(glucose.VarianceX(), ketone.VarianceX(), conv)
	s.StdDevRatio = ratio(glucose.StdDevX(), ketone.StdDevX(), conv)
	return s
}

func ratio(num, den stats.Result, conv float64) float64 {
	if !num.Ok() || !den.Ok() {
		return 0
	}
	return num.Value / conv / den.Value
}

// IsInvalid is true when either contributing statistic is invalid.
func (s *Stat) IsInvalid() bool {
	return s.Glucose.IsInvalid() || s.Ketone.IsInvalid()
}

// N counts the ketone samples, the scarcer of the two series.
func (s *Stat) N() float64 {
	return s.Ketone.N
}

// From is the earliest sample of either series, or the bucket start when
// both are empty.
func (s *Stat) From() time.Time {
	if math.IsInf(s.MinY, 0) {
		return s.Key.Start
	}
	return fuel.FromDays(s.MinY)
}

func (s *Stat) To() time.Time {
	if math.IsInf(s.MaxY, 0) {
		return s.Key.End
	}
	return fuel.FromDays(s.MaxY)
}

func (s *Stat) String() string {
	return fmt.Sprintf("%s gki=%.2f [%.2f, %.2f] n=%v", s.Name, s.MeanRatio, s.MinRatio, s.MaxRatio, s.N())
}

// Derive joins merged glucose and ketone series on the bucket key. Ketone
// buckets without a glucose bucket are logged and left out. The result
// follows the order of the ketone series.
func Derive(glucose, ketone []*fuel.Stat, mmol bool, logger *zap.Logger) []*Stat {
	if logger == nil {
		logger = zap.NewNop()
	}

	byKey := make(map[int64]*fuel.Stat, len(glucose))
	for _, g := range glucose {
		byKey[g.Key.ID()] = g
	}

	out := make([]*Stat, 0, len(ketone))
	for _, k := range ketone {
		g, ok := byKey[k.Key.ID()]
		if !ok {
			logger.Warn("missing counterpart",
				zap.Error(&defs.CounterpartError{Series: "MGL", Bucket: k.Name}),
				zap.String("using", "none"),
				zap.Float64("n", k.N),
			)
			continue
		}
		out = append(out, New(g, k, fuel.Name(Prefix, k.Key), mmol))
	}
	return out
}
