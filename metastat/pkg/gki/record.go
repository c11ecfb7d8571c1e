package gki

import (
	"math"
	"time"

	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"
)

// Header names the Record columns, in Values order after YminDate and name.
var Header = []string{
	"YminDate", "name",
	"MeanXgki", "MinXgki", "MaxXgki", "Sqrt(Qx2)gki", "QxGki", "Ngki",
	"MeanXglu", "MinXglu", "MaxXglu", "Sqrt(Qx2)glu", "QxGlu", "Nglu",
	"MeanXbk", "MinXbk", "MaxXbk", "sqrt(Qx2)bk", "QxBk", "Nbk",
	"QxGlu/QxBk",
	"Glu/18",
}

// Record is the reporting view of a Stat. Invalid stats keep the column
// count but only carry the zero ratios and the sample counts; every other
// column is NaN.
type Record struct {
	Index   time.Time `json:"index"`
	Name    string    `json:"name"`
	Invalid bool      `json:"invalid"`

	GKI     [6]float64 `json:"gki"`
	Glucose [6]float64 `json:"glucose"`
	Ketone  [6]float64 `json:"ketone"`

	StdDevRatio float64 `json:"stdDevRatio"`
	GlucoseMmol float64 `json:"glucoseMmol"`
}

func (s *Stat) Record() Record {
	r := Record{
		Index:   s.From(),
		Name:    s.Name,
		Invalid: s.IsInvalid(),
		GKI: [6]float64{
			s.MeanRatio, s.MinRatio, s.MaxRatio,
			math.Sqrt(s.VarianceRatio), s.StdDevRatio, s.N(),
		},
	}

	if r.Invalid {
		nan := math.NaN()
		r.Glucose = [6]float64{nan, nan, nan, nan, nan, s.Glucose.N}
		r.Ketone = [6]float64{nan, nan, nan, nan, nan, s.Ketone.N}
		r.StdDevRatio, r.GlucoseMmol = nan, nan
		return r
	}

	r.Glucose = columns(s.Glucose)
	r.Ketone = columns(s.Ketone)
	r.StdDevRatio = s.Glucose.StdDevX().Float() / defs.MgdlPerMmol / s.Ketone.StdDevX().Float()
	r.GlucoseMmol = s.Glucose.MeanX() / defs.MgdlPerMmol
	return r
}

func columns(s *fuel.Stat) [6]float64 {
	return [6]float64{
		s.MeanX(), s.MinX, s.MaxX,
		math.Sqrt(s.VarianceX().Float()), s.StdDevX().Float(), s.N,
	}
}

// Values returns the numeric columns in Header order.
func (r Record) Values() []float64 {
	vs := make([]float64, 0, len(Header)-2)
	vs = append(vs, r.GKI[:]...)
	vs = append(vs, r.Glucose[:]...)
	vs = append(vs, r.Ketone[:]...)
	return append(vs, r.StdDevRatio, r.GlucoseMmol)
}
