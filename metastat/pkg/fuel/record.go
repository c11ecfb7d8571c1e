package fuel

import (
	"math"
	"time"
)

// Header names the Record columns. Reports index columns positionally, keep
// it in step with Record.Values.
var Header = []string{
	"index", "Interpolations", "name",
	"meanX", "minX", "maxX", "Qx", "Qy", "slope", "Qx2", "sqrt(Qx2)", "N",
}

// Record is the reporting view of a Stat. Undefined statistics carry NaN,
// a vertical slope carries +Inf.
type Record struct {
	Index          time.Time `json:"index"`
	Interpolations int       `json:"interpolations"`
	Name           string    `json:"name"`
	MeanX          float64   `json:"meanX"`
	MinX           float64   `json:"minX"`
	MaxX           float64   `json:"maxX"`
	StdDevX        float64   `json:"qx"`
	StdDevY        float64   `json:"qy"`
	Slope          float64   `json:"slope"`
	VarianceX      float64   `json:"qx2"`
	RootVarianceX  float64   `json:"sqrtQx2"`
	N              float64   `json:"n"`
	Invalid        bool      `json:"invalid"`
}

func (s *Stat) Record() Record {
	variance := s.VarianceX().Float()
	return Record{
		Index:          s.From(),
		Interpolations: s.Interpolations,
		Name:           s.Name,
		MeanX:          s.MeanX(),
		MinX:           s.MinX,
		MaxX:           s.MaxX,
		StdDevX:        s.StdDevX().Float(),
		StdDevY:        s.StdDevY().Float(),
		Slope:          s.Slope().Float(),
		VarianceX:      variance,
		RootVarianceX:  math.Sqrt(variance),
		N:              s.N,
		Invalid:        s.IsInvalid(),
	}
}

// Values returns the numeric columns after name, in Header order.
func (r Record) Values() []float64 {
	return []float64{r.MeanX, r.MinX, r.MaxX, r.StdDevX, r.StdDevY, r.Slope, r.VarianceX, r.RootVarianceX, r.N}
}
