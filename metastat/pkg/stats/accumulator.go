package stats

import (
	"fmt"
	"math"
)

// CorrelationSentinel marks an undefined correlation in reports; it lies
// outside [-1, 1].
const CorrelationSentinel = 2

// Accumulator keeps the sufficient statistics of an (x, y) sample stream:
//
//	mean x        mx  = sx/n
//	variance x    qx2 = sx2/n - mx**2
//	deviation x   qx  = sqrt(sx2 - sx**2/n) / (n-1)
//	slope         m   = (sxy - sx*sy/n) / (sx2 - sx**2/n)
//	intercept     b   = (sy - m*sx) / n
//	correlation   r   = m*qx / qy
//
// and likewise for y. The deviation divides the square root by n-1, not the
// sum of squares; reports depend on that quantity.
type Accumulator struct {
	N   float64 `bson:"n" json:"n"`
	Sx  float64 `bson:"sx" json:"sx"`
	Sy  float64 `bson:"sy" json:"sy"`
	Sx2 float64 `bson:"sx2" json:"sx2"`
	Sy2 float64 `bson:"sy2" json:"sy2"`
	Sxy float64 `bson:"sxy" json:"sxy"`

	MinX float64 `bson:"minX" json:"minX"`
	MaxX float64 `bson:"maxX" json:"maxX"`
	MinY float64 `bson:"minY" json:"minY"`
	MaxY float64 `bson:"maxY" json:"maxY"`
}

// New returns an empty accumulator with sentinel bounds.
func New() Accumulator {
	return Accumulator{
		MinX: math.Inf(1),
		MaxX: math.Inf(-1),
		MinY: math.Inf(1),
		MaxY: math.Inf(-1),
	}
}

// Add accumulates one point.
func (a *Accumulator) Add(x, y float64) {
	a.N++
	a.Sx += x
	a.Sy += y
	a.Sx2 += x * x
	a.Sy2 += y * y
	a.Sxy += x * y

	a.MinX = math.Min(a.MinX, x)
	a.MaxX = math.Max(a.MaxX, x)
	a.MinY = math.Min(a.MinY, y)
	a.MaxY = math.Max(a.MaxY, y)
}

// AddX accumulates x with y set to the new sample count.
func (a *Accumulator) AddX(x float64) {
	a.Add(x, a.N+1)
}

// Merge adds the sufficient statistics of other to a. Merging is
// associative and commutative.
func (a *Accumulator) Merge(other Accumulator) {
	a.N += other.N
	a.Sx += other.Sx
	a.Sy += other.Sy
	a.Sx2 += other.Sx2
	a.Sy2 += other.Sy2
	a.Sxy += other.Sxy

	a.MinX = math.Min(a.MinX, other.MinX)
	a.MaxX = math.Max(a.MaxX, other.MaxX)
	a.MinY = math.Min(a.MinY, other.MinY)
	a.MaxY = math.Max(a.MaxY, other.MaxY)
}

// Dec removes a previously added point. Bounds are not reversed.
func (a *Accumulator) Dec(x, y float64) {
	a.N--
	a.Sx -= x
	a.Sy -= y
	a.Sx2 -= x * x
	a.Sy2 -= y * y
	a.Sxy -= x * y
}

// Sum returns the merge of a and b without touching either.
func Sum(a, b Accumulator) Accumulator {
	a.Merge(b)
	return a
}

func (a *Accumulator) MeanX() float64 {
	if a.N > 0 {
		return a.Sx / a.N
	}
	return 0
}

func (a *Accumulator) MeanY() float64 {
	if a.N > 0 {
		return a.Sy / a.N
	}
	return 0
}

func (a *Accumulator) StdDevX() Result {
	return deviation(a.N, a.Sx, a.Sx2)
}

func (a *Accumulator) StdDevY() Result {
	return deviation(a.N, a.Sy, a.Sy2)
}

func deviation(n, sum, sumSq float64) Result {
	if n <= 1 {
		return failed(Undefined)
	}
	return defined(math.Sqrt(sumSq-sum*sum/n) / (n - 1))
}

// VarianceX is the population (biased) variance of x.
func (a *Accumulator) VarianceX() Result {
	if a.N == 0 {
		return failed(DivideByZero)
	}
	mx := a.MeanX()
	return defined(a.Sx2/a.N - mx*mx)
}

func (a *Accumulator) VarianceY() Result {
	if a.N == 0 {
		return failed(DivideByZero)
	}
	my := a.MeanY()
	return defined(a.Sy2/a.N - my*my)
}

func (a *Accumulator) Slope() Result {
	if a.N == 0 || a.Sx2 == 0 || a.Sx == 0 {
		return failed(DivideByZero)
	}

	divisor := a.Sx2 - a.Sx*a.Sx/a.N
	if divisor == 0 {
		return Result{Value: math.Inf(1), Reason: Vertical}
	}

	return defined((a.Sxy - a.Sx*a.Sy/a.N) / divisor)
}

func (a *Accumulator) Intercept() Result {
	m := a.Slope()
	if !m.Ok() {
		return m
	}
	return defined((a.Sy - m.Value*a.Sx) / a.N)
}

// Correlation is undefined when y has no deviation or the slope is vertical;
// reports render that case as CorrelationSentinel.
func (a *Accumulator) Correlation() Result {
	qy := a.StdDevY()
	if qy.Ok() && qy.Value == 0 {
		return failed(Undefined)
	}

	m := a.Slope()
	if !m.Ok() {
		return m
	}
	if !qy.Ok() {
		return qy
	}

	qx := a.StdDevX()
	if !qx.Ok() {
		return qx
	}

	return defined(m.Value * qx.Value / qy.Value)
}

// IsInvalid reports whether the accumulator cannot support a regression.
// It is the single gate deciding whether a bucket needs interpolation.
func (a *Accumulator) IsInvalid() bool {
	return !a.StdDevX().Ok() ||
		!a.StdDevY().Ok() ||
		math.IsNaN(a.Sx) ||
		math.IsNaN(a.Sy) ||
		!a.Slope().Ok() ||
		!a.Intercept().Ok()
}

func (a Accumulator) String() string {
	if a.Slope().Reason == Vertical {
		return fmt.Sprintf("NaN - %v", a.N)
	}
	return fmt.Sprintf(
		"Cor: %.4f N: %v MeanX: %.2f MeanY: %.2f Slp: %.2f (Q: x%.3f y%.3f) (Q2: x%.3f y%.3f) Yincpt: %.3f, X(%g - %g), Y: (%g - %g), invalid: %t",
		a.Correlation().Or(CorrelationSentinel), a.N, a.MeanX(), a.MeanY(), a.Slope().Float(),
		a.StdDevX().Float(), a.StdDevY().Float(), a.VarianceX().Float(), a.VarianceY().Float(),
		a.Intercept().Float(), a.MinX, a.MaxX, a.MinY, a.MaxY, a.IsInvalid(),
	)
}
