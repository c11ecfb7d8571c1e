package stats

import "math"

// Reason explains why a statistic has no value.
type Reason int

const (
	Defined Reason = iota
	// Undefined: too few samples, or the computation produced NaN.
	Undefined
	// DivideByZero: no samples, or all x are zero.
	DivideByZero
	// Vertical: the x values have no spread, the regression line is vertical.
	Vertical
)

func (r Reason) String() string {
	return [...]string{"defined", "undefined", "divide by zero", "vertical"}[r]
}

// Result is a statistic that may be undefined.
type Result struct {
	Value  float64
	Reason Reason
}

func defined(v float64) Result {
	if math.IsNaN(v) {
		return Result{Value: v, Reason: Undefined}
	}
	return Result{Value: v}
}

func failed(r Reason) Result {
	return Result{Value: math.NaN(), Reason: r}
}

func (r Result) Ok() bool {
	return r.Reason == Defined
}

// Or returns the value, or sentinel when the result is not defined.
func (r Result) Or(sentinel float64) float64 {
	if r.Ok() {
		return r.Value
	}
	return sentinel
}

// Float renders the result with the report sentinels: +Inf for a vertical
// slope and NaN for everything else that is undefined.
func (r Result) Float() float64 {
	switch r.Reason {
	case Defined:
		return r.Value
	case Vertical:
		return math.Inf(1)
	default:
		return math.NaN()
	}
}
