package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/stat"
)

type AccumulatorTestSuite struct {
	suite.Suite
}

func TestAccumulatorTestSuite(t *testing.T) {
	suite.Run(t, new(AccumulatorTestSuite))
}

func (suite *AccumulatorTestSuite) TestEmptyIsInvalid() {
	acc := New()

	assert.True(suite.T(), acc.IsInvalid())
	assert.Equal(suite.T(), float64(0), acc.MeanX(), "empty mean is zero, not NaN")
	assert.Equal(suite.T(), DivideByZero, acc.VarianceX().Reason)
	assert.Equal(suite.T(), DivideByZero, acc.Slope().Reason)
	assert.Equal(suite.T(), Undefined, acc.StdDevY().Reason)
	assert.True(suite.T(), math.IsInf(acc.MinX, 1))
	assert.True(suite.T(), math.IsInf(acc.MaxX, -1))
}

func (suite *AccumulatorTestSuite) TestKnownDataset() {
	acc := New()
	for x := 0.0; x < 100; x++ {
		acc.Add(x, x)
	}

	assert.False(suite.T(), acc.IsInvalid())
	assert.Equal(suite.T(), float64(0), acc.MinX)
	assert.Equal(suite.T(), float64(99), acc.MaxX)
	assert.Equal(suite.T(), 49.5, acc.MeanX())
	assert.Equal(suite.T(), Result{Value: 1}, acc.Slope())
	assert.Equal(suite.T(), Result{Value: 1}, acc.Correlation())
	assert.Equal(suite.T(), float64(0), acc.Intercept().Value)
}

func (suite *AccumulatorTestSuite) TestAddXUsesSampleCount() {
	acc := New()
	for x := 0.0; x < 100; x++ {
		acc.AddX(x)
	}

	assert.Equal(suite.T(), float64(1), acc.MinY)
	assert.Equal(suite.T(), float64(100), acc.MaxY)
	assert.Equal(suite.T(), 1.0, acc.Slope().Value)
	assert.Equal(suite.T(), 1.0, acc.Correlation().Value)
}

func (suite *AccumulatorTestSuite) TestSampleCountValidity() {
	acc := New()
	acc.Add(4, 1)
	assert.True(suite.T(), acc.IsInvalid(), "one sample cannot support a regression")

	acc.Add(6, 2)
	assert.False(suite.T(), acc.IsInvalid(), "two distinct x samples are enough")
}

func (suite *AccumulatorTestSuite) TestVerticalSlope() {
	acc := New()
	acc.Add(5, 1)
	acc.Add(5, 2)

	slope := acc.Slope()
	assert.Equal(suite.T(), Vertical, slope.Reason)
	assert.True(suite.T(), math.IsInf(slope.Float(), 1))
	assert.Equal(suite.T(), Vertical, acc.Intercept().Reason)
	assert.Equal(suite.T(), float64(CorrelationSentinel), acc.Correlation().Or(CorrelationSentinel))
	assert.True(suite.T(), acc.IsInvalid())
}

func (suite *AccumulatorTestSuite) TestFlatYHasNoCorrelation() {
	acc := New()
	acc.Add(1, 3)
	acc.Add(2, 3)
	acc.Add(3, 3)

	assert.Equal(suite.T(), Undefined, acc.Correlation().Reason)
	assert.Equal(suite.T(), float64(CorrelationSentinel), acc.Correlation().Or(CorrelationSentinel))
}

// The deviation divides the root by n-1. This is not the textbook sample
// deviation; the test pins the quantity reports depend on.
func (suite *AccumulatorTestSuite) TestStdDevFormula() {
	acc := New()
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		acc.AddX(x)
	}

	assert.InDelta(suite.T(), math.Sqrt(32)/7, acc.StdDevX().Value, 1e-12)
	assert.InDelta(suite.T(), 4.0, acc.VarianceX().Value, 1e-12)
	assert.NotEqual(suite.T(), math.Sqrt(32.0/7), acc.StdDevX().Value)
}

func (suite *AccumulatorTestSuite) TestCloneDoesNotAlias() {
	orig := New()
	for x, y := 0.0, -1.0; x < 100; x, y = x+1, y+1 {
		orig.Add(x, y)
	}

	clone := orig
	assert.Equal(suite.T(), orig.String(), clone.String())

	orig.Add(0, 0)
	assert.NotEqual(suite.T(), orig.String(), clone.String())
	assert.Equal(suite.T(), clone.N+1, orig.N)
}

func (suite *AccumulatorTestSuite) TestMergeWithSelf() {
	orig := New()
	for x, y := 0.0, -1.0; x < 500; x, y = x+1, y+1 {
		orig.Add(x, y)
	}

	clone := orig
	clone.Merge(orig)

	assert.Equal(suite.T(), orig.N*2, clone.N)
	assert.Equal(suite.T(), orig.Sx*2, clone.Sx)
	assert.Equal(suite.T(), orig.Sy*2, clone.Sy)
	assert.Equal(suite.T(), orig.Sy2*2, clone.Sy2)
	assert.Equal(suite.T(), orig.Sxy*2, clone.Sxy)
	assert.Equal(suite.T(), orig.MeanX(), clone.MeanX())
	assert.Equal(suite.T(), orig.MeanY(), clone.MeanY())
	assert.InDelta(suite.T(), orig.VarianceX().Value, clone.VarianceX().Value, 1e-9)
	assert.InDelta(suite.T(), orig.VarianceY().Value, clone.VarianceY().Value, 1e-9)
	assert.False(suite.T(), clone.IsInvalid())
}

func (suite *AccumulatorTestSuite) TestMergeCommutesAndAssociates() {
	r := rand.New(rand.NewSource(42))
	a, b, c := randomAccumulator(r, 17), randomAccumulator(r, 5), randomAccumulator(r, 31)

	assertSameFields(suite.T(), Sum(a, b), Sum(b, a))
	assertSameFields(suite.T(), Sum(Sum(a, b), c), Sum(a, Sum(b, c)))

	// Merging never mutates its arguments.
	before := a
	_ = Sum(a, b)
	assert.Equal(suite.T(), before, a)
}

func (suite *AccumulatorTestSuite) TestMergeEqualsPointwiseAdds() {
	r := rand.New(rand.NewSource(7))
	xs, ys := randomPoints(r, 40)

	whole := New()
	left, right := New(), New()
	for i := range xs {
		whole.Add(xs[i], ys[i])
		if i%3 == 0 {
			left.Add(xs[i], ys[i])
		} else {
			right.Add(xs[i], ys[i])
		}
	}

	assertSameFields(suite.T(), whole, Sum(right, left))
}

func (suite *AccumulatorTestSuite) TestDecReversesSums() {
	acc := New()
	acc.Add(1, 1)
	acc.Add(2, 3)
	acc.Add(7, 4)
	acc.Dec(7, 4)

	assert.Equal(suite.T(), float64(2), acc.N)
	assert.Equal(suite.T(), float64(3), acc.Sx)
	assert.Equal(suite.T(), float64(4), acc.Sy)
	assert.Equal(suite.T(), float64(7), acc.MaxX, "bounds are not reversed")
}

func (suite *AccumulatorTestSuite) TestRegressionMatchesGonum() {
	r := rand.New(rand.NewSource(1))
	xs, ys := randomPoints(r, 200)

	acc := New()
	for i := range xs {
		acc.Add(xs[i], ys[i])
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	_, variance := stat.PopMeanVariance(xs, nil)

	assert.InDelta(suite.T(), stat.Mean(xs, nil), acc.MeanX(), 1e-9)
	assert.InDelta(suite.T(), beta, acc.Slope().Value, 1e-9)
	assert.InDelta(suite.T(), alpha, acc.Intercept().Value, 1e-7)
	assert.InDelta(suite.T(), variance, acc.VarianceX().Value, 1e-7)
}

func randomPoints(r *rand.Rand, n int) ([]float64, []float64) {
	xs, ys := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = 40 + r.Float64()*200
		ys[i] = 0.5*xs[i] + r.NormFloat64()*10
	}
	return xs, ys
}

func randomAccumulator(r *rand.Rand, n int) Accumulator {
	acc := New()
	xs, ys := randomPoints(r, n)
	for i := range xs {
		acc.Add(xs[i], ys[i])
	}
	return acc
}

func assertSameFields(t *testing.T, want, got Accumulator) {
	const delta = 1e-6
	assert.Equal(t, want.N, got.N)
	assert.InDelta(t, want.Sx, got.Sx, delta)
	assert.InDelta(t, want.Sy, got.Sy, delta)
	assert.InDelta(t, want.Sx2, got.Sx2, delta)
	assert.InDelta(t, want.Sy2, got.Sy2, delta)
	assert.InDelta(t, want.Sxy, got.Sxy, delta)
	assert.Equal(t, want.MinX, got.MinX)
	assert.Equal(t, want.MaxX, got.MaxX)
	assert.Equal(t, want.MinY, got.MinY)
	assert.Equal(t, want.MaxY, got.MaxY)
}
