package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SummaryTestSuite struct {
	suite.Suite
}

func TestSummaryTestSuite(t *testing.T) {
	suite.Run(t, new(SummaryTestSuite))
}

func (suite *SummaryTestSuite) TestSummarize() {
	ss := Summarize([]float64{6, 6, 6, 6})

	assert.Equal(suite.T(), float64(6), ss.Average, "averages do not equal")
	assert.Equal(suite.T(), float64(6), ss.Median)
	assert.Equal(suite.T(), float64(0), ss.Deviation, "deviations do not equal")
}

func (suite *SummaryTestSuite) TestSummarizeSpread() {
	ss := Summarize([]float64{1, 2, 3, 10})

	assert.Equal(suite.T(), float64(4), ss.Average)
	assert.Equal(suite.T(), 2.5, ss.Median)
	assert.Equal(suite.T(), float64(1), ss.Min)
	assert.Equal(suite.T(), float64(10), ss.Max)
}

func (suite *SummaryTestSuite) TestSummarizeEmpty() {
	assert.Equal(suite.T(), SummaryStatistics{}, Summarize(nil))
}
