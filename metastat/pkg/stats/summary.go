package stats

import (
	"github.com/montanaflynn/stats"
)

type SummaryStatistics struct {
	Average   float64
	Median    float64
	Deviation float64
	Min       float64
	Max       float64
}

// Summarize describes a set of bucket means. Empty input yields zeros.
func Summarize(means []float64) SummaryStatistics {
	if len(means) == 0 {
		return SummaryStatistics{}
	}
	avg, _ := stats.Mean(means)
	med, _ := stats.Median(means)
	dev, _ := stats.StandardDeviation(means)
	lo, _ := stats.Min(means)
	hi, _ := stats.Max(means)
	return SummaryStatistics{Average: avg, Median: med, Deviation: dev, Min: lo, Max: hi}
}
