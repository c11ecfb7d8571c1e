package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"
	"mstat/metastat/pkg/gki"
	"mstat/metastat/pkg/stats"
)

const dateLayout = "1/2/2006"

// Table is one report laid out as rows of cells. A cell is a string, an int
// or a float64.
type Table struct {
	Name    string
	Title   []interface{}
	Footer  []interface{}
	Header  []string
	Rows    [][]interface{}
	Summary []interface{}
}

// Lines returns every row in output order: title, footer, header, body,
// footer and the summary of bucket means.
func (t *Table) Lines() [][]interface{} {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}

	lines := make([][]interface{}, 0, len(t.Rows)+5)
	lines = append(lines, t.Title, t.Footer, header)
	lines = append(lines, t.Rows...)
	return append(lines, t.Footer, t.Summary)
}

// FileName names the file of a table for a bucket width.
func FileName(name string, width float64, ext string) string {
	return fmt.Sprintf("%s-%s-days.%s", name, defs.WidthLabel(width), ext)
}

// Tables lays out the ketone, index and glucose reports of r.
func Tables(r *metastat.Report, loc *time.Location) []*Table {
	if loc == nil {
		loc = time.Local
	}
	return []*Table{
		fuelTable("BK", r.Width, r.Ketone, loc),
		gkiTable(r.Width, r.GKI, loc),
		fuelTable("CGM", r.Width, r.Glucose, loc),
	}
}

func title(name string, width float64, samples int, span time.Duration) []interface{} {
	return []interface{}{
		"Title:",
		fmt.Sprintf(" %s- %.2f day interval with %d samples in %d days", name, width, samples, int(span.Hours()/24)),
	}
}

func fuelTable(name string, width float64, ss []*fuel.Stat, loc *time.Location) *Table {
	ofStats := stats.New()
	means := make([]float64, 0, len(ss))
	span := stats.New()
	var samples int

	rows := make([][]interface{}, 0, len(ss))
	for _, s := range ss {
		rec := s.Record()
		row := []interface{}{rec.Index.In(loc).Format(dateLayout), rec.Interpolations, rec.Name}
		for _, v := range rec.Values() {
			row = append(row, v)
		}
		rows = append(rows, row)

		samples += int(s.N)
		if s.N == 0 {
			continue
		}
		span.Merge(s.Accumulator)
		ofStats.Add(s.MeanX(), s.MeanY())
		means = append(means, s.MeanX())
	}

	return &Table{
		Name:    name,
		Title:   title(name, width, samples, spanOf(span)),
		Footer:  footer(ofStats, loc),
		Header:  fuel.Header,
		Rows:    rows,
		Summary: summary(means),
	}
}

func gkiTable(width float64, gs []*gki.Stat, loc *time.Location) *Table {
	ofGKI, ofGlucose, ofKetone := stats.New(), stats.New(), stats.New()
	means := make([]float64, 0, len(gs))
	var nGKI, nGlucose, nKetone float64
	var from, to time.Time

	rows := make([][]interface{}, 0, len(gs))
	for i, g := range gs {
		rec := g.Record()
		row := []interface{}{rec.Index.In(loc).Format(dateLayout), rec.Name}
		for _, v := range rec.Values() {
			row = append(row, v)
		}
		rows = append(rows, row)

		if i == 0 || g.From().Before(from) {
			from = g.From()
		}
		if i == 0 || g.To().After(to) {
			to = g.To()
		}
		nGKI += g.N()
		nGlucose += g.Glucose.N
		nKetone += g.Ketone.N
		if g.IsInvalid() {
			continue
		}
		ofGKI.Add(g.MeanRatio, g.MeanY)
		ofGlucose.Add(g.Glucose.MeanX(), g.Glucose.MeanY())
		ofKetone.Add(g.Ketone.MeanX(), g.Ketone.MeanY())
		means = append(means, g.MeanRatio)
	}

	foot := []interface{}{"", dateRange(ofGKI, loc)}
	for _, part := range []struct {
		a stats.Accumulator
		n float64
	}{{ofGKI, nGKI}, {ofGlucose, nGlucose}, {ofKetone, nKetone}} {
		a := part.a
		foot = append(foot,
			a.MeanX(), a.MinX, a.MaxX,
			math.Sqrt(a.VarianceX().Float()), a.StdDevX().Float(), part.n,
		)
	}

	return &Table{
		Name:    gki.Prefix,
		Title:   title(gki.Prefix, width, int(nGKI), to.Sub(from)),
		Footer:  foot,
		Header:  gki.Header,
		Rows:    rows,
		Summary: summary(means),
	}
}

// footer renders the statistic of bucket means with the fuel.Header layout.
func footer(a stats.Accumulator, loc *time.Location) []interface{} {
	variance := a.VarianceX().Float()
	return []interface{}{
		"", "", dateRange(a, loc),
		a.MeanX(), a.MinX, a.MaxX,
		a.StdDevX().Float(), a.StdDevY().Float(), a.Slope().Float(),
		variance, math.Sqrt(variance), a.N,
	}
}

func summary(means []float64) []interface{} {
	sum := stats.Summarize(means)
	return []interface{}{
		"", "", "summary",
		"average", sum.Average,
		"median", sum.Median,
		"deviation", sum.Deviation,
		"min", sum.Min,
		"max", sum.Max,
	}
}

func dateRange(a stats.Accumulator, loc *time.Location) string {
	if a.N == 0 {
		return ""
	}
	return fuel.FromDays(a.MinY).In(loc).Format(dateLayout) + "-" + fuel.FromDays(a.MaxY).In(loc).Format(dateLayout)
}

func spanOf(a stats.Accumulator) time.Duration {
	if a.N == 0 {
		return 0
	}
	return fuel.FromDays(a.MaxY).Sub(fuel.FromDays(a.MinY))
}

// formatCell renders a cell for delimited text.
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		if math.IsNaN(c) {
			return "NaN"
		}
		if math.IsInf(c, 0) {
			return strconv.FormatFloat(c, 'f', -1, 64)
		}
		if c == math.Trunc(c) && math.Abs(c) < 1e15 {
			return strconv.FormatFloat(c, 'f', 0, 64)
		}
		return strconv.FormatFloat(c, 'f', 4, 64)
	default:
		return fmt.Sprint(c)
	}
}
