package report

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mstat/metastat"
	"mstat/metastat/defs"
	"mstat/metastat/pkg/fuel"
	"mstat/metastat/pkg/gki"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ReportTestSuite struct {
	suite.Suite
	epoch  time.Time
	report *metastat.Report
	dir    string
}

func TestReportTestSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) stat(prefix string, c defs.Category, week int, values ...float64) *fuel.Stat {
	start := suite.epoch.AddDate(0, 0, 7*week)
	key := fuel.Key{Start: start, End: start.AddDate(0, 0, 7)}
	s := fuel.New(fuel.Name(prefix, key), c, key)
	for i, v := range values {
		s.AddReading(v, start.Add(time.Duration(i+1)*time.Hour))
	}
	return s
}

func (suite *ReportTestSuite) SetupTest() {
	suite.epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	suite.dir = suite.T().TempDir()

	ketone := []*fuel.Stat{
		suite.stat("BK", defs.Ketone, 0, 0.5, 1.0, 1.5),
		suite.stat("BK", defs.Ketone, 1, 1.0),
	}
	glucose := []*fuel.Stat{
		suite.stat("MGL", defs.ContinuousGlucose, 0, 80, 90, 100),
		suite.stat("MGL", defs.ContinuousGlucose, 1, 85, 95, 105),
	}
	suite.report = &metastat.Report{
		ID:      "run",
		Width:   7,
		Epoch:   suite.epoch,
		Ketone:  ketone,
		Glucose: glucose,
		GKI:     gki.Derive(glucose, ketone, false, nil),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func (suite *ReportTestSuite) TestCSVWriter() {
	w := &CSVWriter{Dir: suite.dir, Location: time.UTC, Logger: zap.NewExample()}
	require.NoError(suite.T(), w.Write(context.Background(), suite.report))

	bk := readCSV(suite.T(), filepath.Join(suite.dir, "BK-7.00-days.csv"))
	// title, footer, header, 2 rows, footer, summary
	require.Len(suite.T(), bk, 7)
	assert.Equal(suite.T(), "Title:", bk[0][0])
	assert.Contains(suite.T(), bk[0][1], " BK- 7.00 day interval with 4 samples in ")
	assert.Equal(suite.T(), fuel.Header, bk[2])
	assert.Equal(suite.T(), bk[1], bk[5])
	assert.Equal(suite.T(), "1/1/2020", bk[3][0])
	assert.Equal(suite.T(), "1", bk[3][3])
	assert.Equal(suite.T(), "NaN", bk[4][6], "single sample bucket has no deviation")
	assert.Len(suite.T(), bk[3], len(fuel.Header))

	g := readCSV(suite.T(), filepath.Join(suite.dir, "GKI-7.00-days.csv"))
	require.Len(suite.T(), g, 7)
	assert.Equal(suite.T(), gki.Header, g[2])
	assert.Equal(suite.T(), "5", g[3][2])
	assert.Len(suite.T(), g[4], len(gki.Header), "invalid rows keep the column count")
	assert.Equal(suite.T(), "0", g[4][2])

	cgm := readCSV(suite.T(), filepath.Join(suite.dir, "CGM-7.00-days.csv"))
	require.Len(suite.T(), cgm, 7)
	assert.Equal(suite.T(), "summary", cgm[6][2])
	assert.Equal(suite.T(), "92.5000", cgm[6][4])
}

func (suite *ReportTestSuite) TestCSVWriterMissingDir() {
	w := &CSVWriter{Dir: filepath.Join(suite.dir, "missing")}
	assert.Error(suite.T(), w.Write(context.Background(), suite.report))
}

func (suite *ReportTestSuite) TestXLSXWriter() {
	w := &XLSXWriter{Dir: suite.dir, Location: time.UTC}
	require.NoError(suite.T(), w.Write(context.Background(), suite.report))

	f, err := excelize.OpenFile(filepath.Join(suite.dir, "metastat-7.00-days.xlsx"))
	require.NoError(suite.T(), err)
	defer f.Close()

	assert.Equal(suite.T(), []string{"BK", "GKI", "CGM"}, f.GetSheetList())

	rows, err := f.GetRows("BK")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 7)
	assert.Equal(suite.T(), fuel.Header, rows[2])
	assert.Equal(suite.T(), "NaN", rows[4][6])
}

func (suite *ReportTestSuite) TestEmptyReport() {
	w := &CSVWriter{Dir: suite.dir}
	require.NoError(suite.T(), w.Write(context.Background(), &metastat.Report{Width: defs.MonthDays}))

	bk := readCSV(suite.T(), filepath.Join(suite.dir, "BK-30.44-days.csv"))
	assert.Len(suite.T(), bk, 5)
}

func (suite *ReportTestSuite) TestFileName() {
	assert.Equal(suite.T(), "metastat-0.96-days.xlsx", FileName("metastat", defs.DayDays, "xlsx"))
	assert.Equal(suite.T(), "BK-7.00-days.csv", FileName("BK", 7, "csv"))
}

func (suite *ReportTestSuite) TestFormatCell() {
	assert.Equal(suite.T(), "NaN", formatCell(math.NaN()))
	assert.Equal(suite.T(), "+Inf", formatCell(math.Inf(1)))
	assert.Equal(suite.T(), "3", formatCell(3.0))
	assert.Equal(suite.T(), "0.1235", formatCell(0.12345))
	assert.Equal(suite.T(), "7", formatCell(7))
	assert.Equal(suite.T(), "x", formatCell("x"))
}

func (suite *ReportTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &CSVWriter{Dir: suite.dir}
	assert.ErrorIs(suite.T(), w.Write(ctx, suite.report), context.Canceled)
}
