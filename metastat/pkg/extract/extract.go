package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"time"

	"mstat/metastat/defs"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02 15:04:05 -0700"

var (
	dateMatch   = regexp.MustCompile(`,(\d+-\d\d-\d\d \d\d:\d\d:\d\d (-0\d00)),`)
	sourceMatch = regexp.MustCompile(`(?i)^(Gluco\w+|Blood\w+),(\d+\.\d+)`)
)

// Extractor turns an exported health log into samples. Lines without a
// timestamp or without a recognised source and value are dropped.
type Extractor struct {
	Logger *zap.Logger
}

// ReadFile opens the file at path and reads it.
func (e *Extractor) ReadFile(path string) ([]defs.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input: %w", err)
	}
	defer f.Close()

	return e.Read(f)
}

// Read returns the samples of r ordered by time. Samples sharing a
// timestamp keep their line order.
func (e *Extractor) Read(r io.Reader) ([]defs.Sample, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		samples []defs.Sample
		dropped int
		line    int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line++
		s, ok, err := parseLine(sc.Text())
		if err != nil {
			logger.Debug("unable to parse line", zap.Int("line", line), zap.Error(err))
		}
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})

	logger.Info("extracted samples",
		zap.Int("samples", len(samples)),
		zap.Int("dropped", dropped),
	)
	return samples, nil
}

func parseLine(line string) (defs.Sample, bool, error) {
	dm := dateMatch.FindStringSubmatch(line)
	if dm == nil {
		return defs.Sample{}, false, nil
	}
	sm := sourceMatch.FindStringSubmatch(line)
	if sm == nil {
		return defs.Sample{}, false, nil
	}

	t, err := time.Parse(dateLayout, dm[1])
	if err != nil {
		return defs.Sample{}, false, err
	}
	v, err := strconv.ParseFloat(sm[2], 64)
	if err != nil {
		return defs.Sample{}, false, err
	}

	return defs.Sample{
		Time:     t,
		Category: defs.ParseCategory(sm[1]),
		Source:   sm[1],
		Value:    v,
	}, true, nil
}
