package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mstat/metastat"

	"go.uber.org/zap"
)

// CSVWriter writes the BK, GKI and CGM tables of a report as one csv file
// each into Dir.
type CSVWriter struct {
	Dir      string
	Location *time.Location

	Logger *zap.Logger
}

func (w *CSVWriter) Write(ctx context.Context, r *metastat.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, t := range Tables(r, w.Location) {
		path := filepath.Join(w.Dir, FileName(t.Name, r.Width, "csv"))
		if err := writeCSV(path, t); err != nil {
			return err
		}
		if w.Logger != nil {
			w.Logger.Info("wrote report", zap.String("path", path), zap.Int("rows", len(t.Rows)))
		}
	}
	return nil
}

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	for _, line := range t.Lines() {
		record := make([]string, len(line))
		for i, v := range line {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("unable to write report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return f.Close()
}
