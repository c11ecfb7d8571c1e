package report

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"mstat/metastat"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXWriter writes a report as a workbook with one sheet per table.
type XLSXWriter struct {
	Dir      string
	Location *time.Location

	Logger *zap.Logger
}

func (w *XLSXWriter) Write(ctx context.Context, r *metastat.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range Tables(r, w.Location) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("unable to name sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("unable to create sheet: %w", err)
		}

		for j, line := range t.Lines() {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				return err
			}
			row := make([]interface{}, len(line))
			for k, v := range line {
				row[k] = xlsxCell(v)
			}
			if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
				return fmt.Errorf("unable to write sheet %s: %w", t.Name, err)
			}
		}
	}

	path := filepath.Join(w.Dir, FileName("metastat", r.Width, "xlsx"))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save workbook: %w", err)
	}
	if w.Logger != nil {
		w.Logger.Info("wrote workbook", zap.String("path", path))
	}
	return nil
}

// xlsxCell keeps non-finite numbers readable; spreadsheets have no NaN.
func xlsxCell(v interface{}) interface{} {
	if c, ok := v.(float64); ok && (math.IsNaN(c) || math.IsInf(c, 0)) {
		return formatCell(c)
	}
	return v
}
