// Package excel exports a comparison report as an .xlsx workbook:
// one posterior-summary sheet per variant plus a comparison sheet
// holding the RMSD scores and the shrinkage table.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"radonlab/domain/compare"
	"radonlab/internal/errors"
	"radonlab/ports"
)

// Exporter implements ReportExporterPort for Excel workbooks
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

var _ ports.ReportExporterPort = (*Exporter)(nil)

// Export writes the workbook to path
func (e *Exporter) Export(ctx context.Context, report *compare.Report, path string) error {
	if report == nil {
		return errors.InvalidInput("export requires a report")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeComparison(f, report); err != nil {
		return err
	}
	for _, fit := range report.Fits {
		if err := e.writeFitSheet(f, fit); err != nil {
			return err
		}
	}

	// The default sheet is replaced by the comparison sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.IOError("removing default sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(fmt.Sprintf("saving workbook %s", path), err)
	}
	return nil
}

func (e *Exporter) writeComparison(f *excelize.File, report *compare.Report) error {
	const sheet = "comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.IOError("creating comparison sheet", err)
	}

	rows := [][]interface{}{
		{"observations", report.Observations},
		{"groups", report.Groups},
		{"seed", report.Seed},
		{"dataset_hash", report.DatasetHash.String()},
		{},
		{"variant", "rmsd"},
	}
	for _, s := range report.Scores {
		rows = append(rows, []interface{}{string(s.Variant), s.RMSD})
	}
	rows = append(rows, []interface{}{},
		[]interface{}{"group", "count",
			"unpooled_intercept", "unpooled_slope",
			"hier_intercept", "hier_slope",
			"delta_intercept", "delta_slope", "displacement"})
	for _, g := range report.Shrinkage {
		rows = append(rows, []interface{}{
			g.Group.String(), g.Count,
			g.UnpooledIntercept, g.UnpooledSlope,
			g.HierIntercept, g.HierSlope,
			g.DeltaIntercept, g.DeltaSlope, g.Displacement,
		})
	}

	return writeRows(f, sheet, rows)
}

func (e *Exporter) writeFitSheet(f *excelize.File, fit compare.FitRecord) error {
	sheet := string(fit.Variant)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.IOError(fmt.Sprintf("creating %s sheet", sheet), err)
	}

	rows := [][]interface{}{
		{"run_id", fit.RunID.String()},
		{"fingerprint", fit.Fingerprint.String()},
		{"healthy", fit.Healthy},
		{},
		{"parameter", "mean", "sd", "q5", "median", "q95", "rhat", "ess"},
	}
	for _, s := range fit.Summaries {
		rows = append(rows, []interface{}{
			s.Name, s.Mean, s.SD, s.Q5, s.Median, s.Q95, s.RHat, s.ESS,
		})
	}

	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return errors.IOError("resolving cell name", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return errors.IOError(fmt.Sprintf("writing %s!%s", sheet, cell), err)
			}
		}
	}
	return nil
}
