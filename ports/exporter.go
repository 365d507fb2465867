package ports

import (
	"context"

	"radonlab/domain/compare"
)

// ReportExporterPort writes a comparison report to an external
// artifact (workbook, file, ...).
type ReportExporterPort interface {
	Export(ctx context.Context, report *compare.Report, path string) error
}
