// Package csvdata loads the measurement table from a CSV file of the
// radon-survey shape: a group label column, a 0/1 covariate column,
// and a log-transformed response column.
package csvdata

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"radonlab/domain/core"
	"radonlab/domain/dataset"
	"radonlab/internal/errors"
	"radonlab/ports"
)

// Config names the columns to read. Matching is case-insensitive.
type Config struct {
	GroupColumn    string `json:"group_column"`
	CovariateCol   string `json:"covariate_column"`
	ResponseColumn string `json:"response_column"`
}

// DefaultConfig matches the Minnesota radon survey extract
func DefaultConfig() Config {
	return Config{
		GroupColumn:    "county",
		CovariateCol:   "floor",
		ResponseColumn: "log_radon",
	}
}

// Loader implements TableLoaderPort for CSV files
type Loader struct {
	cfg Config
}

// NewLoader creates a loader with the given column configuration
func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

var _ ports.TableLoaderPort = (*Loader)(nil)

// Load reads, parses, and validates the file. Any malformed row fails
// the whole load; nothing is silently skipped.
func (l *Loader) Load(ctx context.Context, path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, errors.IOError("reading header", err)
	}

	groupIdx, err := columnIndex(header, l.cfg.GroupColumn)
	if err != nil {
		return nil, err
	}
	covIdx, err := columnIndex(header, l.cfg.CovariateCol)
	if err != nil {
		return nil, err
	}
	respIdx, err := columnIndex(header, l.cfg.ResponseColumn)
	if err != nil {
		return nil, err
	}

	var obs []dataset.Observation
	row := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := r.Read()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.IOError(fmt.Sprintf("reading row %d", row), err)
		}

		o, err := l.parseRow(record, row, groupIdx, covIdx, respIdx)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
		row++
	}

	table, err := dataset.New(obs)
	if err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}
	return table, nil
}

func (l *Loader) parseRow(record []string, row, groupIdx, covIdx, respIdx int) (dataset.Observation, error) {
	max := groupIdx
	if covIdx > max {
		max = covIdx
	}
	if respIdx > max {
		max = respIdx
	}
	if len(record) <= max {
		return dataset.Observation{}, errors.ValidationError(
			fmt.Sprintf("row %d: expected at least %d columns, got %d", row, max+1, len(record)))
	}

	cov, err := strconv.ParseFloat(strings.TrimSpace(record[covIdx]), 64)
	if err != nil {
		return dataset.Observation{}, errors.ValidationError(
			fmt.Sprintf("row %d: covariate %q is not numeric", row, record[covIdx]))
	}
	if cov != 0 && cov != 1 {
		return dataset.Observation{}, errors.ValidationError(
			fmt.Sprintf("row %d: covariate must be 0 or 1, got %v", row, cov))
	}

	resp, err := strconv.ParseFloat(strings.TrimSpace(record[respIdx]), 64)
	if err != nil {
		return dataset.Observation{}, errors.ValidationError(
			fmt.Sprintf("row %d: response %q is not numeric", row, record[respIdx]))
	}

	return dataset.Observation{
		Group:    core.GroupLabel(strings.TrimSpace(record[groupIdx])),
		Basement: int(cov),
		LogRadon: resp,
	}, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, errors.ValidationError(fmt.Sprintf("column %q not found in header", name))
}
