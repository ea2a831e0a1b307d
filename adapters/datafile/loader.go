package datafile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"datacheck/domain/tabular"
	"datacheck/internal/logging"
)

// ErrMalformed marks files whose layout cannot be audited
var ErrMalformed = errors.New("malformed dataset file")

// Column names the published tournament layout uses
const (
	columnID       = "id"
	columnEra      = "era"
	columnDataType = "data_type"
	columnTarget   = "target"
	featurePrefix  = "feature"
)

// Loader reads tournament datasets from CSV and XLSX files into tables
type Loader struct {
	logger *logging.Logger
}

// NewLoader creates a new data file loader
func NewLoader(logger *logging.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the file at path. The layout is id, era and data_type columns,
// any number of columns sharing the feature prefix, and a target column.
// Empty and NA cells become NaN so the audit can flag them; they are not
// load errors.
func (l *Loader) Load(ctx context.Context, path string) (*tabular.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("dataset file not accessible: %w", err)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file extension %q", ErrMalformed, ext)
	}
	if err != nil {
		return nil, err
	}
	l.logger.Debug("read %s (%d rows) in %s", filepath.Base(path), len(rows), time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return buildTable(name, rows)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// layout holds the column indexes resolved from the header row
type layout struct {
	id       int
	era      int
	dataType int
	target   int
	features []int
}

func parseHeader(header []string) (*layout, error) {
	l := &layout{id: -1, era: -1, dataType: -1, target: -1}
	for j, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case name == columnID:
			l.id = j
		case name == columnEra:
			l.era = j
		case name == columnDataType:
			l.dataType = j
		case name == columnTarget || strings.HasPrefix(name, columnTarget+"_"):
			if l.target == -1 {
				l.target = j
			}
		case strings.HasPrefix(name, featurePrefix):
			l.features = append(l.features, j)
		}
	}

	var missing []string
	if l.id == -1 {
		missing = append(missing, columnID)
	}
	if l.era == -1 {
		missing = append(missing, columnEra)
	}
	if l.dataType == -1 {
		missing = append(missing, columnDataType)
	}
	if l.target == -1 {
		missing = append(missing, columnTarget)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns %v", ErrMalformed, missing)
	}
	if len(l.features) == 0 {
		return nil, fmt.Errorf("%w: no feature columns", ErrMalformed)
	}
	return l, nil
}

func buildTable(name string, rows [][]string) (*tabular.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", ErrMalformed)
	}
	header := rows[0]
	l, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	data := rows[1:]
	ids := make([]string, len(data))
	eras := make([]string, len(data))
	regions := make([]tabular.Region, len(data))
	y := make([]float64, len(data))
	x := mat.NewDense(len(data), len(l.features), nil)

	for i, record := range data {
		// XLSX readers drop trailing empty cells, so pad instead of
		// rejecting short records.
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d columns, header has %d", ErrMalformed, i+2, len(record), len(header))
		}

		ids[i] = strings.TrimSpace(record[l.id])
		eras[i] = strings.TrimSpace(record[l.era])
		regions[i] = tabular.Region(strings.TrimSpace(record[l.dataType]))

		v, err := parseCell(record[l.target])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column %s: %v", ErrMalformed, i+2, header[l.target], err)
		}
		y[i] = v

		for k, j := range l.features {
			v, err := parseCell(record[j])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrMalformed, i+2, header[j], err)
			}
			x.Set(i, k, v)
		}
	}

	return tabular.New(name, ids, eras, regions, x, y)
}

// parseCell maps empty and NA cells to NaN and parses everything else as a
// float
func parseCell(raw string) (float64, error) {
	cell := strings.TrimSpace(raw)
	switch strings.ToUpper(cell) {
	case "", "NA", "NAN", "NULL":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", cell)
	}
	return v, nil
}
