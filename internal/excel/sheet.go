// Package excel reads test data tables from spreadsheets.
//
// Workbooks (.xlsx, .xlsm) are read with excelize; .csv files go through a
// cleaning stream and encoding/csv, in which case the sheet name is ignored.
// Every accessor returns trimmed strings, "" for blank or missing cells and
// the raw stored value for numeric cells.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/the-sdet/sdetkit/internal/common"
	"github.com/the-sdet/sdetkit/internal/logging"
)

var (
	// ErrSheetNotFound is returned when a workbook has no sheet of the given name.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrHeaderNotFound is returned when no column or row header matches.
	ErrHeaderNotFound = errors.New("header not found")
	// ErrRowOutOfRange is returned for a row index past the last row.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrUnsupportedFormat is returned for file extensions other than xlsx, xlsm and csv.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Sheet is a loaded table of cells.
type Sheet struct {
	Name string
	rows [][]string
}

// Load reads sheet from the workbook at path.
func Load(path, sheet string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, sheet)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

func loadWorkbook(path, sheet string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s in %s: %w", sheet, path, ErrSheetNotFound)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}

	logging.Debug(context.Background(), "Loaded sheet", "path", path, "sheet", sheet, "rows", len(rows))
	return &Sheet{Name: sheet, rows: rows}, nil
}

func loadCSV(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(newCleanReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = common.CleanCell(row[i])
		}
	}

	logging.Debug(context.Background(), "Loaded csv", "path", path, "rows", len(rows))
	return &Sheet{Name: filepath.Base(path), rows: rows}, nil
}

// SheetNames lists the sheets of a workbook in tab order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// cell returns the value at row, col or "" when either is out of range.
func (s *Sheet) cell(row, col int) string {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return common.EmptyString
	}
	return s.rows[row][col]
}

// RowCount is the number of rows including the header.
func (s *Sheet) RowCount() int { return len(s.rows) }

// Header returns the first row.
func (s *Sheet) Header() []string {
	if len(s.rows) == 0 {
		return []string{}
	}
	return append([]string(nil), s.rows[0]...)
}

// Column returns the values of column col for every row.
func (s *Sheet) Column(col int, skipHeader bool) []string {
	start := 0
	if skipHeader {
		start = 1
	}
	out := make([]string, 0, len(s.rows))
	for i := start; i < len(s.rows); i++ {
		out = append(out, s.cell(i, col))
	}
	return out
}

// ColumnByHeader is Column for the column whose header matches, ignoring
// case and surrounding space.
func (s *Sheet) ColumnByHeader(header string, skipHeader bool) ([]string, error) {
	col, ok := common.MakeHeaderIndex(s.Header()).Lookup(header)
	if !ok {
		return nil, fmt.Errorf("column %q: %w", header, ErrHeaderNotFound)
	}
	return s.Column(col, skipHeader), nil
}

// Row returns the cells of row up to its last cell.
func (s *Sheet) Row(row int, skipFirstColumn bool) ([]string, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("row %d of %d: %w", row, len(s.rows), ErrRowOutOfRange)
	}
	start := 0
	if skipFirstColumn {
		start = 1
	}
	out := make([]string, 0, len(s.rows[row]))
	for i := start; i < len(s.rows[row]); i++ {
		out = append(out, s.cell(row, i))
	}
	return out, nil
}

// RowByHeader is Row for the first row whose first cell matches rowHeader,
// ignoring case and surrounding space.
func (s *Sheet) RowByHeader(rowHeader string, skipFirstColumn bool) ([]string, error) {
	want := strings.TrimSpace(rowHeader)
	for i := range s.rows {
		if strings.EqualFold(s.cell(i, 0), want) {
			return s.Row(i, skipFirstColumn)
		}
	}
	return nil, fmt.Errorf("row %q: %w", rowHeader, ErrHeaderNotFound)
}

// Records maps every row after the header to header -> value, reading as
// many cells as the header has.
func (s *Sheet) Records(skipFirstColumn bool) []map[string]string {
	header := s.Header()
	start := 0
	if skipFirstColumn {
		start = 1
	}

	out := make([]map[string]string, 0, len(s.rows))
	for i := 1; i < len(s.rows); i++ {
		rec := make(map[string]string, len(header))
		for j := start; j < len(header); j++ {
			rec[header[j]] = s.cell(i, j)
		}
		out = append(out, rec)
	}
	return out
}
