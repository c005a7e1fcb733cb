package spectral

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is an ordered-column, row-major table loaded from a CSV artifact.
// Cells are kept as strings so that identifying columns (epoch index, stage
// label) and numeric band columns share one representation; numeric access
// goes through NumericColumn.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given column set.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ReadCSV loads a table from a CSV file. The first record is treated as the
// header. Short rows are padded with empty cells so every row matches the
// header width.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", path)
	}

	header := records[0]
	// Strip a UTF-8 BOM left by Excel exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	t := &Table{Columns: header}
	for _, record := range records[1:] {
		row := make([]string, len(header))
		copy(row, record)
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the raw cell at (row, column name). The second return value is
// false when the column does not exist.
func (t *Table) Cell(row int, name string) (string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	return t.Rows[row][idx], true
}

// SetCell overwrites the cell at (row, column name).
func (t *Table) SetCell(row int, name, value string) {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][idx] = value
}

// Slice returns a new table sharing no row storage with the receiver,
// covering rows [start, end).
func (t *Table) Slice(start, end int) *Table {
	if start < 0 {
		start = 0
	}
	if end > len(t.Rows) {
		end = len(t.Rows)
	}
	out := NewTable(t.Columns)
	for _, row := range t.Rows[start:end] {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(row []string) {
	padded := make([]string, len(t.Columns))
	copy(padded, row)
	t.Rows = append(t.Rows, padded)
}

// NumericColumn coerces the named column to float64 values. Cells that do not
// parse as numbers become NaN (missing). The second return value is false
// when the column does not exist.
func (t *Table) NumericColumn(name string) ([]float64, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = ParseCell(row[idx])
	}
	return values, true
}

// Records returns the table as CSV records including the header, with NaN
// cells already rendered as empty strings by FormatCell at write time.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Columns)
	records = append(records, t.Rows...)
	return records
}

// ParseCell converts a cell to float64, returning NaN for empty or
// non-numeric cells. Thousands separators are tolerated.
func ParseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// FormatCell renders a float64 for CSV output. NaN becomes an empty cell so
// missing values round-trip as missing, never as zero.
func FormatCell(value float64) string {
	if math.IsNaN(value) {
		return ""
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// Mean computes the arithmetic mean of the non-NaN values. The second return
// value is false when every value is missing.
func Mean(values []float64) (float64, bool) {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), false
	}
	return sum / float64(n), true
}

// MeanStd computes the missing-aware mean and sample standard deviation of
// the values. Fewer than two present values yield a zero standard deviation.
func MeanStd(values []float64) (mean, std float64, ok bool) {
	mean, ok = Mean(values)
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	var sumSq float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sumSq += d * d
		n++
	}
	if n < 2 {
		return mean, 0, true
	}
	return mean, math.Sqrt(sumSq / float64(n-1)), true
}
