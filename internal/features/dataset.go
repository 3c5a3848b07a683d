// Package features turns raw odds data into numeric feature matrices for
// model training and prediction.
package features

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CellKind distinguishes how a cell value should be treated
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumeric
	CellString
)

// Cell is a single typed value in a dataset
type Cell struct {
	Kind   CellKind
	Num    float64
	Str    string
}

// Numeric creates a numeric cell
func Numeric(v float64) Cell {
	return Cell{Kind: CellNumeric, Num: v}
}

// String creates a string cell
func String(s string) Cell {
	return Cell{Kind: CellString, Str: s}
}

// Missing creates a missing-value cell
func Missing() Cell {
	return Cell{Kind: CellMissing}
}

// ParseCell interprets raw text as numeric when possible, empty as missing
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "nan") {
		return Missing()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return Numeric(v)
	}
	return String(s)
}

// Dataset is a column-ordered table of typed cells
type Dataset struct {
	Columns []string
	Rows    [][]Cell
}

// NewDataset creates an empty dataset with the given columns
func NewDataset(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// NumRows returns the number of rows
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// NumColumns returns the number of columns
func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

// ColumnIndex returns the index of a named column, or -1
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn checks whether the dataset contains a named column
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// AppendRow adds a row, which must match the column count
func (d *Dataset) AppendRow(row []Cell) error {
	if len(row) != len(d.Columns) {
		return fmt.Errorf("row has %d cells, dataset has %d columns", len(row), len(d.Columns))
	}
	d.Rows = append(d.Rows, row)
	return nil
}

// AddColumn appends a column filled by the given function of the row index
func (d *Dataset) AddColumn(name string, fill func(row int) Cell) {
	d.Columns = append(d.Columns, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], fill(i))
	}
}

// DropColumn removes a named column; unknown names are a no-op
func (d *Dataset) DropColumn(name string) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return
	}
	d.Columns = append(d.Columns[:idx], d.Columns[idx+1:]...)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i][:idx], d.Rows[i][idx+1:]...)
	}
}

// Cell returns the cell at (row, column index)
func (d *Dataset) Cell(row, col int) Cell {
	return d.Rows[row][col]
}

// SetCell replaces the cell at (row, column index)
func (d *Dataset) SetCell(row, col int, c Cell) {
	d.Rows[row][col] = c
}

// IsNumericColumn reports whether every present cell in the column is numeric.
// Columns with no present cells count as numeric.
func (d *Dataset) IsNumericColumn(col int) bool {
	for _, row := range d.Rows {
		if row[col].Kind == CellString {
			return false
		}
	}
	return true
}

// ColumnValues returns the present numeric values of a column
func (d *Dataset) ColumnValues(col int) []float64 {
	values := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if row[col].Kind == CellNumeric {
			values = append(values, row[col].Num)
		}
	}
	return values
}

// ColumnStrings returns the present string values of a column
func (d *Dataset) ColumnStrings(col int) []string {
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		if row[col].Kind == CellString {
			values = append(values, row[col].Str)
		}
	}
	return values
}

// Clone returns a deep copy of the dataset
func (d *Dataset) Clone() *Dataset {
	clone := NewDataset(d.Columns)
	clone.Rows = make([][]Cell, len(d.Rows))
	for i, row := range d.Rows {
		clone.Rows[i] = append([]Cell(nil), row...)
	}
	return clone
}

// Matrix extracts the named columns as a numeric matrix. Missing cells become
// zero; string cells are an error.
func (d *Dataset) Matrix(columns []string) ([][]float64, error) {
	indexes := make([]int, len(columns))
	for i, name := range columns {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		indexes[i] = idx
	}

	matrix := make([][]float64, len(d.Rows))
	for r, row := range d.Rows {
		vec := make([]float64, len(indexes))
		for i, idx := range indexes {
			cell := row[idx]
			switch cell.Kind {
			case CellNumeric:
				vec[i] = cell.Num
			case CellMissing:
				vec[i] = 0
			case CellString:
				return nil, fmt.Errorf("column %q has non-numeric value %q at row %d", columns[i], cell.Str, r)
			}
		}
		matrix[r] = vec
	}

	return matrix, nil
}

// NumericColumns returns the names of all numeric columns in order
func (d *Dataset) NumericColumns() []string {
	var names []string
	for i, name := range d.Columns {
		if d.IsNumericColumn(i) {
			names = append(names, name)
		}
	}
	return names
}

// CategoricalColumns returns the names of all non-numeric columns in order
func (d *Dataset) CategoricalColumns() []string {
	var names []string
	for i, name := range d.Columns {
		if !d.IsNumericColumn(i) {
			names = append(names, name)
		}
	}
	return names
}

// distinctStrings returns sorted distinct present string values of a column
func (d *Dataset) distinctStrings(col int) []string {
	seen := make(map[string]struct{})
	for _, row := range d.Rows {
		if row[col].Kind == CellString {
			seen[row[col].Str] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
