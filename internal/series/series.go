// Package series owns the ordered table of survey points loaded from a
// cross-section CSV file. Row order is the geometric order along the section
// and is never changed implicitly; column identity and dtype are fixed for
// the lifetime of a loaded file.
package series

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Dtype identifies a column's value type, inferred once at load.
type Dtype int

const (
	DtypeString Dtype = iota
	DtypeInt
	DtypeFloat
	DtypeBool
)

// String returns the dtype name.
func (d Dtype) String() string {
	switch d {
	case DtypeInt:
		return "int"
	case DtypeFloat:
		return "float"
	case DtypeBool:
		return "bool"
	default:
		return "string"
	}
}

// Column is one typed column of the point table. Cells hold int, float64,
// bool or string according to Dtype; nil marks a null cell.
type Column struct {
	Name  string
	Dtype Dtype
	Cells []interface{}
}

// Series is the ordered point table for one loaded file.
type Series struct {
	Path      string
	HasHeader bool
	Comment   byte
	Columns   []*Column

	nrows int
}

// Errors reported by mutating operations.
var (
	// ErrTypeMismatch means an edit value could not be coerced to the
	// column's dtype; the original cell value is retained.
	ErrTypeMismatch = errors.New("value does not match column type")
	// ErrOutOfRange means an interpolation X is outside the data extent.
	ErrOutOfRange = errors.New("x value outside data range")
	// ErrDuplicateX means an interpolation X exactly matches an existing row.
	ErrDuplicateX = errors.New("x value matches an existing row")
)

// NumRows returns the number of data rows.
func (s *Series) NumRows() int { return s.nrows }

// NumCols returns the number of columns.
func (s *Series) NumCols() int { return len(s.Columns) }

// ColumnNames returns the column names in order.
func (s *Series) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Cell returns the typed value at (row, col), or nil for a null cell.
func (s *Series) Cell(row, col int) interface{} {
	return s.Columns[col].Cells[row]
}

// CellString returns the cell rendered for display or CSV output.
func (s *Series) CellString(row, col int) string {
	return formatCell(s.Columns[col].Cells[row])
}

// Float returns the cell as a float64. The second result is false for null
// cells and non-numeric columns.
func (s *Series) Float(row, col int) (float64, bool) {
	switch v := s.Columns[col].Cells[row].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// FloatColumn returns the whole column as float64s, NaN for cells without a
// numeric value.
func (s *Series) FloatColumn(col int) []float64 {
	out := make([]float64, s.nrows)
	for i := range out {
		if v, ok := s.Float(i, col); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// SetCell coerces raw to the column's dtype and replaces the cell in place.
// On coercion failure the edit is rejected with ErrTypeMismatch and the
// original value is retained. Row order is never affected.
func (s *Series) SetCell(row, col int, raw string) error {
	if row < 0 || row >= s.nrows || col < 0 || col >= len(s.Columns) {
		return ErrTypeMismatch
	}
	v, err := coerce(raw, s.Columns[col].Dtype)
	if err != nil {
		return err
	}
	s.Columns[col].Cells[row] = v
	return nil
}

// coerce converts raw edit text to a typed cell value.
func coerce(raw string, dtype Dtype) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch dtype {
	case DtypeInt:
		// Accept float input and truncate, as spreadsheet edits often
		// arrive as "3.0".
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return int(f), nil
	case DtypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return f, nil
	case DtypeBool:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, ErrTypeMismatch
		}
		return b, nil
	default:
		return raw, nil
	}
}

// OutsideBand returns the indices of rows whose X lies outside the banks:
// X < left or X > right. A nil side skips that test; rows exactly on a bank
// are inside. Rows without a numeric X are never outside.
func (s *Series) OutsideBand(left, right *float64, xcol int) []int {
	if xcol < 0 || xcol >= len(s.Columns) {
		return nil
	}
	var out []int
	for i := 0; i < s.nrows; i++ {
		x, ok := s.Float(i, xcol)
		if !ok {
			continue
		}
		if (left != nil && x < *left) || (right != nil && x > *right) {
			out = append(out, i)
		}
	}
	return out
}

// RemoveRow deletes the row at index i. Later rows shift down by one.
func (s *Series) RemoveRow(i int) {
	if i < 0 || i >= s.nrows {
		return
	}
	for _, c := range s.Columns {
		c.Cells = append(c.Cells[:i], c.Cells[i+1:]...)
	}
	s.nrows--
}

// formatCell renders a typed cell value as text.
func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	default:
		return ""
	}
}
