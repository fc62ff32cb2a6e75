package series

import "math"

// InsertInterpolated synthesizes a new row at the given X and inserts it in
// X order. The new row's other columns are linearly interpolated between the
// bracketing rows where both values are numeric; integer columns round to
// the nearest integer, booleans copy a shared value (false on mismatch),
// strings copy only when both sides agree, and anything else becomes null.
//
// Returns ErrOutOfRange when no rows bracket x, and ErrDuplicateX when x
// exactly matches an existing row. Row indices at or after the returned
// insertion index shift up by one; the caller owns updating any stored row
// references.
func (s *Series) InsertInterpolated(x float64, xcol int) (int, error) {
	if xcol < 0 || xcol >= len(s.Columns) || s.nrows == 0 {
		return 0, ErrOutOfRange
	}

	// Bracketing rows in row order: the last row with X <= x and the first
	// row with X >= x.
	prev, next := -1, -1
	for i := 0; i < s.nrows; i++ {
		xi, ok := s.Float(i, xcol)
		if !ok {
			continue
		}
		if xi == x {
			return 0, ErrDuplicateX
		}
		if xi < x {
			prev = i
		}
		if xi > x && next < 0 {
			next = i
		}
	}
	if prev < 0 || next < 0 {
		return 0, ErrOutOfRange
	}

	// Insertion position: before the first row whose X exceeds x.
	pos := s.nrows
	for i := 0; i < s.nrows; i++ {
		if xi, ok := s.Float(i, xcol); ok && xi > x {
			pos = i
			break
		}
	}

	x1, _ := s.Float(prev, xcol)
	x2, _ := s.Float(next, xcol)
	ratio := (x - x1) / (x2 - x1)

	for c, col := range s.Columns {
		var v interface{}
		if c == xcol {
			if col.Dtype == DtypeInt {
				v = int(math.Round(x))
			} else {
				v = x
			}
		} else {
			v = interpolateCell(col, prev, next, ratio)
		}
		col.Cells = append(col.Cells, nil)
		copy(col.Cells[pos+1:], col.Cells[pos:])
		col.Cells[pos] = v
	}
	s.nrows++
	return pos, nil
}

// interpolateCell derives the inserted row's value for one non-X column.
func interpolateCell(col *Column, prev, next int, ratio float64) interface{} {
	v1 := col.Cells[prev]
	v2 := col.Cells[next]

	switch col.Dtype {
	case DtypeInt, DtypeFloat:
		f1, ok1 := asFloat(v1)
		f2, ok2 := asFloat(v2)
		if !ok1 || !ok2 {
			return nil
		}
		f := f1 + ratio*(f2-f1)
		if col.Dtype == DtypeInt {
			return int(math.Round(f))
		}
		return f
	case DtypeBool:
		b1, ok1 := v1.(bool)
		b2, ok2 := v2.(bool)
		if ok1 && ok2 && b1 == b2 {
			return b1
		}
		return false
	case DtypeString:
		s1, ok1 := v1.(string)
		s2, ok2 := v2.(string)
		if ok1 && ok2 && s1 == s2 {
			return s1
		}
		return nil
	}
	return nil
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
