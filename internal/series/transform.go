package series

import "gonum.org/v1/gonum/floats"

// FixVerticals enforces strictly increasing X by bumping any row whose X is
// not greater than its predecessor to predecessor+0.001. Applied only when
// the user asks for it at load time; the X column must not belong to the
// unsortable preference set (the caller checks that).
func (s *Series) FixVerticals(xcol int) {
	if xcol < 0 || xcol >= len(s.Columns) || s.nrows == 0 {
		return
	}
	prev, ok := s.Float(0, xcol)
	if !ok {
		return
	}
	for i := 1; i < s.nrows; i++ {
		x, ok := s.Float(i, xcol)
		if !ok {
			continue
		}
		if x <= prev {
			x = prev + 0.001
			// The bump is fractional; an integer X column has to widen to
			// float to hold it.
			s.Columns[xcol].promoteFloat()
			s.setFloat(i, xcol, x)
		}
		prev = x
	}
}

// promoteFloat widens an integer column to float in place. Other dtypes are
// left alone.
func (c *Column) promoteFloat() {
	if c.Dtype != DtypeInt {
		return
	}
	c.Dtype = DtypeFloat
	for i, v := range c.Cells {
		if n, ok := v.(int); ok {
			c.Cells[i] = float64(n)
		}
	}
}

// NormalizeLeftmostZero translates the X column so its minimum becomes zero.
// Pure translation; row order is unaffected.
func (s *Series) NormalizeLeftmostZero(xcol int) {
	if xcol < 0 || xcol >= len(s.Columns) || s.nrows == 0 {
		return
	}
	xs := s.FloatColumn(xcol)
	// NaN-safe minimum over the numeric cells.
	vals := xs[:0:0]
	for _, x := range xs {
		if x == x {
			vals = append(vals, x)
		}
	}
	if len(vals) == 0 {
		return
	}
	min := floats.Min(vals)
	for i := range xs {
		if x, ok := s.Float(i, xcol); ok {
			s.setFloat(i, xcol, x-min)
		}
	}
}

// setFloat writes a numeric value respecting the column dtype.
func (s *Series) setFloat(row, col int, v float64) {
	if s.Columns[col].Dtype == DtypeInt {
		s.Columns[col].Cells[row] = int(v)
	} else {
		s.Columns[col].Cells[row] = v
	}
}
