// Package bank tracks the left and right bank markers that bound the
// hydraulically active part of a cross-section.
package bank

// Side selects the left or right bank.
type Side int

const (
	Left Side = iota
	Right
)

// String returns the side name.
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Kind is the state of one side's marker.
type Kind int

const (
	// Absent means no bank is set on this side.
	Absent Kind = iota
	// Set means the bank references an existing data row.
	Set
	// Interpolated means the bank owns a synthesized row inserted at the
	// exact click position.
	Interpolated
)

// Marker is one side's bank: an X value plus a row reference. Row is -1 when
// the marker carries no row.
type Marker struct {
	Kind Kind
	X    float64
	Row  int
}

// State holds both banks for the currently loaded file. Markers are freely
// reassignable for the file's lifetime; at most one interpolated row exists
// per side.
type State struct {
	sides [2]Marker
}

// New returns a State with both banks absent.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears both banks.
func (s *State) Reset() {
	s.sides[Left] = Marker{Kind: Absent, Row: -1}
	s.sides[Right] = Marker{Kind: Absent, Row: -1}
}

// Marker returns the marker for a side.
func (s *State) Marker(side Side) Marker {
	return s.sides[side]
}

// X returns the side's bank X value, or nil when absent.
func (s *State) X(side Side) *float64 {
	m := s.sides[side]
	if m.Kind == Absent {
		return nil
	}
	x := m.X
	return &x
}

// Set places the bank on an existing data row. The row belongs to the
// original data and is never deleted by bank transitions.
func (s *State) Set(side Side, x float64, row int) {
	s.sides[side] = Marker{Kind: Set, X: x, Row: row}
}

// SetInterpolated records ownership of a freshly inserted synthetic row.
// Any previously interpolated row for the side must already have been
// removed from the series by the caller (see InterpolatedRow).
func (s *State) SetInterpolated(side Side, x float64, row int) {
	s.sides[side] = Marker{Kind: Interpolated, X: x, Row: row}
}

// Clear removes the side's marker.
func (s *State) Clear(side Side) {
	s.sides[side] = Marker{Kind: Absent, Row: -1}
}

// InterpolatedRow returns the index of the side's interpolated row, if the
// side currently owns one.
func (s *State) InterpolatedRow(side Side) (int, bool) {
	m := s.sides[side]
	if m.Kind == Interpolated && m.Row >= 0 {
		return m.Row, true
	}
	return 0, false
}

// TranslateX shifts both markers' X values, for use when the chainage
// column itself is translated.
func (s *State) TranslateX(dx float64) {
	for i := range s.sides {
		if s.sides[i].Kind != Absent {
			s.sides[i].X += dx
		}
	}
}

// ShiftAfterInsert updates stored row references after a row was inserted at
// pos: references at or after pos move up by one.
func (s *State) ShiftAfterInsert(pos int) {
	for i := range s.sides {
		if s.sides[i].Kind != Absent && s.sides[i].Row >= pos {
			s.sides[i].Row++
		}
	}
}

// ShiftAfterRemove updates stored row references after the row at pos was
// removed: references past pos move down by one. A side whose own row was
// removed keeps its X but loses the row reference.
func (s *State) ShiftAfterRemove(pos int) {
	for i := range s.sides {
		if s.sides[i].Kind == Absent {
			continue
		}
		switch {
		case s.sides[i].Row == pos:
			s.sides[i].Row = -1
		case s.sides[i].Row > pos:
			s.sides[i].Row--
		}
	}
}
