package app

import (
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/columns"
	"xsection-editor/internal/plotfile"
	"xsection-editor/internal/series"
	"xsection-editor/internal/spatial"
	"xsection-editor/pkg/geometry"
)

// SetCell edits one cell of the current series, coercing the text to the
// column's dtype. A value the column cannot hold is rejected.
func (s *State) SetCell(row, col int, raw string) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if err := doc.Series.SetCell(row, col, raw); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventSeriesChanged, nil)
	return nil
}

// RemoveRow deletes a row from the current series, keeping bank row
// references in step.
func (s *State) RemoveRow(row int) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if row < 0 || row >= doc.Series.NumRows() {
		return fmt.Errorf("row %d out of range", row)
	}
	doc.Series.RemoveRow(row)
	doc.Banks.ShiftAfterRemove(row)
	s.SetModified(true)
	s.Emit(EventSeriesChanged, nil)
	s.Emit(EventBanksChanged, nil)
	return nil
}

// SetRole reassigns a column to the X, Y or N role. Passing the column that
// already holds the role is a no-op.
func (s *State) SetRole(col int, role Role) error {
	s.mu.Lock()
	doc := s.Doc
	if doc == nil {
		s.mu.Unlock()
		return fmt.Errorf("no file open")
	}
	if col < 0 || col >= doc.Series.NumCols() {
		s.mu.Unlock()
		return fmt.Errorf("column %d out of range", col)
	}
	switch role {
	case RoleX:
		if doc.Roles.X == col {
			s.mu.Unlock()
			return nil
		}
		doc.Roles.X = col
		// Banks refer to chainage values of the old X column.
		doc.Banks.Reset()
	case RoleY:
		doc.Roles.Y = col
	case RoleN:
		doc.Roles.N = col
	}
	s.mu.Unlock()
	s.Emit(EventRolesChanged, nil)
	s.Emit(EventBanksChanged, nil)
	return nil
}

// Role names a column assignment a user can make from the table header.
type Role int

const (
	RoleX Role = iota
	RoleY
	RoleN
)

// SetBankRow puts a bank on an existing survey point.
func (s *State) SetBankRow(side bank.Side, row int) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 {
		return fmt.Errorf("no chainage column resolved")
	}
	x, ok := doc.Series.Float(row, doc.Roles.X)
	if !ok {
		return fmt.Errorf("row %d has no chainage value", row)
	}

	// Picking the side's own interpolated point keeps the synthetic row and
	// its marker; removing it would leave the bank on a neighboring row.
	if r, ok := doc.Banks.InterpolatedRow(side); !ok || r != row {
		row = s.dropInterpolated(doc, side, row)
		doc.Banks.Set(side, x, row)
	}

	s.SetModified(true)
	s.Emit(EventBanksChanged, nil)
	s.Status(fmt.Sprintf("%s bank at %g", side, x))
	return nil
}

// SetBankNearest puts a bank on the survey point closest to a plot click.
// Distances are measured in the displayed view so the pick matches what the
// eye sees at any zoom.
func (s *State) SetBankNearest(side bank.Side, click geometry.Point2D, xview, yview geometry.Range) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 || doc.Roles.Y < 0 {
		return fmt.Errorf("chainage and elevation columns not resolved")
	}

	xs := doc.Series.FloatColumn(doc.Roles.X)
	ys := doc.Series.FloatColumn(doc.Roles.Y)
	idx, ok := geometry.Nearest(click, xs, ys, xview, yview)
	if !ok {
		return fmt.Errorf("no points to pick from")
	}
	return s.SetBankRow(side, idx)
}

// InterpolateBank puts a bank at an arbitrary chainage, inserting an
// interpolated survey row at that position. A previous interpolated row for
// the same side is replaced, not accumulated.
func (s *State) InterpolateBank(side bank.Side, x float64) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 {
		return fmt.Errorf("no chainage column resolved")
	}

	// Validate first: a rejected click must not cost the side its existing
	// interpolated row.
	if !insertableAt(doc.Series, x, doc.Roles.X) {
		return nil
	}
	s.dropInterpolated(doc, side, -1)

	pos, err := doc.Series.InsertInterpolated(x, doc.Roles.X)
	if errors.Is(err, series.ErrOutOfRange) || errors.Is(err, series.ErrDuplicateX) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("interpolate at %g: %w", x, err)
	}
	doc.Banks.ShiftAfterInsert(pos)
	doc.Banks.SetInterpolated(side, x, pos)

	s.SetModified(true)
	s.Emit(EventSeriesChanged, nil)
	s.Emit(EventBanksChanged, nil)
	s.Status(fmt.Sprintf("%s bank interpolated at %g", side, x))
	return nil
}

// insertableAt reports whether x lies strictly between two rows, making an
// interpolated insert possible.
func insertableAt(ser *series.Series, x float64, xcol int) bool {
	hasLower, hasUpper := false, false
	for _, xi := range ser.FloatColumn(xcol) {
		if math.IsNaN(xi) {
			continue
		}
		if xi == x {
			return false
		}
		if xi < x {
			hasLower = true
		}
		if xi > x {
			hasUpper = true
		}
	}
	return hasLower && hasUpper
}

// ClearBank removes a bank marker, deleting its interpolated row if it owns
// one.
func (s *State) ClearBank(side bank.Side) error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	s.dropInterpolated(doc, side, -1)
	doc.Banks.Clear(side)
	s.SetModified(true)
	s.Emit(EventBanksChanged, nil)
	return nil
}

// dropInterpolated removes the interpolated row owned by side, if any, and
// returns keepRow adjusted for the removal.
func (s *State) dropInterpolated(doc *Document, side bank.Side, keepRow int) int {
	row, ok := doc.Banks.InterpolatedRow(side)
	if !ok {
		return keepRow
	}
	doc.Series.RemoveRow(row)
	doc.Banks.ShiftAfterRemove(row)
	s.Emit(EventSeriesChanged, nil)
	if keepRow > row {
		return keepRow - 1
	}
	return keepRow
}

// FixVerticals nudges non-increasing chainage values so every X strictly
// exceeds the previous one. Columns on the unsortable list (eg the W of a
// HW table) are left alone.
func (s *State) FixVerticals() error {
	s.mu.RLock()
	doc := s.Doc
	prefs := s.Prefs
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 {
		return fmt.Errorf("no chainage column resolved")
	}
	if prefs.IsUnsortable(doc.Series.ColumnNames()[doc.Roles.X]) {
		s.Status("X column is unsortable; verticals left as-is")
		return nil
	}
	doc.Series.FixVerticals(doc.Roles.X)
	s.SetModified(true)
	s.Emit(EventSeriesChanged, nil)
	return nil
}

// NormalizeLeftmostZero translates the chainage column so its minimum is
// zero, in place rather than at save time.
func (s *State) NormalizeLeftmostZero() error {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 {
		return fmt.Errorf("no chainage column resolved")
	}
	var min float64
	found := false
	for _, x := range doc.Series.FloatColumn(doc.Roles.X) {
		if math.IsNaN(x) {
			continue
		}
		if !found || x < min {
			min, found = x, true
		}
	}
	if !found || min == 0 {
		return nil
	}
	doc.Series.NormalizeLeftmostZero(doc.Roles.X)
	doc.Banks.TranslateX(-min)
	s.SetModified(true)
	s.Emit(EventSeriesChanged, nil)
	s.Emit(EventBanksChanged, nil)
	return nil
}

// LoadPolygon reads a WKT polygon and recomputes the overlap bands against
// the current section.
func (s *State) LoadPolygon(path string) error {
	ring, err := spatial.ReadPolygonWKT(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.Polygon = ring
	s.mu.Unlock()
	s.recomputeOverlaps()
	s.Status("loaded polygon " + filepath.Base(path))
	return nil
}

// ClearPolygon drops the overlap polygon and its bands.
func (s *State) ClearPolygon() {
	s.mu.Lock()
	s.Polygon = nil
	s.Overlaps = nil
	s.mu.Unlock()
	s.Emit(EventOverlapsChanged, nil)
}

// recomputeOverlaps intersects the section's spatial path with the loaded
// polygon. The section must carry easting/northing columns for this to
// produce anything.
func (s *State) recomputeOverlaps() {
	s.mu.Lock()
	doc := s.Doc
	polygon := s.Polygon
	svc := s.Spatial
	prefs := s.Prefs
	s.Overlaps = nil
	s.mu.Unlock()

	defer s.Emit(EventOverlapsChanged, nil)
	if doc == nil || len(polygon) < 3 || svc == nil {
		return
	}

	names := doc.Series.ColumnNames()
	ecol, eok := columns.Match(prefs.Easting, names)
	ncol, nok := columns.Match(prefs.Northing, names)
	if !eok || !nok {
		return
	}

	layer, err := svc.PointLayer(spatial.LayerRequest{
		Path:        doc.Path,
		EastingCol:  names[ecol],
		NorthingCol: names[ncol],
	})
	if err != nil {
		log.Printf("overlaps: %v", err)
		return
	}
	path, err := svc.PointsToPath(layer)
	if err != nil {
		log.Printf("overlaps: %v", err)
		return
	}
	overlaps, err := svc.Intersections(path, polygon)
	if err != nil {
		log.Printf("overlaps: %v", err)
		return
	}

	s.mu.Lock()
	s.Overlaps = overlaps
	s.mu.Unlock()
}

// PlotModel assembles the current document into a renderable plot model.
func (s *State) PlotModel() plotfile.Model {
	s.mu.RLock()
	doc := s.Doc
	companion := s.Companion
	overlaps := s.Overlaps
	s.mu.RUnlock()

	if doc == nil || doc.Roles.X < 0 || doc.Roles.Y < 0 {
		return plotfile.Model{X: []float64{0}, Y: []float64{0}}
	}

	m := plotfile.Model{
		Title:  filepath.Base(doc.Path),
		XLabel: doc.Series.ColumnNames()[doc.Roles.X],
		YLabel: doc.Series.ColumnNames()[doc.Roles.Y],
		X:      doc.Series.FloatColumn(doc.Roles.X),
		Y:      doc.Series.FloatColumn(doc.Roles.Y),
	}
	if doc.Roles.N >= 0 {
		m.N = doc.Series.FloatColumn(doc.Roles.N)
	}
	m.LeftBank = doc.Banks.X(bank.Left)
	m.RightBank = doc.Banks.X(bank.Right)

	// Overlap distances run along the spatial path, which follows the
	// section, so they translate to chainage offsets from the first point.
	if len(overlaps) > 0 {
		x0 := firstFinite(m.X)
		for _, ov := range overlaps {
			m.Bands = append(m.Bands, geometry.Interval{Start: x0 + ov.Entry, End: x0 + ov.Exit})
		}
	}

	if companion != nil {
		m.Companion = &plotfile.Overlay{
			Label: filepath.Base(companion.Path),
			X:     companion.X,
			Y:     companion.Y,
		}
	}
	return m
}

func firstFinite(xs []float64) float64 {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return x
		}
	}
	return 0
}
