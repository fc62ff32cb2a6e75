package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/export"
)

const surveyFixture = "! survey notes\n" +
	"x,y,n\n" +
	"!# 0.0,5.0,0.03\n" +
	"1.0,3.0,0.03\n" +
	"2.0,1.0,0.05\n" +
	"3.0,3.5,0.03\n" +
	"!# 4.0,5.2,0.03\n"

func writeSurvey(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openFixture(t *testing.T) (*State, string) {
	t.Helper()
	path := writeSurvey(t, t.TempDir(), "reach_v01.csv", surveyFixture)
	st := NewState()
	require.NoError(t, st.OpenFiles(path))
	require.NotNil(t, st.Doc)
	return st, path
}

func TestOpenFileResolvesRolesAndBanks(t *testing.T) {
	st, path := openFixture(t)

	doc := st.Doc
	assert.Equal(t, path, doc.Path)
	assert.True(t, doc.HasHeader)
	assert.Equal(t, 5, doc.Series.NumRows())
	assert.Equal(t, []int{0, 4}, doc.Flagged)

	assert.Equal(t, 0, doc.Roles.X)
	assert.Equal(t, 1, doc.Roles.Y)
	assert.Equal(t, 2, doc.Roles.N)

	// Flagged leading/trailing rows put the banks on the first and last
	// active points.
	require.NotNil(t, doc.Banks.X(bank.Left))
	require.NotNil(t, doc.Banks.X(bank.Right))
	assert.Equal(t, 1.0, *doc.Banks.X(bank.Left))
	assert.Equal(t, 3.0, *doc.Banks.X(bank.Right))
	assert.Equal(t, 1, doc.Banks.Marker(bank.Left).Row)
	assert.Equal(t, 3, doc.Banks.Marker(bank.Right).Row)
}

func TestNavigationBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSurvey(t, dir, "alpha.csv", surveyFixture)
	p2 := writeSurvey(t, dir, "beta.csv", surveyFixture)

	st := NewState()
	require.NoError(t, st.OpenFiles(p1, p2))
	assert.Equal(t, p1, st.Doc.Path)

	require.NoError(t, st.Next())
	assert.Equal(t, p2, st.Doc.Path)

	// At the end of the list Next stays put.
	require.NoError(t, st.Next())
	assert.Equal(t, p2, st.Doc.Path)

	require.NoError(t, st.Previous())
	assert.Equal(t, p1, st.Doc.Path)
}

func TestCompanionOverlayFromVersions(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSurvey(t, dir, "reach_v01.csv", surveyFixture)
	p2 := writeSurvey(t, dir, "reach_v02.csv", surveyFixture)

	st := NewState()
	require.NoError(t, st.OpenFiles(p1, p2))
	require.NotNil(t, st.Companion)
	assert.Equal(t, p2, st.Companion.Path)
	assert.Len(t, st.Companion.X, 5)

	// Switching to the other version flips the overlay.
	require.NoError(t, st.OpenIndex(1))
	require.NotNil(t, st.Companion)
	assert.Equal(t, p1, st.Companion.Path)
}

func TestSetCellMarksModified(t *testing.T) {
	st, _ := openFixture(t)

	var changed int
	st.On(EventSeriesChanged, func(interface{}) { changed++ })

	require.NoError(t, st.SetCell(1, 1, "9.9"))
	assert.True(t, st.IsModified())
	assert.Equal(t, 1, changed)

	v, ok := st.Doc.Series.Float(1, 1)
	require.True(t, ok)
	assert.Equal(t, 9.9, v)
}

func TestSetCellRejectsBadValue(t *testing.T) {
	st, _ := openFixture(t)
	assert.Error(t, st.SetCell(1, 1, "not a number"))
	assert.False(t, st.IsModified())
}

func TestSetRoleXResetsBanks(t *testing.T) {
	st, _ := openFixture(t)
	require.NotNil(t, st.Doc.Banks.X(bank.Left))

	require.NoError(t, st.SetRole(2, RoleX))
	assert.Equal(t, 2, st.Doc.Roles.X)
	assert.Nil(t, st.Doc.Banks.X(bank.Left))
	assert.Nil(t, st.Doc.Banks.X(bank.Right))
}

func TestInterpolateBankReplacesRow(t *testing.T) {
	st, _ := openFixture(t)

	require.NoError(t, st.InterpolateBank(bank.Left, 1.5))
	assert.Equal(t, 6, st.Doc.Series.NumRows())
	m := st.Doc.Banks.Marker(bank.Left)
	assert.Equal(t, bank.Interpolated, m.Kind)
	assert.Equal(t, 1.5, m.X)
	assert.Equal(t, 2, m.Row)
	// The right bank row moved down one.
	assert.Equal(t, 4, st.Doc.Banks.Marker(bank.Right).Row)

	// A second interpolation on the same side replaces the first row
	// instead of accumulating.
	require.NoError(t, st.InterpolateBank(bank.Left, 2.5))
	assert.Equal(t, 6, st.Doc.Series.NumRows())
	m = st.Doc.Banks.Marker(bank.Left)
	assert.Equal(t, 2.5, m.X)
	assert.Equal(t, 3, m.Row)
	assert.Equal(t, 4, st.Doc.Banks.Marker(bank.Right).Row)

	xs := st.Doc.Series.FloatColumn(0)
	assert.NotContains(t, xs, 1.5)
	assert.Contains(t, xs, 2.5)
}

func TestSetBankRowOnOwnInterpolatedRowKeepsIt(t *testing.T) {
	st, _ := openFixture(t)
	require.NoError(t, st.InterpolateBank(bank.Left, 1.5))

	row, ok := st.Doc.Banks.InterpolatedRow(bank.Left)
	require.True(t, ok)

	require.NoError(t, st.SetBankRow(bank.Left, row))
	assert.Equal(t, 6, st.Doc.Series.NumRows())
	m := st.Doc.Banks.Marker(bank.Left)
	assert.Equal(t, bank.Interpolated, m.Kind)
	assert.Equal(t, 1.5, m.X)
	assert.Equal(t, row, m.Row)
	x, _ := st.Doc.Series.Float(m.Row, st.Doc.Roles.X)
	assert.Equal(t, 1.5, x)
}

func TestClearBankDropsInterpolatedRow(t *testing.T) {
	st, _ := openFixture(t)

	require.NoError(t, st.InterpolateBank(bank.Right, 2.5))
	assert.Equal(t, 6, st.Doc.Series.NumRows())

	require.NoError(t, st.ClearBank(bank.Right))
	assert.Equal(t, 5, st.Doc.Series.NumRows())
	assert.Nil(t, st.Doc.Banks.X(bank.Right))
}

func TestRemoveRowShiftsBanks(t *testing.T) {
	st, _ := openFixture(t)

	require.NoError(t, st.RemoveRow(2))
	assert.Equal(t, 4, st.Doc.Series.NumRows())
	assert.Equal(t, 1, st.Doc.Banks.Marker(bank.Left).Row)
	assert.Equal(t, 2, st.Doc.Banks.Marker(bank.Right).Row)
}

func TestNormalizeLeftmostZeroShiftsBanks(t *testing.T) {
	path := writeSurvey(t, t.TempDir(), "reach_v01.csv",
		"x,y\n!# -3.0,5.0\n-1.0,3.0\n2.0,1.0\n!# 5.0,4.0\n")
	st := NewState()
	require.NoError(t, st.OpenFiles(path))

	require.NoError(t, st.NormalizeLeftmostZero())
	xs := st.Doc.Series.FloatColumn(0)
	assert.Equal(t, []float64{0, 2, 5, 8}, xs)
	assert.Equal(t, 2.0, *st.Doc.Banks.X(bank.Left))
	assert.Equal(t, 5.0, *st.Doc.Banks.X(bank.Right))
}

func TestFixVerticalsSkipsUnsortableX(t *testing.T) {
	path := writeSurvey(t, t.TempDir(), "table.csv",
		"w,h\n1.0,0.0\n1.0,0.5\n2.0,1.0\n")
	st := NewState()
	require.NoError(t, st.OpenFiles(path))
	require.Equal(t, 0, st.Doc.Roles.X)

	require.NoError(t, st.FixVerticals())
	v, ok := st.Doc.Series.Float(1, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.False(t, st.IsModified())
}

func TestFixVerticalsOptionAppliesOnLoad(t *testing.T) {
	path := writeSurvey(t, t.TempDir(), "dupes.csv",
		"x,y\n0.0,1.0\n1.0,2.0\n1.0,3.0\n2.0,4.0\n")
	st := NewState()
	st.SetOptions(Options{FixVerticals: true})
	require.NoError(t, st.OpenFiles(path))

	x, ok := st.Doc.Series.Float(2, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.001, x, 1e-12)
	assert.False(t, st.IsModified())

	// Reloading reapplies the fix to the file as read from disk.
	require.NoError(t, st.Reload())
	x, _ = st.Doc.Series.Float(2, 0)
	assert.InDelta(t, 1.001, x, 1e-12)
}

func TestSaveIncrementsVersion(t *testing.T) {
	st, path := openFixture(t)
	require.NoError(t, st.SetCell(1, 1, "3.1"))

	st.SetOptions(Options{Policy: export.IncrementVersion, VersionToken: "v02"})
	out, err := st.Save()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "reach_v02.csv"), out)

	_, statErr := os.Stat(out)
	require.NoError(t, statErr)
	assert.False(t, st.IsModified())
	assert.Contains(t, st.Nav.Files(), out)
}

func TestSaveWritesPlotFile(t *testing.T) {
	st, path := openFixture(t)

	st.SetOptions(Options{Policy: export.InPlace, WritePlotFile: true})
	out, err := st.Save()
	require.NoError(t, err)
	assert.Equal(t, path, out)

	info, statErr := os.Stat(filepath.Join(filepath.Dir(path), "reach_v01.png"))
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveRequiresDocument(t *testing.T) {
	_, err := NewState().Save()
	assert.Error(t, err)
}

func TestAutosaveSidecar(t *testing.T) {
	st, path := openFixture(t)
	require.NoError(t, st.SetCell(1, 1, "3.1"))

	opts := st.Opts
	opts.Autosave = true
	st.SetOptions(opts)

	st.Autosave()
	_, err := os.Stat(AutosavePath(path))
	require.NoError(t, err)

	st.RemoveAutosave()
	_, err = os.Stat(AutosavePath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestAutosaveSkipsUnmodified(t *testing.T) {
	st, path := openFixture(t)

	opts := st.Opts
	opts.Autosave = true
	st.SetOptions(opts)

	st.Autosave()
	_, err := os.Stat(AutosavePath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestOverlapBandsFromPolygon(t *testing.T) {
	dir := t.TempDir()
	path := writeSurvey(t, dir, "reach_v01.csv",
		"x,y,easting,northing\n0.0,5.0,0.0,0.0\n10.0,1.0,10.0,0.0\n")
	wkt := writeSurvey(t, dir, "extent.wkt",
		"POLYGON ((3 -1, 7 -1, 7 1, 3 1))")

	st := NewState()
	require.NoError(t, st.OpenFiles(path))
	require.NoError(t, st.LoadPolygon(wkt))

	require.Len(t, st.Overlaps, 1)
	assert.InDelta(t, 3.0, st.Overlaps[0].Entry, 1e-9)
	assert.InDelta(t, 7.0, st.Overlaps[0].Exit, 1e-9)

	m := st.PlotModel()
	require.Len(t, m.Bands, 1)
	assert.InDelta(t, 3.0, m.Bands[0].Start, 1e-9)
	assert.InDelta(t, 7.0, m.Bands[0].End, 1e-9)

	st.ClearPolygon()
	assert.Empty(t, st.Overlaps)
}

func TestPlotModelEmptyWithoutDocument(t *testing.T) {
	m := NewState().PlotModel()
	assert.Equal(t, []float64{0}, m.X)
	assert.Equal(t, []float64{0}, m.Y)
}

func TestFileWatcherDetectsChange(t *testing.T) {
	path := writeSurvey(t, t.TempDir(), "reach_v01.csv", surveyFixture)

	changes := make(chan string, 4)
	w := NewFileWatcher(20 * time.Millisecond)
	w.OnChanged(func(p string) { changes <- p })
	w.SetPath(path)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(surveyFixture+"5.0,6.0,0.03\n"), 0o644))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	select {
	case p := <-changes:
		assert.Equal(t, path, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
}
