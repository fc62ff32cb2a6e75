package plotfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsection-editor/pkg/geometry"
)

func TestOutPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "reach_v02.png"),
		OutPath(filepath.Join("data", "reach_v02.csv")))
	assert.Equal(t, "survey.png", OutPath("survey.txt"))
	assert.Equal(t, "noext.png", OutPath("noext"))
}

func TestViewDataAt(t *testing.T) {
	v := &View{
		XData:   geometry.NewRange(0, 10),
		YData:   geometry.NewRange(0, 5),
		XMinPix: 100,
		XMaxPix: 300,
		YMinPix: 250,
		YMaxPix: 50,
	}

	pt, ok := v.DataAt(200, 150)
	require.True(t, ok)
	assert.InDelta(t, 5.0, pt.X, 1e-9)
	assert.InDelta(t, 2.5, pt.Y, 1e-9)

	// Axis origin maps to the data minimum; note y pixels grow downward.
	pt, ok = v.DataAt(100, 250)
	require.True(t, ok)
	assert.InDelta(t, 0.0, pt.X, 1e-9)
	assert.InDelta(t, 0.0, pt.Y, 1e-9)

	pt, ok = v.DataAt(300, 50)
	require.True(t, ok)
	assert.InDelta(t, 10.0, pt.X, 1e-9)
	assert.InDelta(t, 5.0, pt.Y, 1e-9)
}

func TestViewDataAtSlack(t *testing.T) {
	v := &View{
		XData:   geometry.NewRange(0, 10),
		YData:   geometry.NewRange(0, 5),
		XMinPix: 100,
		XMaxPix: 300,
		YMinPix: 250,
		YMaxPix: 50,
	}

	// A few pixels outside the axes still counts as a plot click.
	_, ok := v.DataAt(95, 150)
	assert.True(t, ok)

	// Far outside does not.
	_, ok = v.DataAt(50, 150)
	assert.False(t, ok)
	_, ok = v.DataAt(200, 280)
	assert.False(t, ok)
}

func TestViewPixelOfRoundTrip(t *testing.T) {
	v := &View{
		XData:   geometry.NewRange(-3, 17),
		YData:   geometry.NewRange(2, 9),
		XMinPix: 80,
		XMaxPix: 620,
		YMinPix: 410,
		YMaxPix: 30,
	}

	want := geometry.NewPoint2D(4.5, 6.25)
	px, py := v.PixelOf(want)
	got, ok := v.DataAt(px, py)
	require.True(t, ok)
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestRenderProducesConsistentView(t *testing.T) {
	left, right := 1.0, 8.0
	m := Model{
		Title:     "reach_v02",
		XLabel:    "Chainage (m)",
		YLabel:    "Elevation (m)",
		X:         []float64{0, 1, 2, 5, 8, 10},
		Y:         []float64{5, 3, 1, 0.5, 3, 5},
		N:         []float64{0.03, 0.03, 0.05, 0.05, 0.03, 0.03},
		LeftBank:  &left,
		RightBank: &right,
		Bands:     []geometry.Interval{{Start: 3, End: 6}},
		Companion: &Overlay{Label: "reach_v01", X: []float64{0, 10}, Y: []float64{4.8, 4.8}},
	}

	view, err := Render(m, 400, 300)
	require.NoError(t, err)
	require.NotNil(t, view)

	bounds := view.Image.Bounds()
	assert.Equal(t, 400, bounds.Dx())
	assert.Equal(t, 300, bounds.Dy())

	// Axis pixel bounds sit inside the image with the margins gonum leaves
	// for labels, and y grows downward.
	assert.Greater(t, view.XMaxPix, view.XMinPix)
	assert.Greater(t, view.YMinPix, view.YMaxPix)
	assert.GreaterOrEqual(t, view.XMinPix, 0.0)
	assert.LessOrEqual(t, view.XMaxPix, 400.0)
	assert.GreaterOrEqual(t, view.YMaxPix, 0.0)
	assert.LessOrEqual(t, view.YMinPix, 300.0)

	// The axes cover the data with padding.
	assert.LessOrEqual(t, view.XData.Min, 0.0)
	assert.GreaterOrEqual(t, view.XData.Max, 10.0)
	assert.LessOrEqual(t, view.YData.Min, 0.5)
	assert.GreaterOrEqual(t, view.YData.Max, 5.0)

	// Mapping a data point into pixels and back is the identity.
	px, py := view.PixelOf(geometry.NewPoint2D(5, 0.5))
	got, ok := view.DataAt(px, py)
	require.True(t, ok)
	assert.InDelta(t, 5.0, got.X, 1e-6)
	assert.InDelta(t, 0.5, got.Y, 1e-6)
}

func TestRenderHonorsWindow(t *testing.T) {
	xw := geometry.NewRange(2, 4)
	yw := geometry.NewRange(0, 2)
	m := Model{
		X:       []float64{0, 1, 2, 5, 8, 10},
		Y:       []float64{5, 3, 1, 0.5, 3, 5},
		XWindow: &xw,
		YWindow: &yw,
	}

	view, err := Render(m, 400, 300)
	require.NoError(t, err)
	assert.Equal(t, 2.0, view.XData.Min)
	assert.Equal(t, 4.0, view.XData.Max)
	assert.Equal(t, 0.0, view.YData.Min)
	assert.Equal(t, 2.0, view.YData.Max)
}

func TestRenderRejectsEmptyModel(t *testing.T) {
	_, err := Render(Model{}, 400, 300)
	assert.Error(t, err)

	_, err = Render(Model{X: []float64{1, 2}, Y: []float64{1}}, 400, 300)
	assert.Error(t, err)
}

func TestSaveWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reach_v02.png")
	m := Model{
		X: []float64{0, 1, 2},
		Y: []float64{2, 0, 2},
	}
	require.NoError(t, Save(m, path, 640, 480))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "reach_v02.csv")
	require.NoError(t, os.WriteFile(OutPath(csvPath), []byte("png"), 0o644))

	require.NoError(t, RemoveStale(csvPath))
	_, err := os.Stat(OutPath(csvPath))
	assert.True(t, os.IsNotExist(err))

	// Absent plot file is not an error.
	require.NoError(t, RemoveStale(csvPath))
}

func TestDataExtentFlatAndEmpty(t *testing.T) {
	xmin, xmax, ymin, ymax := dataExtent(Model{})
	assert.Equal(t, [4]float64{0, 1, 0, 1}, [4]float64{xmin, xmax, ymin, ymax})

	// Flat elevation still yields a drawable y extent.
	_, _, ymin, ymax = dataExtent(Model{X: []float64{0, 5}, Y: []float64{3, 3}})
	assert.Less(t, ymin, 3.0)
	assert.Greater(t, ymax, 3.0)
}
