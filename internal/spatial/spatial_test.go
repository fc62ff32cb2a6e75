package spatial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsection-editor/pkg/geometry"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParsePolygonWKT(t *testing.T) {
	ring, err := ParsePolygonWKT("POLYGON ((0 0, 10 0, 10 10, 0 10))")
	require.NoError(t, err)
	require.Len(t, ring, 4)
	assert.Equal(t, geometry.Point2D{X: 10, Y: 10}, ring[2])
}

func TestParsePolygonWKTDropsClosingPoint(t *testing.T) {
	ring, err := ParsePolygonWKT("POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
	require.NoError(t, err)
	assert.Len(t, ring, 4)
}

func TestParsePolygonWKTIgnoresInnerRings(t *testing.T) {
	ring, err := ParsePolygonWKT("POLYGON ((0 0, 8 0, 8 8), (2 2, 4 2, 4 4))")
	require.NoError(t, err)
	assert.Len(t, ring, 3)
	assert.Equal(t, geometry.Point2D{X: 8, Y: 8}, ring[2])
}

func TestParsePolygonWKTCaseInsensitive(t *testing.T) {
	ring, err := ParsePolygonWKT("polygon((1 2, 3 4, 5 6))")
	require.NoError(t, err)
	assert.Len(t, ring, 3)
}

func TestParsePolygonWKTErrors(t *testing.T) {
	cases := []string{
		"LINESTRING (0 0, 1 1)",
		"POLYGON",
		"POLYGON ((0 0, 1 1",
		"POLYGON ((0 0, abc def, 1 1))",
		"POLYGON ((0 0, 1 1))",
	}
	for _, text := range cases {
		_, err := ParsePolygonWKT(text)
		assert.ErrorIs(t, err, ErrInvalidInput, "input %q", text)
	}
}

func TestReadPolygonWKT(t *testing.T) {
	path := writeTemp(t, "extent.wkt", "POLYGON ((0 0, 4 0, 4 4, 0 4))\n")
	ring, err := ReadPolygonWKT(path)
	require.NoError(t, err)
	assert.Len(t, ring, 4)

	_, err = ReadPolygonWKT(filepath.Join(t.TempDir(), "missing.wkt"))
	assert.Error(t, err)
}

func TestPointLayerFromEastingNorthing(t *testing.T) {
	path := writeTemp(t, "survey.csv",
		"easting,northing,x\n100.0,200.0,0.0\n101.0,201.0,1.0\n102.0,202.0,2.0\n")

	svc := NewGeomService()
	layer, err := svc.PointLayer(LayerRequest{
		Path:        path,
		EastingCol:  "easting",
		NorthingCol: "northing",
		OrderColumn: "x",
	})
	require.NoError(t, err)
	require.Len(t, layer.Points, 3)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 200}, layer.Points[0])
	assert.Equal(t, []float64{0, 1, 2}, layer.Order)
	assert.Equal(t, "survey", layer.Name)
}

func TestPointLayerPrefersWKT(t *testing.T) {
	// Both geometries present; the WKT coordinates win.
	path := writeTemp(t, "survey.csv",
		"geom,easting,northing\nPOINT (1 2),100.0,200.0\nPOINT (3 4),101.0,201.0\n")

	svc := NewGeomService()
	layer, err := svc.PointLayer(LayerRequest{
		Path:        path,
		WKTColumn:   "geom",
		EastingCol:  "easting",
		NorthingCol: "northing",
	})
	require.NoError(t, err)
	require.Len(t, layer.Points, 2)
	assert.Equal(t, geometry.Point2D{X: 1, Y: 2}, layer.Points[0])
	assert.Equal(t, geometry.Point2D{X: 3, Y: 4}, layer.Points[1])
	// No order column falls back to row position.
	assert.Equal(t, []float64{0, 1}, layer.Order)
}

func TestPointLayerColumnNamesCaseInsensitive(t *testing.T) {
	path := writeTemp(t, "survey.csv", "Easting,Northing\n5.0,6.0\n7.0,8.0\n")

	svc := NewGeomService()
	layer, err := svc.PointLayer(LayerRequest{
		Path:        path,
		EastingCol:  "easting",
		NorthingCol: "northing",
	})
	require.NoError(t, err)
	assert.Len(t, layer.Points, 2)
}

func TestPointLayerNoGeometry(t *testing.T) {
	path := writeTemp(t, "survey.csv", "x,y\n0.0,5.0\n1.0,4.0\n")

	svc := NewGeomService()
	_, err := svc.PointLayer(LayerRequest{
		Path:        path,
		EastingCol:  "easting",
		NorthingCol: "northing",
	})
	assert.ErrorIs(t, err, ErrNoGeometry)
}

func TestPointLayerSkipsUnparseableWKT(t *testing.T) {
	path := writeTemp(t, "survey.csv",
		"geom,x\nPOINT (1 2),0.0\nnot geometry,1.0\nPOINT (3 4),2.0\n")

	svc := NewGeomService()
	layer, err := svc.PointLayer(LayerRequest{Path: path, WKTColumn: "geom", OrderColumn: "x"})
	require.NoError(t, err)
	require.Len(t, layer.Points, 2)
	assert.Equal(t, []float64{0, 2}, layer.Order)
}

func TestPointsToPathOrdersByKey(t *testing.T) {
	layer := &PointLayer{
		Points: []geometry.Point2D{{X: 10, Y: 0}, {X: 0, Y: 0}, {X: 5, Y: 0}},
		Order:  []float64{2, 0, 1},
	}

	svc := NewGeomService()
	path, err := svc.PointsToPath(layer)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point2D{X: 0, Y: 0}, path.Points[0])
	assert.Equal(t, geometry.Point2D{X: 5, Y: 0}, path.Points[1])
	assert.Equal(t, geometry.Point2D{X: 10, Y: 0}, path.Points[2])
}

func TestPointsToPathRejectsDegenerate(t *testing.T) {
	svc := NewGeomService()

	_, err := svc.PointsToPath(nil)
	assert.ErrorIs(t, err, ErrEmptyLayer)

	_, err = svc.PointsToPath(&PointLayer{
		Points: []geometry.Point2D{{X: 1, Y: 1}},
		Order:  []float64{0},
	})
	assert.ErrorIs(t, err, ErrEmptyLayer)

	// All points coincident: the extent has no area.
	_, err = svc.PointsToPath(&PointLayer{
		Points: []geometry.Point2D{{X: 1, Y: 1}, {X: 1, Y: 1}},
		Order:  []float64{0, 1},
	})
	assert.ErrorIs(t, err, ErrEmptyExtent)
}

func TestIntersections(t *testing.T) {
	path := geometry.NewPolyline([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}})
	square := []geometry.Point2D{{X: 3, Y: -1}, {X: 7, Y: -1}, {X: 7, Y: 1}, {X: 3, Y: 1}}

	svc := NewGeomService()
	overlaps, err := svc.Intersections(path, square)
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.InDelta(t, 3.0, overlaps[0].Entry, 1e-9)
	assert.InDelta(t, 7.0, overlaps[0].Exit, 1e-9)
}

func TestIntersectionsInvalidInput(t *testing.T) {
	svc := NewGeomService()
	_, err := svc.Intersections(geometry.Polyline{}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeOverlap(t *testing.T) {
	ov := NormalizeOverlap(7, 3)
	assert.Equal(t, 3.0, ov.Entry)
	assert.Equal(t, 7.0, ov.Exit)

	ov = NormalizeOverlap(1, 2)
	assert.Equal(t, 1.0, ov.Entry)
	assert.Equal(t, 2.0, ov.Exit)
}
