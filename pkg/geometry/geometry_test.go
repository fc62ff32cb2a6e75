package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeSpanAndNormalize(t *testing.T) {
	r := NewRange(10, 30)
	assert.Equal(t, 20.0, r.Span())
	assert.Equal(t, 0.5, r.Normalize(20))
	assert.Equal(t, 0.0, r.Normalize(10))
	assert.Equal(t, 1.0, r.Normalize(30))
}

func TestRangeDegenerateSpan(t *testing.T) {
	r := NewRange(5, 5)
	assert.Greater(t, r.Span(), 0.0)
	// Normalizing against a collapsed axis must not divide by zero.
	assert.Equal(t, 0.0, r.Normalize(5))
}

func TestRectContains(t *testing.T) {
	r := NewRect(0, 0, 10, 5)
	assert.True(t, r.Contains(NewPoint2D(5, 2)))
	assert.True(t, r.Contains(NewPoint2D(0, 0)))
	assert.True(t, r.Contains(NewPoint2D(10, 5)))
	assert.False(t, r.Contains(NewPoint2D(11, 2)))
	assert.False(t, r.Contains(NewPoint2D(5, -1)))
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 3, Y: 7}, {X: -1, Y: 2}, {X: 5, Y: 4}}
	box := BoundingBox(pts)
	assert.Equal(t, -1.0, box.X)
	assert.Equal(t, 2.0, box.Y)
	assert.Equal(t, 6.0, box.Width)
	assert.Equal(t, 5.0, box.Height)

	assert.True(t, BoundingBox(nil).Empty())
}

func TestPointDistance(t *testing.T) {
	assert.Equal(t, 5.0, NewPoint2D(0, 0).Distance(NewPoint2D(3, 4)))
}

func TestNearestPicksClosestOnScreen(t *testing.T) {
	xs := []float64{0, 10, 20}
	ys := []float64{0, 1, 2}
	idx, ok := Nearest(NewPoint2D(9.5, 1.1), xs, ys, NewRange(0, 20), NewRange(0, 2))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestNearestNormalizesPerAxis(t *testing.T) {
	// In raw data space the click at (90, 0.05) is far closer to (100, 1)
	// than to (0, 0), but on a plot where both axes fill the view the
	// opposite is true. The pick must follow the on-screen distance.
	xs := []float64{0, 100}
	ys := []float64{0, 1}
	idx, ok := Nearest(NewPoint2D(90, 0.05), xs, ys, NewRange(0, 100), NewRange(0, 1))
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestNearestZoomChangesPick(t *testing.T) {
	xs := []float64{0, 100}
	ys := []float64{0, 1}
	// Zooming the y axis out by 100x makes vertical separation negligible
	// on screen, so the pick flips to the horizontally closer point.
	idx, ok := Nearest(NewPoint2D(90, 0.05), xs, ys, NewRange(0, 100), NewRange(-50, 50))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestNearestRejectsBadInput(t *testing.T) {
	_, ok := Nearest(Point2D{}, nil, nil, Range{}, Range{})
	assert.False(t, ok)

	_, ok = Nearest(Point2D{}, []float64{1, 2}, []float64{1}, Range{}, Range{})
	assert.False(t, ok)
}

func TestPolylineLengthAndBounds(t *testing.T) {
	pl := NewPolyline([]Point2D{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}})
	assert.Equal(t, 11.0, pl.Length())

	box := pl.Bounds()
	assert.Equal(t, 0.0, box.X)
	assert.Equal(t, 3.0, box.Width)
	assert.Equal(t, 10.0, box.Height)
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.True(t, PointInPolygon(NewPoint2D(5, 5), square))
	assert.False(t, PointInPolygon(NewPoint2D(15, 5), square))
	assert.False(t, PointInPolygon(NewPoint2D(5, 5), square[:2]))
}

func TestOverlapsWithPolygonCrossing(t *testing.T) {
	line := NewPolyline([]Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}})
	square := []Point2D{{X: 3, Y: -1}, {X: 7, Y: -1}, {X: 7, Y: 1}, {X: 3, Y: 1}}

	ivs := line.OverlapsWithPolygon(square)
	require.Len(t, ivs, 1)
	assert.InDelta(t, 3.0, ivs[0].Start, 1e-9)
	assert.InDelta(t, 7.0, ivs[0].End, 1e-9)
}

func TestOverlapsWithPolygonContained(t *testing.T) {
	// Path lies entirely inside the polygon, so the whole length overlaps.
	line := NewPolyline([]Point2D{{X: 4, Y: 0}, {X: 6, Y: 0}})
	square := []Point2D{{X: 3, Y: -1}, {X: 7, Y: -1}, {X: 7, Y: 1}, {X: 3, Y: 1}}

	ivs := line.OverlapsWithPolygon(square)
	require.Len(t, ivs, 1)
	assert.InDelta(t, 0.0, ivs[0].Start, 1e-9)
	assert.InDelta(t, 2.0, ivs[0].End, 1e-9)
}

func TestOverlapsWithPolygonDisjoint(t *testing.T) {
	line := NewPolyline([]Point2D{{X: 20, Y: 20}, {X: 30, Y: 20}})
	square := []Point2D{{X: 3, Y: -1}, {X: 7, Y: -1}, {X: 7, Y: 1}, {X: 3, Y: 1}}
	assert.Empty(t, line.OverlapsWithPolygon(square))
}

func TestOverlapsWithPolygonTwoSeparateRegions(t *testing.T) {
	// A vertical path through both arms of a C-shaped polygon yields two
	// distinct overlap intervals separated by the notch.
	line := NewPolyline([]Point2D{{X: 3, Y: -2}, {X: 3, Y: 12}})
	cShape := []Point2D{
		{X: 1, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 10}, {X: 1, Y: 10},
		{X: 1, Y: 7}, {X: 6, Y: 7}, {X: 6, Y: 3}, {X: 1, Y: 3},
	}

	ivs := line.OverlapsWithPolygon(cShape)
	require.Len(t, ivs, 2)
	assert.InDelta(t, 2.0, ivs[0].Start, 1e-9)
	assert.InDelta(t, 5.0, ivs[0].End, 1e-9)
	assert.InDelta(t, 9.0, ivs[1].Start, 1e-9)
	assert.InDelta(t, 12.0, ivs[1].End, 1e-9)
}

func TestOverlapsWithPolygonRejectsShortInput(t *testing.T) {
	line := NewPolyline([]Point2D{{X: 0, Y: 0}})
	square := []Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	assert.Nil(t, line.OverlapsWithPolygon(square))
	assert.Nil(t, NewPolyline([]Point2D{{}, {X: 1}}).OverlapsWithPolygon(square[:2]))
}
