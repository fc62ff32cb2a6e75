package geometry

// Polyline is an ordered open path through 2D space.
type Polyline struct {
	Points []Point2D
}

// NewPolyline creates a polyline from an ordered point sequence.
func NewPolyline(points []Point2D) Polyline {
	return Polyline{Points: points}
}

// Length returns the total length of the polyline.
func (pl Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(pl.Points); i++ {
		total += pl.Points[i-1].Distance(pl.Points[i])
	}
	return total
}

// Bounds returns the axis-aligned bounding box of the polyline.
func (pl Polyline) Bounds() Rect {
	return BoundingBox(pl.Points)
}

// Interval is a linear-distance interval along a polyline, measured from the
// start of the path.
type Interval struct {
	Start float64
	End   float64
}

// OverlapsWithPolygon returns the distance intervals along the polyline that
// lie inside the polygon. Crossings are located per segment; runs of inside
// midpoints between consecutive crossings are merged into intervals.
func (pl Polyline) OverlapsWithPolygon(polygon []Point2D) []Interval {
	if len(pl.Points) < 2 || len(polygon) < 3 {
		return nil
	}

	// Collect the path distance of every polygon crossing, plus the two
	// endpoints, as interval boundaries.
	var cuts []float64
	cuts = append(cuts, 0)

	var walked float64
	for i := 1; i < len(pl.Points); i++ {
		a, b := pl.Points[i-1], pl.Points[i]
		segLen := a.Distance(b)

		var ts []float64
		for j := 0; j < len(polygon); j++ {
			e1 := polygon[j]
			e2 := polygon[(j+1)%len(polygon)]
			if t, ok := segmentIntersectionParam(a, b, e1, e2); ok {
				ts = append(ts, t)
			}
		}
		for _, t := range ts {
			cuts = append(cuts, walked+t*segLen)
		}
		walked += segLen
	}
	cuts = append(cuts, walked)
	sortFloats(cuts)

	// Classify each span between consecutive cuts by testing its midpoint,
	// then merge adjacent inside spans.
	var out []Interval
	for i := 1; i < len(cuts); i++ {
		lo, hi := cuts[i-1], cuts[i]
		if hi-lo < 1e-12 {
			continue
		}
		mid, ok := pl.pointAtDistance((lo + hi) / 2)
		if !ok || !PointInPolygon(mid, polygon) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End >= lo-1e-9 {
			out[n-1].End = hi
		} else {
			out = append(out, Interval{Start: lo, End: hi})
		}
	}
	return out
}

// pointAtDistance returns the point at the given distance along the path.
func (pl Polyline) pointAtDistance(d float64) (Point2D, bool) {
	if len(pl.Points) < 2 || d < 0 {
		return Point2D{}, false
	}
	var walked float64
	for i := 1; i < len(pl.Points); i++ {
		a, b := pl.Points[i-1], pl.Points[i]
		segLen := a.Distance(b)
		if walked+segLen >= d {
			if segLen == 0 {
				return a, true
			}
			t := (d - walked) / segLen
			return Point2D{
				X: a.X + t*(b.X-a.X),
				Y: a.Y + t*(b.Y-a.Y),
			}, true
		}
		walked += segLen
	}
	return pl.Points[len(pl.Points)-1], true
}

// sortFloats sorts in place (insertion sort; crossing counts are tiny).
func sortFloats(v []float64) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}
