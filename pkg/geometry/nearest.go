package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Nearest returns the index of the point closest to the click position when
// both axes are normalized to [0,1] against their visible ranges. Normalizing
// each axis independently makes proximity match what the user sees on screen:
// a plain data-space distance would be dominated by whichever axis happens to
// span the larger numeric range.
func Nearest(click Point2D, xs, ys []float64, xview, yview Range) (int, bool) {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return 0, false
	}

	cx := xview.Normalize(click.X)
	cy := yview.Normalize(click.Y)

	dists := make([]float64, n)
	for i := 0; i < n; i++ {
		dx := xview.Normalize(xs[i]) - cx
		dy := yview.Normalize(ys[i]) - cy
		dists[i] = math.Hypot(dx, dy)
	}
	return floats.MinIdx(dists), true
}
