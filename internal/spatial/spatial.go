// Package spatial computes where a section's path crosses polygon features,
// for shaded overlap rendering. The editor talks to it through the narrow
// Service interface; the built-in implementation composes explicit geometry
// operations (points to path, path/polygon intersection, distance along
// path) rather than delegating to an external GIS engine.
package spatial

import (
	"errors"

	"xsection-editor/pkg/geometry"
)

// LayerRequest describes how to build a point layer from a delimited file:
// either a WKT geometry column, or an easting/northing column pair. The
// order column (normally the section's X) gives each point its position
// along the path.
type LayerRequest struct {
	Path        string
	WKTColumn   string
	EastingCol  string
	NorthingCol string
	OrderColumn string
	Comment     byte
}

// PointLayer is an ordered set of survey points with their path order keys.
type PointLayer struct {
	Name   string
	Points []geometry.Point2D
	Order  []float64
}

// Overlap is one crossing of the section path through a polygon, expressed
// as linear distances along the path. Entry <= Exit always holds.
type Overlap struct {
	Entry float64
	Exit  float64
}

// Service is the spatial collaborator seen by the editor core. Calls are
// synchronous and either fully succeed or fail; a failure leaves the
// overlays empty and never blocks CSV editing.
type Service interface {
	PointLayer(req LayerRequest) (*PointLayer, error)
	PointsToPath(layer *PointLayer) (geometry.Polyline, error)
	Intersections(path geometry.Polyline, polygon []geometry.Point2D) ([]Overlap, error)
}

// Errors reported by the built-in service.
var (
	ErrNoGeometry   = errors.New("file has neither a WKT column nor easting/northing columns")
	ErrEmptyLayer   = errors.New("layer has no points")
	ErrEmptyExtent  = errors.New("layer extent has no area")
	ErrInvalidInput = errors.New("invalid input layers")
)

// NormalizeOverlap orders an (entry, exit) pair so entry <= exit.
func NormalizeOverlap(entry, exit float64) Overlap {
	if entry > exit {
		entry, exit = exit, entry
	}
	return Overlap{Entry: entry, Exit: exit}
}
