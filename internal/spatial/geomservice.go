package spatial

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"xsection-editor/internal/columns"
	"xsection-editor/internal/series"
	"xsection-editor/pkg/geometry"
)

// GeomService is the built-in Service implementation. Point layers come
// straight from the section CSV; intersections are computed with the
// geometry package.
type GeomService struct{}

// NewGeomService creates the built-in spatial service.
func NewGeomService() *GeomService {
	return &GeomService{}
}

var _ Service = (*GeomService)(nil)

// PointLayer loads an ordered point layer from a delimited file, preferring
// the WKT column when both geometries are available.
func (g *GeomService) PointLayer(req LayerRequest) (*PointLayer, error) {
	comment := req.Comment
	if comment == 0 {
		comment = series.DefaultComment
	}

	lines, err := series.ReadLines(req.Path)
	if err != nil {
		return nil, err
	}
	hasHeader := columns.DetectHeader(lines, comment)
	s, _, err := series.Load(req.Path, hasHeader, comment)
	if err != nil {
		return nil, err
	}

	names := s.ColumnNames()
	wkt := findColumn(names, req.WKTColumn)
	east := findColumn(names, req.EastingCol)
	north := findColumn(names, req.NorthingCol)
	order := findColumn(names, req.OrderColumn)

	layer := &PointLayer{
		Name: strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path)),
	}
	for r := 0; r < s.NumRows(); r++ {
		var (
			p  geometry.Point2D
			ok bool
		)
		switch {
		case wkt >= 0:
			p, ok = parseWKTPoint(s.CellString(r, wkt))
		case east >= 0 && north >= 0:
			var ex, ny float64
			var okx, oky bool
			ex, okx = s.Float(r, east)
			ny, oky = s.Float(r, north)
			p, ok = geometry.Point2D{X: ex, Y: ny}, okx && oky
		default:
			return nil, ErrNoGeometry
		}
		if !ok {
			continue
		}
		layer.Points = append(layer.Points, p)
		if order >= 0 {
			if v, vok := s.Float(r, order); vok {
				layer.Order = append(layer.Order, v)
			} else {
				layer.Order = append(layer.Order, float64(r))
			}
		} else {
			layer.Order = append(layer.Order, float64(r))
		}
	}
	if len(layer.Points) == 0 {
		return nil, ErrEmptyLayer
	}
	return layer, nil
}

// PointsToPath connects the layer's points into a path ordered by the order
// key, and rejects layers whose extent has no area (nothing to draw or
// intersect).
func (g *GeomService) PointsToPath(layer *PointLayer) (geometry.Polyline, error) {
	if layer == nil || len(layer.Points) < 2 {
		return geometry.Polyline{}, ErrEmptyLayer
	}

	idx := make([]int, len(layer.Points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return layer.Order[idx[a]] < layer.Order[idx[b]]
	})

	ordered := make([]geometry.Point2D, len(idx))
	for i, j := range idx {
		ordered[i] = layer.Points[j]
	}

	path := geometry.NewPolyline(ordered)
	if path.Bounds().Empty() {
		return geometry.Polyline{}, ErrEmptyExtent
	}
	return path, nil
}

// Intersections returns the overlaps between the path and the polygon as
// normalized (entry, exit) distance pairs along the path.
func (g *GeomService) Intersections(path geometry.Polyline, polygon []geometry.Point2D) ([]Overlap, error) {
	if len(path.Points) < 2 || len(polygon) < 3 {
		return nil, ErrInvalidInput
	}
	var out []Overlap
	for _, iv := range path.OverlapsWithPolygon(polygon) {
		out = append(out, NormalizeOverlap(iv.Start, iv.End))
	}
	return out, nil
}

// findColumn returns the index of the named column, case-insensitively, or
// -1 when the name is empty or absent.
func findColumn(names []string, want string) int {
	if want == "" {
		return -1
	}
	for i, n := range names {
		if strings.EqualFold(n, want) {
			return i
		}
	}
	return -1
}

// parseWKTPoint parses "POINT (x y)".
func parseWKTPoint(text string) (geometry.Point2D, bool) {
	var x, y float64
	text = strings.TrimSpace(text)
	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "POINT") {
		return geometry.Point2D{}, false
	}
	body := strings.TrimSpace(text[len("POINT"):])
	body = strings.TrimPrefix(body, "(")
	body = strings.TrimSuffix(body, ")")
	if _, err := fmt.Sscanf(strings.TrimSpace(body), "%f %f", &x, &y); err != nil {
		return geometry.Point2D{}, false
	}
	return geometry.Point2D{X: x, Y: y}, true
}
