// Package plotfile renders cross-section plots, both for the live editor view
// and as PNG files written next to saved surveys.
package plotfile

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"xsection-editor/pkg/colorutil"
	"xsection-editor/pkg/geometry"
)

const renderDPI = 96

// Overlay is a second section drawn on the same axes for comparison.
type Overlay struct {
	Label string
	X     []float64
	Y     []float64
}

// Model holds everything one plot needs. X and Y are the section profile in
// row order; N, when present, assigns each point a roughness category.
type Model struct {
	Title     string
	XLabel    string
	YLabel    string
	X         []float64
	Y         []float64
	N         []float64
	LeftBank  *float64
	RightBank *float64
	Bands     []geometry.Interval
	Companion *Overlay

	// Optional view window; when nil the axes fit the data.
	XWindow *geometry.Range
	YWindow *geometry.Range
}

// View is a rendered plot plus the linear mapping between image pixels and
// data coordinates, used to turn clicks back into chainage/elevation.
type View struct {
	Image   image.Image
	XData   geometry.Range
	YData   geometry.Range
	XMinPix float64
	XMaxPix float64
	YMinPix float64
	YMaxPix float64
}

// DataAt maps an image pixel to data coordinates. ok is false when the pixel
// falls outside the plot area.
func (v *View) DataAt(px, py float64) (geometry.Point2D, bool) {
	const slack = 8
	if px < v.XMinPix-slack || px > v.XMaxPix+slack ||
		py < v.YMaxPix-slack || py > v.YMinPix+slack {
		return geometry.Point2D{}, false
	}
	fx := (px - v.XMinPix) / (v.XMaxPix - v.XMinPix)
	fy := (py - v.YMinPix) / (v.YMaxPix - v.YMinPix)
	return geometry.Point2D{
		X: v.XData.Min + fx*v.XData.Span(),
		Y: v.YData.Min + fy*v.YData.Span(),
	}, true
}

// PixelOf maps a data point to image pixel coordinates.
func (v *View) PixelOf(pt geometry.Point2D) (float64, float64) {
	fx := v.XData.Normalize(pt.X)
	fy := v.YData.Normalize(pt.Y)
	return v.XMinPix + fx*(v.XMaxPix-v.XMinPix),
		v.YMinPix + fy*(v.YMaxPix-v.YMinPix)
}

// Render draws the model into an image of the given pixel size.
func Render(m Model, wpx, hpx int) (*View, error) {
	p, err := build(m)
	if err != nil {
		return nil, err
	}

	// Render oversampled and scale down for smoother lines and glyphs.
	const ss = 2
	w := vg.Length(wpx) / renderDPI * vg.Inch
	h := vg.Length(hpx) / renderDPI * vg.Inch
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(renderDPI*ss))
	dc := draw.New(c)
	p.Draw(dc)

	big := c.Image()
	out := image.NewRGBA(image.Rect(0, 0, wpx, hpx))
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Over, nil)

	data := p.DataCanvas(dc)
	trX, trY := p.Transforms(&data)

	toPixX := func(l vg.Length) float64 { return float64(l) / float64(vg.Inch) * renderDPI }
	toPixY := func(l vg.Length) float64 { return float64(hpx) - toPixX(l) }

	return &View{
		Image:   out,
		XData:   geometry.Range{Min: p.X.Min, Max: p.X.Max},
		YData:   geometry.Range{Min: p.Y.Min, Max: p.Y.Max},
		XMinPix: toPixX(trX(p.X.Min)),
		XMaxPix: toPixX(trX(p.X.Max)),
		YMinPix: toPixY(trY(p.Y.Min)),
		YMaxPix: toPixY(trY(p.Y.Max)),
	}, nil
}

// Save writes the plot as a PNG file.
func Save(m Model, path string, wpx, hpx int) error {
	p, err := build(m)
	if err != nil {
		return err
	}
	w := vg.Length(wpx) / renderDPI * vg.Inch
	h := vg.Length(hpx) / renderDPI * vg.Inch
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// OutPath returns the PNG path written alongside a saved survey file.
func OutPath(csvPath string) string {
	ext := filepath.Ext(csvPath)
	return strings.TrimSuffix(csvPath, ext) + ".png"
}

// RemoveStale deletes a previously written plot file, ignoring absence.
func RemoveStale(csvPath string) error {
	err := os.Remove(OutPath(csvPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func build(m Model) (*plot.Plot, error) {
	if len(m.X) == 0 || len(m.X) != len(m.Y) {
		return nil, fmt.Errorf("plot: need matching x/y data, got %d/%d", len(m.X), len(m.Y))
	}

	p := plot.New()
	p.Title.Text = m.Title
	p.X.Label.Text = m.XLabel
	p.Y.Label.Text = m.YLabel
	p.Add(plotter.NewGrid())

	xmin, xmax, ymin, ymax := dataExtent(m)
	if m.XWindow != nil {
		xmin, xmax = m.XWindow.Min, m.XWindow.Max
	}
	if m.YWindow != nil {
		ymin, ymax = m.YWindow.Min, m.YWindow.Max
	}

	// Shaded regions go in first so lines and points draw on top.
	if err := addBankShading(p, m, xmin, xmax, ymin, ymax); err != nil {
		return nil, err
	}
	for _, band := range m.Bands {
		if err := addBand(p, band, ymin, ymax); err != nil {
			return nil, err
		}
	}

	if m.Companion != nil && len(m.Companion.X) > 1 {
		line, err := plotter.NewLine(toXYs(m.Companion.X, m.Companion.Y))
		if err != nil {
			return nil, err
		}
		line.Color = colorutil.Red
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(m.Companion.Label, line)
	}

	line, err := plotter.NewLine(toXYs(m.X, m.Y))
	if err != nil {
		return nil, err
	}
	line.Color = colorutil.Blue
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	if err := addRoughnessScatter(p, m); err != nil {
		return nil, err
	}

	p.Legend.Top = true

	// Adding data ranger plotters grows the axes; pin them last so an
	// explicit window survives.
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax
	return p, nil
}

func dataExtent(m Model) (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	scan := func(xs, ys []float64) {
		for i := range xs {
			if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
				continue
			}
			xmin = math.Min(xmin, xs[i])
			xmax = math.Max(xmax, xs[i])
			ymin = math.Min(ymin, ys[i])
			ymax = math.Max(ymax, ys[i])
		}
	}
	scan(m.X, m.Y)
	if m.Companion != nil {
		scan(m.Companion.X, m.Companion.Y)
	}
	if math.IsInf(xmin, 1) {
		return 0, 1, 0, 1
	}
	// A flat section still needs a drawable extent.
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	padX := (xmax - xmin) * 0.03
	padY := (ymax - ymin) * 0.08
	return xmin - padX, xmax + padX, ymin - padY, ymax + padY
}

func addBankShading(p *plot.Plot, m Model, xmin, xmax, ymin, ymax float64) error {
	shade := func(lo, hi float64) error {
		if hi <= lo {
			return nil
		}
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: lo, Y: ymin}, {X: hi, Y: ymin},
			{X: hi, Y: ymax}, {X: lo, Y: ymax},
		})
		if err != nil {
			return err
		}
		poly.Color = colorutil.LightGray
		poly.LineStyle.Width = 0
		p.Add(poly)
		return nil
	}
	if m.LeftBank != nil {
		if err := shade(xmin, *m.LeftBank); err != nil {
			return err
		}
	}
	if m.RightBank != nil {
		if err := shade(*m.RightBank, xmax); err != nil {
			return err
		}
	}
	return nil
}

func addBand(p *plot.Plot, band geometry.Interval, ymin, ymax float64) error {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: band.Start, Y: ymin}, {X: band.End, Y: ymin},
		{X: band.End, Y: ymax}, {X: band.Start, Y: ymax},
	})
	if err != nil {
		return err
	}
	poly.Color = colorutil.LightBlue
	poly.LineStyle.Width = 0
	p.Add(poly)
	return nil
}

// addRoughnessScatter draws the section points, colored per roughness value
// when one is present. Negative roughness draws as a cross so sign flips are
// visible at a glance.
func addRoughnessScatter(p *plot.Plot, m Model) error {
	type group struct {
		key string
		pts plotter.XYs
		neg bool
	}
	byKey := map[string]*group{}
	var order []string
	for i := range m.X {
		if math.IsNaN(m.X[i]) || math.IsNaN(m.Y[i]) {
			continue
		}
		key := ""
		neg := false
		if i < len(m.N) && !math.IsNaN(m.N[i]) {
			key = strconv.FormatFloat(math.Abs(m.N[i]), 'g', -1, 64)
			neg = m.N[i] < 0
		}
		gk := key
		if neg {
			gk = "-" + gk
		}
		g, ok := byKey[gk]
		if !ok {
			g = &group{key: key, neg: neg}
			byKey[gk] = g
			order = append(order, gk)
		}
		g.pts = append(g.pts, plotter.XY{X: m.X[i], Y: m.Y[i]})
	}
	sort.Strings(order)

	palette := colorutil.CategoryPalette(len(order))
	for gi, gk := range order {
		g := byKey[gk]
		sc, err := plotter.NewScatter(g.pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		sc.GlyphStyle.Color = colorutil.Black
		if g.key != "" {
			sc.GlyphStyle.Color = palette[gi]
		}
		if g.neg {
			sc.GlyphStyle.Shape = draw.CrossGlyph{}
		} else {
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
		}
		p.Add(sc)
		if g.key != "" {
			label := "n=" + g.key
			if g.neg {
				label = "n=-" + g.key
			}
			p.Legend.Add(label, sc)
		}
	}
	return nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return out
}
