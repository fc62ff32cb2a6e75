// Package plotview provides the interactive cross-section plot widget.
package plotview

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"xsection-editor/internal/app"
	"xsection-editor/internal/bank"
	"xsection-editor/internal/plotfile"
	"xsection-editor/pkg/geometry"
)

// PlotView displays the current section profile and turns clicks into bank
// placements. Ctrl+click sets the left bank on the nearest point, Alt+click
// the right bank; right-click opens the interpolation menu at an arbitrary
// chainage.
type PlotView struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	mu   sync.Mutex
	view *plotfile.View

	// Zoom window; nil means fit to data.
	xwin *geometry.Range
	ywin *geometry.Range

	// Callbacks
	onPick        func(side bank.Side, click geometry.Point2D, xview, yview geometry.Range)
	onContextMenu func(x float64, at fyne.Position)
	onHover       func(pt geometry.Point2D, ok bool)
}

var (
	_ desktop.Mouseable = (*PlotView)(nil)
	_ desktop.Hoverable = (*PlotView)(nil)
)

// New creates a plot view bound to the application state.
func New(state *app.State) *PlotView {
	pv := &PlotView{state: state}
	pv.raster = fynecanvas.NewRaster(pv.draw)
	pv.ExtendBaseWidget(pv)
	return pv
}

// CreateRenderer implements fyne.Widget.
func (pv *PlotView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pv.raster)
}

// MinSize implements fyne.Widget.
func (pv *PlotView) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// OnPick sets the callback for modifier-clicks on the plot. The view ranges
// passed are the ones displayed when the click happened.
func (pv *PlotView) OnPick(callback func(side bank.Side, click geometry.Point2D, xview, yview geometry.Range)) {
	pv.onPick = callback
}

// OnContextMenu sets the callback for right-clicks, giving the chainage
// under the cursor and the screen position for a popup menu.
func (pv *PlotView) OnContextMenu(callback func(x float64, at fyne.Position)) {
	pv.onContextMenu = callback
}

// OnHover sets the callback fed with the data coordinates under the cursor.
// ok is false when the cursor leaves the axes.
func (pv *PlotView) OnHover(callback func(pt geometry.Point2D, ok bool)) {
	pv.onHover = callback
}

// Refresh redraws the plot from current state.
func (pv *PlotView) Refresh() {
	pv.raster.Refresh()
	pv.BaseWidget.Refresh()
}

// draw is the raster drawing function.
func (pv *PlotView) draw(w, h int) image.Image {
	if w < 10 || h < 10 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	model := pv.state.PlotModel()
	pv.mu.Lock()
	model.XWindow = pv.xwin
	model.YWindow = pv.ywin
	pv.mu.Unlock()

	view, err := plotfile.Render(model, w, h)
	if err != nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	pv.mu.Lock()
	pv.view = view
	pv.mu.Unlock()
	return view.Image
}

// MouseDown handles clicks with their modifier state.
func (pv *PlotView) MouseDown(ev *desktop.MouseEvent) {
	pv.mu.Lock()
	view := pv.view
	pv.mu.Unlock()
	if view == nil {
		return
	}

	// Raster pixels track the widget size, so widget coordinates map
	// straight onto image pixels.
	pt, ok := view.DataAt(float64(ev.Position.X), float64(ev.Position.Y))
	if !ok {
		return
	}

	if ev.Button == desktop.MouseButtonSecondary {
		if pv.onContextMenu != nil {
			pv.onContextMenu(pt.X, ev.AbsolutePosition)
		}
		return
	}

	var side bank.Side
	switch {
	case ev.Modifier&fyne.KeyModifierControl != 0:
		side = bank.Left
	case ev.Modifier&fyne.KeyModifierAlt != 0:
		side = bank.Right
	default:
		return
	}
	if pv.onPick != nil {
		pv.onPick(side, pt, view.XData, view.YData)
	}
}

// MouseUp implements desktop.Mouseable.
func (pv *PlotView) MouseUp(ev *desktop.MouseEvent) {}

// MouseIn implements desktop.Hoverable.
func (pv *PlotView) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved reports the hovered data coordinates.
func (pv *PlotView) MouseMoved(ev *desktop.MouseEvent) {
	if pv.onHover == nil {
		return
	}
	pv.mu.Lock()
	view := pv.view
	pv.mu.Unlock()
	if view == nil {
		return
	}
	pt, ok := view.DataAt(float64(ev.Position.X), float64(ev.Position.Y))
	pv.onHover(pt, ok)
}

// MouseOut implements desktop.Hoverable.
func (pv *PlotView) MouseOut() {
	if pv.onHover != nil {
		pv.onHover(geometry.Point2D{}, false)
	}
}

// ZoomIn narrows the view window toward its center.
func (pv *PlotView) ZoomIn() { pv.zoom(1 / 1.25) }

// ZoomOut widens the view window; past the data extent it snaps to fit.
func (pv *PlotView) ZoomOut() { pv.zoom(1.25) }

// FitToData resets the view window so the whole section is visible.
func (pv *PlotView) FitToData() {
	pv.mu.Lock()
	pv.xwin = nil
	pv.ywin = nil
	pv.mu.Unlock()
	pv.Refresh()
}

func (pv *PlotView) zoom(factor float64) {
	pv.mu.Lock()
	if pv.view == nil {
		pv.mu.Unlock()
		return
	}
	x := pv.currentWindow(pv.xwin, pv.view.XData)
	y := pv.currentWindow(pv.ywin, pv.view.YData)
	pv.xwin = scaleRange(x, factor)
	pv.ywin = scaleRange(y, factor)
	pv.mu.Unlock()
	pv.Refresh()
}

func (pv *PlotView) currentWindow(win *geometry.Range, data geometry.Range) geometry.Range {
	if win != nil {
		return *win
	}
	return data
}

func scaleRange(r geometry.Range, factor float64) *geometry.Range {
	center := (r.Min + r.Max) / 2
	half := r.Span() / 2 * factor
	return &geometry.Range{Min: center - half, Max: center + half}
}
