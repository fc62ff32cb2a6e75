// Package panels provides the side panels of the main window.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"xsection-editor/internal/app"
)

// FileListPanel lists the open survey files and switches between them.
type FileListPanel struct {
	state *app.State
	list  *widget.List
	count *widget.Label

	// OnError is invoked when switching files fails.
	OnError func(err error)
}

// NewFileListPanel creates the open-files panel.
func NewFileListPanel(state *app.State) *FileListPanel {
	fp := &FileListPanel{state: state}

	fp.list = widget.NewList(
		func() int {
			return state.Nav.Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("survey file")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			labels := state.Nav.Labels()
			if int(id) < len(labels) {
				label.SetText(labels[id])
				label.TextStyle.Bold = int(id) == state.Nav.Position()
				label.Refresh()
			}
		},
	)

	fp.list.OnSelected = func(id widget.ListItemID) {
		if int(id) == state.Nav.Position() {
			return
		}
		if err := state.OpenIndex(int(id)); err != nil && fp.OnError != nil {
			fp.OnError(err)
		}
	}

	fp.count = widget.NewLabel("")
	fp.Reload()
	return fp
}

// Container returns the panel's layout.
func (fp *FileListPanel) Container() fyne.CanvasObject {
	return container.NewBorder(
		widget.NewLabel("Open Files"),
		fp.count,
		nil, nil,
		fp.list,
	)
}

// Reload refreshes the list from the navigator.
func (fp *FileListPanel) Reload() {
	n := fp.state.Nav.Len()
	pos := fp.state.Nav.Position()
	if n == 0 {
		fp.count.SetText("no files open")
	} else {
		fp.count.SetText(fmt.Sprintf("file %d of %d", pos+1, n))
	}
	if pos >= 0 {
		fp.list.Select(widget.ListItemID(pos))
	}
	fp.list.Refresh()
}
