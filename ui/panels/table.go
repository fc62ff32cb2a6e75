package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"xsection-editor/internal/app"
	"xsection-editor/internal/bank"
)

// cutHighlight tints rows that lie outside the banks and would be trimmed
// on save.
var cutHighlight = color.NRGBA{R: 0xFF, G: 0xB3, B: 0x4D, A: 0x50}

// TablePanel shows the survey rows and lets the user edit cells, assign
// column roles, and place banks on rows.
type TablePanel struct {
	state *app.State
	table *widget.Table

	editEntry *widget.Entry
	selected  widget.TableCellID
	outside   map[int]bool

	// OnError is invoked when an edit is rejected.
	OnError func(err error)
}

// NewTablePanel creates the table panel.
func NewTablePanel(state *app.State) *TablePanel {
	tp := &TablePanel{
		state:    state,
		selected: widget.TableCellID{Row: -1, Col: -1},
		outside:  make(map[int]bool),
	}

	tp.table = widget.NewTable(
		func() (int, int) {
			doc := state.Doc
			if doc == nil {
				return 0, 0
			}
			// Row 0 is the header.
			return doc.Series.NumRows() + 1, doc.Series.NumCols()
		},
		func() fyne.CanvasObject {
			bg := fynecanvas.NewRectangle(color.Transparent)
			label := widget.NewLabel("value")
			return container.NewStack(bg, label)
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			stack := obj.(*fyne.Container)
			bg := stack.Objects[0].(*fynecanvas.Rectangle)
			label := stack.Objects[1].(*widget.Label)
			tp.updateCell(id, bg, label)
		},
	)

	tp.table.OnSelected = func(id widget.TableCellID) {
		tp.selected = id
		if id.Row > 0 {
			tp.editEntry.SetText(tp.cellText(id.Row-1, id.Col))
		} else {
			tp.editEntry.SetText("")
		}
	}

	tp.editEntry = widget.NewEntry()
	tp.editEntry.SetPlaceHolder("select a cell to edit")
	tp.editEntry.OnSubmitted = func(text string) {
		tp.commit(text)
	}

	return tp
}

// Container returns the panel's layout: edit bar, action buttons, table.
func (tp *TablePanel) Container() fyne.CanvasObject {
	applyBtn := widget.NewButton("Apply", func() {
		tp.commit(tp.editEntry.Text)
	})
	editBar := container.NewBorder(nil, nil, nil, applyBtn, tp.editEntry)

	rowButtons := container.NewHBox(
		widget.NewButton("Left Bank", func() {
			tp.withSelectedRow(func(row int) error {
				return tp.state.SetBankRow(bank.Left, row)
			})
		}),
		widget.NewButton("Right Bank", func() {
			tp.withSelectedRow(func(row int) error {
				return tp.state.SetBankRow(bank.Right, row)
			})
		}),
		widget.NewButton("Delete Row", func() {
			tp.withSelectedRow(tp.state.RemoveRow)
		}),
	)
	roleButtons := container.NewHBox(
		widget.NewLabel("Column:"),
		widget.NewButton("Set as X", func() { tp.setRole(app.RoleX) }),
		widget.NewButton("Set as Y", func() { tp.setRole(app.RoleY) }),
		widget.NewButton("Set as n", func() { tp.setRole(app.RoleN) }),
	)

	return container.NewBorder(
		container.NewVBox(editBar, rowButtons, roleButtons),
		nil, nil, nil,
		tp.table,
	)
}

// Reload recomputes the trim highlight and redraws the table.
func (tp *TablePanel) Reload() {
	tp.outside = make(map[int]bool)
	doc := tp.state.Doc
	if doc != nil && doc.Roles.X >= 0 {
		left := doc.Banks.X(bank.Left)
		right := doc.Banks.X(bank.Right)
		for _, r := range doc.Series.OutsideBand(left, right, doc.Roles.X) {
			tp.outside[r] = true
		}
	}
	tp.table.Refresh()
}

func (tp *TablePanel) updateCell(id widget.TableCellID, bg *fynecanvas.Rectangle, label *widget.Label) {
	doc := tp.state.Doc
	if doc == nil {
		return
	}

	if id.Row == 0 {
		bg.FillColor = color.Transparent
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.SetText(tp.headerText(id.Col))
		bg.Refresh()
		return
	}

	row := id.Row - 1
	bg.FillColor = color.Transparent
	if tp.outside[row] {
		bg.FillColor = cutHighlight
	}
	label.TextStyle = fyne.TextStyle{}
	label.SetText(tp.cellText(row, id.Col))
	bg.Refresh()
}

// headerText decorates a column name with its resolved role.
func (tp *TablePanel) headerText(col int) string {
	doc := tp.state.Doc
	names := doc.Series.ColumnNames()
	if col >= len(names) {
		return ""
	}
	name := names[col]
	switch col {
	case doc.Roles.X:
		return name + " (X)"
	case doc.Roles.Y:
		return name + " (Y)"
	case doc.Roles.N:
		return name + " (n)"
	}
	return name
}

func (tp *TablePanel) cellText(row, col int) string {
	doc := tp.state.Doc
	if doc == nil {
		return ""
	}
	return doc.Series.CellString(row, col)
}

// commit applies the edit bar's text to the selected cell. A value that
// does not fit the column type is dropped and the cell text restored.
func (tp *TablePanel) commit(text string) {
	if tp.selected.Row <= 0 {
		return
	}
	row, col := tp.selected.Row-1, tp.selected.Col
	if err := tp.state.SetCell(row, col, text); err != nil {
		tp.editEntry.SetText(tp.cellText(row, col))
		tp.state.Status(fmt.Sprintf("value %q does not fit column type", text))
		return
	}
	tp.Reload()
}

func (tp *TablePanel) withSelectedRow(f func(row int) error) {
	if tp.selected.Row <= 0 {
		return
	}
	if err := f(tp.selected.Row - 1); err != nil && tp.OnError != nil {
		tp.OnError(err)
	}
	tp.Reload()
}

func (tp *TablePanel) setRole(role app.Role) {
	if tp.selected.Col < 0 {
		return
	}
	if err := tp.state.SetRole(tp.selected.Col, role); err != nil && tp.OnError != nil {
		tp.OnError(err)
	}
	tp.Reload()
}
