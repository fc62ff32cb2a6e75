// Package dialogs provides application dialogs.
package dialogs

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"xsection-editor/internal/columns"
)

// ColumnSettingsDialog edits the column role preferences: which header names
// or positions are tried, in order, for each role.
type ColumnSettingsDialog struct {
	prefs  columns.Preferences
	window fyne.Window

	xEntry          *widget.Entry
	yEntry          *widget.Entry
	nEntry          *widget.Entry
	unsortableEntry *widget.Entry
	eastingEntry    *widget.Entry
	northingEntry   *widget.Entry

	// Callback
	onSave func(columns.Preferences)
}

// NewColumnSettingsDialog creates a column settings dialog seeded with the
// current preferences.
func NewColumnSettingsDialog(prefs columns.Preferences, window fyne.Window, onSave func(columns.Preferences)) *ColumnSettingsDialog {
	return &ColumnSettingsDialog{
		prefs:  prefs,
		window: window,
		onSave: onSave,
	}
}

// Show displays the dialog.
func (d *ColumnSettingsDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Column Settings",
		"Save",
		"Cancel",
		content,
		func(save bool) {
			if save {
				d.applyChanges()
				if d.onSave != nil {
					d.onSave(d.prefs)
				}
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(480, 420))
	dlg.Show()
}

func (d *ColumnSettingsDialog) createContent() fyne.CanvasObject {
	d.xEntry = d.listEntry(d.prefs.X)
	d.yEntry = d.listEntry(d.prefs.Y)
	d.nEntry = d.listEntry(d.prefs.N)
	d.unsortableEntry = d.listEntry(d.prefs.UnsortableX)
	d.eastingEntry = d.listEntry(d.prefs.Easting)
	d.northingEntry = d.listEntry(d.prefs.Northing)

	form := widget.NewForm(
		widget.NewFormItem("Chainage (X)", d.xEntry),
		widget.NewFormItem("Elevation (Y)", d.yEntry),
		widget.NewFormItem("Roughness (n)", d.nEntry),
		widget.NewFormItem("Unsortable X", d.unsortableEntry),
		widget.NewFormItem("Easting", d.eastingEntry),
		widget.NewFormItem("Northing", d.northingEntry),
	)

	help := widget.NewLabel("Comma-separated header names tried in order.\n" +
		"A bare number selects a column by position.")
	help.TextStyle.Italic = true

	return container.NewVBox(form, help)
}

func (d *ColumnSettingsDialog) listEntry(prefs []columns.Pref) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(columns.FormatList(prefs))
	return e
}

func (d *ColumnSettingsDialog) applyChanges() {
	d.prefs.X = columns.ParseList(d.xEntry.Text)
	d.prefs.Y = columns.ParseList(d.yEntry.Text)
	d.prefs.N = columns.ParseList(d.nEntry.Text)
	d.prefs.UnsortableX = columns.ParseList(d.unsortableEntry.Text)
	d.prefs.Easting = columns.ParseList(d.eastingEntry.Text)
	d.prefs.Northing = columns.ParseList(d.northingEntry.Text)
}
