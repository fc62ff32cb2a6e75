// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"xsection-editor/internal/app"
	"xsection-editor/internal/bank"
	"xsection-editor/internal/columns"
	"xsection-editor/internal/export"
	"xsection-editor/internal/version"
	"xsection-editor/pkg/geometry"
	"xsection-editor/ui/dialogs"
	"xsection-editor/ui/panels"
	"xsection-editor/ui/plotview"
	"xsection-editor/ui/prefs"
	"xsection-editor/ui/status"
)

const appTitle = "Cross-Section Editor"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app      fyne.App
	state    *app.State
	prefs    *prefs.Prefs
	plot     *plotview.PlotView
	fileList *panels.FileListPanel
	table    *panels.TablePanel
	bar      *status.Bar
	coord    *widget.Label
	watcher  *app.FileWatcher
	autosaveStop func()

	// Option widgets kept in sync with state
	fixVerticals  *widget.Check
	leftmostZero  *widget.Check
	writePlotFile *widget.Check
	autosave      *widget.Check
	policySelect  *widget.Select
	tokenEntry    *widget.Entry
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.restorePreferences()
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupWatcher()

	win.SetOnClosed(func() {
		mw.watcher.Stop()
		if mw.autosaveStop != nil {
			mw.autosaveStop()
		}
		mw.savePreferences()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.plot = plotview.New(mw.state)
	mw.fileList = panels.NewFileListPanel(mw.state)
	mw.table = panels.NewTablePanel(mw.state)
	mw.bar = status.NewBar()
	mw.coord = widget.NewLabel("")

	mw.fileList.OnError = mw.showError
	mw.table.OnError = mw.showError

	mw.wirePlotCallbacks()

	toolbar := mw.createToolbar()
	options := mw.createOptionsBar()

	plotArea := container.NewBorder(
		toolbar, // top
		options, // bottom
		nil, nil,
		mw.plot,
	)

	left := container.NewVSplit(
		mw.fileList.Container(),
		mw.table.Container(),
	)
	left.SetOffset(0.3)

	split := container.NewHSplit(left, plotArea)
	split.SetOffset(0.35)

	bottom := container.NewBorder(nil, nil, nil, mw.coord, mw.bar.Widget())
	content := container.NewBorder(
		nil,
		container.NewPadded(bottom), // bottom
		nil, nil,
		split,
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// wirePlotCallbacks connects plot clicks to bank placement.
func (mw *MainWindow) wirePlotCallbacks() {
	mw.plot.OnPick(func(side bank.Side, click geometry.Point2D, xview, yview geometry.Range) {
		if err := mw.state.SetBankNearest(side, click, xview, yview); err != nil {
			mw.showError(err)
		}
	})
	mw.plot.OnHover(func(pt geometry.Point2D, ok bool) {
		if ok {
			mw.coord.SetText(fmt.Sprintf("x=%.3f  y=%.3f", pt.X, pt.Y))
		} else {
			mw.coord.SetText("")
		}
	})
	mw.plot.OnContextMenu(func(x float64, at fyne.Position) {
		menu := fyne.NewMenu("",
			fyne.NewMenuItem(fmt.Sprintf("Interpolate Left Bank at %.3f", x), func() {
				if err := mw.state.InterpolateBank(bank.Left, x); err != nil {
					mw.showError(err)
				}
			}),
			fyne.NewMenuItem(fmt.Sprintf("Interpolate Right Bank at %.3f", x), func() {
				if err := mw.state.InterpolateBank(bank.Right, x); err != nil {
					mw.showError(err)
				}
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Clear Left Bank", func() {
				if err := mw.state.ClearBank(bank.Left); err != nil {
					mw.showError(err)
				}
			}),
			fyne.NewMenuItem("Clear Right Bank", func() {
				if err := mw.state.ClearBank(bank.Right); err != nil {
					mw.showError(err)
				}
			}),
		)
		widget.ShowPopUpMenuAtPosition(menu, mw.Canvas(), at)
	})
}

// createToolbar creates the navigation and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	prevBtn := widget.NewButton("< Prev", mw.onPrevious)
	nextBtn := widget.NewButton("Next >", mw.onNext)
	reloadBtn := widget.NewButton("Reload", mw.onReload)
	saveBtn := widget.NewButton("Save", mw.onSave)

	zoomOutBtn := widget.NewButton("-", mw.plot.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.plot.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.plot.FitToData)

	return container.NewHBox(
		prevBtn, nextBtn, reloadBtn, saveBtn,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn, zoomInBtn, fitBtn,
	)
}

// createOptionsBar creates the save option checkboxes and version controls.
func (mw *MainWindow) createOptionsBar() fyne.CanvasObject {
	opts := mw.state.Opts

	mw.fixVerticals = widget.NewCheck("Fix verticals", func(bool) { mw.applyOptions() })
	mw.fixVerticals.SetChecked(opts.FixVerticals)
	mw.leftmostZero = widget.NewCheck("Leftmost X = 0", func(bool) { mw.applyOptions() })
	mw.leftmostZero.SetChecked(opts.LeftmostZero)
	mw.writePlotFile = widget.NewCheck("Write plot file", func(bool) { mw.applyOptions() })
	mw.writePlotFile.SetChecked(opts.WritePlotFile)
	mw.autosave = widget.NewCheck("Autosave", func(bool) { mw.applyOptions() })
	mw.autosave.SetChecked(opts.Autosave)

	mw.policySelect = widget.NewSelect([]string{"Increment version", "Overwrite in place"}, func(string) {
		mw.applyOptions()
	})
	if opts.Policy == export.InPlace {
		mw.policySelect.SetSelectedIndex(1)
	} else {
		mw.policySelect.SetSelectedIndex(0)
	}

	mw.tokenEntry = widget.NewEntry()
	mw.tokenEntry.SetText(opts.VersionToken)
	mw.tokenEntry.OnChanged = func(string) { mw.applyOptions() }

	return container.NewHBox(
		mw.fixVerticals,
		mw.leftmostZero,
		mw.writePlotFile,
		mw.autosave,
		widget.NewSeparator(),
		widget.NewLabel("Save as:"),
		mw.policySelect,
		widget.NewLabel("Token:"),
		mw.tokenEntry,
	)
}

// applyOptions pushes the option widgets into the application state.
func (mw *MainWindow) applyOptions() {
	opts := app.Options{
		FixVerticals:  mw.fixVerticals.Checked,
		LeftmostZero:  mw.leftmostZero.Checked,
		WritePlotFile: mw.writePlotFile.Checked,
		Autosave:      mw.autosave.Checked,
		Policy:        export.IncrementVersion,
		VersionToken:  mw.tokenEntry.Text,
	}
	if mw.policySelect.SelectedIndex() == 1 {
		opts.Policy = export.InPlace
	}
	if opts.VersionToken == "" {
		opts.VersionToken = export.DefaultVersionToken
	}
	mw.state.SetOptions(opts)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Surveys...", mw.onOpenFiles),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Reload", mw.onReload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close All", mw.onCloseAll),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	// Undo/redo are placeholders until edit history lands.
	undoItem := fyne.NewMenuItem("Undo", func() {})
	undoItem.Disabled = true
	redoItem := fyne.NewMenuItem("Redo", func() {})
	redoItem.Disabled = true

	editMenu := fyne.NewMenu("Edit",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Column Settings...", mw.onColumnSettings),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.plot.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.plot.ZoomOut),
		fyne.NewMenuItem("Fit to Data", mw.plot.FitToData),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Fix Verticals Now", mw.onFixVerticals),
		fyne.NewMenuItem("Shift Leftmost X to Zero", mw.onLeftmostZero),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Overlap Polygon...", mw.onLoadPolygon),
		fyne.NewMenuItem("Clear Overlap Polygon", mw.state.ClearPolygon),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventFileOpened, func(data interface{}) {
		doc, _ := data.(*app.Document)
		if doc != nil {
			mw.SetTitle(appTitle + " - " + filepath.Base(doc.Path))
			mw.watcher.SetPath(doc.Path)
		} else {
			mw.SetTitle(appTitle)
			mw.watcher.SetPath("")
		}
		mw.table.Reload()
		mw.plot.FitToData()
	})

	mw.state.On(app.EventNavigationChanged, func(data interface{}) {
		mw.fileList.Reload()
	})

	mw.state.On(app.EventSeriesChanged, func(data interface{}) {
		mw.table.Reload()
		mw.plot.Refresh()
	})

	mw.state.On(app.EventBanksChanged, func(data interface{}) {
		mw.table.Reload()
		mw.plot.Refresh()
	})

	mw.state.On(app.EventOverlapsChanged, func(data interface{}) {
		mw.plot.Refresh()
	})

	mw.state.On(app.EventFileSaved, func(data interface{}) {
		mw.watcher.ResetBaseline()
		if doc := mw.state.Doc; doc != nil {
			mw.SetTitle(appTitle + " - " + filepath.Base(doc.Path))
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if len(title) > 0 && title[len(title)-1] != '*' {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.bar.Push(msg)
		}
	})
}

// setupWatcher starts watching the open file for external edits.
func (mw *MainWindow) setupWatcher() {
	mw.watcher = app.NewFileWatcher(2 * time.Second)
	mw.watcher.OnChanged(func(path string) {
		dialog.ShowConfirm("File Changed",
			filepath.Base(path)+" was modified outside the editor.\nReload and discard local edits?",
			func(reload bool) {
				if reload {
					mw.onReload()
				}
			},
			mw.Window)
	})
	mw.watcher.Start()

	mw.autosaveStop = mw.state.StartAutosave(time.Minute)
}

// restorePreferences loads saved settings into the application state.
func (mw *MainWindow) restorePreferences() {
	p := mw.prefs

	cols := mw.state.Prefs
	if s := p.String(prefs.KeyXColumns); s != "" {
		cols.X = columns.ParseList(s)
	}
	if s := p.String(prefs.KeyYColumns); s != "" {
		cols.Y = columns.ParseList(s)
	}
	if s := p.String(prefs.KeyNColumns); s != "" {
		cols.N = columns.ParseList(s)
	}
	if s := p.String(prefs.KeyUnsortableX); s != "" {
		cols.UnsortableX = columns.ParseList(s)
	}
	if s := p.String(prefs.KeyEastingColumns); s != "" {
		cols.Easting = columns.ParseList(s)
	}
	if s := p.String(prefs.KeyNorthingColumns); s != "" {
		cols.Northing = columns.ParseList(s)
	}
	mw.state.SetPreferences(cols)

	opts := mw.state.Opts
	opts.FixVerticals = p.Bool(prefs.KeyFixVerticals, opts.FixVerticals)
	opts.LeftmostZero = p.Bool(prefs.KeyLeftmostZero, opts.LeftmostZero)
	opts.WritePlotFile = p.Bool(prefs.KeyWritePlotFile, opts.WritePlotFile)
	opts.Autosave = p.Bool(prefs.KeyAutosave, opts.Autosave)
	opts.VersionToken = p.StringWithFallback(prefs.KeyVersionToken, opts.VersionToken)
	if p.Bool(prefs.KeySaveInPlace, false) {
		opts.Policy = export.InPlace
	}
	mw.state.SetOptions(opts)
}

// savePreferences writes the current settings to disk.
func (mw *MainWindow) savePreferences() {
	p := mw.prefs
	cols := mw.state.Prefs
	p.SetString(prefs.KeyXColumns, columns.FormatList(cols.X))
	p.SetString(prefs.KeyYColumns, columns.FormatList(cols.Y))
	p.SetString(prefs.KeyNColumns, columns.FormatList(cols.N))
	p.SetString(prefs.KeyUnsortableX, columns.FormatList(cols.UnsortableX))
	p.SetString(prefs.KeyEastingColumns, columns.FormatList(cols.Easting))
	p.SetString(prefs.KeyNorthingColumns, columns.FormatList(cols.Northing))

	opts := mw.state.Opts
	p.SetBool(prefs.KeyFixVerticals, opts.FixVerticals)
	p.SetBool(prefs.KeyLeftmostZero, opts.LeftmostZero)
	p.SetBool(prefs.KeyWritePlotFile, opts.WritePlotFile)
	p.SetBool(prefs.KeyAutosave, opts.Autosave)
	p.SetString(prefs.KeyVersionToken, opts.VersionToken)
	p.SetBool(prefs.KeySaveInPlace, opts.Policy == export.InPlace)

	if err := p.Save(); err != nil {
		fmt.Println("save preferences:", err)
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastOpenDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastOpenDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onOpenFiles() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.OpenFiles(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".txt"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if _, err := mw.state.Save(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onReload() {
	if err := mw.state.Reload(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onNext() {
	mw.confirmDiscard(func() {
		if err := mw.state.Next(); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) onPrevious() {
	mw.confirmDiscard(func() {
		if err := mw.state.Previous(); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) onCloseAll() {
	mw.confirmDiscard(mw.state.CloseAll)
}

// confirmDiscard runs next immediately when the document is clean, else
// after the user confirms losing edits.
func (mw *MainWindow) confirmDiscard(next func()) {
	if !mw.state.IsModified() {
		next()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The current survey has unsaved edits. Discard them?",
		func(discard bool) {
			if discard {
				next()
			}
		},
		mw.Window)
}

func (mw *MainWindow) onColumnSettings() {
	dialogs.NewColumnSettingsDialog(mw.state.Prefs, mw.Window, func(p columns.Preferences) {
		mw.state.SetPreferences(p)
		mw.savePreferences()
		// Re-resolve roles for the open file
		mw.onReload()
	}).Show()
}

func (mw *MainWindow) onFixVerticals() {
	if err := mw.state.FixVerticals(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onLeftmostZero() {
	if err := mw.state.NormalizeLeftmostZero(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onLoadPolygon() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadPolygon(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".wkt", ".txt"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"An editor for river cross-section survey files.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}

func (mw *MainWindow) showError(err error) {
	dialog.ShowError(err, mw.Window)
}
