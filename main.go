// Package main provides the entry point for the cross-section editor.
package main

import (
	"log"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"xsection-editor/internal/app"
	"xsection-editor/internal/version"
	"xsection-editor/ui/mainwindow"
	"xsection-editor/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting cross-section editor v%s", version.Version)

	fyneApp := fyneapp.NewWithID("xsection-editor")
	fyneApp.Settings().SetTheme(&app.EditorTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Survey files given on the command line are opened immediately.
	if len(os.Args) > 1 {
		if err := appState.OpenFiles(os.Args[1:]...); err != nil {
			log.Printf("Failed to open %v: %v", os.Args[1:], err)
		}
	}

	win.ShowAndRun()
}
