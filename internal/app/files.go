package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/columns"
	"xsection-editor/internal/export"
	"xsection-editor/internal/navigator"
	"xsection-editor/internal/plotfile"
	"xsection-editor/internal/series"
)

// OpenFiles adds the given survey files to the navigator and opens the first
// newly usable one. Files already open are not duplicated.
func (s *State) OpenFiles(paths ...string) error {
	s.mu.Lock()
	s.Nav.Add(paths...)
	s.mu.Unlock()
	s.Emit(EventNavigationChanged, nil)

	if s.Doc == nil && len(paths) > 0 {
		for i, f := range s.Nav.Files() {
			if f == paths[0] {
				return s.OpenIndex(i)
			}
		}
	}
	return nil
}

// OpenIndex switches to the file at the given navigator position.
func (s *State) OpenIndex(i int) error {
	s.mu.Lock()
	path, ok := s.Nav.Select(i)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no open file at position %d", i)
	}
	return s.load(path)
}

// Next moves to the next open file. At the end of the list it stays put.
func (s *State) Next() error {
	s.mu.Lock()
	path, ok := s.Nav.Next()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.load(path)
}

// Previous moves to the previous open file.
func (s *State) Previous() error {
	s.mu.Lock()
	path, ok := s.Nav.Previous()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.load(path)
}

// Reload re-reads the current file from disk, discarding unsaved edits.
func (s *State) Reload() error {
	s.mu.RLock()
	var path string
	if s.Doc != nil {
		path = s.Doc.Path
	}
	s.mu.RUnlock()
	if path == "" {
		return nil
	}
	return s.load(path)
}

// CloseAll drops every open file and the current document.
func (s *State) CloseAll() {
	s.mu.Lock()
	s.Nav.CloseAll()
	s.Doc = nil
	s.Companion = nil
	s.Overlaps = nil
	s.mu.Unlock()
	s.Emit(EventNavigationChanged, nil)
	s.Emit(EventFileOpened, nil)
}

// load parses a survey file into a fresh document, resolving column roles
// and restoring bank positions from previously trimmed rows.
func (s *State) load(path string) error {
	lines, err := series.ReadLines(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	hasHeader := columns.DetectHeader(lines, series.DefaultComment)

	ser, info, err := series.Load(path, hasHeader, series.DefaultComment)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	s.mu.RLock()
	prefs := s.Prefs
	opts := s.Opts
	s.mu.RUnlock()

	roles, warnings := columns.Resolve(prefs, ser.ColumnNames())

	doc := &Document{
		Path:      path,
		HasHeader: hasHeader,
		Series:    ser,
		Roles:     roles,
		Banks:     bank.New(),
		Flagged:   info.FlaggedRows,
		Warnings:  warnings,
	}

	if roles.X >= 0 && len(info.FlaggedRows) > 0 {
		left, right, warn := ser.InferBanks(info.FlaggedRows, roles.X)
		if left != nil {
			doc.Banks.Set(bank.Left, left.X, left.Row)
		}
		if right != nil {
			doc.Banks.Set(bank.Right, right.X, right.Row)
		}
		if warn != "" {
			doc.Warnings = append(doc.Warnings, warn)
		}
	}

	// The fix-verticals option acts here, on the freshly read file; nothing
	// mutates chainage later without an explicit action.
	if opts.FixVerticals && roles.X >= 0 {
		if prefs.IsUnsortable(ser.ColumnNames()[roles.X]) {
			doc.Warnings = append(doc.Warnings, "X column is unsortable; verticals left as-is")
		} else {
			ser.FixVerticals(roles.X)
		}
	}

	s.mu.Lock()
	s.Doc = doc
	s.mu.Unlock()

	s.loadCompanion(doc)
	s.recomputeOverlaps()

	for _, w := range doc.Warnings {
		log.Printf("%s: %s", filepath.Base(path), w)
		s.Status(w)
	}

	s.Emit(EventFileOpened, doc)
	s.Emit(EventNavigationChanged, nil)
	return nil
}

// loadCompanion looks among the other open files for the best versioned
// match of the current one and loads its profile for overlay.
func (s *State) loadCompanion(doc *Document) {
	s.mu.Lock()
	s.Companion = nil
	var candidates []string
	for _, f := range s.Nav.Files() {
		if f != doc.Path {
			candidates = append(candidates, f)
		}
	}
	prefs := s.Prefs
	s.mu.Unlock()

	base := navigator.StripVersion(strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path)))
	match, ok := navigator.FindCompanion(base, candidates)
	if !ok {
		return
	}

	lines, err := series.ReadLines(match)
	if err != nil {
		log.Printf("companion %s: %v", match, err)
		return
	}
	hasHeader := columns.DetectHeader(lines, series.DefaultComment)
	ser, _, err := series.Load(match, hasHeader, series.DefaultComment)
	if err != nil {
		log.Printf("companion %s: %v", match, err)
		return
	}
	roles, _ := columns.Resolve(prefs, ser.ColumnNames())
	if roles.X < 0 || roles.Y < 0 {
		return
	}

	s.mu.Lock()
	s.Companion = &Overlay{
		Path: match,
		X:    ser.FloatColumn(roles.X),
		Y:    ser.FloatColumn(roles.Y),
	}
	s.mu.Unlock()
}

// Save writes the current document back to disk per the save options and
// returns the path written. A version-incrementing save joins the new file
// into the navigator.
func (s *State) Save() (string, error) {
	s.mu.RLock()
	doc := s.Doc
	opts := s.Opts
	s.mu.RUnlock()
	if doc == nil {
		return "", fmt.Errorf("no file open")
	}
	if doc.Roles.X < 0 {
		return "", fmt.Errorf("no chainage column resolved; cannot save")
	}

	outPath, err := export.Export(doc.Series, doc.Banks, doc.Roles.X, export.Options{
		Policy:       opts.Policy,
		VersionToken: opts.VersionToken,
		LeftmostZero: opts.LeftmostZero,
	})
	if err != nil {
		return "", err
	}

	if opts.WritePlotFile {
		model := s.PlotModel()
		model.Title = filepath.Base(outPath)
		if err := plotfile.Save(model, plotfile.OutPath(outPath), 1000, 600); err != nil {
			log.Printf("plot file: %v", err)
			s.Status(fmt.Sprintf("plot file not written: %v", err))
		}
	} else if err := plotfile.RemoveStale(outPath); err != nil {
		log.Printf("plot file: %v", err)
	}

	if outPath != doc.Path {
		s.mu.Lock()
		s.Nav.Add(outPath)
		s.mu.Unlock()
		s.Emit(EventNavigationChanged, nil)
	}

	s.SetModified(false)
	s.Emit(EventFileSaved, outPath)
	s.Status("saved " + filepath.Base(outPath))
	return outPath, nil
}

// AutosavePath returns the sidecar path used by autosave.
func AutosavePath(path string) string {
	return path + ".autosave"
}

// Autosave writes an in-place style snapshot next to the current file when
// the document has unsaved edits. Errors are logged, not surfaced.
func (s *State) Autosave() {
	s.mu.RLock()
	doc := s.Doc
	enabled := s.Opts.Autosave
	s.mu.RUnlock()
	if !enabled || doc == nil || !doc.Modified || doc.Roles.X < 0 {
		return
	}

	snapshot := *doc.Series
	snapshot.Path = AutosavePath(doc.Path)
	if _, err := export.Export(&snapshot, doc.Banks, doc.Roles.X, export.Options{Policy: export.InPlace}); err != nil {
		log.Printf("autosave: %v", err)
	}
}

// RemoveAutosave deletes the autosave sidecar for the current file.
func (s *State) RemoveAutosave() {
	s.mu.RLock()
	doc := s.Doc
	s.mu.RUnlock()
	if doc == nil {
		return
	}
	if err := os.Remove(AutosavePath(doc.Path)); err != nil && !os.IsNotExist(err) {
		log.Printf("autosave: %v", err)
	}
}

// StartAutosave runs periodic autosaves until the returned stop function is
// called.
func (s *State) StartAutosave(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Autosave()
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
