// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"sync"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/columns"
	"xsection-editor/internal/export"
	"xsection-editor/internal/navigator"
	"xsection-editor/internal/series"
	"xsection-editor/internal/spatial"
	"xsection-editor/pkg/geometry"
)

// Document is one open survey file: its parsed series plus the editing state
// layered on top of it.
type Document struct {
	Path      string
	HasHeader bool
	Series    *series.Series
	Roles     columns.Roles
	Banks     *bank.State
	Flagged   []int
	Warnings  []string
	Modified  bool
}

// Overlay is a companion section loaded for comparison against the current one.
type Overlay struct {
	Path string
	X    []float64
	Y    []float64
}

// Options holds the editing toggles applied when surveys are saved.
type Options struct {
	FixVerticals  bool
	LeftmostZero  bool
	WritePlotFile bool
	Autosave      bool
	Policy        export.Policy
	VersionToken  string
}

// DefaultOptions returns the save options used for a fresh session.
func DefaultOptions() Options {
	return Options{
		WritePlotFile: true,
		Policy:        export.IncrementVersion,
		VersionToken:  export.DefaultVersionToken,
	}
}

// State holds the application state including open files, the current
// document, and settings.
type State struct {
	mu sync.RWMutex

	// Open files and the current position among them.
	Nav *navigator.Navigator

	// Current document, nil when nothing is open.
	Doc *Document

	// Companion section overlaid on the plot, nil when none matches.
	Companion *Overlay

	// Column role preferences used when opening files.
	Prefs columns.Preferences

	// Save options.
	Opts Options

	// Spatial collaborator and the polygon loaded for overlap marking.
	Spatial  spatial.Service
	Polygon  []geometry.Point2D
	Overlaps []spatial.Overlap

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventFileOpened EventType = iota
	EventFileSaved
	EventSeriesChanged
	EventBanksChanged
	EventRolesChanged
	EventNavigationChanged
	EventOverlapsChanged
	EventModified
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		Nav:       navigator.New(),
		Prefs:     columns.DefaultPreferences(),
		Opts:      DefaultOptions(),
		Spatial:   spatial.NewGeomService(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Status pushes a transient message for the status bar.
func (s *State) Status(msg string) {
	s.Emit(EventStatus, msg)
}

// SetModified marks the current document as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	if s.Doc != nil {
		s.Doc.Modified = modified
	}
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// IsModified reports whether the current document has unsaved edits.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Doc != nil && s.Doc.Modified
}

// SetOptions replaces the save options.
func (s *State) SetOptions(opts Options) {
	s.mu.Lock()
	s.Opts = opts
	s.mu.Unlock()
}

// SetPreferences replaces the column role preferences. Open documents keep
// their resolved roles until reloaded.
func (s *State) SetPreferences(p columns.Preferences) {
	s.mu.Lock()
	s.Prefs = p
	s.mu.Unlock()
}
