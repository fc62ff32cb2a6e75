package app

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls a survey file for external modification and triggers a
// callback when a newer copy is detected, so the editor can offer a reload
// instead of silently clobbering someone else's changes on save.
type FileWatcher struct {
	mu            sync.Mutex
	path          string
	baseline      time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onChanged     func(path string)
}

// NewFileWatcher creates a watcher with the given poll interval. Watch a
// file with SetPath; until then the watcher idles.
func NewFileWatcher(checkInterval time.Duration) *FileWatcher {
	return &FileWatcher{
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnChanged sets the callback to invoke when the watched file changes.
// The callback is called from a background goroutine - use appropriate
// synchronization if updating UI.
func (w *FileWatcher) OnChanged(callback func(path string)) {
	w.mu.Lock()
	w.onChanged = callback
	w.mu.Unlock()
}

// SetPath switches the watcher to a new file, taking its current mtime as
// the baseline. An empty path stops watching.
func (w *FileWatcher) SetPath(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.path = path
	w.baseline = time.Time{}
	if path == "" {
		return
	}
	if info, err := os.Stat(path); err == nil {
		w.baseline = info.ModTime()
	}
}

// ResetBaseline updates the baseline to the file's current mod time. Call
// this after the user declines a reload to avoid repeated notifications,
// and after the editor itself writes the file.
func (w *FileWatcher) ResetBaseline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" {
		return
	}
	if info, err := os.Stat(w.path); err == nil {
		w.baseline = info.ModTime()
	}
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

// watchLoop periodically checks whether the file has been modified.
func (w *FileWatcher) watchLoop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if path, changed := w.checkForUpdate(); changed {
				w.mu.Lock()
				cb := w.onChanged
				w.mu.Unlock()
				if cb != nil {
					cb(path)
				}
			}
		}
	}
}

// checkForUpdate returns true once per external modification, advancing the
// baseline so a single edit does not fire repeatedly.
func (w *FileWatcher) checkForUpdate() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" {
		return "", false
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return "", false
	}
	if w.baseline.IsZero() || !info.ModTime().After(w.baseline) {
		return "", false
	}
	w.baseline = info.ModTime()
	return w.path, true
}
