// Package navigator maintains the ordered set of loaded section files, the
// current position within it, and version-aware matching of companion files
// for overlay comparison.
package navigator

import "path/filepath"

// Navigator is the ordered file list plus the current position. Position -1
// means nothing is selected.
type Navigator struct {
	files []string
	pos   int
}

// New creates an empty navigator.
func New() *Navigator {
	return &Navigator{pos: -1}
}

// Add appends paths that are not already present, preserving order.
func (n *Navigator) Add(paths ...string) {
	existing := make(map[string]bool, len(n.files))
	for _, f := range n.files {
		existing[f] = true
	}
	for _, p := range paths {
		if !existing[p] {
			n.files = append(n.files, p)
			existing[p] = true
		}
	}
}

// Files returns the ordered file list.
func (n *Navigator) Files() []string {
	return n.files
}

// Labels returns display names: the base name, or the full path when the
// base name collides with another loaded file.
func (n *Navigator) Labels() []string {
	counts := make(map[string]int, len(n.files))
	for _, f := range n.files {
		counts[filepath.Base(f)]++
	}
	labels := make([]string, len(n.files))
	for i, f := range n.files {
		base := filepath.Base(f)
		if counts[base] > 1 {
			labels[i] = f
		} else {
			labels[i] = base
		}
	}
	return labels
}

// Len returns the number of loaded files.
func (n *Navigator) Len() int { return len(n.files) }

// Position returns the current index, -1 when nothing is selected.
func (n *Navigator) Position() int { return n.pos }

// Current returns the selected path.
func (n *Navigator) Current() (string, bool) {
	if n.pos < 0 || n.pos >= len(n.files) {
		return "", false
	}
	return n.files[n.pos], true
}

// Select moves to the given index.
func (n *Navigator) Select(i int) (string, bool) {
	if i < 0 || i >= len(n.files) {
		return "", false
	}
	n.pos = i
	return n.files[i], true
}

// Next steps forward without wraparound.
func (n *Navigator) Next() (string, bool) {
	if n.pos+1 >= len(n.files) {
		return "", false
	}
	n.pos++
	return n.files[n.pos], true
}

// Previous steps backward without wraparound.
func (n *Navigator) Previous() (string, bool) {
	if n.pos <= 0 || len(n.files) == 0 {
		return "", false
	}
	n.pos--
	return n.files[n.pos], true
}

// CloseAll drops the file list and resets the position.
func (n *Navigator) CloseAll() {
	n.files = nil
	n.pos = -1
}
