// Package export rewrites the current point series back to disk, flagging
// rows outside the banks with the file's comment convention.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/navigator"
	"xsection-editor/internal/series"
)

// TrimColumn is the name of the flag column prepended on export.
const TrimColumn = "Trim"

// FlagToken marks a trimmed (inactive) row in the Trim column. Because it
// leads the line, a reloaded file sees the row as comment-flagged.
const FlagToken = "!# "

// DefaultVersionToken is the suffix appended by IncrementVersion when the
// user has not configured one.
const DefaultVersionToken = "v02"

// Policy selects how the output file name is derived.
type Policy int

const (
	// IncrementVersion strips any existing _vNN suffix from the base name
	// and appends the configured version token.
	IncrementVersion Policy = iota
	// InPlace overwrites the original path.
	InPlace
)

// Options configures an export.
type Options struct {
	Policy       Policy
	VersionToken string // eg "v02", used by IncrementVersion
	LeftmostZero bool   // write X translated so its minimum is zero
}

// OutPath computes the output path for the given input path and policy.
func OutPath(inputPath string, opts Options) string {
	if opts.Policy == InPlace {
		return inputPath
	}
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	base = navigator.StripVersion(base)
	return filepath.Join(dir, base+"_"+opts.VersionToken+ext)
}

// Export writes the series with a leading Trim flag column: every row whose
// X lies outside the banks carries the flag token. Column order and row
// order are preserved and a header is always written. The in-memory series
// is not modified, so a failed write loses nothing.
func Export(s *series.Series, banks *bank.State, xcol int, opts Options) (string, error) {
	outPath := OutPath(s.Path, opts)

	outside := make(map[int]bool)
	for _, i := range s.OutsideBand(banks.X(bank.Left), banks.X(bank.Right), xcol) {
		outside[i] = true
	}

	// Reuse an existing Trim column rather than stacking a second one when
	// re-exporting a previously trimmed file.
	trimCol := -1
	for i, c := range s.Columns {
		if c.Name == TrimColumn {
			trimCol = i
			break
		}
	}

	var xoffset float64
	if opts.LeftmostZero && xcol >= 0 {
		xoffset = minX(s, xcol)
	}

	header := []string{TrimColumn}
	for i, c := range s.Columns {
		if i == trimCol {
			continue
		}
		header = append(header, c.Name)
	}

	rows := make([][]string, 0, s.NumRows())
	for r := 0; r < s.NumRows(); r++ {
		row := make([]string, 0, len(header))
		if outside[r] {
			row = append(row, FlagToken)
		} else {
			row = append(row, "")
		}
		for c := range s.Columns {
			if c == trimCol {
				continue
			}
			row = append(row, cellText(s, r, c, xcol, xoffset))
		}
		rows = append(rows, row)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

// cellText renders one cell for output, stripping any stale inactive-flag
// prefix from first-column text and applying the leftmost-zero translation
// to the X column.
func cellText(s *series.Series, row, col, xcol int, xoffset float64) string {
	if xoffset != 0 && col == xcol {
		if x, ok := s.Float(row, col); ok {
			return strconv.FormatFloat(x-xoffset, 'g', -1, 64)
		}
	}
	text := s.CellString(row, col)
	if col == 0 {
		text = StripFlag(text)
	}
	return text
}

// StripFlag removes a leading inactive-row marker ("!", "#", "!# " ...)
// from a cell's text.
func StripFlag(text string) string {
	trimmed := strings.TrimLeft(text, " \t")
	i := 0
	for i < len(trimmed) && i < 2 && (trimmed[i] == '!' || trimmed[i] == '#') {
		i++
	}
	if i == 0 {
		return text
	}
	return strings.TrimLeft(trimmed[i:], " \t")
}

func minX(s *series.Series, xcol int) float64 {
	min, found := 0.0, false
	for r := 0; r < s.NumRows(); r++ {
		if x, ok := s.Float(r, xcol); ok {
			if !found || x < min {
				min, found = x, true
			}
		}
	}
	return min
}
