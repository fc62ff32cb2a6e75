// Command xsecttrim trims survey files without the GUI: it loads each file,
// places banks at the given chainages, and writes the flagged result.
package main

import (
	"flag"
	"fmt"
	"os"

	"xsection-editor/internal/bank"
	"xsection-editor/internal/columns"
	"xsection-editor/internal/export"
	"xsection-editor/internal/series"
)

func main() {
	left := flag.Float64("left", 0, "Left bank chainage")
	right := flag.Float64("right", 0, "Right bank chainage")
	hasLeft := flag.Bool("L", false, "Apply the left bank")
	hasRight := flag.Bool("R", false, "Apply the right bank")
	interpolate := flag.Bool("interp", false, "Insert interpolated rows at bank chainages")
	inPlace := flag.Bool("w", false, "Overwrite input files instead of writing a new version")
	token := flag.String("token", export.DefaultVersionToken, "Version token for new files")
	leftmostZero := flag.Bool("zero", false, "Translate X so its minimum is zero")
	fixVerticals := flag.Bool("fixverticals", false, "Nudge non-increasing X values apart")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("Usage: xsecttrim [-L -left <x>] [-R -right <x>] [-interp] [-w] <file.csv>...")
		os.Exit(1)
	}
	if !*hasLeft && !*hasRight {
		fmt.Fprintln(os.Stderr, "nothing to do: give -L and/or -R")
		os.Exit(1)
	}

	prefs := columns.DefaultPreferences()
	failed := false
	for _, path := range flag.Args() {
		out, err := trim(path, prefs, trimSpec{
			left: *left, right: *right,
			hasLeft: *hasLeft, hasRight: *hasRight,
			interpolate:  *interpolate,
			inPlace:      *inPlace,
			token:        *token,
			leftmostZero: *leftmostZero,
			fixVerticals: *fixVerticals,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("%s -> %s\n", path, out)
	}
	if failed {
		os.Exit(1)
	}
}

type trimSpec struct {
	left, right       float64
	hasLeft, hasRight bool
	interpolate       bool
	inPlace           bool
	token             string
	leftmostZero      bool
	fixVerticals      bool
}

func trim(path string, prefs columns.Preferences, spec trimSpec) (string, error) {
	lines, err := series.ReadLines(path)
	if err != nil {
		return "", err
	}
	hasHeader := columns.DetectHeader(lines, series.DefaultComment)

	s, _, err := series.Load(path, hasHeader, series.DefaultComment)
	if err != nil {
		return "", err
	}

	roles, warnings := columns.Resolve(prefs, s.ColumnNames())
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, w)
	}
	if roles.X < 0 {
		return "", fmt.Errorf("no chainage column found")
	}

	if spec.fixVerticals {
		if prefs.IsUnsortable(s.ColumnNames()[roles.X]) {
			fmt.Fprintf(os.Stderr, "%s: X column is unsortable; verticals left as-is\n", path)
		} else {
			s.FixVerticals(roles.X)
		}
	}

	banks := bank.New()
	if spec.hasLeft {
		if err := place(s, banks, bank.Left, spec.left, roles.X, spec.interpolate); err != nil {
			return "", err
		}
	}
	if spec.hasRight {
		if err := place(s, banks, bank.Right, spec.right, roles.X, spec.interpolate); err != nil {
			return "", err
		}
	}

	opts := export.Options{
		Policy:       export.IncrementVersion,
		VersionToken: spec.token,
		LeftmostZero: spec.leftmostZero,
	}
	if spec.inPlace {
		opts.Policy = export.InPlace
	}
	return export.Export(s, banks, roles.X, opts)
}

// place puts a bank at chainage x, on the exact survey point when one exists
// there, otherwise interpolating when allowed.
func place(s *series.Series, banks *bank.State, side bank.Side, x float64, xcol int, interpolate bool) error {
	for r := 0; r < s.NumRows(); r++ {
		if v, ok := s.Float(r, xcol); ok && v == x {
			banks.Set(side, x, r)
			return nil
		}
	}
	if !interpolate {
		// No exact point; the band boundary still works without a row.
		banks.Set(side, x, -1)
		return nil
	}
	pos, err := s.InsertInterpolated(x, xcol)
	if err != nil {
		return fmt.Errorf("%s bank at %g: %w", side, x, err)
	}
	banks.ShiftAfterInsert(pos)
	banks.SetInterpolated(side, x, pos)
	return nil
}
