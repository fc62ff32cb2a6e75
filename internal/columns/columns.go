// Package columns resolves raw CSV column headers to the semantic roles the
// editor cares about (X, Y, roughness N, easting, northing).
package columns

import (
	"strconv"
	"strings"
)

// Pref is one entry of an ordered preference list: either a case-insensitive
// column name or a zero-based positional index.
type Pref struct {
	Name    string
	Index   int
	IsIndex bool
}

// NamePref creates a name-based preference.
func NamePref(name string) Pref {
	return Pref{Name: name}
}

// IndexPref creates a position-based preference.
func IndexPref(i int) Pref {
	return Pref{Index: i, IsIndex: true}
}

// String returns the preference as the user would write it.
func (p Pref) String() string {
	if p.IsIndex {
		return strconv.Itoa(p.Index)
	}
	return p.Name
}

// Preferences holds the ordered preference lists for every column role.
// It is an explicit configuration object passed to resolution, so different
// sessions (or tests) can use independent preference sets.
type Preferences struct {
	X           []Pref
	Y           []Pref
	N           []Pref
	UnsortableX []Pref
	Easting     []Pref
	Northing    []Pref
}

// DefaultPreferences returns the stock preference lists.
func DefaultPreferences() Preferences {
	return Preferences{
		X:           []Pref{NamePref("x"), NamePref("x (m)"), NamePref("chainage"), NamePref("w"), IndexPref(0)},
		Y:           []Pref{NamePref("y"), NamePref("z"), NamePref("h"), IndexPref(1)},
		N:           []Pref{NamePref("n"), NamePref("m"), NamePref("Mannings n")},
		UnsortableX: []Pref{NamePref("w")},
		Easting:     []Pref{NamePref("easting")},
		Northing:    []Pref{NamePref("northing")},
	}
}

// Match iterates the preference list in order and returns the index of the
// first matching column. Integer preferences bind positionally when in range;
// name preferences bind by case-insensitive exact name. First match wins.
func Match(prefs []Pref, cols []string) (int, bool) {
	for _, pref := range prefs {
		if pref.IsIndex {
			if pref.Index >= 0 && pref.Index < len(cols) {
				return pref.Index, true
			}
			continue
		}
		want := strings.ToLower(pref.Name)
		for i, c := range cols {
			if strings.ToLower(c) == want {
				return i, true
			}
		}
	}
	return 0, false
}

// Roles is the result of resolving the X, Y and N roles against a column set.
// An unresolved role is -1.
type Roles struct {
	X int
	Y int
	N int
}

// Resolve matches the X, Y and N roles independently. Missing X or Y is a
// hard warning (the file still loads, dependent operations degrade to
// no-ops); missing N is a soft notice since roughness is optional.
func Resolve(prefs Preferences, cols []string) (Roles, []string) {
	r := Roles{X: -1, Y: -1, N: -1}
	var warnings []string

	if i, ok := Match(prefs.X, cols); ok {
		r.X = i
	} else {
		warnings = append(warnings, "no X column from preferences matches datafile: "+formatPrefs(prefs.X))
	}
	if i, ok := Match(prefs.Y, cols); ok {
		r.Y = i
	} else {
		warnings = append(warnings, "no Y column from preferences matches datafile: "+formatPrefs(prefs.Y))
	}
	if i, ok := Match(prefs.N, cols); ok {
		r.N = i
	}

	return r, warnings
}

// IsUnsortable reports whether the named X column belongs to the unsortable
// preference set (eg "W" in HW tables), in which case vertical fixing must
// be skipped.
func (p Preferences) IsUnsortable(colName string) bool {
	for _, pref := range p.UnsortableX {
		if !pref.IsIndex && strings.EqualFold(pref.Name, colName) {
			return true
		}
	}
	return false
}

func formatPrefs(prefs []Pref) string {
	parts := make([]string, len(prefs))
	for i, p := range prefs {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
