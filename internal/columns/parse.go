package columns

import (
	"strconv"
	"strings"
)

// ParseList parses a comma-separated preference list as entered in the
// column settings dialog, eg "x, x (m), chainage, 0". A bare integer entry
// is a positional index; anything else is a case-insensitive column name.
// Empty entries are skipped, so "" yields an empty list.
func ParseList(text string) []Pref {
	var prefs []Pref
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i, err := strconv.Atoi(part); err == nil {
			prefs = append(prefs, IndexPref(i))
		} else {
			prefs = append(prefs, NamePref(part))
		}
	}
	return prefs
}

// FormatList renders a preference list back into dialog/preference text.
func FormatList(prefs []Pref) string {
	parts := make([]string, len(prefs))
	for i, p := range prefs {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
