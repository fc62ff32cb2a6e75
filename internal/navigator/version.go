package navigator

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const csvSuffix = ".csv"

var versionSuffix = regexp.MustCompile(`_v\d+`)

// StripVersion removes any "_vNN" token from a file's base name (without
// extension), yielding the versionless section name.
func StripVersion(name string) string {
	return versionSuffix.ReplaceAllString(name, "")
}

// ExtractVersion parses the version of a file name: the digits after the
// last "_v" marker, with dot-separated components compared numerically.
// A missing or unparseable version ranks lowest (nil).
func ExtractVersion(path string) []int {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(name, "_v")
	if idx < 0 {
		return nil
	}
	tail := name[idx+2:]
	if tail == "" {
		return nil
	}
	parts := strings.Split(tail, ".")
	version := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		version = append(version, n)
	}
	return version
}

// compareVersions orders versions numerically component by component. A nil
// version ranks below any parsed version.
func compareVersions(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// FindCompanion returns the highest-versioned CSV among candidates whose
// base name starts with base. Versions compare numerically, so a_v10.csv
// outranks a_v2.csv.
func FindCompanion(base string, candidates []string) (string, bool) {
	var (
		best        string
		bestVersion []int
		found       bool
	)
	for _, c := range candidates {
		if !strings.HasSuffix(c, csvSuffix) {
			continue
		}
		if !strings.HasPrefix(filepath.Base(c), base) {
			continue
		}
		v := ExtractVersion(c)
		if !found || compareVersions(v, bestVersion) > 0 {
			best, bestVersion, found = c, v, true
		}
	}
	return best, found
}
