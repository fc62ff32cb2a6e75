package columns

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// DetectHeader determines whether a file's first data row is a header by
// comparing the first two non-comment rows: the header is declared present
// iff row one contains strictly more non-numeric cells than row two. Fewer
// than two usable lines means no header (the safe default).
func DetectHeader(lines []string, comment byte) bool {
	var data []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == comment {
			continue
		}
		data = append(data, line)
		if len(data) == 3 {
			break
		}
	}
	if len(data) < 2 {
		return false
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(data, "\n")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return false
	}

	return countNonNumeric(records[0]) > countNonNumeric(records[1])
}

func countNonNumeric(cells []string) int {
	var n int
	for _, c := range cells {
		if _, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err != nil {
			n++
		}
	}
	return n
}
