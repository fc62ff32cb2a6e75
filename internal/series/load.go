package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultComment is the marker character that flags comment and inactive
// lines in section files.
const DefaultComment = '!'

// flagPrefix matches the inactive-row marker at the start of a line or cell,
// eg "!# ", "! " or "#".
var flagPrefix = regexp.MustCompile(`^\s*[!#]{1,2}\s*`)

// ErrEmpty is returned when a file contains no usable data rows.
var ErrEmpty = errors.New("file contains no data rows")

// LoadInfo reports what Load observed beyond the table itself.
type LoadInfo struct {
	// FlaggedRows are indices of rows that were marked inactive in the
	// file (comment-prefixed data lines). The rows themselves are kept in
	// the series with the prefix stripped, so a previously trimmed file
	// reopens with its points intact.
	FlaggedRows []int
}

// Load parses a cross-section CSV file. Lines whose first non-space
// character is the comment marker are either preamble comments (dropped) or
// flagged inactive data rows (kept, recorded in LoadInfo); the two are told
// apart by whether the line still parses to the table's field count after
// the marker prefix is stripped.
func Load(path string, hasHeader bool, comment byte) (*Series, *LoadInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	lines := splitLines(string(raw))

	// Field count comes from the first unflagged line (header or data).
	ncols := -1
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == comment {
			continue
		}
		fields, err := parseCSVLine(line)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed line in %s: %w", path, err)
		}
		ncols = len(fields)
		break
	}
	if ncols < 0 {
		return nil, nil, ErrEmpty
	}

	var (
		records [][]string
		flagged []bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed[0] == comment {
			stripped := flagPrefix.ReplaceAllString(line, "")
			fields, err := parseCSVLine(stripped)
			if err != nil || len(fields) != ncols {
				continue // preamble comment
			}
			records = append(records, fields)
			flagged = append(flagged, true)
			continue
		}
		fields, err := parseCSVLine(line)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed line in %s: %w", path, err)
		}
		if len(fields) != ncols {
			return nil, nil, fmt.Errorf("inconsistent field count in %s", path)
		}
		records = append(records, fields)
		flagged = append(flagged, false)
	}

	var header []string
	if hasHeader {
		// The header is the first unflagged record.
		for i, f := range flagged {
			if !f {
				header = records[i]
				records = append(records[:i], records[i+1:]...)
				flagged = append(flagged[:i], flagged[i+1:]...)
				break
			}
		}
	}
	if len(records) == 0 {
		return nil, nil, ErrEmpty
	}

	s := &Series{
		Path:      path,
		HasHeader: hasHeader,
		Comment:   comment,
		Columns:   make([]*Column, ncols),
		nrows:     len(records),
	}
	for c := 0; c < ncols; c++ {
		name := strconv.Itoa(c)
		if hasHeader {
			name = strings.TrimSpace(header[c])
		}
		cells := make([]string, len(records))
		for r, rec := range records {
			cells[r] = strings.TrimSpace(rec[c])
		}
		s.Columns[c] = buildColumn(name, cells)
	}

	info := &LoadInfo{}
	for i, f := range flagged {
		if f {
			info.FlaggedRows = append(info.FlaggedRows, i)
		}
	}
	return s, info, nil
}

// buildColumn infers the column dtype from its raw cells and converts them
// to typed values. Empty cells become null and do not influence inference.
func buildColumn(name string, raw []string) *Column {
	allInt, allFloat, allBool := true, true, true
	seen := false
	for _, cell := range raw {
		if cell == "" {
			continue
		}
		seen = true
		if _, err := strconv.Atoi(cell); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
		}
		if _, err := strconv.ParseBool(strings.ToLower(cell)); err != nil {
			allBool = false
		}
	}

	dtype := DtypeString
	switch {
	case !seen:
		dtype = DtypeString
	case allInt:
		dtype = DtypeInt
	case allFloat:
		dtype = DtypeFloat
	case allBool:
		dtype = DtypeBool
	}

	cells := make([]interface{}, len(raw))
	for i, cell := range raw {
		if cell == "" {
			cells[i] = nil
			continue
		}
		switch dtype {
		case DtypeInt:
			n, _ := strconv.Atoi(cell)
			cells[i] = n
		case DtypeFloat:
			f, _ := strconv.ParseFloat(cell, 64)
			cells[i] = f
		case DtypeBool:
			b, _ := strconv.ParseBool(strings.ToLower(cell))
			cells[i] = b
		default:
			cells[i] = cell
		}
	}
	return &Column{Name: name, Dtype: dtype, Cells: cells}
}

// ReadLines returns the file's lines for header detection.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return splitLines(string(raw)), nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func parseCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	return r.Read()
}

// BankHint is a bank position inferred from a file's inactive-row flags.
type BankHint struct {
	X   float64
	Row int
}

// InferBanks derives initial bank positions from the inactive rows found at
// load time: inactive rows strictly before the first active row put the left
// bank on the first active row, and symmetrically for the right bank. A file
// with inactive rows inside the active range (more than a leading and a
// trailing run) is not safely invertible; both banks stay absent and a
// warning is returned.
func (s *Series) InferBanks(flagged []int, xcol int) (left, right *BankHint, warning string) {
	if len(flagged) == 0 || xcol < 0 {
		return nil, nil, ""
	}

	inactive := make(map[int]bool, len(flagged))
	for _, i := range flagged {
		inactive[i] = true
	}

	firstActive, lastActive := -1, -1
	for i := 0; i < s.nrows; i++ {
		if !inactive[i] {
			if firstActive < 0 {
				firstActive = i
			}
			lastActive = i
		}
	}
	if firstActive < 0 {
		return nil, nil, "file has no active rows"
	}

	for i := firstActive; i <= lastActive; i++ {
		if inactive[i] {
			return nil, nil, "inactive rows inside the active range; bank positions not restored"
		}
	}

	if firstActive > 0 {
		if x, ok := s.Float(firstActive, xcol); ok {
			left = &BankHint{X: x, Row: firstActive}
		}
	}
	if lastActive < s.nrows-1 {
		if x, ok := s.Float(lastActive, xcol); ok {
			right = &BankHint{X: x, Row: lastActive}
		}
	}
	return left, right, ""
}
