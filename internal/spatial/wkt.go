package spatial

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"xsection-editor/pkg/geometry"
)

// ReadPolygonWKT reads a file containing a WKT polygon and returns its outer
// ring. Inner rings are ignored.
func ReadPolygonWKT(path string) ([]geometry.Point2D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read polygon %s: %w", path, err)
	}
	return ParsePolygonWKT(string(data))
}

// ParsePolygonWKT parses "POLYGON ((x y, x y, ...))" into the outer ring.
func ParsePolygonWKT(text string) ([]geometry.Point2D, error) {
	text = strings.TrimSpace(text)
	upper := strings.ToUpper(text)
	if !strings.HasPrefix(upper, "POLYGON") {
		return nil, fmt.Errorf("%w: not a POLYGON", ErrInvalidInput)
	}
	body := strings.TrimSpace(text[len("POLYGON"):])

	// Outer ring is the first parenthesized coordinate list.
	open := strings.Index(body, "((")
	if open < 0 {
		return nil, fmt.Errorf("%w: missing ring", ErrInvalidInput)
	}
	rest := body[open+2:]
	close := strings.Index(rest, ")")
	if close < 0 {
		return nil, fmt.Errorf("%w: unterminated ring", ErrInvalidInput)
	}
	ringText := rest[:close]

	var ring []geometry.Point2D
	for _, pair := range strings.Split(ringText, ",") {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: bad coordinate %q", ErrInvalidInput, pair)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		ring = append(ring, geometry.Point2D{X: x, Y: y})
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: ring needs at least 3 points", ErrInvalidInput)
	}
	// Drop the closing point if the ring repeats its start.
	if len(ring) > 3 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring, nil
}
