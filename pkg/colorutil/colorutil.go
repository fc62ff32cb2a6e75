// Package colorutil provides shared color utilities for the cross-section editor.
package colorutil

import (
	"image/color"
	"math"
)

// Common plot colors used throughout the application.
var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue      = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Red       = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	Gray      = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	LightGray = color.RGBA{R: 200, G: 200, B: 200, A: 160}
	LightBlue = color.RGBA{R: 160, G: 210, B: 255, A: 140}
)

// HSVToRGB converts HSV (H 0-360, S and V 0-1) to an opaque RGBA color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

// CategoryPalette returns n visually distinct colors by spacing hues evenly
// around the color wheel. The same n always yields the same colors, so
// categories keep their colors across redraws.
func CategoryPalette(n int) []color.RGBA {
	if n <= 0 {
		return nil
	}
	out := make([]color.RGBA, n)
	for i := 0; i < n; i++ {
		hue := float64(i) * 360.0 / float64(n)
		out[i] = HSVToRGB(hue, 0.75, 0.85)
	}
	return out
}
