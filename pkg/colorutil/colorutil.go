// Package colorutil provides shared color utilities for the star chart.
package colorutil

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Chart colors used throughout the application.
var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Star      = color.RGBA{R: 252, G: 252, B: 252, A: 255} // neutral star fill
	Glow      = color.RGBA{R: 145, G: 71, B: 204, A: 255}  // accent glow
	Highlight = color.RGBA{R: 243, G: 240, B: 247, A: 255} // highlighted group glow
	Sky       = color.RGBA{R: 0x12, G: 0x10, B: 0x1c, A: 255}
	Grid      = color.RGBA{R: 0x6e, G: 0x5a, B: 0x8c, A: 255}
)

// ParseCSS parses the color notations found in dataset files:
// "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and "rgba(r, g, b, a)"
// where a is in [0,1].
func ParseCSS(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return color.RGBA{}, errors.Newf("unsupported color %q", s)
}

// ParseCSSOr parses s, returning fallback when s is empty or malformed.
func ParseCSSOr(s string, fallback color.RGBA) color.RGBA {
	if s == "" {
		return fallback
	}
	c, err := ParseCSS(s)
	if err != nil {
		return fallback
	}
	return c
}

func parseHex(h string) (color.RGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, errors.Newf("bad hex color length %d", len(h))
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Wrap(err, "parse hex color")
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseFunc(args string, n int) (color.RGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return color.RGBA{}, errors.Newf("expected %d color components, got %d", n, len(parts))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return color.RGBA{}, errors.Wrapf(err, "color component %d", i)
		}
		ch[i] = uint8(clamp(float64(v), 0, 255))
	}
	alpha := uint8(255)
	if n == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.RGBA{}, errors.Wrap(err, "alpha component")
		}
		alpha = uint8(clamp(a, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// WithAlpha returns c with its alpha replaced by a (0-1), non-premultiplied.
func WithAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(clamp(a, 0, 1)*255 + 0.5)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
