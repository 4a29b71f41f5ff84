package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrColorRange = errors.New("color channel out of range")

// Color is an opaque RGB colour with 8-bit channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// RGB builds a colour from 0-255 channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// RGBInt builds a colour from int channels, rejecting anything outside 0-255.
func RGBInt(r, g, b int) (Color, error) {
	for _, ch := range [3]int{r, g, b} {
		if ch < 0 || ch > 255 {
			return Color{}, fmt.Errorf("%w: %d", ErrColorRange, ch)
		}
	}
	return Color{uint8(r), uint8(g), uint8(b)}, nil
}

// FromFloat builds a colour from normalized 0.0-1.0 channels.
func FromFloat(r, g, b float64) (Color, error) {
	var out [3]uint8
	for i, ch := range [3]float64{r, g, b} {
		if !finite(ch) || ch < 0 || ch > 1 {
			return Color{}, fmt.Errorf("%w: %v", ErrColorRange, ch)
		}
		out[i] = uint8(ch*255 + 0.5)
	}
	return Color{out[0], out[1], out[2]}, nil
}

// Float returns the normalized channels.
func (c Color) Float() (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// Hex formats the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
