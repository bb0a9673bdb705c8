// Package color defines the RGB value emitted by the sequencing engine.
//
// A Color is three independent 8-bit linear channels. Interpolation is
// computed per channel and rounded to the nearest integer, so Lerp(a, b, 0)
// is exactly a and Lerp(a, b, 1) is exactly b.
package color

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Color is an RGB triple with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// Predefined colors.
var (
	Black   = Color{0x00, 0x00, 0x00}
	White   = Color{0xFF, 0xFF, 0xFF}
	Red     = Color{0xFF, 0x00, 0x00}
	Green   = Color{0x00, 0xFF, 0x00}
	Blue    = Color{0x00, 0x00, 0xFF}
	Yellow  = Color{0xFF, 0xFF, 0x00}
	Cyan    = Color{0x00, 0xFF, 0xFF}
	Magenta = Color{0xFF, 0x00, 0xFF}
	Orange  = Color{0xFF, 0xA5, 0x00}
	Purple  = Color{0x80, 0x00, 0x80}
)

// palette maps folded names to predefined colors.
var palette = map[string]Color{
	"black":   Black,
	"white":   White,
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"orange":  Orange,
	"purple":  Purple,
}

// Lerp linearly interpolates from a to b.
//
// t is clamped to [0, 1]; NaN is treated as 0. Each channel is rounded
// independently.
func Lerp(a, b Color, t float64) Color {
	if math.IsNaN(t) || t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Color{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(v))
}

// Named returns the predefined color with the given name.
// Lookup is case-insensitive and Unicode-normalized.
func Named(name string) (Color, bool) {
	c, ok := palette[foldName(name)]
	return c, ok
}

// Names returns the palette names in a stable order.
func Names() []string {
	return []string{"black", "white", "red", "green", "blue", "yellow", "cyan", "magenta", "orange", "purple"}
}

// Parse accepts either a palette name ("WHITE") or a hex string
// ("#ff8800" or "#f80").
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if c, ok := Named(s); ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("invalid hex color %q: want #rgb or #rrggbb", s)
	}
	hc, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := hc.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// MarshalText encodes the color as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText accepts anything Parse does.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// foldName canonicalizes a palette name. A Caser is stateful, so one is
// created per call.
func foldName(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}
