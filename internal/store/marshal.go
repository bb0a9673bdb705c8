package store

import (
	"fmt"

	"github.com/roach88/choreo/internal/color"
)

// marshalColor stores a color as "#rrggbb" TEXT.
func marshalColor(c color.Color) string {
	return c.Hex()
}

// unmarshalColor parses a stored color.
func unmarshalColor(s string) (color.Color, error) {
	c, err := color.Parse(s)
	if err != nil {
		return color.Color{}, fmt.Errorf("unmarshal color: %w", err)
	}
	return c, nil
}

// boolToInt converts a bool to SQLite INTEGER 0/1.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
