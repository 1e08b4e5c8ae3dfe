package video

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColor is returned for a background color outside the color table
var ErrUnknownColor = errors.New("unknown color")

// Color is a named background color and the value handed to the lavfi color source
type Color struct {
	Name     string
	Encoding string
}

// colorTable lists the supported colors in display order. Encodings are the
// values ffmpeg itself assigns to these names.
var colorTable = []Color{
	{Name: "black", Encoding: "0x000000"},
	{Name: "white", Encoding: "0xFFFFFF"},
	{Name: "red", Encoding: "0xFF0000"},
	{Name: "green", Encoding: "0x008000"},
	{Name: "blue", Encoding: "0x0000FF"},
	{Name: "yellow", Encoding: "0xFFFF00"},
	{Name: "cyan", Encoding: "0x00FFFF"},
	{Name: "magenta", Encoding: "0xFF00FF"},
	{Name: "gray", Encoding: "0x808080"},
	{Name: "grey", Encoding: "0x808080"},
}

// LookupColor resolves a color name to its table entry
func LookupColor(name string) (Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range colorTable {
		if c.Name == key {
			return c, nil
		}
	}
	return Color{}, fmt.Errorf("%w: %q (run --list-colors for the supported names)", ErrUnknownColor, name)
}

// ColorNames returns the supported color names
func ColorNames() []string {
	names := make([]string, len(colorTable))
	for i, c := range colorTable {
		names[i] = c.Name
	}
	return names
}
