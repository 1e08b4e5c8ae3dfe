package video

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidResolution is returned for a resolution that is not a usable "WxH"
var ErrInvalidResolution = errors.New("invalid resolution")

// MaxDimension bounds either side of a resolution
const MaxDimension = 16384

var resolutionPattern = regexp.MustCompile(`^([0-9]+)x([0-9]+)$`)

// Resolution is a parsed "WxH" frame size
type Resolution struct {
	Width  int
	Height int
	raw    string
}

// ParseResolution parses "WxH". The H.264 encoder with yuv420p needs even
// dimensions, so odd sizes are rejected up front.
func ParseResolution(s string) (Resolution, error) {
	m := resolutionPattern.FindStringSubmatch(s)
	if m == nil {
		return Resolution{}, fmt.Errorf("%w: %q (expected WIDTHxHEIGHT, e.g. 1920x1080)", ErrInvalidResolution, s)
	}

	width, err := strconv.Atoi(m[1])
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q: width: %v", ErrInvalidResolution, s, err)
	}
	height, err := strconv.Atoi(m[2])
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q: height: %v", ErrInvalidResolution, s, err)
	}

	switch {
	case width == 0 || height == 0:
		return Resolution{}, fmt.Errorf("%w: %q: dimensions must be positive", ErrInvalidResolution, s)
	case width > MaxDimension || height > MaxDimension:
		return Resolution{}, fmt.Errorf("%w: %q: dimensions must not exceed %d", ErrInvalidResolution, s, MaxDimension)
	case width%2 != 0 || height%2 != 0:
		return Resolution{}, fmt.Errorf("%w: %q: dimensions must be even", ErrInvalidResolution, s)
	}

	return Resolution{Width: width, Height: height, raw: s}, nil
}

// String returns the resolution exactly as it was given
func (r Resolution) String() string {
	if r.raw != "" {
		return r.raw
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
