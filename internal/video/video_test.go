package video

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupColor(t *testing.T) {
	want := map[string]string{
		"black":   "0x000000",
		"white":   "0xFFFFFF",
		"red":     "0xFF0000",
		"green":   "0x008000",
		"blue":    "0x0000FF",
		"yellow":  "0xFFFF00",
		"cyan":    "0x00FFFF",
		"magenta": "0xFF00FF",
		"gray":    "0x808080",
		"grey":    "0x808080",
	}

	require.Len(t, ColorNames(), len(want))
	for _, name := range ColorNames() {
		c, err := LookupColor(name)
		require.NoError(t, err, name)
		assert.Equal(t, want[name], c.Encoding, name)
		assert.Equal(t, name, c.Name)
	}
}

func TestLookupColorNormalizesName(t *testing.T) {
	c, err := LookupColor("  White ")
	require.NoError(t, err)
	assert.Equal(t, "white", c.Name)
}

func TestLookupColorUnknown(t *testing.T) {
	for _, name := range []string{"", "purple", "0xFF0000", "#000000", "bl ack"} {
		_, err := LookupColor(name)
		assert.ErrorIs(t, err, ErrUnknownColor, name)
	}
}

func TestColorNamesOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"black", "white", "red", "green", "blue", "yellow", "cyan", "magenta", "gray", "grey"},
		ColorNames())
}

func TestParseResolutionPassThrough(t *testing.T) {
	cases := []struct {
		in     string
		width  int
		height int
	}{
		{"1920x1080", 1920, 1080},
		{"1280x720", 1280, 720},
		{"640x360", 640, 360},
		{"2x2", 2, 2},
		{"0640x0360", 640, 360},
		{fmt.Sprintf("%dx%d", MaxDimension, MaxDimension), MaxDimension, MaxDimension},
	}
	for _, tc := range cases {
		r, err := ParseResolution(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.width, r.Width, tc.in)
		assert.Equal(t, tc.height, r.Height, tc.in)
		assert.Equal(t, tc.in, r.String())
	}
}

func TestParseResolutionRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"1920",
		"1920x",
		"x1080",
		"1920X1080",
		"1920*1080",
		" 1920x1080",
		"1920x1080 ",
		"-1920x1080",
		"1920.0x1080",
		"0x1080",
		"1920x0",
		"1921x1080",
		"1920x1081",
		"16386x1080",
		"abcxdef",
	} {
		_, err := ParseResolution(in)
		assert.ErrorIs(t, err, ErrInvalidResolution, in)
	}
}

func TestResolutionStringWithoutRaw(t *testing.T) {
	assert.Equal(t, "1280x720", Resolution{Width: 1280, Height: 720}.String())
}
