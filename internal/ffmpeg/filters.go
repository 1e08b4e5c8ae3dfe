package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SourceBuilder constructs lavfi source descriptions such as
// color=c=0x000000:size=1920x1080:duration=12.5:r=25
type SourceBuilder struct {
	source string
	params []string
}

// NewColorSource starts a lavfi color source
func NewColorSource() *SourceBuilder {
	return &SourceBuilder{
		source: "color",
		params: make([]string, 0, 4),
	}
}

// Color sets the fill color
func (sb *SourceBuilder) Color(c string) *SourceBuilder {
	if c == "" {
		return sb
	}
	sb.params = append(sb.params, "c="+c)
	return sb
}

// Size sets the frame size as WxH
func (sb *SourceBuilder) Size(size string) *SourceBuilder {
	if size == "" {
		return sb
	}
	sb.params = append(sb.params, "size="+size)
	return sb
}

// Duration bounds the source, rounded up to the millisecond so the video
// never ends before the audio
func (sb *SourceBuilder) Duration(d time.Duration) *SourceBuilder {
	if d <= 0 {
		return sb
	}
	sb.params = append(sb.params, "duration="+FormatSeconds(d))
	return sb
}

// Rate sets the frame rate
func (sb *SourceBuilder) Rate(fps int) *SourceBuilder {
	if fps <= 0 {
		return sb
	}
	sb.params = append(sb.params, fmt.Sprintf("r=%d", fps))
	return sb
}

// Build returns the complete source string
func (sb *SourceBuilder) Build() string {
	if len(sb.params) == 0 {
		return sb.source
	}
	return sb.source + "=" + strings.Join(sb.params, ":")
}

// FormatSeconds renders d as seconds with millisecond precision, rounding up
func FormatSeconds(d time.Duration) string {
	ms := math.Ceil(float64(d) / float64(time.Millisecond))
	return strconv.FormatFloat(ms/1000, 'f', -1, 64)
}
