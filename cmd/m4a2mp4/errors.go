package main

import (
	"errors"
	"strings"

	"github.com/keagan/m4a2mp4/internal/convert"
	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/video"
)

const installHint = `Please install FFmpeg: https://ffmpeg.org/download.html
  On macOS: brew install ffmpeg
  On Ubuntu/Debian: sudo apt install ffmpeg
  On Windows: download from https://ffmpeg.org/download.html
Or point M4A2MP4_FFMPEG / M4A2MP4_FFPROBE at the binaries.`

// describeError turns an error into the message printed before exiting
func describeError(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")

	switch {
	case errors.Is(err, ffmpeg.ErrNotFound):
		b.WriteString("FFmpeg is not installed or not available in PATH (")
		b.WriteString(err.Error())
		b.WriteString(").\n")
		b.WriteString(installHint)
	case errors.Is(err, video.ErrUnknownColor):
		b.WriteString(err.Error())
	case errors.Is(err, video.ErrInvalidResolution):
		b.WriteString(err.Error())
	case errors.Is(err, convert.ErrInputNotFound):
		b.WriteString(err.Error())
	case errors.Is(err, convert.ErrSynthesis):
		b.WriteString(err.Error())
		var exitErr *ffmpeg.ExitError
		if errors.As(err, &exitErr) && exitErr.Stderr != "" {
			b.WriteString("\nFFmpeg stderr:\n")
			b.WriteString(strings.TrimRight(exitErr.Stderr, "\n"))
		}
	default:
		b.WriteString(err.Error())
	}

	return b.String()
}
