package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/metadata"
)

// Failure kinds surfaced to the user. Each wraps the underlying cause.
var (
	ErrInputNotFound   = errors.New("input not found")
	ErrInputUnreadable = errors.New("input not readable")
	ErrInvalidOutput   = errors.New("invalid output path")
	ErrProbe           = errors.New("could not determine audio duration")
	ErrSynthesis       = errors.New("conversion failed")
	ErrBatchFailures   = errors.New("some files failed to convert")
)

// Engine is the part of the ffmpeg executor the converter drives
type Engine interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
	ColorVideo(ctx context.Context, opts ffmpeg.ColorVideoOptions) error
}

// TagReader loads tags from a source file
type TagReader func(path string) (*metadata.Tags, error)

// ProgressTracker is told about each file as it renders
type ProgressTracker interface {
	Begin(input string, total time.Duration)
	Update(elapsed time.Duration)
	End(err error)
}

// Options configure every conversion a Converter runs
type Options struct {
	Color           string // color name from the color table
	Resolution      string // WxH
	Extension       string // audio extension matched in batch mode
	OutputExtension string
	FrameRate       int
	VideoCodec      string
	AudioCodec      string
	AudioBitrate    string
	Preset          string
	CRF             *int
	CopyTags        bool
}

// Request is a single conversion
type Request struct {
	Input  string
	Output string // optional; defaults next to Input
}

// Result describes a finished conversion
type Result struct {
	Input    string
	Output   string
	Duration time.Duration
	Elapsed  time.Duration
}

// Failure records a file that could not be converted
type Failure struct {
	Input string
	Err   error
}

// Summary is the outcome of a batch run
type Summary struct {
	Dir       string
	OutputDir string
	Found     int
	Converted []*Result
	Failed    []Failure
}

// Err returns ErrBatchFailures when any file failed
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d failed", ErrBatchFailures, len(s.Failed), s.Found)
}
