package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/logging"
	"github.com/keagan/m4a2mp4/internal/metadata"
	"github.com/keagan/m4a2mp4/internal/video"
	"github.com/keagan/m4a2mp4/pkg/util"
	"github.com/rs/zerolog"
)

// Converter turns audio files into solid color videos
type Converter struct {
	logger     zerolog.Logger
	engine     Engine
	opts       Options
	color      video.Color
	resolution video.Resolution
	readTags   TagReader
	progress   ProgressTracker
}

// Option customizes a Converter
type Option func(*Converter)

// WithProgress reports render progress for each file
func WithProgress(p ProgressTracker) Option {
	return func(c *Converter) { c.progress = p }
}

// WithTagReader replaces the tag reader
func WithTagReader(r TagReader) Option {
	return func(c *Converter) { c.readTags = r }
}

// Validate checks the color and resolution without touching the engine
func (o Options) Validate() error {
	_, _, err := o.resolve()
	return err
}

func (o Options) resolve() (video.Color, video.Resolution, error) {
	color, err := video.LookupColor(o.Color)
	if err != nil {
		return video.Color{}, video.Resolution{}, err
	}
	res, err := video.ParseResolution(o.Resolution)
	if err != nil {
		return video.Color{}, video.Resolution{}, err
	}
	return color, res, nil
}

// New creates a converter, rejecting bad colors and resolutions up front
func New(logger zerolog.Logger, engine Engine, opts Options, options ...Option) (*Converter, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	color, res, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	if opts.Extension == "" {
		opts.Extension = ".m4a"
	}
	if opts.OutputExtension == "" {
		opts.OutputExtension = ".mp4"
	}

	c := &Converter{
		logger:     logging.WithComponent(logger, "convert"),
		engine:     engine,
		opts:       opts,
		color:      color,
		resolution: res,
		readTags:   metadata.Read,
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// DefaultOutputPath places the video next to the audio with the output extension
func DefaultOutputPath(input, ext string) string {
	return util.ReplaceExtension(input, ext)
}

// Convert runs a single conversion. The video is rendered to a temporary
// file beside the destination and renamed into place only on success.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := checkInput(req.Input); err != nil {
		return nil, err
	}

	output := req.Output
	if output == "" {
		output = DefaultOutputPath(req.Input, c.opts.OutputExtension)
	}
	if samePath(req.Input, output) {
		return nil, fmt.Errorf("%w: %s would overwrite the input", ErrInvalidOutput, output)
	}
	if util.IsDir(output) {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidOutput, output)
	}

	c.logger.Info().
		Str("input", req.Input).
		Str("output", output).
		Str("color", c.color.Name).
		Str("resolution", c.resolution.String()).
		Msg("converting")

	info, err := c.engine.Probe(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProbe, req.Input, err)
	}

	c.logger.Info().
		Str("input", req.Input).
		Dur("duration", info.Duration).
		Str("codec", info.AudioCodec).
		Msg("audio probed")

	var tagArgs []string
	if c.opts.CopyTags && c.readTags != nil {
		tags, err := c.readTags(req.Input)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Str("input", req.Input).Msg("skipping tags")
		case tags.Empty():
			c.logger.Debug().Str("input", req.Input).Msg("no tags to copy")
		default:
			tagArgs = tags.Args()
		}
	}

	outDir := filepath.Dir(output)
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	tmp := filepath.Join(outDir, fmt.Sprintf(".%s.%s.tmp%s", util.Stem(output), uuid.NewString(), c.opts.OutputExtension))

	if c.progress != nil {
		c.progress.Begin(req.Input, info.Duration)
	}

	err = c.engine.ColorVideo(ctx, ffmpeg.ColorVideoOptions{
		Audio:        req.Input,
		Output:       tmp,
		Color:        c.color.Encoding,
		Size:         c.resolution.String(),
		Duration:     info.Duration,
		FrameRate:    c.opts.FrameRate,
		VideoCodec:   c.opts.VideoCodec,
		AudioCodec:   c.opts.AudioCodec,
		AudioBitrate: c.opts.AudioBitrate,
		CRF:          c.opts.CRF,
		Preset:       c.opts.Preset,
		Metadata:     tagArgs,
		ProgressFunc: c.progressFunc(),
	})
	if err == nil {
		err = os.Rename(tmp, output)
	}

	if c.progress != nil {
		c.progress.End(err)
	}

	if err != nil {
		util.CleanupFiles(tmp)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSynthesis, req.Input, err)
	}

	result := &Result{
		Input:    req.Input,
		Output:   output,
		Duration: info.Duration,
		Elapsed:  time.Since(start),
	}

	c.logger.Info().
		Str("output", output).
		Dur("elapsed", result.Elapsed).
		Msg("conversion complete")

	return result, nil
}

func (c *Converter) progressFunc() ffmpeg.ProgressFunc {
	if c.progress == nil {
		return nil
	}
	return func(p *ffmpeg.Progress) {
		c.progress.Update(p.OutTime)
	}
}

func checkInput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputUnreadable, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	return f.Close()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
