package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
)

// ColorVideo renders a solid color video for the length of opts.Audio and
// muxes the audio into it, stopping at the shorter stream
func (e *Executor) ColorVideo(ctx context.Context, opts ColorVideoOptions) error {
	if err := validateColorVideoOptions(opts); err != nil {
		return fmt.Errorf("invalid color video options: %w", err)
	}

	e.logger.Info().
		Str("audio", opts.Audio).
		Str("output", opts.Output).
		Str("color", opts.Color).
		Str("size", opts.Size).
		Dur("duration", opts.Duration).
		Msg("rendering color video")

	runOpts := RunOptions{
		Args:            e.colorVideoArgs(opts),
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("color video")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("color video render failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("color video completed")
	return nil
}

func (e *Executor) colorVideoArgs(opts ColorVideoOptions) []string {
	frameRate := opts.FrameRate
	if frameRate == 0 {
		frameRate = DefaultFrameRate
	}

	source := NewColorSource().
		Color(opts.Color).
		Size(opts.Size).
		Duration(opts.Duration).
		Rate(frameRate).
		Build()

	args := []string{
		"-f", "lavfi",
		"-i", source,
		"-i", opts.Audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}

	videoCodec := opts.VideoCodec
	if videoCodec == "" {
		videoCodec = DefaultVideoCodec
	}
	args = append(args, "-c:v", videoCodec)

	// x264 specific tuning
	if videoCodec == DefaultVideoCodec {
		preset := opts.Preset
		if preset == "" {
			preset = DefaultPreset
		}
		crf := DefaultCRF
		if opts.CRF != nil {
			crf = *opts.CRF
		}
		args = append(args,
			"-preset", preset,
			"-crf", strconv.Itoa(crf),
			"-tune", "stillimage",
		)
	}
	args = append(args, "-pix_fmt", DefaultPixFmt)

	audioCodec := opts.AudioCodec
	if audioCodec == "" {
		audioCodec = DefaultAudioCodec
	}
	args = append(args, "-c:a", audioCodec)
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}

	if e.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(e.threads))
	}

	for _, kv := range opts.Metadata {
		args = append(args, "-metadata", kv)
	}

	args = append(args,
		"-shortest",
		"-movflags", "+faststart",
		"-f", "mp4",
		opts.Output,
	)
	return args
}

// validateColorVideoOptions validates the color video options
func validateColorVideoOptions(opts ColorVideoOptions) error {
	if opts.Audio == "" {
		return fmt.Errorf("audio path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Color == "" {
		return fmt.Errorf("color is required")
	}
	if opts.Size == "" {
		return fmt.Errorf("size is required")
	}
	if opts.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if opts.CRF != nil && (*opts.CRF < 0 || *opts.CRF > 51) {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	if opts.FrameRate < 0 {
		return fmt.Errorf("frame rate cannot be negative")
	}
	return nil
}
