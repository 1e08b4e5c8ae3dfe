package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/keagan/m4a2mp4/internal/config"
	"github.com/keagan/m4a2mp4/internal/convert"
	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/video"
	"github.com/keagan/m4a2mp4/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func runConvert(cmd *cobra.Command, flags *rootFlags, args []string) error {
	out := cmd.OutOrStdout()

	if flags.listColors {
		printColors(out)
		return nil
	}

	var input string
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" && flags.directory == "" {
		return cmd.Help()
	}

	cfg := config.FromContext(cmd.Context())
	conv, err := newConverter(cmd, flags, cfg)
	if err != nil {
		return err
	}

	batchDir := flags.directory
	if batchDir == "" && util.IsDir(input) {
		batchDir = input
	}

	if batchDir != "" {
		summary, err := conv.Batch(cmd.Context(), batchDir, flags.output)
		if summary != nil {
			printSummary(out, summary)
		}
		if err != nil {
			return err
		}
		return summary.Err()
	}

	result, err := conv.Convert(cmd.Context(), convert.Request{Input: input, Output: flags.output})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Converted %s -> %s (%s of audio in %s)\n",
		result.Input, result.Output, util.FormatDuration(result.Duration), result.Elapsed.Round(100*time.Millisecond))
	return nil
}

// conversionOptions merges config values with any flags set on the command line
func conversionOptions(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) convert.Options {
	opts := convert.Options{
		Color:           cfg.Color,
		Resolution:      cfg.Resolution,
		Extension:       cfg.Extension,
		OutputExtension: cfg.OutputExtension,
		FrameRate:       cfg.FFmpeg.FrameRate,
		VideoCodec:      cfg.FFmpeg.VideoCodec,
		AudioCodec:      cfg.FFmpeg.AudioCodec,
		AudioBitrate:    cfg.FFmpeg.AudioBitrate,
		Preset:          cfg.FFmpeg.Preset,
		CRF:             &cfg.FFmpeg.CRF,
		CopyTags:        cfg.Metadata.CopyTags,
	}
	if cmd.Flags().Changed("color") || opts.Color == "" {
		opts.Color = flags.color
	}
	if cmd.Flags().Changed("resolution") || opts.Resolution == "" {
		opts.Resolution = flags.resolution
	}
	return opts
}

func engineConfig(cfg *config.Config) ffmpeg.Config {
	return ffmpeg.Config{
		FFmpegPath:  cfg.FFmpeg.FFmpegPath,
		FFprobePath: cfg.FFmpeg.FFprobePath,
		Threads:     cfg.FFmpeg.Threads,
	}
}

// newConverter validates arguments, then checks for the engine. Nothing
// touches the filesystem before both pass.
func newConverter(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) (*convert.Converter, error) {
	opts := conversionOptions(cmd, flags, cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	engine, err := ffmpeg.New(log.Logger, engineConfig(cfg))
	if err != nil {
		return nil, err
	}

	if v, err := engine.Version(cmd.Context()); err == nil {
		log.Debug().Str("version", v).Str("path", engine.FFmpegPath()).Msg("using ffmpeg")
	}

	var options []convert.Option
	if cfg.Progress && !flags.noProgress && !flags.verbose {
		options = append(options, convert.WithProgress(newBarTracker(cmd.ErrOrStderr())))
	}

	return convert.New(log.Logger, engine, opts, options...)
}

func printColors(w io.Writer) {
	fmt.Fprintln(w, "Available color names:")
	for _, name := range video.ColorNames() {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

func printSummary(w io.Writer, s *convert.Summary) {
	if s.Found == 0 {
		fmt.Fprintf(w, "No M4A files found in '%s'\n", s.Dir)
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion summary:")
	fmt.Fprintf(w, "  Successful: %d\n", len(s.Converted))
	fmt.Fprintf(w, "  Failed:     %d\n", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintf(w, "    - %s: %s\n", filepath.Base(f.Input), failureReason(f.Err))
	}
	fmt.Fprintf(w, "  Output directory: %s\n", s.OutputDir)
}

// failureReason trims the per-file error to its kind and cause
func failureReason(err error) string {
	var exitErr *ffmpeg.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Error()
	}
	return err.Error()
}
