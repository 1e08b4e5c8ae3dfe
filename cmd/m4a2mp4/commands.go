package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/keagan/m4a2mp4/internal/config"
	"github.com/keagan/m4a2mp4/internal/convert"
	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/metadata"
	"github.com/keagan/m4a2mp4/internal/watch"
	"github.com/keagan/m4a2mp4/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newColorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "colors",
		Short: "List available background colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printColors(cmd.OutOrStdout())
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [audio file]",
		Short: "Show duration, codec and tags of an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			engine, err := ffmpeg.New(log.Logger, engineConfig(cfg))
			if err != nil {
				return err
			}

			info, err := engine.Probe(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%w: %s: %w", convert.ErrProbe, args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:        %s\n", info.FilePath)
			fmt.Fprintf(out, "Format:      %s\n", info.FormatName)
			fmt.Fprintf(out, "Duration:    %s (%.2f seconds)\n", util.FormatDuration(info.Duration), info.Duration.Seconds())
			fmt.Fprintf(out, "Audio:       %s, %d Hz, %d channels\n", info.AudioCodec, info.SampleRate, info.Channels)
			if info.Bitrate > 0 {
				fmt.Fprintf(out, "Bitrate:     %d kb/s\n", info.Bitrate/1000)
			}

			tags, err := metadata.Read(args[0])
			if err != nil {
				log.Debug().Err(err).Msg("no tags")
				return nil
			}
			for _, kv := range tags.Args() {
				fmt.Fprintf(out, "Tag:         %s\n", kv)
			}
			return nil
		},
	}
}

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var existing bool

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Convert M4A files as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if !util.IsDir(dir) {
				return fmt.Errorf("%w: %s is not a directory", convert.ErrInputNotFound, dir)
			}

			cfg := config.FromContext(cmd.Context())
			conv, err := newConverter(cmd, flags, cfg)
			if err != nil {
				return err
			}

			outDir := flags.output
			if outDir == "" {
				outDir = dir
			}

			if existing {
				summary, err := conv.Batch(cmd.Context(), dir, outDir)
				if summary != nil {
					printSummary(cmd.OutOrStdout(), summary)
				}
				if err != nil {
					return err
				}
			}

			ext := cfg.Extension
			outExt := cfg.OutputExtension
			handle := func(ctx context.Context, path string) {
				req := convert.Request{
					Input:  path,
					Output: filepath.Join(outDir, util.Stem(path)+outExt),
				}
				result, err := conv.Convert(ctx, req)
				if err != nil {
					log.Error().Err(err).Str("input", path).Msg("conversion failed")
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", result.Input, result.Output)
			}

			ctx := cmd.Context()
			w := watch.New(log.Logger, dir, ext, cfg.Watch.Debounce, handle)
			go func() {
				select {
				case <-w.Ready():
					log.Info().Msg("press Ctrl+C to stop")
				case <-ctx.Done():
				}
			}()
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&existing, "existing", false, "convert files already in the directory before watching")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config management commands",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}
			if util.FileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg and ffprobe are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			engine, err := ffmpeg.New(log.Logger, engineConfig(cfg))
			if err != nil {
				return err
			}

			version, err := engine.Version(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ffmpeg:  %s\n", engine.FFmpegPath())
			fmt.Fprintf(out, "ffprobe: %s\n", engine.FFprobePath())
			fmt.Fprintf(out, "version: %s\n", version)
			return nil
		},
	}
}
