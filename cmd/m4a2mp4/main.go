package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keagan/m4a2mp4/internal/config"
	"github.com/keagan/m4a2mp4/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		stop()
		os.Exit(1)
	}
}

// rootFlags are shared by the root command and its subcommands
type rootFlags struct {
	cfgFile    string
	verbose    bool
	output     string
	directory  string
	color      string
	resolution string
	listColors bool
	noProgress bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "m4a2mp4 [input.m4a | directory]",
		Short: "Convert M4A audio into MP4 video for YouTube upload",
		Long: `Convert M4A audio files to MP4 video files with a solid color video track,
so they can be uploaded to YouTube. Requires ffmpeg and ffprobe.`,
		Example: `  m4a2mp4 input.m4a
  m4a2mp4 input.m4a -o output.mp4
  m4a2mp4 -d /path/to/m4a/files
  m4a2mp4 -d /path/to/m4a/files -o /path/to/output
  m4a2mp4 input.m4a --color white --resolution 1280x720`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize logging
			logging.Init(flags.verbose)

			// Load config
			cfg, err := config.Load(flags.cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Store config in context
			ctx := config.WithConfig(cmd.Context(), cfg)
			cmd.SetContext(ctx)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, flags, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default: ./m4a2mp4.yaml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	pf.StringVarP(&flags.output, "output", "o", "", "output MP4 file, or output directory in batch and watch mode")
	pf.StringVar(&flags.color, "color", "black", "background color for the video")
	pf.StringVar(&flags.resolution, "resolution", "1920x1080", "video resolution as WIDTHxHEIGHT")
	pf.BoolVar(&flags.noProgress, "no-progress", false, "disable the progress bar")

	f := rootCmd.Flags()
	f.StringVarP(&flags.directory, "directory", "d", "", "directory containing M4A files for batch conversion")
	f.BoolVar(&flags.listColors, "list-colors", false, "list available color names and exit")

	rootCmd.AddCommand(newColorsCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newWatchCmd(flags))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDoctorCmd())

	return rootCmd
}
