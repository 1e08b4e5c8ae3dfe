package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keagan/m4a2mp4/pkg/util"
)

// FindAudioFiles lists the files in dir (not its subdirectories) whose
// extension matches ext, sorted by name
func FindAudioFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !util.HasExtension(entry.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
		} else if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// Batch converts every audio file in dir into outDir, which defaults to dir.
// A failing file is recorded in the summary and the run moves on.
func (c *Converter) Batch(ctx context.Context, dir, outDir string) (*Summary, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputUnreadable, dir)
	}

	if outDir == "" {
		outDir = dir
	}

	files, err := FindAudioFiles(dir, c.opts.Extension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}

	summary := &Summary{
		Dir:       dir,
		OutputDir: outDir,
		Found:     len(files),
	}

	if len(files) == 0 {
		c.logger.Warn().Str("dir", dir).Str("extension", c.opts.Extension).Msg("no audio files found")
		return summary, nil
	}

	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	c.logger.Info().
		Str("dir", dir).
		Str("output_dir", outDir).
		Int("files", len(files)).
		Msg("starting batch")

	// inputs differing only in extension case share an output name
	written := make(map[string]string, len(files))

	for _, input := range files {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		req := Request{
			Input:  input,
			Output: filepath.Join(outDir, util.Stem(input)+c.opts.OutputExtension),
		}

		if prev, ok := written[req.Output]; ok {
			err := fmt.Errorf("%w: %s already written from %s", ErrInvalidOutput, req.Output, filepath.Base(prev))
			c.logger.Error().Err(err).Str("input", input).Msg("conversion skipped")
			summary.Failed = append(summary.Failed, Failure{Input: input, Err: err})
			continue
		}

		result, err := c.Convert(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			c.logger.Error().Err(err).Str("input", input).Msg("conversion failed")
			summary.Failed = append(summary.Failed, Failure{Input: input, Err: err})
			continue
		}
		written[req.Output] = input
		summary.Converted = append(summary.Converted, result)
	}

	c.logger.Info().
		Int("converted", len(summary.Converted)).
		Int("failed", len(summary.Failed)).
		Msg("batch complete")

	return summary, nil
}
