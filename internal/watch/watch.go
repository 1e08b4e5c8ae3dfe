// Package watch converts audio files as they land in a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/keagan/m4a2mp4/internal/logging"
	"github.com/keagan/m4a2mp4/pkg/util"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long a file must stay quiet before it is handled
const DefaultDebounce = 2 * time.Second

// Handler is invoked once per settled file. Calls never overlap.
type Handler func(ctx context.Context, path string)

// Watcher monitors a single directory (not recursively)
type Watcher struct {
	logger   zerolog.Logger
	dir      string
	ext      string
	debounce time.Duration
	handle   Handler
	ready    chan struct{}
}

// New creates a watcher for files with extension ext in dir
func New(logger zerolog.Logger, dir, ext string, debounce time.Duration, handle Handler) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		logger:   logging.WithComponent(logger, "watch"),
		dir:      dir,
		ext:      ext,
		debounce: debounce,
		handle:   handle,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	close(w.ready)

	w.logger.Info().
		Str("dir", w.dir).
		Str("extension", w.ext).
		Dur("debounce", w.debounce).
		Msg("watching for new files")

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	// path -> time of the last write
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("dir", w.dir).Msg("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !util.HasExtension(event.Name, w.ext) {
				continue
			}
			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				pending[event.Name] = time.Now()
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				delete(pending, event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")

		case now := <-ticker.C:
			for _, path := range settled(pending, now, w.debounce) {
				delete(pending, path)
				if ctx.Err() != nil {
					return nil
				}
				fi, err := os.Stat(path)
				if err != nil || !fi.Mode().IsRegular() {
					continue
				}
				w.logger.Debug().Str("path", path).Msg("file settled")
				w.handle(ctx, path)
			}
		}
	}
}

// settled returns, in name order, the paths quiet for at least debounce
func settled(pending map[string]time.Time, now time.Time, debounce time.Duration) []string {
	var paths []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}
