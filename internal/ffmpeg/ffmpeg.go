package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/keagan/m4a2mp4/internal/logging"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by New when ffmpeg or ffprobe cannot be located
var ErrNotFound = errors.New("transcoding engine not found")

// stderrTailLines is how much ffmpeg chatter is kept for error reports
const stderrTailLines = 20

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New creates a new ffmpeg executor. Empty paths in cfg fall back to the
// plain binary names, resolved through PATH.
func New(logger zerolog.Logger, cfg Config) (*Executor, error) {
	ffmpegPath, err := lookPath(cfg.FFmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}

	ffprobePath, err := lookPath(cfg.FFprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}

	return &Executor{
		logger:      logging.WithComponent(logger, "ffmpeg"),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     cfg.Threads,
	}, nil
}

func lookPath(configured, fallback string) (string, error) {
	name := configured
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, fallback, err)
	}
	return path, nil
}

// FFmpegPath returns the resolved ffmpeg binary
func (e *Executor) FFmpegPath() string { return e.ffmpegPath }

// FFprobePath returns the resolved ffprobe binary
func (e *Executor) FFprobePath() string { return e.ffprobePath }

// Version returns the first line of `ffmpeg -version`
func (e *Executor) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.ffmpegPath, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg -version failed: %w", err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// ExitError reports a non-zero ffmpeg exit along with the end of its stderr
type ExitError struct {
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with code %d", e.Code)
	if last := lastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	baseArgs := []string{"-y", "-hide_banner", "-nostdin", "-nostats", "-loglevel", "info", "-progress", "pipe:2"}
	args := append(baseArgs, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	tail := newTail(stderrTailLines)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		streamOutput(stderr, tail, opts.ProgressHandler, opts.LogHandler)
	}()

	// Stream stdout
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			if opts.LogHandler != nil {
				opts.LogHandler(scanner.Text())
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		exitErr := &ExitError{Code: -1, Stderr: tail.String(), Err: err}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitErr.Code = ee.ExitCode()
		}
		return exitErr
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// progressKeys are the keys ffmpeg writes with -progress
var progressKeys = map[string]bool{
	"frame": true, "fps": true, "stream_0_0_q": true, "bitrate": true,
	"total_size": true, "out_time_us": true, "out_time_ms": true, "out_time": true,
	"dup_frames": true, "drop_frames": true, "speed": true, "progress": true,
}

// streamOutput parses ffmpeg output and calls handlers
func streamOutput(r io.Reader, tail *lineTail, progressHandler func(*Progress), logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	progressData := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		key, value, ok := strings.Cut(line, "=")
		if !ok || !progressKeys[key] {
			tail.Add(line)
			if logHandler != nil {
				logHandler(line)
			}
			continue
		}

		value = strings.TrimSpace(value)
		switch key {
		case "frame":
			progressData.Frame, _ = strconv.Atoi(value)
		case "fps":
			progressData.FPS, _ = strconv.ParseFloat(value, 64)
		case "bitrate":
			progressData.Bitrate = value
		case "out_time_us", "out_time_ms":
			// both are microseconds
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				progressData.OutTime = time.Duration(us) * time.Microsecond
			}
		case "out_time":
			progressData.Time = value
		case "speed":
			progressData.Speed = value
		case "progress":
			// End of progress block
			progressData.Done = value == "end"
			if progressHandler != nil {
				progressHandler(progressData)
			}
			progressData = &Progress{}
		}
	}
}

// lineTail keeps the last n lines written to it
type lineTail struct {
	lines []string
	max   int
}

func newTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	var buf bytes.Buffer
	for _, l := range t.lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.String()
}
