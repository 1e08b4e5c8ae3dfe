package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/keagan/m4a2mp4/internal/config"
	"github.com/keagan/m4a2mp4/internal/convert"
	"github.com/keagan/m4a2mp4/internal/ffmpeg"
	"github.com/keagan/m4a2mp4/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeProbeJSON = `{"streams":[{"codec_type":"audio","codec_name":"aac","sample_rate":"44100","channels":2}],"format":{"format_name":"mov,mp4,m4a","duration":"3.500000"}}`

// execute runs the CLI with args against a config path that does not exist
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// installFakeEngine points the CLI at shell scripts standing in for ffmpeg
// and ffprobe. ffprobe fails for bad.m4a.
func installFakeEngine(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine scripts need a POSIX shell")
	}
	dir := t.TempDir()

	ffmpegScript := `#!/bin/sh
case "$1" in -version) echo "ffmpeg version 6.1-fake"; exit 0;; esac
for last; do :; done
printf 'mp4' > "$last"
`
	ffprobeScript := `#!/bin/sh
case "$*" in *bad.m4a*) echo "Invalid data found when processing input" >&2; exit 1;; esac
echo '` + fakeProbeJSON + `'
`
	ffmpegPath := filepath.Join(dir, "ffmpeg")
	ffprobePath := filepath.Join(dir, "ffprobe")
	require.NoError(t, os.WriteFile(ffmpegPath, []byte(ffmpegScript), 0755))
	require.NoError(t, os.WriteFile(ffprobePath, []byte(ffprobeScript), 0755))

	t.Setenv(config.EnvFFmpeg, ffmpegPath)
	t.Setenv(config.EnvFFprobe, ffprobePath)
}

func removeEngine(t *testing.T) {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "no-such-ffmpeg")
	t.Setenv(config.EnvFFmpeg, missing)
	t.Setenv(config.EnvFFprobe, missing)
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestListColors(t *testing.T) {
	removeEngine(t)

	for _, args := range [][]string{{"--list-colors"}, {"colors"}} {
		out, err := execute(t, args...)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Available color names:"))
		for _, name := range video.ColorNames() {
			assert.Contains(t, out, "  - "+name+"\n")
		}
	}
}

func TestNoInputPrintsHelp(t *testing.T) {
	removeEngine(t)

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--list-colors")
}

func TestMissingEngineWritesNothing(t *testing.T) {
	removeEngine(t)

	dir := t.TempDir()
	song := touch(t, filepath.Join(dir, "song.m4a"))
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := execute(t, "-d", dir, "-o", outDir)
	assert.ErrorIs(t, err, ffmpeg.ErrNotFound)
	assert.NoDirExists(t, outDir)

	_, err = execute(t, song)
	assert.ErrorIs(t, err, ffmpeg.ErrNotFound)
	assert.Equal(t, []string{"song.m4a"}, listDir(t, dir))
}

func TestArgumentsValidatedBeforeEngineCheck(t *testing.T) {
	removeEngine(t)
	song := touch(t, filepath.Join(t.TempDir(), "song.m4a"))

	_, err := execute(t, song, "--color", "purple")
	assert.ErrorIs(t, err, video.ErrUnknownColor)

	_, err = execute(t, song, "--resolution", "1920:1080")
	assert.ErrorIs(t, err, video.ErrInvalidResolution)
}

func TestSingleFileConversion(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	song := touch(t, filepath.Join(dir, "song.m4a"))

	out, err := execute(t, song, "--no-progress", "--color", "white", "--resolution", "1280x720")
	require.NoError(t, err)
	assert.Contains(t, out, "Converted "+song+" -> "+filepath.Join(dir, "song.mp4"))
	assert.Equal(t, []string{"song.m4a", "song.mp4"}, listDir(t, dir))
}

func TestSingleFileExplicitOutput(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	song := touch(t, filepath.Join(dir, "song.m4a"))
	output := filepath.Join(dir, "upload", "final.mp4")

	_, err := execute(t, song, "-o", output, "--no-progress")
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestSingleFileMissingInput(t *testing.T) {
	installFakeEngine(t)

	_, err := execute(t, filepath.Join(t.TempDir(), "missing.m4a"), "--no-progress")
	assert.ErrorIs(t, err, convert.ErrInputNotFound)
}

func TestSingleFileProbeFailure(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	bad := touch(t, filepath.Join(dir, "bad.m4a"))

	_, err := execute(t, bad, "--no-progress")
	assert.ErrorIs(t, err, convert.ErrProbe)
	assert.Equal(t, []string{"bad.m4a"}, listDir(t, dir))
}

func TestBatchConversion(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	for _, name := range []string{"a.m4a", "b.m4a", "notes.txt", "cover.png"} {
		touch(t, filepath.Join(dir, name))
	}
	outDir := filepath.Join(t.TempDir(), "videos")

	out, err := execute(t, "-d", dir, "-o", outDir, "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Successful: 2")
	assert.Contains(t, out, "Failed:     0")
	assert.Equal(t, []string{"a.mp4", "b.mp4"}, listDir(t, outDir))
}

func TestPositionalDirectoryIsBatch(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.m4a"))

	_, err := execute(t, dir, "--no-progress")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.m4a", "a.mp4"}, listDir(t, dir))
}

func TestBatchReportsFailures(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	for _, name := range []string{"good.m4a", "bad.m4a"} {
		touch(t, filepath.Join(dir, name))
	}

	out, err := execute(t, "-d", dir, "--no-progress")
	assert.ErrorIs(t, err, convert.ErrBatchFailures)
	assert.Contains(t, out, "Successful: 1")
	assert.Contains(t, out, "Failed:     1")
	assert.Contains(t, out, "- bad.m4a: ")
	assert.Equal(t, []string{"bad.m4a", "good.m4a", "good.mp4"}, listDir(t, dir))
}

func TestBatchNoAudioFiles(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.txt"))

	out, err := execute(t, "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No M4A files found")
}

func TestDoctor(t *testing.T) {
	installFakeEngine(t)

	out, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "version: ffmpeg version 6.1-fake")
}

func TestProbeCommand(t *testing.T) {
	installFakeEngine(t)
	song := touch(t, filepath.Join(t.TempDir(), "song.m4a"))

	out, err := execute(t, "probe", song)
	require.NoError(t, err)
	assert.Contains(t, out, "Duration:    00:00:03.500 (3.50 seconds)")
	assert.Contains(t, out, "Audio:       aac, 44100 Hz, 2 channels")
}

func TestConfigInitAndShow(t *testing.T) {
	removeEngine(t)
	path := filepath.Join(t.TempDir(), "conf", "m4a2mp4.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "resolution: 1920x1080")
}

func TestDescribeError(t *testing.T) {
	msg := describeError(errors.Join(ffmpeg.ErrNotFound, errors.New("exec: \"ffmpeg\": executable file not found in $PATH")))
	assert.True(t, strings.HasPrefix(msg, "Error: FFmpeg is not installed"))
	assert.Contains(t, msg, "brew install ffmpeg")

	synth := errors.Join(convert.ErrSynthesis, &ffmpeg.ExitError{Code: 1, Stderr: "Unknown encoder 'libx264'\n"})
	msg = describeError(synth)
	assert.Contains(t, msg, "FFmpeg stderr:\nUnknown encoder 'libx264'")

	_, err := video.LookupColor("purple")
	assert.Contains(t, describeError(err), `Error: unknown color: "purple"`)
}

func TestProgressBarToggles(t *testing.T) {
	installFakeEngine(t)

	dir := t.TempDir()
	song := touch(t, filepath.Join(dir, "song.m4a"))

	_, stderr, err := executeWithStderr(t, song)
	require.NoError(t, err)
	assert.Contains(t, stderr, "song.m4a")
	assert.Contains(t, stderr, "%")

	quiet := filepath.Join(t.TempDir(), "quiet.yaml")
	require.NoError(t, os.WriteFile(quiet, []byte("progress: false\n"), 0644))

	for name, args := range map[string][]string{
		"no-progress flag": {song, "--no-progress"},
		"verbose":          {song, "--verbose"},
		"config":           {song, "--config", quiet},
	} {
		_, stderr, err := executeWithStderr(t, args...)
		require.NoError(t, err, name)
		assert.NotContains(t, stderr, "%", name)
		assert.Empty(t, stderr, name)
	}
}
