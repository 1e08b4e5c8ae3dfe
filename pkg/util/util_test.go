package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceExtension(t *testing.T) {
	assert.Equal(t, "song.mp4", ReplaceExtension("song.m4a", ".mp4"))
	assert.Equal(t, filepath.Join("dir", "a.b.mp4"), ReplaceExtension(filepath.Join("dir", "a.b.m4a"), ".mp4"))
	assert.Equal(t, "noext.mp4", ReplaceExtension("noext", ".mp4"))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("song.m4a", ".m4a"))
	assert.True(t, HasExtension("SONG.M4A", ".m4a"))
	assert.False(t, HasExtension("song.m4a.txt", ".m4a"))
	assert.False(t, HasExtension("m4a", ".m4a"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "song", Stem(filepath.Join("a", "b", "song.m4a")))
	assert.Equal(t, "archive.tar", Stem("archive.tar.gz"))
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "x", "y")
	require.NoError(t, EnsureDir(nested))
	assert.True(t, IsDir(nested))

	file := filepath.Join(nested, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.True(t, FileExists(file))
	assert.False(t, IsDir(file))

	CleanupFiles(file, filepath.Join(dir, "missing"))
	assert.False(t, FileExists(file))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatDuration(0))
	assert.Equal(t, "00:03:04.256", FormatDuration(184256*time.Millisecond))
	assert.Equal(t, "01:01:01.500", FormatDuration(time.Hour+time.Minute+1500*time.Millisecond))
}

func TestFormatDurationCarriesRounding(t *testing.T) {
	assert.Equal(t, "00:01:00.000", FormatDuration(59999600*time.Microsecond))
	assert.Equal(t, "01:00:00.000", FormatDuration(time.Hour-200*time.Microsecond))
	assert.Equal(t, "00:00:59.999", FormatDuration(59999400*time.Microsecond))
	assert.Equal(t, "00:00:00.000", FormatDuration(-time.Second))
}
