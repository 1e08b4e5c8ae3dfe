// Package metadata carries tags from the source audio into the rendered video.
package metadata

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Tags are the fields copied into the output container
type Tags struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Composer    string
	Comment     string
	Year        int
	Track       int
	TrackTotal  int
	Disc        int
	DiscTotal   int
}

// Read extracts tags from an audio file
func Read(path string) (*Tags, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return FromMetadata(m), nil
}

// FromMetadata converts parsed tag metadata
func FromMetadata(m tag.Metadata) *Tags {
	t := &Tags{
		Title:       clean(m.Title()),
		Artist:      clean(m.Artist()),
		AlbumArtist: clean(m.AlbumArtist()),
		Album:       clean(m.Album()),
		Genre:       clean(m.Genre()),
		Composer:    clean(m.Composer()),
		Comment:     clean(m.Comment()),
		Year:        m.Year(),
	}
	t.Track, t.TrackTotal = m.Track()
	t.Disc, t.DiscTotal = m.Disc()
	return t
}

// Empty reports whether no field is set
func (t *Tags) Empty() bool {
	return t == nil || len(t.Args()) == 0
}

// Args renders the set fields as ffmpeg -metadata key=value pairs
func (t *Tags) Args() []string {
	if t == nil {
		return nil
	}

	var args []string
	add := func(key, value string) {
		if value != "" {
			args = append(args, key+"="+value)
		}
	}

	add("title", t.Title)
	add("artist", t.Artist)
	add("album_artist", t.AlbumArtist)
	add("album", t.Album)
	add("genre", t.Genre)
	add("composer", t.Composer)
	add("comment", t.Comment)
	if t.Year > 0 {
		add("date", strconv.Itoa(t.Year))
	}
	add("track", numbered(t.Track, t.TrackTotal))
	add("disc", numbered(t.Disc, t.DiscTotal))

	return args
}

func numbered(n, total int) string {
	switch {
	case n <= 0:
		return ""
	case total > 0:
		return fmt.Sprintf("%d/%d", n, total)
	default:
		return strconv.Itoa(n)
	}
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
