package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Probe extracts metadata from a media file with ffprobe
func (e *Executor) Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	e.logger.Debug().Str("cmd", "ffprobe").Strs("args", args).Msg("probing media")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffprobe failed: %w: %s", err, lastLine(msg))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return nil, err
	}
	info.FilePath = filePath
	return info, nil
}

// parseProbeOutput turns ffprobe JSON into MediaInfo. The container duration
// wins; the audio stream duration is the fallback.
func parseProbeOutput(output []byte) (*MediaInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &MediaInfo{
		FormatName: probe.Format.FormatName,
	}

	if br, err := strconv.ParseInt(probe.Format.BitRate, 10, 64); err == nil {
		info.Bitrate = br
	}

	var streamDuration string
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.AudioCodec = stream.CodecName
			info.Channels = stream.Channels
			info.SampleRate, _ = strconv.Atoi(stream.SampleRate)
			if br, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				info.AudioBitrate = br
			}
			streamDuration = stream.Duration
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.VideoCodec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height
		}
	}

	if !info.HasAudio {
		return nil, fmt.Errorf("no audio stream found")
	}

	seconds, err := parseSeconds(probe.Format.Duration)
	if err != nil {
		seconds, err = parseSeconds(streamDuration)
	}
	if err != nil {
		return nil, err
	}
	info.Duration = time.Duration(math.Round(seconds*1e6)) * time.Microsecond

	return info, nil
}

// maxDurationSeconds is the longest duration time.Duration can hold
const maxDurationSeconds = float64(math.MaxInt64 / int64(time.Second))

func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("duration not reported")
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid duration %q: not a number", s)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be positive", s)
	}
	if seconds > maxDurationSeconds {
		return 0, fmt.Errorf("invalid duration %q: out of range", s)
	}
	return seconds, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		BitRate    string `json:"bit_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}
