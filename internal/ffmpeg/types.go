package ffmpeg

import "time"

// Config locates the engine binaries
type Config struct {
	FFmpegPath  string
	FFprobePath string
	Threads     int
}

// MediaInfo contains metadata about a media file
type MediaInfo struct {
	FilePath     string
	FormatName   string
	Duration     time.Duration
	Bitrate      int64
	HasAudio     bool
	AudioCodec   string
	SampleRate   int
	Channels     int
	AudioBitrate int64
	HasVideo     bool
	VideoCodec   string
	Width        int
	Height       int
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	OutTime time.Duration
	Speed   string
	Done    bool
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler func(*Progress)
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultFrameRate  = 25
	DefaultPixFmt     = "yuv420p"
)

// ColorVideoOptions configures a solid color video muxed with an audio file
type ColorVideoOptions struct {
	Audio        string
	Output       string
	Color        string // lavfi color value, e.g. 0x000000
	Size         string // WxH
	Duration     time.Duration
	FrameRate    int
	VideoCodec   string
	AudioCodec   string
	AudioBitrate string
	CRF          *int // nil selects DefaultCRF; 0 is lossless
	Preset       string
	Metadata     []string // -metadata key=value pairs
	ProgressFunc ProgressFunc
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)
