package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Environment overrides for the engine binaries
const (
	EnvFFmpeg  = "M4A2MP4_FFMPEG"
	EnvFFprobe = "M4A2MP4_FFPROBE"
)

// Config holds all application configuration
type Config struct {
	// Conversion defaults
	Color           string `yaml:"color"`
	Resolution      string `yaml:"resolution"`
	Extension       string `yaml:"extension"`
	OutputExtension string `yaml:"output_extension"`
	Progress        bool   `yaml:"progress"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Tag copying
	Metadata MetadataConfig `yaml:"metadata"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`
}

type FFmpegConfig struct {
	FFmpegPath   string `yaml:"ffmpeg_path"`
	FFprobePath  string `yaml:"ffprobe_path"`
	Threads      int    `yaml:"threads"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	FrameRate    int    `yaml:"frame_rate"`
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

type MetadataConfig struct {
	CopyTags bool `yaml:"copy_tags"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Color:           "black",
		Resolution:      "1920x1080",
		Extension:       ".m4a",
		OutputExtension: ".mp4",
		Progress:        true,
		FFmpeg: FFmpegConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Threads:     0,
			Preset:      "medium",
			CRF:         23,
			FrameRate:   25,
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
		},
		Metadata: MetadataConfig{
			CopyTags: true,
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvFFmpeg); v != "" {
		cfg.FFmpeg.FFmpegPath = v
	}
	if v := os.Getenv(EnvFFprobe); v != "" {
		cfg.FFmpeg.FFprobePath = v
	}
}

// DefaultPath is where `config init` writes when no path is given
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".m4a2mp4", "config.yaml")
}

func findConfigFile() string {
	candidates := []string{
		"./m4a2mp4.yaml",
		"./m4a2mp4.yml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
