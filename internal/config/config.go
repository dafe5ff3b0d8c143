package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	Media     MediaConfig     `mapstructure:"media"`
	Recording RecordingConfig `mapstructure:"recording"`
	WebRTC    WebRTCConfig    `mapstructure:"webrtc"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type MediaConfig struct {
	VideoSockets     int     `mapstructure:"video_sockets"`
	ScreenShare      bool    `mapstructure:"screen_share"`
	MaxFrameBytes    int     `mapstructure:"max_frame_bytes"`
	DefaultFrameRate float64 `mapstructure:"default_frame_rate"`
}

// RecordingConfig describes where flushed audio goes.
// Zero SampleRate/Channels fall back to the format of the first received frame.
type RecordingConfig struct {
	Dir         string `mapstructure:"dir"`
	Format      string `mapstructure:"format"`
	FileName    string `mapstructure:"file_name"`
	SampleRate  int    `mapstructure:"sample_rate"`
	Channels    int    `mapstructure:"channels"`
	BitDepth    int    `mapstructure:"bit_depth"`
	FlushOnExit bool   `mapstructure:"flush_on_exit"`
}

type WebRTCConfig struct {
	ICEServers []string `mapstructure:"ice_servers"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Interval time.Duration `mapstructure:"interval"`
}

const (
	RecordingRaw = "raw"
	RecordingWAV = "wav"
)

var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "MEDIABOT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")

	v.SetDefault("media.video_sockets", 1)
	v.SetDefault("media.screen_share", true)
	v.SetDefault("media.max_frame_bytes", 1<<20)
	v.SetDefault("media.default_frame_rate", 30)

	v.SetDefault("recording.dir", "./recordings")
	v.SetDefault("recording.format", RecordingRaw)
	v.SetDefault("recording.file_name", "audio.raw")
	v.SetDefault("recording.sample_rate", 0)
	v.SetDefault("recording.channels", 0)
	v.SetDefault("recording.bit_depth", 16)
	v.SetDefault("recording.flush_on_exit", true)

	v.SetDefault("webrtc.ice_servers", []string{"stun:stun.l.google.com:19302"})

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.interval", "5s")
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default) and applies
// MEDIABOT_* environment overrides, e.g. MEDIABOT_RECORDING_DIR.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load with an explicit file. A missing file is not an error.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Int("video_sockets", cfg.Media.VideoSockets).
		Bool("screen_share", cfg.Media.ScreenShare).
		Str("recording_format", cfg.Recording.Format).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	case c.Media.VideoSockets < 0:
		return fmt.Errorf("%w: media.video_sockets must not be negative", ErrInvalidConfig)
	case c.Media.MaxFrameBytes <= 0:
		return fmt.Errorf("%w: media.max_frame_bytes must be positive", ErrInvalidConfig)
	case c.Recording.FileName == "":
		return fmt.Errorf("%w: recording.file_name is required", ErrInvalidConfig)
	case c.Recording.Format != RecordingRaw && c.Recording.Format != RecordingWAV:
		return fmt.Errorf("%w: recording.format %q", ErrInvalidConfig, c.Recording.Format)
	case c.Recording.Format == RecordingWAV && c.Recording.BitDepth != 8 &&
		c.Recording.BitDepth != 16 && c.Recording.BitDepth != 24 && c.Recording.BitDepth != 32:
		return fmt.Errorf("%w: recording.bit_depth %d", ErrInvalidConfig, c.Recording.BitDepth)
	case c.RateLimit.Requests < 0 || c.RateLimit.Interval < 0:
		return fmt.Errorf("%w: rate_limit", ErrInvalidConfig)
	}
	return nil
}
