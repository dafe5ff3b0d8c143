// Package sink stores flushed call audio.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkeye/mediabot/internal/config"
	"github.com/dkeye/mediabot/internal/core"
	"github.com/rs/zerolog"
)

// New picks the sink for cfg.Format.
func New(cfg config.RecordingConfig, logger zerolog.Logger) (core.Sink, error) {
	logger = logger.With().Str("module", "sink").Str("format", cfg.Format).Logger()
	switch cfg.Format {
	case config.RecordingRaw, "":
		return &FileSink{Dir: cfg.Dir, FileName: cfg.FileName, logger: logger}, nil
	case config.RecordingWAV:
		return &WAVSink{
			Dir:        cfg.Dir,
			FileName:   cfg.FileName,
			SampleRate: cfg.SampleRate,
			Channels:   cfg.Channels,
			BitDepth:   cfg.BitDepth,
			logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: recording.format %q", config.ErrInvalidConfig, cfg.Format)
	}
}

// create opens dir/name for writing, creating dir and truncating the file.
func create(dir, name string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create directories: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}
	return f, path, nil
}
