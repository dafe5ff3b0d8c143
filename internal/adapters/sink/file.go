package sink

import (
	"context"
	"fmt"

	"github.com/dkeye/mediabot/internal/domain"
	"github.com/rs/zerolog"
)

// FileSink writes the payload as is to Dir/FileName. Each write replaces the file.
type FileSink struct {
	Dir      string
	FileName string
	logger   zerolog.Logger
}

func (s *FileSink) Write(ctx context.Context, _ domain.AudioFormat, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, path, err := create(s.Dir, s.FileName)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("audio written")
	return path, nil
}
