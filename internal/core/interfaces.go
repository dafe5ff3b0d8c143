package core

import (
	"context"

	"github.com/dkeye/mediabot/internal/domain"
)

// Sink persists or forwards the flushed audio payload.
// Implementations live in adapters (file, wav, blob upload, ...).
type Sink interface {
	// Write stores data and reports where it went.
	Write(ctx context.Context, format domain.AudioFormat, data []byte) (destination string, err error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, format domain.AudioFormat, data []byte) (string, error)

func (f SinkFunc) Write(ctx context.Context, format domain.AudioFormat, data []byte) (string, error) {
	return f(ctx, format, data)
}
