package sink

import (
	"context"
	"fmt"

	"github.com/dkeye/mediabot/internal/domain"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
)

const pcmFormat = 1

// WAVSink wraps the payload in a WAV container. Zero SampleRate or Channels
// are taken from the audio format of the flushed frames.
type WAVSink struct {
	Dir        string
	FileName   string
	SampleRate int
	Channels   int
	BitDepth   int
	logger     zerolog.Logger
}

func (s *WAVSink) header(format domain.AudioFormat) (rate, channels, depth int, err error) {
	rate, channels, depth = s.SampleRate, s.Channels, s.BitDepth
	if rate == 0 {
		rate = format.SampleRate
	}
	if channels == 0 {
		channels = format.Channels
	}
	if depth == 0 {
		depth = format.BitDepth
	}
	if depth == 0 {
		depth = 16
	}
	if rate <= 0 || channels <= 0 {
		return 0, 0, 0, fmt.Errorf("wav: unknown format (rate %d, channels %d)", rate, channels)
	}
	switch depth {
	case 8, 16, 24, 32:
	default:
		return 0, 0, 0, fmt.Errorf("wav: unsupported bit depth %d", depth)
	}
	return rate, channels, depth, nil
}

func (s *WAVSink) Write(ctx context.Context, format domain.AudioFormat, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rate, channels, depth, err := s.header(format)
	if err != nil {
		return "", err
	}

	f, path, err := create(s.Dir, s.FileName)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, depth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Data:           bytesToSamples(data, depth),
		Format:         &audio.Format{SampleRate: rate, NumChannels: channels},
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		return "", fmt.Errorf("failed to write to WAV encoder: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize WAV: %w", err)
	}
	s.logger.Info().Str("path", path).Int("bytes", len(data)).Int("sample_rate", rate).Msg("audio written")
	return path, nil
}

// bytesToSamples reads little-endian samples of the given depth.
// A trailing partial sample is dropped.
func bytesToSamples(data []byte, depth int) []int {
	size := depth / 8
	samples := make([]int, 0, len(data)/size)
	for i := 0; i+size <= len(data); i += size {
		switch size {
		case 1:
			samples = append(samples, int(data[i]))
		case 2:
			samples = append(samples, int(int16(uint16(data[i])|uint16(data[i+1])<<8)))
		case 3:
			v := int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
			if v&0x800000 != 0 {
				v |= ^0xffffff
			}
			samples = append(samples, int(v))
		case 4:
			samples = append(samples, int(int32(uint32(data[i])|uint32(data[i+1])<<8|uint32(data[i+2])<<16|uint32(data[i+3])<<24)))
		}
	}
	return samples
}
