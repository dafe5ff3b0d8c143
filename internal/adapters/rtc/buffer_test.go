package rtc

import (
	"testing"

	"github.com/dkeye/mediabot/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPoolRelease(t *testing.T) {
	p := newBufferPool(zerolog.Nop())
	payload := []byte{1, 2, 3}
	buf := p.get(payload, 7, domain.FormatDescriptor{})
	assert.Equal(t, int64(1), p.Outstanding())

	data, err := buf.Data()
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, 3, buf.Length())
	assert.Equal(t, int64(7), buf.Timestamp())

	payload[0] = 9
	assert.Equal(t, byte(1), data[0], "payload must be copied out of the packet")

	buf.Release()
	buf.Release()
	assert.Equal(t, int64(0), p.Outstanding())

	_, err = buf.Data()
	assert.ErrorIs(t, err, errBufferReleased)
	assert.Equal(t, 0, buf.Length())
}

func TestRTPTicks(t *testing.T) {
	tests := []struct {
		name  string
		ts    uint32
		clock uint32
		want  int64
	}{
		{"opus one second", 48000, 48000, 10_000_000},
		{"video one frame", 3000, 90000, 333_333},
		{"zero clock", 100, 0, 0},
		{"wraparound edge", ^uint32(0), 8000, int64(uint64(^uint32(0)) * 10_000_000 / 8000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rtpTicks(tt.ts, tt.clock))
		})
	}
}
