package rtc

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/mediabot/internal/domain"
	"github.com/rs/zerolog"
)

var errBufferReleased = errors.New("rtp buffer already released")

// bufferPool owns the payload memory handed to channel handlers.
// Payloads go back to the pool on Release and are reused for later packets.
type bufferPool struct {
	payloads    sync.Pool
	outstanding atomic.Int64
	logger      zerolog.Logger
}

const defaultPayloadCap = 1500

func newBufferPool(logger zerolog.Logger) *bufferPool {
	p := &bufferPool{logger: logger}
	p.payloads.New = func() any {
		b := make([]byte, 0, defaultPayloadCap)
		return &b
	}
	return p
}

func (p *bufferPool) get(payload []byte, ts int64, format domain.FormatDescriptor) *rtpBuffer {
	bp := p.payloads.Get().(*[]byte)
	data := append((*bp)[:0], payload...)
	*bp = data
	p.outstanding.Add(1)
	return &rtpBuffer{
		pool:   p,
		mem:    bp,
		ts:     ts,
		format: format,
	}
}

func (p *bufferPool) put(bp *[]byte) {
	p.outstanding.Add(-1)
	p.payloads.Put(bp)
}

// Outstanding is the number of delivered buffers not yet released.
func (p *bufferPool) Outstanding() int64 { return p.outstanding.Load() }

// rtpBuffer is one received RTP payload.
type rtpBuffer struct {
	pool     *bufferPool
	mem      *[]byte
	ts       int64
	format   domain.FormatDescriptor
	released atomic.Bool
}

func (b *rtpBuffer) Data() ([]byte, error) {
	if b.released.Load() {
		return nil, errBufferReleased
	}
	return *b.mem, nil
}

func (b *rtpBuffer) Length() int {
	if b.released.Load() {
		return 0
	}
	return len(*b.mem)
}

func (b *rtpBuffer) Timestamp() int64                { return b.ts }
func (b *rtpBuffer) Format() domain.FormatDescriptor { return b.format }

func (b *rtpBuffer) Release() {
	if !b.released.CompareAndSwap(false, true) {
		b.pool.logger.Warn().Msg("rtp buffer released twice")
		return
	}
	b.pool.put(b.mem)
}

// rtpTicks converts an RTP timestamp to 100ns ticks.
func rtpTicks(ts uint32, clockRate uint32) int64 {
	if clockRate == 0 {
		return 0
	}
	return int64(uint64(ts) * 10_000_000 / uint64(clockRate))
}
