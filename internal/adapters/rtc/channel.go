package rtc

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

var (
	ErrChannelClosed   = errors.New("channel closed")
	ErrNotSubscribable = errors.New("audio channel does not take subscriptions")
)

// Channel is one recv-only transceiver of the bot's peer connection.
type Channel struct {
	kind      domain.MediaType
	index     uint32
	frameRate float64
	pool      *bufferPool
	writeRTCP func([]rtcp.Packet) error
	logger    zerolog.Logger

	// mu is held for read while a handler runs, so Deregister waits for it to return.
	mu        sync.RWMutex
	handler   core.BufferHandler
	handlerID uint64
	nextID    atomic.Uint64

	stateMu  sync.Mutex
	state    domain.SubscriptionState
	codec    webrtc.RTPCodecParameters
	ssrc     uint32
	attached bool
	closed   bool
}

func newChannel(kind domain.MediaType, index uint32, frameRate float64, pool *bufferPool, writeRTCP func([]rtcp.Packet) error, logger zerolog.Logger) *Channel {
	return &Channel{
		kind:      kind,
		index:     index,
		frameRate: frameRate,
		pool:      pool,
		writeRTCP: writeRTCP,
		logger: logger.With().
			Str("kind", kind.String()).
			Uint32("socket", index).
			Logger(),
	}
}

func (c *Channel) Kind() domain.MediaType { return c.kind }
func (c *Channel) Index() uint32          { return c.index }

// OnBuffer installs fn as the only handler, replacing any previous one.
func (c *Channel) OnBuffer(fn core.BufferHandler) core.Registration {
	id := c.nextID.Add(1)
	c.mu.Lock()
	c.handler = fn
	c.handlerID = id
	c.mu.Unlock()
	return &registration{ch: c, id: id}
}

type registration struct {
	ch   *Channel
	id   uint64
	once sync.Once
}

func (r *registration) Deregister() {
	r.once.Do(func() {
		r.ch.mu.Lock()
		defer r.ch.mu.Unlock()
		if r.ch.handlerID == r.id {
			r.ch.handler = nil
		}
	})
}

func (c *Channel) Subscribe(res domain.Resolution, sourceID uint32) error {
	if c.kind == domain.MediaTypeAudio {
		return ErrNotSubscribable
	}
	if !res.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidResolution, res)
	}
	c.stateMu.Lock()
	if c.closed {
		c.stateMu.Unlock()
		return ErrChannelClosed
	}
	c.state = domain.Subscribed(res, sourceID)
	attached, ssrc := c.attached, c.ssrc
	c.stateMu.Unlock()

	if attached {
		return c.requestKeyframe(ssrc)
	}
	return nil
}

func (c *Channel) Unsubscribe() error {
	if c.kind == domain.MediaTypeAudio {
		return ErrNotSubscribable
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	c.state = domain.SubscriptionState{}
	return nil
}

func (c *Channel) State() domain.SubscriptionState {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Channel) requestKeyframe(ssrc uint32) error {
	if c.writeRTCP == nil {
		return nil
	}
	if err := c.writeRTCP([]rtcp.Packet{&rtcp.PictureLossIndication{MediaSSRC: ssrc}}); err != nil {
		return fmt.Errorf("request keyframe: %w", err)
	}
	return nil
}

// attach binds a remote track to the channel. A pending subscription gets a keyframe request.
func (c *Channel) attach(ssrc uint32, codec webrtc.RTPCodecParameters) {
	c.stateMu.Lock()
	c.ssrc = ssrc
	c.codec = codec
	c.attached = true
	subscribed := c.state.Subscribed
	c.stateMu.Unlock()

	c.logger.Info().Uint32("ssrc", ssrc).Str("codec", codec.MimeType).Msg("track attached")
	if subscribed {
		if err := c.requestKeyframe(ssrc); err != nil {
			c.logger.Warn().Err(err).Msg("keyframe request failed")
		}
	}
}

func (c *Channel) close() {
	c.stateMu.Lock()
	c.closed = true
	c.stateMu.Unlock()
}

// accepting reports whether packets should be delivered. Audio always flows;
// video and vbss only while subscribed.
func (c *Channel) accepting() bool {
	if c.kind == domain.MediaTypeAudio {
		return true
	}
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state.Subscribed && !c.closed
}

func (c *Channel) format() domain.FormatDescriptor {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.kind == domain.MediaTypeAudio {
		return domain.FormatDescriptor{Audio: &domain.AudioFormat{
			Codec:      c.codec.MimeType,
			SampleRate: int(c.codec.ClockRate),
			Channels:   int(c.codec.Channels),
		}}
	}
	w, h := c.state.Resolution.Dimensions()
	return domain.FormatDescriptor{Video: &domain.VideoFormat{
		Width:       w,
		Height:      h,
		ColorFormat: c.codec.MimeType,
		FrameRate:   c.frameRate,
	}}
}

// readLoop pulls packets until read fails, which happens when the track ends or the
// peer connection closes.
func (c *Channel) readLoop(read func() (*rtp.Packet, error)) {
	for {
		pkt, err := read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Info().Msg("track ended")
			} else {
				c.logger.Warn().Err(err).Msg("track read stopped")
			}
			return
		}
		if !c.accepting() {
			continue
		}
		c.deliver(pkt)
	}
}

func (c *Channel) deliver(pkt *rtp.Packet) {
	c.stateMu.Lock()
	clock := c.codec.ClockRate
	c.stateMu.Unlock()

	buf := c.pool.get(pkt.Payload, rtpTicks(pkt.Timestamp, clock), c.format())

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.handler == nil {
		buf.Release()
		return
	}
	c.handler(buf)
	if !buf.released.Load() {
		c.logger.Error().Msg("handler returned without releasing buffer, reclaiming")
		buf.Release()
	}
}
