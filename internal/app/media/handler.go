// Package media is the ingestion core of the bot: it receives buffers from call channels,
// releases them back to the platform, keeps a copy of the audio and routes subscription
// requests to video sockets and screen share.
package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/dkeye/mediabot/internal/observability/metrics"
	"github.com/rs/zerolog"
)

// DefaultMaxFrameBytes bounds a single audio buffer copy, not the accumulator.
const DefaultMaxFrameBytes = 1 << 20

type Option func(*Handler)

func WithMaxFrameBytes(n int) Option {
	return func(h *Handler) { h.maxFrameBytes = n }
}

func WithMetrics(m *metrics.MediaMetrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// Handler wires the receiver to the session channels and owns the accumulated audio.
type Handler struct {
	sink          core.Sink
	logger        zerolog.Logger
	metrics       *metrics.MediaMetrics
	maxFrameBytes int

	acc  *Accumulator
	recv *Receiver
	subs *SubscriptionManager

	// Callbacks hold the read side while they run; Dispose takes the write side to drain them.
	mu       sync.RWMutex
	disposed bool
	tokens   []core.Registration
}

// NewHandler registers delivery callbacks on every channel the session exposes.
// The audio channel is mandatory.
func NewHandler(session core.MediaSession, sink core.Sink, logger zerolog.Logger, opts ...Option) (*Handler, error) {
	if session == nil || session.AudioChannel() == nil {
		return nil, domain.ErrMissingMandatoryChannel
	}

	h := &Handler{
		sink:          sink,
		logger:        logger.With().Str("module", "media").Logger(),
		maxFrameBytes: DefaultMaxFrameBytes,
	}
	for _, opt := range opts {
		opt(h)
	}

	video := session.VideoChannels()
	vbss := session.ScreenShareChannel()

	h.acc = NewAccumulator()
	h.recv = NewReceiver(h.acc, h.logger, h.metrics, h.maxFrameBytes)
	h.subs = NewSubscriptionManager(video, vbss, h.logger, h.metrics)

	h.register(session.AudioChannel(), domain.MediaTypeAudio, 0, h.recv.OnAudio)
	for i, ch := range video {
		if ch == nil {
			h.logger.Warn().Int("socket", i).Msg("nil video channel, skipping")
			continue
		}
		socket := uint32(i)
		h.register(ch, domain.MediaTypeVideo, socket, func(hd *Handle) { h.recv.OnVideo(socket, hd) })
	}
	if vbss != nil {
		h.register(vbss, domain.MediaTypeScreenShare, 0, h.recv.OnScreenShare)
	}

	h.logger.Info().
		Int("video_sockets", len(video)).
		Bool("screen_share", vbss != nil).
		Int("registrations", len(h.tokens)).
		Msg("media handler ready")
	return h, nil
}

func (h *Handler) register(ch core.Channel, kind domain.MediaType, socket uint32, fn func(*Handle)) {
	reg := ch.OnBuffer(h.deliver(kind, socket, fn))
	if reg != nil {
		h.tokens = append(h.tokens, reg)
	}
}

// deliver builds the callback handed to the platform. The buffer is released on every
// path out of it, including a panic in fn, which is recovered here so it never unwinds
// into the platform's goroutine.
func (h *Handler) deliver(kind domain.MediaType, socket uint32, fn func(*Handle)) core.BufferHandler {
	label := kind.String()
	return func(buf core.MediaBuffer) {
		handle := Acquire(buf)
		h.metrics.RecordBufferReceived(label)
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error().
					Str("kind", label).
					Uint32("socket", socket).
					Interface("panic", r).
					Msg("buffer callback panicked")
				if kind == domain.MediaTypeAudio && !handle.Consumed() {
					h.metrics.RecordFrameDropped("panic")
				}
			}
			handle.Release()
			h.metrics.RecordBufferReleased(label)
		}()

		h.mu.RLock()
		defer h.mu.RUnlock()
		if h.disposed {
			h.logger.Debug().Str("kind", label).Uint32("socket", socket).Msg("buffer after dispose, releasing")
			if kind == domain.MediaTypeAudio {
				h.metrics.RecordFrameDropped("disposed")
			}
			return
		}
		fn(handle)
	}
}

// Subscribe routes to the subscription manager.
func (h *Handler) Subscribe(mediaType domain.MediaType, sourceID uint32, res domain.Resolution, socketID uint32) error {
	if h.Disposed() {
		return domain.ErrDisposed
	}
	return h.subs.Subscribe(mediaType, sourceID, res, socketID)
}

func (h *Handler) Unsubscribe(mediaType domain.MediaType, socketID uint32) error {
	if h.Disposed() {
		return domain.ErrDisposed
	}
	return h.subs.Unsubscribe(mediaType, socketID)
}

// Flush writes every accumulated audio byte, in arrival order, to the configured sink.
// It remains usable after Dispose so the final recording can be written.
func (h *Handler) Flush(ctx context.Context) (FlushResult, error) {
	if h.sink == nil {
		h.logger.Warn().Err(domain.ErrNoSink).Msg("flush skipped")
		return FlushResult{}, domain.ErrNoSink
	}
	res, err := h.acc.Flush(ctx, h.sink)
	if err != nil {
		h.logger.Error().Err(err).Int("frames", res.Frames).Int("bytes", res.Bytes).Msg("flush failed")
		h.metrics.RecordFlush("error", res.Bytes)
		return res, fmt.Errorf("flush audio: %w", err)
	}
	h.logger.Info().
		Str("destination", res.Destination).
		Int("frames", res.Frames).
		Int("bytes", res.Bytes).
		Msg("audio flushed")
	h.metrics.RecordFlush("success", res.Bytes)
	return res, nil
}

// Dispose detaches every registered callback once. Callbacks already running finish first;
// later deliveries are released without processing. Safe to call repeatedly.
func (h *Handler) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	tokens := h.tokens
	h.tokens = nil
	h.mu.Unlock()

	// Deregister outside the lock: a channel may wait for its in-flight callback,
	// which in turn may be waiting on h.mu.
	for _, t := range tokens {
		h.deregister(t)
	}
	h.logger.Info().Int("deregistered", len(tokens)).Msg("media handler disposed")
}

func (h *Handler) deregister(t core.Registration) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("deregister panicked")
		}
	}()
	t.Deregister()
}

func (h *Handler) Disposed() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.disposed
}

func (h *Handler) Accumulator() *Accumulator { return h.acc }

func (h *Handler) Subscriptions() []ChannelStatus { return h.subs.States() }

// Status is a point-in-time view of the handler for the control API.
type Status struct {
	Disposed      bool               `json:"disposed"`
	Frames        int                `json:"frames"`
	Bytes         int                `json:"bytes"`
	Format        domain.AudioFormat `json:"format"`
	Subscriptions []ChannelStatus    `json:"subscriptions"`
}

func (h *Handler) Status() Status {
	return Status{
		Disposed:      h.Disposed(),
		Frames:        h.acc.Len(),
		Bytes:         h.acc.Size(),
		Format:        h.acc.Format(),
		Subscriptions: h.subs.States(),
	}
}
