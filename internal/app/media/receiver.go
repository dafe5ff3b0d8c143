package media

import (
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/dkeye/mediabot/internal/observability/metrics"
	"github.com/rs/zerolog"
)

// Receiver holds the per-kind delivery callbacks.
// It never releases buffers itself; the caller owns the Handle and releases it.
type Receiver struct {
	acc           *Accumulator
	logger        zerolog.Logger
	metrics       *metrics.MediaMetrics
	maxFrameBytes int
}

func NewReceiver(acc *Accumulator, logger zerolog.Logger, m *metrics.MediaMetrics, maxFrameBytes int) *Receiver {
	return &Receiver{
		acc:           acc,
		logger:        logger,
		metrics:       m,
		maxFrameBytes: maxFrameBytes,
	}
}

// OnAudio copies the payload into an owned frame and appends it.
// A failed copy drops the sample.
func (r *Receiver) OnAudio(h *Handle) {
	buf := h.Buffer()
	data, err := h.CopyPayload(r.maxFrameBytes)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("kind", domain.MediaTypeAudio.String()).
			Int("length", buf.Length()).
			Int64("timestamp", buf.Timestamp()).
			Msg("audio buffer dropped")
		r.metrics.RecordFrameDropped("copy_failed")
		return
	}

	frame := domain.AudioFrame{Data: data, Timestamp: buf.Timestamp()}
	if f := buf.Format().Audio; f != nil {
		frame.Format = *f
	}
	total := r.acc.Append(frame)
	h.markConsumed()
	r.metrics.RecordFrameAppended(len(data))

	r.logger.Debug().
		Str("kind", domain.MediaTypeAudio.String()).
		Int("length", len(data)).
		Int64("timestamp", frame.Timestamp).
		Int("accumulated", total).
		Msg("audio buffer received")
}

// OnVideo logs the frame description; the payload is not kept.
func (r *Receiver) OnVideo(socket uint32, h *Handle) {
	r.logVideo(domain.MediaTypeVideo, socket, h)
}

// OnScreenShare logs the vbss frame description; the payload is not kept.
func (r *Receiver) OnScreenShare(h *Handle) {
	r.logVideo(domain.MediaTypeScreenShare, 0, h)
}

func (r *Receiver) logVideo(kind domain.MediaType, socket uint32, h *Handle) {
	buf := h.Buffer()
	ev := r.logger.Debug().
		Str("kind", kind.String()).
		Uint32("socket", socket).
		Int("length", buf.Length()).
		Int64("timestamp", buf.Timestamp())
	if v := buf.Format().Video; v != nil {
		ev = ev.
			Int("width", v.Width).
			Int("height", v.Height).
			Str("color_format", v.ColorFormat).
			Float64("frame_rate", v.FrameRate)
	}
	ev.Msg("video buffer received")
}
