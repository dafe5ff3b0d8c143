package media

import (
	"fmt"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/dkeye/mediabot/internal/observability/metrics"
	"github.com/rs/zerolog"
)

// ChannelStatus is a read-only view of one subscribable channel.
type ChannelStatus struct {
	Kind   domain.MediaType         `json:"kind"`
	Socket uint32                   `json:"socket"`
	State  domain.SubscriptionState `json:"state"`
}

// SubscriptionManager routes subscribe/unsubscribe requests to video sockets and vbss.
// Channel failures stop here: they are logged and never reach the caller.
type SubscriptionManager struct {
	video   []core.Channel
	vbss    core.Channel
	logger  zerolog.Logger
	metrics *metrics.MediaMetrics
}

func NewSubscriptionManager(video []core.Channel, vbss core.Channel, logger zerolog.Logger, m *metrics.MediaMetrics) *SubscriptionManager {
	return &SubscriptionManager{
		video:   video,
		vbss:    vbss,
		logger:  logger,
		metrics: m,
	}
}

// Subscribe asks the channel selected by mediaType (and socketID for video) to start
// delivering sourceID at res. Only an invalid media type or an unknown socket is returned.
func (s *SubscriptionManager) Subscribe(mediaType domain.MediaType, sourceID uint32, res domain.Resolution, socketID uint32) error {
	ch, err := s.resolve("subscribe", mediaType, socketID)
	if err != nil || ch == nil {
		return err
	}
	logger := s.logger.With().
		Str("kind", mediaType.String()).
		Uint32("socket", socketID).
		Uint32("source_id", sourceID).
		Str("resolution", res.String()).
		Logger()

	if err := callChannel(func() error { return ch.Subscribe(res, sourceID) }); err != nil {
		logger.Error().Err(err).Msg("subscribe failed")
		s.metrics.RecordSubscription("subscribe", mediaType.String(), "failed")
		return nil
	}
	logger.Info().Msg("subscribed")
	s.metrics.RecordSubscription("subscribe", mediaType.String(), "ok")
	return nil
}

// Unsubscribe stops delivery on the selected channel, with the same policy as Subscribe.
func (s *SubscriptionManager) Unsubscribe(mediaType domain.MediaType, socketID uint32) error {
	ch, err := s.resolve("unsubscribe", mediaType, socketID)
	if err != nil || ch == nil {
		return err
	}
	logger := s.logger.With().
		Str("kind", mediaType.String()).
		Uint32("socket", socketID).
		Logger()

	if err := callChannel(ch.Unsubscribe); err != nil {
		logger.Error().Err(err).Msg("unsubscribe failed")
		s.metrics.RecordSubscription("unsubscribe", mediaType.String(), "failed")
		return nil
	}
	logger.Info().Msg("unsubscribed")
	s.metrics.RecordSubscription("unsubscribe", mediaType.String(), "ok")
	return nil
}

// States snapshots every configured video socket followed by vbss.
func (s *SubscriptionManager) States() []ChannelStatus {
	out := make([]ChannelStatus, 0, len(s.video)+1)
	for i, ch := range s.video {
		if ch == nil {
			continue
		}
		out = append(out, ChannelStatus{Kind: domain.MediaTypeVideo, Socket: uint32(i), State: ch.State()})
	}
	if s.vbss != nil {
		out = append(out, ChannelStatus{Kind: domain.MediaTypeScreenShare, State: s.vbss.State()})
	}
	return out
}

// resolve returns (nil, nil) when the requested kind is simply not configured.
func (s *SubscriptionManager) resolve(op string, mediaType domain.MediaType, socketID uint32) (core.Channel, error) {
	switch mediaType {
	case domain.MediaTypeScreenShare:
		if s.vbss == nil {
			s.logger.Warn().Err(domain.ErrMissingChannel).Str("op", op).Str("kind", mediaType.String()).Msg("no screen share channel, ignoring")
			s.metrics.RecordSubscription(op, mediaType.String(), "missing_channel")
			return nil, nil
		}
		return s.vbss, nil
	case domain.MediaTypeVideo:
		if len(s.video) == 0 {
			s.logger.Warn().Err(domain.ErrMissingChannel).Str("op", op).Str("kind", mediaType.String()).Msg("no video channels, ignoring")
			s.metrics.RecordSubscription(op, mediaType.String(), "missing_channel")
			return nil, nil
		}
		ch, ok := s.videoSocket(socketID)
		if !ok {
			err := fmt.Errorf("%w: socket %d, %d configured", domain.ErrSocketNotFound, socketID, len(s.video))
			s.logger.Error().Err(err).Str("op", op).Msg("video socket lookup failed")
			s.metrics.RecordSubscription(op, mediaType.String(), "not_found")
			return nil, err
		}
		return ch, nil
	default:
		err := fmt.Errorf("%w: %s", domain.ErrInvalidMediaType, mediaType)
		s.logger.Warn().Err(err).Str("op", op).Msg("rejected subscription request")
		s.metrics.RecordSubscription(op, mediaType.String(), "invalid")
		return nil, err
	}
}

func (s *SubscriptionManager) videoSocket(socketID uint32) (core.Channel, bool) {
	if uint64(socketID) >= uint64(len(s.video)) {
		return nil, false
	}
	ch := s.video[socketID]
	return ch, ch != nil
}

// callChannel turns both errors and panics raised by a channel into ErrSubscriptionFailure.
func callChannel(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrSubscriptionFailure, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSubscriptionFailure, err)
	}
	return nil
}
