package rtc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

var ErrSessionClosed = errors.New("session closed")

type SessionConfig struct {
	// VideoSockets is the number of recv-only video transceivers.
	VideoSockets int
	ScreenShare  bool
	// FrameRate is reported in video buffer formats; RTP does not carry it.
	FrameRate  float64
	ICEServers []string
}

// Session is the bot's side of a call: one peer connection whose recv-only
// transceivers are the audio, video and vbss channels.
type Session struct {
	pc     *webrtc.PeerConnection
	sid    string
	logger zerolog.Logger
	pool   *bufferPool

	audio      *Channel
	video      []*Channel
	vbss       *Channel
	byReceiver map[*webrtc.RTPReceiver]*Channel

	loops  conc.WaitGroup
	cancel context.CancelFunc

	onICE     func(webrtc.ICECandidateInit)
	onClosed  func()
	closeOnce sync.Once
	closed    atomic.Bool
}

func DefaultWebRTCConfig(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		iceServers = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: iceServers,
			},
		},
	}
}

// NewSession creates the peer connection and declares every channel up front, so the
// media core can register on them before any track arrives.
func NewSession(cfg SessionConfig, sid string, logger zerolog.Logger) (*Session, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	se := webrtc.SettingEngine{}
	se.LoggerFactory = newLoggerFactory(logger.With().Str("module", "pion").Logger())
	api := webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithSettingEngine(se))

	pc, err := api.NewPeerConnection(DefaultWebRTCConfig(cfg.ICEServers))
	if err != nil {
		return nil, err
	}

	s := &Session{
		pc:         pc,
		sid:        sid,
		logger:     logger.With().Str("module", "webrtc").Str("sid", sid).Logger(),
		byReceiver: make(map[*webrtc.RTPReceiver]*Channel),
	}
	s.pool = newBufferPool(s.logger)

	recvOnly := webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly}
	addChannel := func(codecType webrtc.RTPCodecType, kind domain.MediaType, index uint32) (*Channel, error) {
		tr, err := pc.AddTransceiverFromKind(codecType, recvOnly)
		if err != nil {
			return nil, err
		}
		ch := newChannel(kind, index, cfg.FrameRate, s.pool, pc.WriteRTCP, s.logger)
		s.byReceiver[tr.Receiver()] = ch
		return ch, nil
	}

	if s.audio, err = addChannel(webrtc.RTPCodecTypeAudio, domain.MediaTypeAudio, 0); err != nil {
		_ = pc.Close()
		return nil, err
	}
	for i := 0; i < cfg.VideoSockets; i++ {
		ch, err := addChannel(webrtc.RTPCodecTypeVideo, domain.MediaTypeVideo, uint32(i))
		if err != nil {
			_ = pc.Close()
			return nil, err
		}
		s.video = append(s.video, ch)
	}
	if cfg.ScreenShare {
		if s.vbss, err = addChannel(webrtc.RTPCodecTypeVideo, domain.MediaTypeScreenShare, 0); err != nil {
			_ = pc.Close()
			return nil, err
		}
	}

	s.logger.Info().Int("video_sockets", len(s.video)).Bool("screen_share", s.vbss != nil).Msg("session created")
	return s, nil
}

// Start configures internal callbacks and binds the connection lifetime to ctx.
func (s *Session) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.pc.OnICEConnectionStateChange(func(st webrtc.ICEConnectionState) {
		s.logger.Info().Str("ice_state", st.String()).Msg("ICE state")
		if st == webrtc.ICEConnectionStateFailed ||
			st == webrtc.ICEConnectionStateClosed {
			cancel()
		}
	})

	s.pc.OnConnectionStateChange(func(st webrtc.PeerConnectionState) {
		s.logger.Info().Str("peer_connection_state", st.String()).Msg("Peer state")
		if st == webrtc.PeerConnectionStateFailed ||
			st == webrtc.PeerConnectionStateClosed {
			s.notifyClosed()
		}
	})

	s.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && s.onICE != nil {
			s.onICE(cand.ToJSON())
		}
	})

	s.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		ch, ok := s.byReceiver[receiver]
		if !ok {
			s.logger.Warn().Str("track_id", track.ID()).Msg("track for unknown transceiver")
			return
		}
		ch.attach(uint32(track.SSRC()), track.Codec())
		s.loops.Go(func() {
			ch.readLoop(func() (*rtp.Packet, error) {
				pkt, _, err := track.ReadRTP()
				return pkt, err
			})
		})
	})

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	return nil
}

func (s *Session) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if err := s.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}

	gatherComplete := webrtc.GatheringCompletePromise(s.pc)
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	<-gatherComplete

	return s.pc.LocalDescription(), nil
}

func (s *Session) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return s.pc.AddICECandidate(ci)
}

func (s *Session) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	s.onICE = fn
}

// OnClosed sets a callback invoked once when the connection goes away.
func (s *Session) OnClosed(fn func()) { s.onClosed = fn }

func (s *Session) notifyClosed() {
	s.closeOnce.Do(func() {
		if s.onClosed != nil {
			s.onClosed()
		}
	})
}

// Close tears down the peer connection and waits for every read loop to return.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	for _, ch := range s.channels() {
		ch.close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.pc.Close(); err != nil {
		s.logger.Error().Err(err).Msg("close error")
	} else {
		s.logger.Info().Msg("closed")
	}
	s.loops.Wait()
	s.notifyClosed()
}

func (s *Session) IsClosed() bool { return s.closed.Load() }

func (s *Session) AudioChannel() core.Channel { return s.audio }

func (s *Session) VideoChannels() []core.Channel {
	out := make([]core.Channel, len(s.video))
	for i, ch := range s.video {
		out[i] = ch
	}
	return out
}

// ScreenShareChannel returns an untyped nil when vbss is disabled.
func (s *Session) ScreenShareChannel() core.Channel {
	if s.vbss == nil {
		return nil
	}
	return s.vbss
}

// Outstanding is the number of delivered buffers not yet released.
func (s *Session) Outstanding() int64 { return s.pool.Outstanding() }

func (s *Session) channels() []*Channel {
	out := make([]*Channel, 0, len(s.video)+2)
	out = append(out, s.audio)
	out = append(out, s.video...)
	if s.vbss != nil {
		out = append(out, s.vbss)
	}
	return out
}
