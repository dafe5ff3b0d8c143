package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// Peer is the bot's media connection as seen by signaling.
type Peer interface {
	ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error)
	AddICECandidate(ci webrtc.ICECandidateInit) error
	OnICECandidate(fn func(webrtc.ICECandidateInit))
}

// SignalWSController negotiates the single bot peer connection over WebSocket.
type SignalWSController struct {
	peer       Peer
	readLimit  int64
	pingPeriod time.Duration

	mu     sync.Mutex
	active *WsSignalConn
}

// NewSignalWSController wires local ICE candidates to the active connection.
// A positive pingPeriod enables WebSocket keepalive pings.
func NewSignalWSController(peer Peer, readLimit int64, pingPeriod time.Duration) *SignalWSController {
	ctl := &SignalWSController{peer: peer, readLimit: readLimit, pingPeriod: pingPeriod}
	peer.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		if c := ctl.activeConn(); c != nil {
			ctl.sendCandidate(c, ci)
		}
	})
	return ctl
}

func (ctl *SignalWSController) activeConn() *WsSignalConn {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	return ctl.active
}

// setActive makes c the target for local ICE candidates.
func (ctl *SignalWSController) setActive(c *WsSignalConn) {
	ctl.mu.Lock()
	ctl.active = c
	ctl.mu.Unlock()
}

func (ctl *SignalWSController) clearActive(c *WsSignalConn) {
	ctl.mu.Lock()
	if ctl.active == c {
		ctl.active = nil
	}
	ctl.mu.Unlock()
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

var _ core.SignalConnection = (*WsSignalConn)(nil)

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", sid).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()
}
