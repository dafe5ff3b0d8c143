package media

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
)

var errForeign = errors.New("foreign buffer invalidated")

type fakeBuffer struct {
	data     []byte
	length   int
	ts       int64
	format   domain.FormatDescriptor
	dataErr  error
	dataHook func()
	releases atomic.Int32
}

func audioBuffer(data []byte, ts int64) *fakeBuffer {
	return &fakeBuffer{
		data:   data,
		length: len(data),
		ts:     ts,
		format: domain.FormatDescriptor{Audio: &domain.AudioFormat{Codec: "pcm", SampleRate: 16000, Channels: 1, BitDepth: 16}},
	}
}

func videoBuffer(n int) *fakeBuffer {
	return &fakeBuffer{
		data:   make([]byte, n),
		length: n,
		ts:     42,
		format: domain.FormatDescriptor{Video: &domain.VideoFormat{Width: 1280, Height: 720, ColorFormat: "NV12", FrameRate: 30}},
	}
}

func (b *fakeBuffer) Data() ([]byte, error) {
	if b.dataHook != nil {
		b.dataHook()
	}
	if b.dataErr != nil {
		return nil, b.dataErr
	}
	return b.data, nil
}

func (b *fakeBuffer) Length() int                     { return b.length }
func (b *fakeBuffer) Timestamp() int64                { return b.ts }
func (b *fakeBuffer) Format() domain.FormatDescriptor { return b.format }
func (b *fakeBuffer) Release()                        { b.releases.Add(1) }
func (b *fakeBuffer) Released() int32                 { return b.releases.Load() }

type fakeRegistration struct {
	ch *fakeChannel
}

func (r *fakeRegistration) Deregister() {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()
	r.ch.deregistered++
	r.ch.handler = nil
}

type fakeChannel struct {
	kind  domain.MediaType
	index uint32

	mu           sync.Mutex
	handler      core.BufferHandler
	registered   int
	deregistered int
	state        domain.SubscriptionState
	subErr       error
}

func newFakeChannel(kind domain.MediaType, index uint32) *fakeChannel {
	return &fakeChannel{kind: kind, index: index}
}

func (c *fakeChannel) Kind() domain.MediaType { return c.kind }
func (c *fakeChannel) Index() uint32          { return c.index }

func (c *fakeChannel) OnBuffer(fn core.BufferHandler) core.Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
	c.registered++
	return &fakeRegistration{ch: c}
}

// fire delivers buf the way the platform does, releasing it if nobody is registered.
func (c *fakeChannel) fire(buf core.MediaBuffer) {
	c.mu.Lock()
	fn := c.handler
	c.mu.Unlock()
	if fn == nil {
		buf.Release()
		return
	}
	fn(buf)
}

func (c *fakeChannel) Subscribe(res domain.Resolution, sourceID uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subErr != nil {
		return c.subErr
	}
	c.state = domain.Subscribed(res, sourceID)
	return nil
}

func (c *fakeChannel) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subErr != nil {
		return c.subErr
	}
	c.state = domain.SubscriptionState{}
	return nil
}

func (c *fakeChannel) State() domain.SubscriptionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeChannel) counts() (registered, deregistered int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered, c.deregistered
}

type fakeSession struct {
	audio core.Channel
	video []core.Channel
	vbss  core.Channel
}

func (s *fakeSession) AudioChannel() core.Channel       { return s.audio }
func (s *fakeSession) VideoChannels() []core.Channel    { return s.video }
func (s *fakeSession) ScreenShareChannel() core.Channel { return s.vbss }

type memorySink struct {
	mu     sync.Mutex
	writes [][]byte
	format domain.AudioFormat
	err    error
}

func (s *memorySink) Write(_ context.Context, format domain.AudioFormat, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.writes = append(s.writes, data)
	s.format = format
	return "memory://recording", nil
}

func (s *memorySink) last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		return nil
	}
	return s.writes[len(s.writes)-1]
}
