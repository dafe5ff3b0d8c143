package rtc

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/mediabot/internal/core"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rtcpRecorder struct {
	mu      sync.Mutex
	packets []rtcp.Packet
	err     error
}

func (r *rtcpRecorder) write(pkts []rtcp.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.packets = append(r.packets, pkts...)
	return nil
}

func (r *rtcpRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

var opusCodec = webrtc.RTPCodecParameters{
	RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
}

var vp8Codec = webrtc.RTPCodecParameters{
	RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000},
}

func newTestChannel(kind domain.MediaType, rec *rtcpRecorder) *Channel {
	var w func([]rtcp.Packet) error
	if rec != nil {
		w = rec.write
	}
	return newChannel(kind, 0, 30, newBufferPool(zerolog.Nop()), w, zerolog.Nop())
}

// scriptedReader returns the given packets, then io.EOF.
func scriptedReader(pkts ...*rtp.Packet) func() (*rtp.Packet, error) {
	i := 0
	return func() (*rtp.Packet, error) {
		if i >= len(pkts) {
			return nil, io.EOF
		}
		p := pkts[i]
		i++
		return p, nil
	}
}

func packet(ts uint32, payload ...byte) *rtp.Packet {
	return &rtp.Packet{Header: rtp.Header{Timestamp: ts}, Payload: payload}
}

func TestAudioChannelDeliversAndReleases(t *testing.T) {
	ch := newTestChannel(domain.MediaTypeAudio, nil)
	ch.attach(1234, opusCodec)

	var got [][]byte
	var stamps []int64
	ch.OnBuffer(func(buf core.MediaBuffer) {
		defer buf.Release()
		data, err := buf.Data()
		require.NoError(t, err)
		got = append(got, append([]byte(nil), data...))
		stamps = append(stamps, buf.Timestamp())
		assert.Equal(t, 48000, buf.Format().Audio.SampleRate)
		assert.Equal(t, webrtc.MimeTypeOpus, buf.Format().Audio.Codec)
	})

	ch.readLoop(scriptedReader(packet(48000, 1, 2), packet(96000, 3)))

	assert.Equal(t, [][]byte{{1, 2}, {3}}, got)
	assert.Equal(t, []int64{10_000_000, 20_000_000}, stamps)
	assert.Equal(t, int64(0), ch.pool.Outstanding())
}

func TestChannelReclaimsUnreleasedBuffer(t *testing.T) {
	ch := newTestChannel(domain.MediaTypeAudio, nil)
	var kept core.MediaBuffer
	ch.OnBuffer(func(buf core.MediaBuffer) { kept = buf })

	ch.readLoop(scriptedReader(packet(0, 9)))

	assert.Equal(t, int64(0), ch.pool.Outstanding())
	_, err := kept.Data()
	assert.Error(t, err)
}

func TestChannelWithoutHandlerReleases(t *testing.T) {
	ch := newTestChannel(domain.MediaTypeAudio, nil)
	ch.readLoop(scriptedReader(packet(0, 1), packet(1, 2)))
	assert.Equal(t, int64(0), ch.pool.Outstanding())
}

func TestVideoChannelDeliversOnlyWhileSubscribed(t *testing.T) {
	rec := &rtcpRecorder{}
	ch := newTestChannel(domain.MediaTypeVideo, rec)
	ch.attach(42, vp8Codec)

	delivered := 0
	ch.OnBuffer(func(buf core.MediaBuffer) {
		defer buf.Release()
		delivered++
		v := buf.Format().Video
		require.NotNil(t, v)
		assert.Equal(t, 1280, v.Width)
		assert.Equal(t, 720, v.Height)
		assert.Equal(t, float64(30), v.FrameRate)
	})

	ch.readLoop(scriptedReader(packet(0, 1)))
	assert.Equal(t, 0, delivered)

	require.NoError(t, ch.Subscribe(domain.ResolutionHD, 5))
	assert.Equal(t, domain.Subscribed(domain.ResolutionHD, 5), ch.State())
	ch.readLoop(scriptedReader(packet(0, 1), packet(3000, 2)))
	assert.Equal(t, 2, delivered)

	require.NoError(t, ch.Unsubscribe())
	ch.readLoop(scriptedReader(packet(6000, 3)))
	assert.Equal(t, 2, delivered)
	assert.False(t, ch.State().Subscribed)
}

func TestSubscribeRequestsKeyframe(t *testing.T) {
	rec := &rtcpRecorder{}
	ch := newTestChannel(domain.MediaTypeVideo, rec)

	// not attached yet: state only, request goes out on attach
	require.NoError(t, ch.Subscribe(domain.Resolution360p, 1))
	assert.Equal(t, 0, rec.count())

	ch.attach(777, vp8Codec)
	require.Equal(t, 1, rec.count())
	pli, ok := rec.packets[0].(*rtcp.PictureLossIndication)
	require.True(t, ok)
	assert.Equal(t, uint32(777), pli.MediaSSRC)

	require.NoError(t, ch.Subscribe(domain.Resolution1080p, 2))
	assert.Equal(t, 2, rec.count())
}

func TestSubscribeErrors(t *testing.T) {
	audio := newTestChannel(domain.MediaTypeAudio, nil)
	assert.ErrorIs(t, audio.Subscribe(domain.ResolutionHD, 1), ErrNotSubscribable)
	assert.ErrorIs(t, audio.Unsubscribe(), ErrNotSubscribable)

	rec := &rtcpRecorder{err: errors.New("transport closed")}
	video := newTestChannel(domain.MediaTypeVideo, rec)
	assert.ErrorIs(t, video.Subscribe(domain.Resolution(99), 1), domain.ErrInvalidResolution)

	video.attach(1, vp8Codec)
	assert.Error(t, video.Subscribe(domain.ResolutionHD, 1))

	video.close()
	assert.ErrorIs(t, video.Subscribe(domain.ResolutionHD, 1), ErrChannelClosed)
	assert.ErrorIs(t, video.Unsubscribe(), ErrChannelClosed)
}

func TestStaleRegistrationDoesNotDetachNewHandler(t *testing.T) {
	ch := newTestChannel(domain.MediaTypeAudio, nil)
	first := ch.OnBuffer(func(buf core.MediaBuffer) { buf.Release() })
	calls := 0
	second := ch.OnBuffer(func(buf core.MediaBuffer) {
		calls++
		buf.Release()
	})

	first.Deregister()
	ch.readLoop(scriptedReader(packet(0, 1)))
	assert.Equal(t, 1, calls)

	second.Deregister()
	second.Deregister()
	ch.readLoop(scriptedReader(packet(0, 1)))
	assert.Equal(t, 1, calls)
}

func TestDeregisterWaitsForRunningHandler(t *testing.T) {
	ch := newTestChannel(domain.MediaTypeAudio, nil)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	reg := ch.OnBuffer(func(buf core.MediaBuffer) {
		defer buf.Release()
		close(entered)
		<-unblock
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		ch.readLoop(scriptedReader(packet(0, 1)))
	}()
	<-entered

	deregistered := make(chan struct{})
	go func() {
		defer close(deregistered)
		reg.Deregister()
	}()

	select {
	case <-deregistered:
		t.Fatal("Deregister returned while handler was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(unblock)
	<-deregistered
	<-done
}
