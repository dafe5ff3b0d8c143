package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkeye/mediabot/internal/app/media"
	"github.com/dkeye/mediabot/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type subscribeCall struct {
	mediaType domain.MediaType
	sourceID  uint32
	res       domain.Resolution
	socketID  uint32
}

type fakeController struct {
	subscribed   []subscribeCall
	unsubscribed []subscribeCall
	err          error
	flush        media.FlushResult
	status       media.Status
}

func (f *fakeController) Subscribe(mt domain.MediaType, sourceID uint32, res domain.Resolution, socketID uint32) error {
	f.subscribed = append(f.subscribed, subscribeCall{mt, sourceID, res, socketID})
	return f.err
}

func (f *fakeController) Unsubscribe(mt domain.MediaType, socketID uint32) error {
	f.unsubscribed = append(f.unsubscribed, subscribeCall{mediaType: mt, socketID: socketID})
	return f.err
}

func (f *fakeController) Flush(context.Context) (media.FlushResult, error) {
	return f.flush, f.err
}

func (f *fakeController) Status() media.Status { return f.status }

func newTestRouter(h *ControlHandlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/subscriptions", h.Subscribe)
	r.DELETE("/api/subscriptions", h.Unsubscribe)
	r.POST("/api/recording/flush", h.Flush)
	r.GET("/api/status", h.Status)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		want []subscribeCall
	}{
		{
			name: "video socket",
			body: `{"media_type":"video","source_id":7,"resolution":"720p","socket_id":1}`,
			code: http.StatusNoContent,
			want: []subscribeCall{{domain.MediaTypeVideo, 7, domain.ResolutionHD, 1}},
		},
		{
			name: "screen share default resolution",
			body: `{"media_type":"vbss","source_id":3}`,
			code: http.StatusNoContent,
			want: []subscribeCall{{domain.MediaTypeScreenShare, 3, domain.ResolutionHD, 0}},
		},
		{
			name: "unknown media type",
			body: `{"media_type":"hologram","source_id":1}`,
			code: http.StatusBadRequest,
		},
		{
			name: "unknown resolution",
			body: `{"media_type":"video","resolution":"8k"}`,
			code: http.StatusBadRequest,
		},
		{
			name: "missing body",
			body: ``,
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &fakeController{}
			w := do(newTestRouter(&ControlHandlers{Media: ctl}), http.MethodPost, "/api/subscriptions", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.want, ctl.subscribed)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("wrap: %w", domain.ErrSocketNotFound), http.StatusBadRequest},
		{domain.ErrInvalidMediaType, http.StatusBadRequest},
		{domain.ErrDisposed, http.StatusConflict},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ctl := &fakeController{err: tt.err}
			r := newTestRouter(&ControlHandlers{Media: ctl})

			w := do(r, http.MethodDelete, "/api/subscriptions", `{"media_type":"video","socket_id":4}`)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.err.Error())
			assert.Equal(t, []subscribeCall{{mediaType: domain.MediaTypeVideo, socketID: 4}}, ctl.unsubscribed)
		})
	}
}

func TestFlushAndStatus(t *testing.T) {
	ctl := &fakeController{
		flush: media.FlushResult{Destination: "/tmp/audio.raw", Frames: 3, Bytes: 960},
		status: media.Status{
			Frames: 3,
			Bytes:  960,
			Subscriptions: []media.ChannelStatus{
				{Kind: domain.MediaTypeVideo, Socket: 0, State: domain.Subscribed(domain.ResolutionHD, 9)},
			},
		},
	}
	r := newTestRouter(&ControlHandlers{Media: ctl, Outstanding: func() int64 { return 2 }})

	w := do(r, http.MethodPost, "/api/recording/flush", "")
	require.Equal(t, http.StatusOK, w.Code)
	var flushed media.FlushResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flushed))
	assert.Equal(t, ctl.flush, flushed)

	w = do(r, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["frames"])
	assert.EqualValues(t, 960, body["bytes"])
	assert.EqualValues(t, 2, body["outstanding_buffers"])
	subs := body["subscriptions"].([]any)
	require.Len(t, subs, 1)
	first := subs[0].(map[string]any)
	assert.Equal(t, "video", first["kind"])
	assert.Equal(t, "720p", first["state"].(map[string]any)["resolution"])
}

func TestFlushFailure(t *testing.T) {
	ctl := &fakeController{err: domain.ErrNoSink}
	w := do(newTestRouter(&ControlHandlers{Media: ctl}), http.MethodPost, "/api/recording/flush", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
