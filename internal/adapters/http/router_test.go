package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/mediabot/internal/app/media"
	"github.com/dkeye/mediabot/internal/config"
	"github.com/dkeye/mediabot/internal/domain"
	transport "github.com/dkeye/mediabot/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMedia struct{ subscribes int }

func (s *stubMedia) Subscribe(domain.MediaType, uint32, domain.Resolution, uint32) error {
	s.subscribes++
	return nil
}
func (s *stubMedia) Unsubscribe(domain.MediaType, uint32) error { return nil }
func (s *stubMedia) Flush(context.Context) (media.FlushResult, error) {
	return media.FlushResult{}, nil
}
func (s *stubMedia) Status() media.Status { return media.Status{} }

func testConfig() *config.Config {
	return &config.Config{
		Mode:      "test",
		Secret:    "secret",
		RateLimit: config.RateLimitConfig{Requests: 2, Interval: time.Minute},
	}
}

func TestClientTokenCookie(t *testing.T) {
	r := SetupRouter(context.Background(), testConfig(), Deps{Control: &transport.ControlHandlers{Media: &stubMedia{}}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == clientTokenCookie {
			token = c.Value
		}
	}
	assert.Len(t, token, 36)
}

func TestSubscriptionsAreRateLimited(t *testing.T) {
	m := &stubMedia{}
	r := SetupRouter(context.Background(), testConfig(), Deps{Control: &transport.ControlHandlers{Media: m}})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/subscriptions", strings.NewReader(`{"media_type":"video"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: clientTokenCookie, Value: "same-client"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 2, m.subscribes)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "mediabot_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	r := SetupRouter(context.Background(), testConfig(), Deps{Gatherer: reg})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mediabot_test_total 1")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
