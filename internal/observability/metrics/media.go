// Package metrics provides Prometheus metrics for media ingestion
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MediaMetrics contains Prometheus metrics for buffer delivery, subscriptions and flushes.
// A nil *MediaMetrics is valid and records nothing.
type MediaMetrics struct {
	registry *prometheus.Registry

	buffersReceivedTotal *prometheus.CounterVec
	buffersReleasedTotal *prometheus.CounterVec
	framesAppendedTotal  prometheus.Counter
	framesDroppedTotal   *prometheus.CounterVec
	accumulatedBytes     prometheus.Gauge
	subscriptionsTotal   *prometheus.CounterVec
	flushesTotal         *prometheus.CounterVec
	flushBytesTotal      prometheus.Counter
}

// NewMediaMetrics creates and registers new media metrics
func NewMediaMetrics(registry *prometheus.Registry) (*MediaMetrics, error) {
	m := &MediaMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MediaMetrics) initMetrics() {
	m.buffersReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_buffers_received_total",
			Help: "Total number of media buffers delivered by the platform",
		},
		[]string{"kind"}, // kind: audio, video, vbss
	)

	m.buffersReleasedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_buffers_released_total",
			Help: "Total number of media buffers released back to the platform",
		},
		[]string{"kind"},
	)

	m.framesAppendedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabot_audio_frames_appended_total",
			Help: "Total number of audio frames appended to the accumulator",
		},
	)

	m.framesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_audio_frames_dropped_total",
			Help: "Total number of audio frames dropped before reaching the accumulator",
		},
		[]string{"reason"}, // reason: copy_failed, panic, disposed
	)

	m.accumulatedBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabot_audio_accumulated_bytes",
			Help: "Bytes of audio currently held by the accumulator",
		},
	)

	m.subscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_subscription_operations_total",
			Help: "Total number of subscribe and unsubscribe operations",
		},
		[]string{"operation", "kind", "result"}, // result: ok, missing_channel, not_found, failed
	)

	m.flushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_flushes_total",
			Help: "Total number of accumulator flushes",
		},
		[]string{"status"}, // status: success, error
	)

	m.flushBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabot_flush_bytes_total",
			Help: "Total bytes handed to the sink by flushes",
		},
	)
}

// Describe implements prometheus.Collector
func (m *MediaMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.buffersReceivedTotal.Describe(ch)
	m.buffersReleasedTotal.Describe(ch)
	m.framesAppendedTotal.Describe(ch)
	m.framesDroppedTotal.Describe(ch)
	m.accumulatedBytes.Describe(ch)
	m.subscriptionsTotal.Describe(ch)
	m.flushesTotal.Describe(ch)
	m.flushBytesTotal.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *MediaMetrics) Collect(ch chan<- prometheus.Metric) {
	m.buffersReceivedTotal.Collect(ch)
	m.buffersReleasedTotal.Collect(ch)
	m.framesAppendedTotal.Collect(ch)
	m.framesDroppedTotal.Collect(ch)
	m.accumulatedBytes.Collect(ch)
	m.subscriptionsTotal.Collect(ch)
	m.flushesTotal.Collect(ch)
	m.flushBytesTotal.Collect(ch)
}

func (m *MediaMetrics) RecordBufferReceived(kind string) {
	if m == nil {
		return
	}
	m.buffersReceivedTotal.WithLabelValues(kind).Inc()
}

func (m *MediaMetrics) RecordBufferReleased(kind string) {
	if m == nil {
		return
	}
	m.buffersReleasedTotal.WithLabelValues(kind).Inc()
}

// RecordFrameAppended counts one frame and grows the accumulator size gauge by its size.
func (m *MediaMetrics) RecordFrameAppended(frameBytes int) {
	if m == nil {
		return
	}
	m.framesAppendedTotal.Inc()
	m.accumulatedBytes.Add(float64(frameBytes))
}

func (m *MediaMetrics) RecordFrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDroppedTotal.WithLabelValues(reason).Inc()
}

func (m *MediaMetrics) RecordSubscription(operation, kind, result string) {
	if m == nil {
		return
	}
	m.subscriptionsTotal.WithLabelValues(operation, kind, result).Inc()
}

func (m *MediaMetrics) RecordFlush(status string, bytes int) {
	if m == nil {
		return
	}
	m.flushesTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.flushBytesTotal.Add(float64(bytes))
	}
}
