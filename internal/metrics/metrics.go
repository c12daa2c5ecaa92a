// Package metrics defines Prometheus collectors for monitoring query
// streams. Collectors are registered against an explicit Registerer
// supplied by the caller; there is no package-level registry state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StreamMetrics holds all stream-related Prometheus metrics
type StreamMetrics struct {
	StreamsOpened   prometheus.Counter
	StreamsActive   prometheus.Gauge
	MessagesTotal   prometheus.Counter
	BatchesTotal    prometheus.Counter
	RecordsTotal    prometheus.Counter
	BatchSize       prometheus.Histogram
	TransportErrors prometheus.Counter
	FetchFailures   prometheus.Counter
}

// NewStreamMetrics creates and registers all stream metrics on reg.
func NewStreamMetrics(reg prometheus.Registerer) *StreamMetrics {
	factory := promauto.With(reg)
	return &StreamMetrics{
		StreamsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_streams_opened_total",
			Help: "Total number of monitoring streams opened",
		}),
		StreamsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "openwatch_streams_active",
			Help: "Number of monitoring streams currently open",
		}),
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_messages_received_total",
			Help: "Total number of response messages received",
		}),
		BatchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_batches_received_total",
			Help: "Total number of non-empty record batches received",
		}),
		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_records_received_total",
			Help: "Total number of records received",
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "openwatch_batch_size",
			Help:    "Size of received record batches",
			Buckets: prometheus.LinearBuckets(1, 20, 10), // 1 to ~200
		}),
		TransportErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_transport_errors_total",
			Help: "Total number of websocket transport errors",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "openwatch_fetch_failures_total",
			Help: "Total number of fetch failures reported by the server",
		}),
	}
}

// ObserveBatch records one received batch of the given size.
func (m *StreamMetrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
	m.RecordsTotal.Add(float64(size))
	m.BatchSize.Observe(float64(size))
}
