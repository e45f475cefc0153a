// Package metrics provides Prometheus metrics for the turn-taking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parley"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics.
	SessionsTotal  prometheus.Counter
	SessionsActive prometheus.Gauge

	// Segment metrics.
	SegmentsReceived prometheus.Counter
	SegmentsDropped  *prometheus.CounterVec
	AudioBytes       prometheus.Counter

	// Turn metrics.
	TranscriptionsPartial prometheus.Counter
	TurnsFinalized        *prometheus.CounterVec
	TurnFragments         prometheus.Histogram
	StateTransitions      *prometheus.CounterVec

	// Oracle metrics.
	OracleRequests prometheus.Counter
	OracleFailures *prometheus.CounterVec
	OracleLatency  prometheus.Histogram

	// Responder metrics.
	DispatchErrors  prometheus.Counter
	DispatchLatency prometheus.Histogram
}

// Default is the process-wide metrics instance.
var Default = New()

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently connected sessions",
		}),
		SegmentsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_received_total",
			Help:      "Total audio segments received from clients",
		}),
		SegmentsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_dropped_total",
			Help:      "Segments dropped, labeled by reason",
		}, []string{"reason"}),
		AudioBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_total",
			Help:      "Total bytes of segment audio received",
		}),
		TranscriptionsPartial: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_partial_total",
			Help:      "Partial transcription notifications emitted",
		}),
		TurnsFinalized: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_finalized_total",
			Help:      "Finalized turns, labeled by trigger (verdict|timeout)",
		}, []string{"trigger"}),
		TurnFragments: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_fragments",
			Help:      "Fragments accumulated per finalized turn",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12},
		}),
		StateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "controller_state_transitions_total",
			Help:      "Turn controller state transitions",
		}, []string{"from", "to"}),
		OracleRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Requests issued to the turn-completion oracle",
		}),
		OracleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_failures_total",
			Help:      "Oracle failures resolved by the fail-open verdict, by reason",
		}, []string{"reason"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_latency_seconds",
			Help:      "Oracle request latency",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 8),
		}),
		DispatchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_errors_total",
			Help:      "Responder dispatch failures surfaced to clients",
		}),
		DispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_latency_seconds",
			Help:      "Time from flush to completed responder dispatch",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}
