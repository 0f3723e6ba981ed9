package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// Tracer is the shared tracer for pipeline spans.
var Tracer = otel.Tracer("wavetrace")

// Metrics definitions
var (
	SamplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavetrace_samples_total",
		Help: "Total number of samples processed, by outcome.",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wavetrace_stage_seconds",
		Help:    "Time spent in each conversion stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavetrace_stage_failures_total",
		Help: "Total number of fatal stage failures, by stage.",
	}, []string{"stage"})

	SignalsEmitted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavetrace_signals_emitted",
		Help: "Number of signal rows emitted by the most recent run.",
	})

	ReorderedSamples = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wavetrace_reordered_samples",
		Help: "Number of samples realigned to a reference order in the most recent run.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavetrace_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavetrace_rescans_throttled_total",
		Help: "Total number of watch-mode rescans dropped by the rate limiter.",
	})
)
