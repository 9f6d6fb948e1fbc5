package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	providerLatency    *prometheus.HistogramVec
	providerErrors     *prometheus.CounterVec
	aggregations       prometheus.Counter
	aggregationLatency prometheus.Histogram
	quotesReturned     prometheus.Histogram
	circuitTransitions *prometheus.CounterVec
	cacheEvents        *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipquote_provider_call_seconds",
				Help:    "Duration of carrier provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipquote_provider_errors_total",
				Help: "Total provider call failures by kind",
			},
			[]string{"provider", "kind"},
		),
		aggregations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "shipquote_aggregations_total",
				Help: "Total quote aggregation calls",
			},
		),
		aggregationLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipquote_aggregation_seconds",
				Help:    "End-to-end aggregation latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		quotesReturned: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipquote_quotes_returned",
				Help:    "Number of successful quotes per aggregation",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 10},
			},
		),
		circuitTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipquote_circuit_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"name", "from", "to"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipquote_cache_events_total",
				Help: "Cache hits, misses and errors by cache name",
			},
			[]string{"name", "event"},
		),
	}
}

// RecordProviderLatency records the duration of one provider call.
func (r *Recorder) RecordProviderLatency(provider string, seconds float64) {
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordProviderError records a provider failure by kind (timeout, circuit_open, ...).
func (r *Recorder) RecordProviderError(provider, kind string) {
	r.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordAggregation records one aggregation call outcome.
func (r *Recorder) RecordAggregation(quotes, failures int, seconds float64) {
	r.aggregations.Inc()
	r.aggregationLatency.Observe(seconds)
	r.quotesReturned.Observe(float64(quotes))
}

// RecordCircuitTransition records a breaker state change.
func (r *Recorder) RecordCircuitTransition(name, from, to string) {
	r.circuitTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordCacheEvent records a cache hit/miss/error.
func (r *Recorder) RecordCacheEvent(name, event string) {
	r.cacheEvents.WithLabelValues(name, event).Inc()
}
