// Package metrics exposes pipeline counters and latencies as Prometheus
// collectors on a private registry.
//
// All methods are safe to call on a nil *Metrics, so services can be
// constructed without instrumentation in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "genie"

// Metrics holds the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	sourcesLoaded      *prometheus.CounterVec
	sourcesFailed      *prometheus.CounterVec
	buildDuration      *prometheus.HistogramVec
	indexedChunks      prometheus.Gauge
	retrievalLatency   prometheus.Histogram
	rerankFallbacks    prometheus.Counter
	generationFailures *prometheus.CounterVec
	answers            *prometheus.CounterVec
	feedback           *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		sourcesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_loaded_total",
			Help:      "Sources that produced at least one document, by kind.",
		}, []string{"kind"}),
		sourcesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sources_failed_total",
			Help:      "Sources that failed to load, by kind and reason.",
		}, []string{"kind", "reason"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Knowledge base build duration, by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		indexedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_chunks",
			Help:      "Chunks in the most recently built index.",
		}),
		retrievalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Query embedding and vector search latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		rerankFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_fallbacks_total",
			Help:      "Reranker failures answered with the retriever order.",
		}),
		generationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Failed answer generations, by reason.",
		}, []string{"reason"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Generated answers, by whether retrieval was used.",
		}, []string{"retrieval"}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "Recorded feedback, by label.",
		}, []string{"label"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sourcesLoaded,
		m.sourcesFailed,
		m.buildDuration,
		m.indexedChunks,
		m.retrievalLatency,
		m.rerankFallbacks,
		m.generationFailures,
		m.answers,
		m.feedback,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SourceLoaded counts a successfully loaded source.
func (m *Metrics) SourceLoaded(kind string) {
	if m == nil {
		return
	}
	m.sourcesLoaded.WithLabelValues(kind).Inc()
}

// SourceFailed counts a source that failed with the given reason code.
func (m *Metrics) SourceFailed(kind, reason string) {
	if m == nil {
		return
	}
	m.sourcesFailed.WithLabelValues(kind, reason).Inc()
}

// BuildFinished observes a build duration. Successful builds also set
// the indexed chunk gauge.
func (m *Metrics) BuildFinished(d time.Duration, chunks int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	} else {
		m.indexedChunks.Set(float64(chunks))
	}
	m.buildDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RetrievalObserved records one retrieval latency.
func (m *Metrics) RetrievalObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.retrievalLatency.Observe(d.Seconds())
}

// RerankFallback counts a reranker failure.
func (m *Metrics) RerankFallback() {
	if m == nil {
		return
	}
	m.rerankFallbacks.Inc()
}

// GenerationFailed counts a failed generation by reason code.
func (m *Metrics) GenerationFailed(reason string) {
	if m == nil {
		return
	}
	m.generationFailures.WithLabelValues(reason).Inc()
}

// Answered counts a generated answer.
func (m *Metrics) Answered(usedRetrieval bool) {
	if m == nil {
		return
	}
	label := "false"
	if usedRetrieval {
		label = "true"
	}
	m.answers.WithLabelValues(label).Inc()
}

// FeedbackRecorded counts a feedback record.
func (m *Metrics) FeedbackRecorded(label string) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(label).Inc()
}
