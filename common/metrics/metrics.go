// Package metrics exposes Prometheus metrics for the generation pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by generation and LLM metrics.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeOK        = "ok"
)

// Metrics contains Prometheus collectors for generations, completions and HTTP traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	generationsTotal    *prometheus.CounterVec
	generationDuration  prometheus.Histogram
	candidatesCreated   prometheus.Counter
	llmRequestsTotal    *prometheus.CounterVec
	llmRequestDuration  *prometheus.HistogramVec
	llmTokensTotal      *prometheus.CounterVec
	repairsTotal        *prometheus.CounterVec
	batchRunsTotal      *prometheus.CounterVec
	batchSize           prometheus.Histogram
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_processed_total",
			Help: "Generation runs by outcome",
		},
		[]string{"outcome", "error_code"},
	)

	m.generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Wall time of a single generation run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		},
	)

	m.candidatesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "generation_candidates_created_total",
			Help: "Flashcard candidates persisted by generation runs",
		},
	)

	m.llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Completion requests by result kind",
		},
		[]string{"model", "kind"}, // kind: ok, auth, bad_request, rate_limit, server, upstream, network, parse
	)

	m.llmRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Latency of completion requests",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"model"},
	)

	m.llmTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens reported by the completion provider",
		},
		[]string{"model", "type"}, // type: prompt, completion
	)

	m.repairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_response_repairs_total",
			Help: "Malformed completion responses by repair result",
		},
		[]string{"stage"}, // stage: partial_cards, document, failed
	)

	m.batchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_batch_runs_total",
			Help: "Batch runs over pending generations",
		},
		[]string{"status"}, // status: success, error
	)

	m.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_batch_size",
			Help:    "Pending generations picked up per batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

func (m *Metrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.generationsTotal,
		m.generationDuration,
		m.candidatesCreated,
		m.llmRequestsTotal,
		m.llmRequestDuration,
		m.llmTokensTotal,
		m.repairsTotal,
		m.batchRunsTotal,
		m.batchSize,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordGeneration records the outcome of one generation run.
func (m *Metrics) RecordGeneration(outcome, errorCode string, candidates int, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationsTotal.WithLabelValues(outcome, errorCode).Inc()
	m.generationDuration.Observe(duration.Seconds())
	if candidates > 0 {
		m.candidatesCreated.Add(float64(candidates))
	}
}

// ObserveLLMRequest records a completion call. kind is "ok" on success.
func (m *Metrics) ObserveLLMRequest(model, kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmRequestsTotal.WithLabelValues(model, kind).Inc()
	m.llmRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// ObserveLLMTokens records token usage of a successful completion.
func (m *Metrics) ObserveLLMTokens(model string, prompt, completion int) {
	if m == nil {
		return
	}
	m.llmTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.llmTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
}

// RecordRepair records which repair stage recovered a malformed response.
func (m *Metrics) RecordRepair(stage string) {
	if m == nil {
		return
	}
	m.repairsTotal.WithLabelValues(stage).Inc()
}

// RecordBatch records one batch run over pending generations.
func (m *Metrics) RecordBatch(size int, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.batchRunsTotal.WithLabelValues(status).Inc()
	if err == nil {
		m.batchSize.Observe(float64(size))
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
