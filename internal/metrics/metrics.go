// Package metrics exposes Prometheus counters for the audit and solar
// pipelines.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline names used as the "pipeline" label.
const (
	PipelineAudit     = "audit"
	PipelineSolar     = "solar"
	PipelineSiteVisit = "site_visit"
	PipelineLead      = "lead"
)

// Run outcomes used as the "status" label.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the registered collectors. A nil *Metrics is a no-op.
type Metrics struct {
	adviceServed   *prometheus.CounterVec
	adviceFallback *prometheus.CounterVec
	adviceLatency  prometheus.Histogram
	adviceCost     prometheus.Counter
	breakerState   prometheus.Gauge
	pipelineRuns   *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered on the default
// Prometheus registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		adviceServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarsense_advice_served_total",
			Help: "Advice lists served by origin.",
		}, []string{"origin"}),
		adviceFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarsense_advice_fallback_total",
			Help: "Fallback advice lists by low-cardinality reason.",
		}, []string{"reason"}),
		adviceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solarsense_advice_request_seconds",
			Help:    "Latency of advice service requests, including failures.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		adviceCost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solarsense_advice_cost_usd_total",
			Help: "Estimated advice service spend in USD.",
		}),
		breakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solarsense_advice_circuit_state",
			Help: "Advice circuit breaker state: 0 closed, 1 open, 2 half-open.",
		}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solarsense_pipeline_runs_total",
			Help: "Pipeline runs by name and status.",
		}, []string{"pipeline", "status"}),
	}

	reg.MustRegister(
		m.adviceServed,
		m.adviceFallback,
		m.adviceLatency,
		m.adviceCost,
		m.breakerState,
		m.pipelineRuns,
	)
	return m
}

// AdviceServed counts one advice list by origin ("service" or "fallback").
// A non-empty reason is also counted for fallback lists.
func (m *Metrics) AdviceServed(origin, reason string) {
	if m == nil {
		return
	}
	m.adviceServed.WithLabelValues(origin).Inc()
	if reason != "" {
		m.adviceFallback.WithLabelValues(reason).Inc()
	}
}

// ObserveAdviceLatency records how long an advice request took.
func (m *Metrics) ObserveAdviceLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.adviceLatency.Observe(d.Seconds())
}

// AddAdviceCost adds usd to the advice spend counter. Non-positive values
// are ignored.
func (m *Metrics) AddAdviceCost(usd float64) {
	if m == nil || usd <= 0 {
		return
	}
	m.adviceCost.Add(usd)
}

// SetBreakerState records the numeric circuit state.
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.breakerState.Set(float64(state))
}

// PipelineRun counts a pipeline run, classifying it by err.
func (m *Metrics) PipelineRun(pipeline string, err error) {
	if m == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.pipelineRuns.WithLabelValues(pipeline, status).Inc()
}
