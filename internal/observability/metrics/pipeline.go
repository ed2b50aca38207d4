package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-summarizer/internal/core/domain"
)

type PipelineMetrics struct {
	service string

	stageDuration    *prometheus.HistogramVec
	runsTotal        *prometheus.CounterVec
	generationsTotal *prometheus.CounterVec
	jobsInFlight     prometheus.Gauge
	jobDuration      *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "stage"},
	)
	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs by variant and status.",
		},
		[]string{"service", "variant", "status"},
	)
	generationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "generations_total",
			Help:      "Total generative service calls by summary kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of in-flight queued document jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Queued document job duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per operation (0 closed, 1 half-open, 2 open).",
		},
		[]string{"service", "operation"},
	)

	registerer.MustRegister(stageDuration, runsTotal, generationsTotal, jobsInFlight, jobDuration, breakerState)

	return &PipelineMetrics{
		service:          service,
		stageDuration:    stageDuration,
		runsTotal:        runsTotal,
		generationsTotal: generationsTotal,
		jobsInFlight:     jobsInFlight,
		jobDuration:      jobDuration,
		breakerState:     breakerState,
	}
}

func (m *PipelineMetrics) ObserveStage(stage domain.Stage, seconds float64) {
	if seconds < 0 {
		return
	}
	m.stageDuration.WithLabelValues(m.service, string(stage)).Observe(seconds)
}

func (m *PipelineMetrics) RecordRun(variant string, err error) {
	m.runsTotal.WithLabelValues(m.service, variant, statusLabel(err)).Inc()
}

func (m *PipelineMetrics) RecordGeneration(kind string, err error) {
	m.generationsTotal.WithLabelValues(m.service, kind, statusLabel(err)).Inc()
}

func (m *PipelineMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *PipelineMetrics) FinishJob(duration time.Duration, err error) {
	m.jobsInFlight.Dec()
	m.jobDuration.WithLabelValues(m.service, statusLabel(err)).Observe(duration.Seconds())
}

// ObserveBreakerState matches resilience.StateListener.
func (m *PipelineMetrics) ObserveBreakerState(operation, _, to string) {
	value := 0.0
	switch to {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
