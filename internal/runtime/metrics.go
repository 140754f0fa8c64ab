package runtime

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	plansCreated     prometheus.Counter
	runs             *prometheus.CounterVec
	stepDuration     *prometheus.HistogramVec
	upstreamFailures *prometheus.CounterVec
	critiqueRetries  prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		plansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deepresearch_plans_created_total",
			Help: "Research plans created.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_runs_total",
			Help: "Finished research runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deepresearch_step_duration_seconds",
			Help:    "Duration of research pipeline steps.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
		upstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepresearch_upstream_failures_total",
			Help: "Failed calls to search or quote providers.",
		}, []string{"provider"}),
		critiqueRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deepresearch_critique_retries_total",
			Help: "Quantitative re-runs requested by the critic.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.plansCreated, m.runs, m.stepDuration, m.upstreamFailures, m.critiqueRetries,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) PlanCreated() {
	if m == nil {
		return
	}
	m.plansCreated.Inc()
}

func (m *Metrics) RunFinished(mode, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveStep(step string, d time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (m *Metrics) UpstreamFailure(provider string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) CritiqueRetry() {
	if m == nil {
		return
	}
	m.critiqueRetries.Inc()
}
