package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the run collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	duration *prometheus.HistogramVec
	progress *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the Go
// and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipedeck_actions_started_total",
				Help: "Total number of actions started",
			},
			[]string{"kind"},
		),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipedeck_actions_finished_total",
				Help: "Total number of actions finished, by terminal phase",
			},
			[]string{"kind", "phase"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipedeck_action_duration_seconds",
				Help:    "Duration of action runs",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
			},
			[]string{"kind"},
		),
		progress: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipedeck_progress_events_total",
				Help: "Total number of progress updates applied",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.started, m.finished, m.duration, m.progress,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(_ context.Context, e *domain.RunEvent) {
			m.started.WithLabelValues(string(e.Kind)).Inc()
		},
		OnProgress: func(_ context.Context, e *domain.ProgressEvent) {
			m.progress.WithLabelValues(string(e.Kind)).Inc()
		},
		OnComplete: func(_ context.Context, o *domain.Outcome) {
			m.finished.WithLabelValues(string(o.Kind), string(o.Phase)).Inc()
			m.duration.WithLabelValues(string(o.Kind)).Observe(o.Duration().Seconds())
		},
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
