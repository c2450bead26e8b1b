// Package metrics exposes tracker polling as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openbob/openbob/internal/tracker"
)

// Metrics holds the tracker collectors on a private registry, so several
// instances can coexist in one process
type Metrics struct {
	registry *prometheus.Registry

	Polls        *prometheus.CounterVec
	PollDuration prometheus.Histogram
	Events       *prometheus.CounterVec
	OpenWindows  prometheus.Gauge
	Tracked      prometheus.Gauge
}

// New creates the collectors and registers the Go runtime collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbob_polls_total",
				Help: "Poll cycles by result",
			},
			[]string{"result"},
		),
		PollDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "openbob_poll_duration_seconds",
				Help:    "Time spent enumerating and diffing windows",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "openbob_window_events_total",
				Help: "Window lifecycle events by kind",
			},
			[]string{"kind"},
		),
		OpenWindows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "openbob_windows_open",
				Help: "Windows open after the last poll",
			},
		),
		Tracked: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "openbob_windows_tracked",
				Help: "Windows seen since the tracker started",
			},
		),
	}
}

func (m *Metrics) ObservePoll(result string, took time.Duration) {
	m.Polls.WithLabelValues(result).Inc()
	m.PollDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveEvents(events []tracker.Event) {
	for _, ev := range events {
		m.Events.WithLabelValues(string(ev.Kind)).Inc()
	}
}

func (m *Metrics) ObserveWindows(open, tracked int) {
	m.OpenWindows.Set(float64(open))
	m.Tracked.Set(float64(tracked))
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
