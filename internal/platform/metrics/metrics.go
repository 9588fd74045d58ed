package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one analysis run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	events    *prometheus.CounterVec
	trips     *prometheus.CounterVec
	faults    *prometheus.CounterVec
	undefined prometheus.Counter
	duration  *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtts_events_total",
			Help: "Events consumed by type.",
		}, []string{"type"}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtts_trips_total",
			Help: "Trips finalized by main mode.",
		}, []string{"mode"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vtts_faults_total",
			Help: "Data faults absorbed by kind.",
		}, []string{"kind"}),
		undefined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vtts_undefined_total",
			Help: "Trips whose VTTS is undefined because the time component is zero.",
		}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vtts_phase_duration_seconds",
			Help: "Wall time spent per run phase.",
		}, []string{"phase"}),
	}

	m.registry.MustRegister(m.events, m.trips, m.faults, m.undefined, m.duration)
	return m
}

func (m *Metrics) Event(typ string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(typ).Inc()
}

func (m *Metrics) Trip(mode string, defined bool) {
	if m == nil {
		return
	}
	m.trips.WithLabelValues(mode).Inc()
	if !defined {
		m.undefined.Inc()
	}
}

func (m *Metrics) Fault(kind string) {
	if m == nil {
		return
	}
	m.faults.WithLabelValues(kind).Inc()
}

func (m *Metrics) Phase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(phase).Set(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile dumps all metrics in text exposition format, for pickup by a
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}
