// Package metrics records engine activity in Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/load"
)

// PromEngineMetrics implements ports.EngineMetrics on a Prometheus registry.
type PromEngineMetrics struct {
	transitionsApplied  *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	geofenceRejected    *prometheus.CounterVec
	blastsResolved      *prometheus.CounterVec
	eventAppendFailures prometheus.Counter
}

// NewPromEngineMetrics registers the engine's collectors on the provided
// registerer. If reg is nil, the default registerer is used. Collectors that
// are already registered are reused.
func NewPromEngineMetrics(reg prometheus.Registerer) (*PromEngineMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PromEngineMetrics{
		transitionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_transitions_applied_total",
			Help: "Accepted load status transitions",
		}, []string{"from", "to"}),
		transitionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_transitions_rejected_total",
			Help: "Load status transitions rejected by the state machine",
		}, []string{"from", "to"}),
		geofenceRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_geofence_rejections_total",
			Help: "Arrival reports rejected for being outside the geofence",
		}, []string{"event_type"}),
		blastsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_blasts_resolved_total",
			Help: "Blasts reaching a terminal state, by outcome",
		}, []string{"outcome"}),
		eventAppendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_event_append_failures_total",
			Help: "Status event appends that failed after the load committed",
		}),
	}

	collectors := []prometheus.Collector{
		m.transitionsApplied,
		m.transitionsRejected,
		m.geofenceRejected,
		m.blastsResolved,
		m.eventAppendFailures,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				m.transitionsApplied = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				m.transitionsRejected = are.ExistingCollector.(*prometheus.CounterVec)
			case 2:
				m.geofenceRejected = are.ExistingCollector.(*prometheus.CounterVec)
			case 3:
				m.blastsResolved = are.ExistingCollector.(*prometheus.CounterVec)
			case 4:
				m.eventAppendFailures = are.ExistingCollector.(prometheus.Counter)
			}
		}
	}

	return m, nil
}

// TransitionApplied counts an accepted transition by edge.
func (m *PromEngineMetrics) TransitionApplied(from, to load.Status) {
	m.transitionsApplied.WithLabelValues(from.String(), to.String()).Inc()
}

// TransitionRejected counts a transition the state machine refused.
func (m *PromEngineMetrics) TransitionRejected(from, to load.Status) {
	m.transitionsRejected.WithLabelValues(from.String(), to.String()).Inc()
}

// GeofenceRejected counts an arrival report outside tolerance.
func (m *PromEngineMetrics) GeofenceRejected(eventType string) {
	m.geofenceRejected.WithLabelValues(eventType).Inc()
}

// BlastResolved counts a blast reaching a terminal state.
func (m *PromEngineMetrics) BlastResolved(outcome blast.Status) {
	m.blastsResolved.WithLabelValues(outcome.String()).Inc()
}

// EventAppendFailed counts a partial write on the audit log.
func (m *PromEngineMetrics) EventAppendFailed() {
	m.eventAppendFailures.Inc()
}
