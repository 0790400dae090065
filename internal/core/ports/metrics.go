package ports

import (
	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/load"
)

// EngineMetrics collects counters for the dispatch engine's decision points.
// Implementations must be cheap and non-blocking; handlers call these inline.
type EngineMetrics interface {
	// TransitionApplied records an accepted status change.
	TransitionApplied(from load.Status, to load.Status)

	// TransitionRejected records a status change rejected by the transition
	// table or an arrival precondition.
	TransitionRejected(from load.Status, to load.Status)

	// GeofenceRejected records an arrival report outside the tolerance radius.
	GeofenceRejected(eventType string)

	// BlastResolved records a blast reaching a terminal state.
	BlastResolved(outcome blast.Status)

	// EventAppendFailed records a status-event append that failed after the
	// load mutation committed.
	EventAppendFailed()
}

// NopEngineMetrics is an EngineMetrics that records nothing. Used in tests
// and wherever a metrics sink is not wired.
type NopEngineMetrics struct{}

func (NopEngineMetrics) TransitionApplied(load.Status, load.Status)  {}
func (NopEngineMetrics) TransitionRejected(load.Status, load.Status) {}
func (NopEngineMetrics) GeofenceRejected(string)                     {}
func (NopEngineMetrics) BlastResolved(blast.Status)                  {}
func (NopEngineMetrics) EventAppendFailed()                          {}
