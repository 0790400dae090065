// Package load contains the Load aggregate and its status state machine.
//
// The Load is the single shared mutable resource of the dispatch engine.
// Every writer - dispatcher, courier response, geofence detector, expiry
// sweep - changes status exclusively through Load.TransitionTo, which
// enforces the fixed transition table in Status. StatusEvent is the
// append-only audit record written for each accepted transition.
//
// The package is pure domain logic: no persistence, no I/O. Repositories
// reconstruct aggregates with RestoreLoad and persist them through the
// ports defined in internal/core/ports.
package load
