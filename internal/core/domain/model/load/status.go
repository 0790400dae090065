package load

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a load (a single delivery job).
// It implements a state machine with a fixed transition table: any pair of
// states not listed in the table is rejected. The table is expressed as data
// rather than code branches so that dispatch policy changes are reviewed in
// a single place and the whole table is unit-testable by enumeration.
//
// Completed is the only terminal state. Cancelled and Failed each have a
// single recovery edge back to Pending ("reopen").
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when a load is first created.
	// Pending loads are waiting to be assigned or blasted to couriers.
	Pending

	// Assigned indicates a courier has been attached to the load
	// but has not started working it yet.
	Assigned

	// Blasted indicates the load has an active broadcast offer out
	// to multiple couriers.
	Blasted

	// InProgress indicates the assigned courier is actively working the load.
	InProgress

	// ArrivedPickup indicates the courier is at the pickup location.
	ArrivedPickup

	// InTransit indicates the courier has picked up and is en route.
	InTransit

	// ArrivedDelivery indicates the courier is at the delivery location.
	ArrivedDelivery

	// Delivered indicates the freight has been handed over.
	Delivered

	// Completed indicates the load is fully closed out, including paperwork.
	// This is a terminal state with no outgoing transitions.
	Completed

	// Cancelled indicates the job was called off. Recoverable only by
	// reopening back to Pending.
	Cancelled

	// Failed indicates the job could not be carried out. Recoverable only by
	// reopening back to Pending.
	Failed
)

// ErrInvalidTransition is the sentinel for rejected status changes.
// Callers classify rejections with errors.Is against this value.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError reports a rejected status change, identifying the
// attempted from→to pair. Unwraps to ErrInvalidTransition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s to %s is not allowed", ErrInvalidTransition, e.From, e.To)
}

// Unwrap returns the sentinel ErrInvalidTransition for errors.Is classification.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// getStatusStrings returns a map of Status values to their string
// representations. All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		Pending:         "pending",
		Assigned:        "assigned",
		Blasted:         "blasted",
		InProgress:      "in_progress",
		ArrivedPickup:   "arrived_pickup",
		InTransit:       "in_transit",
		ArrivedDelivery: "arrived_delivery",
		Delivered:       "delivered",
		Completed:       "completed",
		Cancelled:       "cancelled",
		Failed:          "failed",
	}
}

// transitionTable returns the fixed set of directed edges of the load status
// state machine. Any (from, to) pair not present here is rejected.
func transitionTable() map[Status][]Status {
	return map[Status][]Status{
		Pending:         {Assigned, Blasted, Cancelled},
		Assigned:        {InProgress, ArrivedPickup, Pending, Cancelled, Failed},
		Blasted:         {Assigned, InProgress, Pending, Cancelled},
		InProgress:      {ArrivedPickup, InTransit, ArrivedDelivery, Delivered, Cancelled, Failed},
		ArrivedPickup:   {InTransit, InProgress, Cancelled, Failed},
		InTransit:       {ArrivedDelivery, Delivered, Cancelled, Failed},
		ArrivedDelivery: {Delivered, Completed, InTransit, Failed},
		Delivered:       {Completed, Failed},
		Cancelled:       {Pending},
		Failed:          {Pending},
	}
}

// AllStatuses returns every valid status in declaration order.
// Useful for exhaustive enumeration in validation and tests.
func AllStatuses() []Status {
	return []Status{
		Pending, Assigned, Blasted, InProgress, ArrivedPickup,
		InTransit, ArrivedDelivery, Delivered, Completed, Cancelled, Failed,
	}
}

// ParseStatus converts a string into a Status. The comparison is
// case-insensitive. Returns an error for unrecognized values.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == needle {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid load status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted snake_case name of the status.
// Implements fmt.Stringer; safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status has no outgoing transitions.
// Completed is the only terminal load status.
func (s Status) IsTerminal() bool {
	return len(transitionTable()[s]) == 0
}

// AllowedTransitions returns the set of statuses reachable from s.
// The returned slice is a copy and may be modified by the caller.
func (s Status) AllowedTransitions() []Status {
	edges := transitionTable()[s]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// CanTransitionTo reports whether the edge s→to exists in the transition table.
// A same-status "transition" is not an edge; callers treat it as a no-op
// before consulting the table.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitionTable()[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo validates the edge s→to against the transition table.
//
// Returns:
//   - (to, nil) when the edge exists
//   - (0, *InvalidTransitionError) when it does not
//
// This method is used by Load.TransitionTo to enforce the state machine;
// it performs no side effects of its own.
func (s Status) TransitionTo(to Status) (Status, error) {
	if err := errors.Join(s.Validate(), to.Validate()); err != nil {
		return Unknown, err
	}

	if !s.CanTransitionTo(to) {
		return Unknown, &InvalidTransitionError{From: s, To: to}
	}

	return to, nil
}
