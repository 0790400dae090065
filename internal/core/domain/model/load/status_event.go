package load

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrStatusEventIsNotConstructed is returned when a StatusEvent was not
// created via NewStatusEvent.
var ErrStatusEventIsNotConstructed = errors.New("StatusEvent must be created via NewStatusEvent constructor")

// StatusEvent is the append-only audit record of an accepted load transition.
// One event is written per accepted transition; events are never mutated or
// deleted. The event log is the sole source of truth for "what happened
// when" - the Load row only holds current state.
//
// Events for a load are orderable by CreatedAt; no ordering across loads is
// guaranteed or needed.
type StatusEvent struct {
	id        kernel.UUID
	loadID    kernel.UUID
	from      Status
	to        Status
	actor     string
	reason    string
	position  *kernel.GeoPoint
	createdAt time.Time

	isConstructed bool
}

// NewStatusEvent creates an audit record for an accepted transition.
//
// Parameters:
//   - id: event identifier
//   - loadID: the load that transitioned
//   - from, to: the accepted edge
//   - actor: who drove the transition - a dispatcher login, a courier ID, or
//     a system actor such as "geofence" or "blast_sweep" (required)
//   - reason: optional free text shown in the audit trail
//   - position: optional reported position (geofence transitions carry one)
//   - createdAt: event timestamp
func NewStatusEvent(
	id kernel.UUID,
	loadID kernel.UUID,
	from Status,
	to Status,
	actor string,
	reason string,
	position *kernel.GeoPoint,
	createdAt time.Time,
) (StatusEvent, error) {
	if err := errors.Join(
		id.Validate(),
		loadID.Validate(),
		from.Validate(),
		to.Validate(),
	); err != nil {
		return StatusEvent{}, err
	}

	if actor == "" {
		return StatusEvent{}, errs.NewValueIsRequiredError("actor")
	}

	if position != nil {
		if err := position.Validate(); err != nil {
			return StatusEvent{}, err
		}
	}

	return StatusEvent{
		id:            id,
		loadID:        loadID,
		from:          from,
		to:            to,
		actor:         actor,
		reason:        reason,
		position:      position,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the event was created via NewStatusEvent.
func (e StatusEvent) Validate() error {
	if !e.isConstructed {
		return ErrStatusEventIsNotConstructed
	}
	return nil
}

// ID returns the event identifier.
func (e StatusEvent) ID() kernel.UUID {
	return e.id
}

// LoadID returns the identifier of the load that transitioned.
func (e StatusEvent) LoadID() kernel.UUID {
	return e.loadID
}

// From returns the status the load left.
func (e StatusEvent) From() Status {
	return e.from
}

// To returns the status the load entered.
func (e StatusEvent) To() Status {
	return e.to
}

// Actor returns who drove the transition.
func (e StatusEvent) Actor() string {
	return e.actor
}

// Reason returns the optional free-text reason.
func (e StatusEvent) Reason() string {
	return e.reason
}

// Position returns the optional reported position, or nil.
func (e StatusEvent) Position() *kernel.GeoPoint {
	return e.position
}

// CreatedAt returns the event timestamp.
func (e StatusEvent) CreatedAt() time.Time {
	return e.createdAt
}
