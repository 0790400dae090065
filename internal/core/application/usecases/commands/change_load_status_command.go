package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrChangeLoadStatusCommandIsNotConstructed = errors.New(
	"ChangeLoadStatusCommand must be created via NewChangeLoadStatusCommand constructor",
)

// ChangeLoadStatusCommand requests a manual load status transition on behalf
// of a dispatcher or courier. The transition table decides whether the change
// is allowed; every accepted change is recorded in the status-event log with
// the acting party and an optional free-text reason.
//
// Example:
//
//	cmd, err := NewChangeLoadStatusCommand(loadID, load.InTransit, "dispatcher:amy", "left the dock", nil)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, load.ErrInvalidTransition) {
//	    // rejected change, surface the from→to pair to the actor
//	}
type ChangeLoadStatusCommand struct {
	loadID    kernel.UUID
	target    load.Status
	actor     string
	reason    string
	courierID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewChangeLoadStatusCommand creates a command to change a load's status.
//
// Parameters:
//   - loadID: the load to mutate
//   - target: the requested status
//   - actor: who requests the change (required, recorded in the audit log)
//   - reason: optional free-text context for the audit log
//   - courierID: the courier to attach; required when target is Assigned,
//     ignored otherwise
func NewChangeLoadStatusCommand(
	loadID kernel.UUID,
	target load.Status,
	actor string,
	reason string,
	courierID *kernel.UUID,
) (ChangeLoadStatusCommand, error) {
	if err := errors.Join(loadID.Validate(), target.Validate()); err != nil {
		return ChangeLoadStatusCommand{}, err
	}

	if actor == "" {
		return ChangeLoadStatusCommand{}, errs.NewValueIsRequiredError("actor")
	}

	if target == load.Assigned && courierID == nil {
		return ChangeLoadStatusCommand{}, errs.NewValueIsRequiredError("courierID")
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return ChangeLoadStatusCommand{}, err
		}
	}

	return ChangeLoadStatusCommand{
		loadID:    loadID,
		target:    target,
		actor:     actor,
		reason:    reason,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// LoadID returns the load to mutate.
func (c ChangeLoadStatusCommand) LoadID() kernel.UUID {
	return c.loadID
}

// Target returns the requested status.
func (c ChangeLoadStatusCommand) Target() load.Status {
	return c.target
}

// Actor returns the requesting party.
func (c ChangeLoadStatusCommand) Actor() string {
	return c.actor
}

// Reason returns the optional audit context.
func (c ChangeLoadStatusCommand) Reason() string {
	return c.reason
}

// CourierID returns the courier to attach, set only for assignment.
func (c ChangeLoadStatusCommand) CourierID() *kernel.UUID {
	return c.courierID
}

// Validate ensures the command was created through the constructor.
func (c ChangeLoadStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeLoadStatusCommandIsNotConstructed)
}
