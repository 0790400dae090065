package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateBlastCommandIsNotConstructed = errors.New(
	"CreateBlastCommand must be created via NewCreateBlastCommand constructor",
)

// CreateBlastCommand broadcasts one load to a set of couriers. The load
// moves to blasted and each recipient gets a pending response plus a push
// notification; the first courier to respond interested wins the load.
type CreateBlastCommand struct {
	blastID      kernel.UUID
	loadID       kernel.UUID
	recipientIDs []kernel.UUID
	window       time.Duration
	actor        string

	guard guard.ConstructorGuard
}

// NewCreateBlastCommand creates a command to broadcast a load.
//
// Parameters:
//   - blastID: identifier for the new blast
//   - loadID: the load to offer
//   - recipientIDs: couriers receiving the offer (at least one)
//   - window: how long responses are accepted
//   - actor: the dispatcher creating the blast (recorded in the audit log)
func NewCreateBlastCommand(
	blastID kernel.UUID,
	loadID kernel.UUID,
	recipientIDs []kernel.UUID,
	window time.Duration,
	actor string,
) (CreateBlastCommand, error) {
	if err := errors.Join(blastID.Validate(), loadID.Validate()); err != nil {
		return CreateBlastCommand{}, err
	}

	if actor == "" {
		return CreateBlastCommand{}, errs.NewValueIsRequiredError("actor")
	}

	return CreateBlastCommand{
		blastID:      blastID,
		loadID:       loadID,
		recipientIDs: recipientIDs,
		window:       window,
		actor:        actor,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// BlastID returns the identifier for the new blast.
func (c CreateBlastCommand) BlastID() kernel.UUID {
	return c.blastID
}

// LoadID returns the load to offer.
func (c CreateBlastCommand) LoadID() kernel.UUID {
	return c.loadID
}

// RecipientIDs returns the couriers receiving the offer.
func (c CreateBlastCommand) RecipientIDs() []kernel.UUID {
	return c.recipientIDs
}

// Window returns the response window duration.
func (c CreateBlastCommand) Window() time.Duration {
	return c.window
}

// Actor returns the dispatcher creating the blast.
func (c CreateBlastCommand) Actor() string {
	return c.actor
}

// Validate ensures the command was created through the constructor.
func (c CreateBlastCommand) Validate() error {
	return c.guard.Validate(ErrCreateBlastCommandIsNotConstructed)
}
