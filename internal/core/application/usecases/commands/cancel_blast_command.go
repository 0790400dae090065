package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCancelBlastCommandIsNotConstructed = errors.New(
	"CancelBlastCommand must be created via NewCancelBlastCommand constructor",
)

// CancelBlastCommand calls off a live broadcast. The blast resolves to
// cancelled and the load reverts to pending — a blast cancellation is not a
// job cancellation. Cancelling an already-resolved blast is a no-op.
type CancelBlastCommand struct {
	blastID kernel.UUID
	actor   string

	guard guard.ConstructorGuard
}

// NewCancelBlastCommand creates a command to cancel a blast.
func NewCancelBlastCommand(blastID kernel.UUID, actor string) (CancelBlastCommand, error) {
	if err := blastID.Validate(); err != nil {
		return CancelBlastCommand{}, err
	}

	if actor == "" {
		return CancelBlastCommand{}, errs.NewValueIsRequiredError("actor")
	}

	return CancelBlastCommand{
		blastID: blastID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// BlastID returns the blast to cancel.
func (c CancelBlastCommand) BlastID() kernel.UUID {
	return c.blastID
}

// Actor returns the dispatcher cancelling the blast.
func (c CancelBlastCommand) Actor() string {
	return c.actor
}

// Validate ensures the command was created through the constructor.
func (c CancelBlastCommand) Validate() error {
	return c.guard.Validate(ErrCancelBlastCommandIsNotConstructed)
}
