package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRespondToBlastCommandIsNotConstructed = errors.New(
	"RespondToBlastCommand must be created via NewRespondToBlastCommand constructor",
)

// BlastReply is a courier's answer to a blast.
type BlastReply int

const (
	// ReplyUnknown represents an invalid or undefined reply.
	ReplyUnknown BlastReply = iota

	// ReplyViewed records that the courier opened the offer.
	ReplyViewed

	// ReplyInterested claims the load; the first interested courier wins.
	ReplyInterested

	// ReplyDeclined passes on the load.
	ReplyDeclined
)

// ParseBlastReply converts a string into a BlastReply.
func ParseBlastReply(s string) (BlastReply, error) {
	switch s {
	case "viewed":
		return ReplyViewed, nil
	case "interested":
		return ReplyInterested, nil
	case "declined":
		return ReplyDeclined, nil
	default:
		return ReplyUnknown, fmt.Errorf("%q is not a valid blast reply", s)
	}
}

// String returns the canonical name of the reply.
func (r BlastReply) String() string {
	switch r {
	case ReplyViewed:
		return "viewed"
	case ReplyInterested:
		return "interested"
	case ReplyDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// RespondToBlastCommand carries a courier's answer to a broadcast offer.
type RespondToBlastCommand struct {
	blastID   kernel.UUID
	courierID kernel.UUID
	reply     BlastReply

	guard guard.ConstructorGuard
}

// NewRespondToBlastCommand creates a command for a courier's blast response.
func NewRespondToBlastCommand(
	blastID kernel.UUID,
	courierID kernel.UUID,
	reply BlastReply,
) (RespondToBlastCommand, error) {
	if err := errors.Join(blastID.Validate(), courierID.Validate()); err != nil {
		return RespondToBlastCommand{}, err
	}

	if reply == ReplyUnknown {
		return RespondToBlastCommand{}, fmt.Errorf("%d is not a valid blast reply", reply)
	}

	return RespondToBlastCommand{
		blastID:   blastID,
		courierID: courierID,
		reply:     reply,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// BlastID returns the blast being answered.
func (c RespondToBlastCommand) BlastID() kernel.UUID {
	return c.blastID
}

// CourierID returns the answering courier.
func (c RespondToBlastCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Reply returns the courier's answer.
func (c RespondToBlastCommand) Reply() BlastReply {
	return c.reply
}

// Validate ensures the command was created through the constructor.
func (c RespondToBlastCommand) Validate() error {
	return c.guard.Validate(ErrRespondToBlastCommandIsNotConstructed)
}
