package blast

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

var (
	// ErrResponseIsNotConstructed is returned when a Response was not created
	// through a constructor.
	ErrResponseIsNotConstructed = errors.New("Response must be created via newResponse or RestoreResponse")

	// ErrResponseResolved indicates the courier's response is already in a
	// terminal state and cannot change again.
	ErrResponseResolved = errors.New("response already resolved")
)

// Response is one courier's answer to a blast. Exactly one Response row
// exists per (blast, courier) pair; the Blast aggregate owns its responses
// and is the only writer.
type Response struct {
	id        kernel.UUID
	blastID   kernel.UUID
	courierID kernel.UUID
	status    ResponseStatus

	// respondedAt is stamped when the response reaches a terminal state
	respondedAt *time.Time

	isConstructed bool
}

// newResponse creates a pending response for a recipient.
// Only the Blast aggregate creates responses, so this stays package-private.
func newResponse(blastID kernel.UUID, courierID kernel.UUID) (*Response, error) {
	if err := errors.Join(blastID.Validate(), courierID.Validate()); err != nil {
		return nil, err
	}

	return &Response{
		id:            kernel.NewUUID(),
		blastID:       blastID,
		courierID:     courierID,
		status:        ResponsePending,
		isConstructed: true,
	}, nil
}

// RestoreResponse reconstructs a Response from persistence.
func RestoreResponse(
	id kernel.UUID,
	blastID kernel.UUID,
	courierID kernel.UUID,
	status ResponseStatus,
	respondedAt *time.Time,
) (*Response, error) {
	if err := errors.Join(
		id.Validate(),
		blastID.Validate(),
		courierID.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Response{
		id:            id,
		blastID:       blastID,
		courierID:     courierID,
		status:        status,
		respondedAt:   respondedAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the response was created through a constructor.
func (r *Response) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrResponseIsNotConstructed
	}
	return nil
}

// ID returns the response identifier.
func (r *Response) ID() kernel.UUID {
	return r.id
}

// BlastID returns the parent blast identifier.
func (r *Response) BlastID() kernel.UUID {
	return r.blastID
}

// CourierID returns the recipient courier.
func (r *Response) CourierID() kernel.UUID {
	return r.courierID
}

// Status returns the current response status.
func (r *Response) Status() ResponseStatus {
	return r.status
}

// RespondedAt returns the timestamp of the terminal answer, or nil.
func (r *Response) RespondedAt() *time.Time {
	return r.respondedAt
}

// markViewed records that the courier opened the offer.
// Only valid from pending; viewing an already-viewed offer is a no-op.
func (r *Response) markViewed() error {
	if r.status == ResponseViewed {
		return nil
	}
	if r.status != ResponsePending {
		return r.resolvedError()
	}
	r.status = ResponseViewed
	return nil
}

// markInterested records the courier's interest. Valid from pending or viewed.
func (r *Response) markInterested(now time.Time) error {
	if r.status.IsTerminal() {
		return r.resolvedError()
	}
	r.status = ResponseInterested
	r.respondedAt = &now
	return nil
}

// markDeclined records the courier's pass. Valid from pending or viewed.
func (r *Response) markDeclined(now time.Time) error {
	if r.status.IsTerminal() {
		return r.resolvedError()
	}
	r.status = ResponseDeclined
	r.respondedAt = &now
	return nil
}

// expire forces a non-terminal response to expired when the parent blast
// resolves. Terminal responses are left untouched.
func (r *Response) expire(now time.Time) bool {
	if r.status.IsTerminal() {
		return false
	}
	r.status = ResponseExpired
	r.respondedAt = &now
	return true
}

func (r *Response) resolvedError() error {
	return fmt.Errorf("%w: courier %s already %s", ErrResponseResolved, r.courierID, r.status)
}
