package blast

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrBlastIsNotConstructed is returned when a Blast instance was not
	// created through the NewBlast or RestoreBlast factory methods.
	ErrBlastIsNotConstructed = errors.New("Blast must be created via NewBlast or RestoreBlast constructor")

	// ErrBlastResolved indicates a stale action against a blast that has
	// already reached a terminal state.
	ErrBlastResolved = errors.New("blast already resolved")

	// ErrNoRecipients indicates an attempt to create a blast with an empty
	// recipient set.
	ErrNoRecipients = errors.New("blast requires at least one recipient")
)

// Blast is a time-bounded broadcast offer of one load to a set of couriers.
// The aggregate owns its per-recipient responses and resolves to exactly one
// outcome: accepted by the first interested courier, cancelled by a
// dispatcher, or expired when the response window elapses.
//
// Invariants:
//   - at most one Blast may be Active for a given load at any time (enforced
//     by the caller before create, and by a partial unique index at the
//     store boundary)
//   - a courier holds at most one non-terminal response per blast
//   - resolving the blast forces every non-terminal response to expired
//   - Cancel and Expire are idempotent; invoking either on a terminal blast
//     is a no-op, not an error
type Blast struct {
	id        kernel.UUID
	loadID    kernel.UUID
	status    Status
	responses []*Response

	// acceptedBy is the winning courier, set only when status is Accepted
	acceptedBy *kernel.UUID

	createdAt time.Time
	expiresAt time.Time

	isConstructed bool
}

// NewBlast creates an Active blast with one pending response per recipient.
//
// Parameters:
//   - id: blast identifier
//   - loadID: the load being offered
//   - recipientIDs: couriers receiving the offer (at least one, no duplicates)
//   - window: how long responses are accepted; expiry = now + window
//   - now: creation timestamp
func NewBlast(
	id kernel.UUID,
	loadID kernel.UUID,
	recipientIDs []kernel.UUID,
	window time.Duration,
	now time.Time,
) (*Blast, error) {
	if err := errors.Join(id.Validate(), loadID.Validate()); err != nil {
		return nil, err
	}

	if len(recipientIDs) == 0 {
		return nil, ErrNoRecipients
	}

	if window <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("window",
			fmt.Errorf("response window must be positive, got %s", window))
	}

	b := &Blast{
		id:            id,
		loadID:        loadID,
		status:        Active,
		responses:     make([]*Response, 0, len(recipientIDs)),
		createdAt:     now,
		expiresAt:     now.Add(window),
		isConstructed: true,
	}

	seen := make(map[kernel.UUID]struct{}, len(recipientIDs))
	for _, courierID := range recipientIDs {
		if _, dup := seen[courierID]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("recipients",
				fmt.Errorf("courier %s listed twice", courierID))
		}
		seen[courierID] = struct{}{}

		resp, err := newResponse(id, courierID)
		if err != nil {
			return nil, err
		}
		b.responses = append(b.responses, resp)
	}

	return b, nil
}

// RestoreBlast reconstructs a Blast and its responses from persistence.
func RestoreBlast(
	id kernel.UUID,
	loadID kernel.UUID,
	status Status,
	responses []*Response,
	acceptedBy *kernel.UUID,
	createdAt time.Time,
	expiresAt time.Time,
) (*Blast, error) {
	if err := errors.Join(id.Validate(), loadID.Validate(), status.Validate()); err != nil {
		return nil, err
	}

	for _, r := range responses {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	if acceptedBy != nil {
		if err := acceptedBy.Validate(); err != nil {
			return nil, err
		}
	}

	return &Blast{
		id:            id,
		loadID:        loadID,
		status:        status,
		responses:     responses,
		acceptedBy:    acceptedBy,
		createdAt:     createdAt,
		expiresAt:     expiresAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the blast was created through a factory method.
func (b *Blast) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBlastIsNotConstructed
	}
	return nil
}

// ID returns the blast identifier.
func (b *Blast) ID() kernel.UUID {
	return b.id
}

// LoadID returns the load being offered.
func (b *Blast) LoadID() kernel.UUID {
	return b.loadID
}

// Status returns the current blast status.
func (b *Blast) Status() Status {
	return b.status
}

// Responses returns the per-recipient responses.
// The returned slice is the aggregate's own; callers must not mutate it.
func (b *Blast) Responses() []*Response {
	return b.responses
}

// RecipientCount returns the number of couriers the offer went to.
func (b *Blast) RecipientCount() int {
	return len(b.responses)
}

// AcceptedBy returns the winning courier, or nil while unresolved.
func (b *Blast) AcceptedBy() *kernel.UUID {
	return b.acceptedBy
}

// CreatedAt returns the creation timestamp.
func (b *Blast) CreatedAt() time.Time {
	return b.createdAt
}

// ExpiresAt returns the end of the response window.
func (b *Blast) ExpiresAt() time.Time {
	return b.expiresAt
}

// IsExpired reports whether the response window has elapsed.
// An expired-by-clock blast may still be Active until a sweep resolves it;
// callers treat the blast row's status as authoritative for "is this live".
func (b *Blast) IsExpired(now time.Time) bool {
	return now.After(b.expiresAt)
}

// ResponseFor returns the response belonging to the given courier, or nil
// when the courier is not a recipient of this blast.
func (b *Blast) ResponseFor(courierID kernel.UUID) *Response {
	for _, r := range b.responses {
		if r.courierID.IsEqual(courierID) {
			return r
		}
	}
	return nil
}

// MarkViewed records that a recipient opened the offer.
// Returns ErrBlastResolved for terminal blasts and an object-not-found error
// for couriers outside the recipient set.
func (b *Blast) MarkViewed(courierID kernel.UUID) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if b.status.IsTerminal() {
		return fmt.Errorf("%w: blast %s is %s", ErrBlastResolved, b.id, b.status)
	}

	resp := b.ResponseFor(courierID)
	if resp == nil {
		return errs.NewObjectNotFoundError("blast recipient", courierID.String())
	}

	return resp.markViewed()
}

// Accept resolves the blast in favor of the given courier.
//
// The first interested response wins: the blast becomes Accepted,
// acceptedBy is set, and every other non-terminal response is forced to
// expired. A second interested response arrives at a terminal blast and is
// rejected with ErrBlastResolved.
func (b *Blast) Accept(courierID kernel.UUID, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if b.status.IsTerminal() {
		return fmt.Errorf("%w: blast %s is %s", ErrBlastResolved, b.id, b.status)
	}

	resp := b.ResponseFor(courierID)
	if resp == nil {
		return errs.NewObjectNotFoundError("blast recipient", courierID.String())
	}

	if err := resp.markInterested(now); err != nil {
		return err
	}

	b.status = Accepted
	winner := courierID
	b.acceptedBy = &winner

	for _, other := range b.responses {
		if other.courierID.IsEqual(courierID) {
			continue
		}
		other.expire(now)
	}

	return nil
}

// Decline records a recipient passing on the offer. The blast stays Active;
// declines never resolve a blast, only acceptance, cancellation, or expiry do.
func (b *Blast) Decline(courierID kernel.UUID, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if b.status.IsTerminal() {
		return fmt.Errorf("%w: blast %s is %s", ErrBlastResolved, b.id, b.status)
	}

	resp := b.ResponseFor(courierID)
	if resp == nil {
		return errs.NewObjectNotFoundError("blast recipient", courierID.String())
	}

	return resp.markDeclined(now)
}

// Cancel resolves the blast as dispatcher-cancelled, forcing all non-terminal
// responses to expired. Idempotent: cancelling a terminal blast reports false
// and changes nothing.
func (b *Blast) Cancel(now time.Time) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}

	if b.status.IsTerminal() {
		return false, nil
	}

	b.status = Cancelled
	for _, r := range b.responses {
		r.expire(now)
	}

	return true, nil
}

// Expire resolves the blast as timed out. It only fires when the blast is
// still Active and the window has elapsed; in every other case it reports
// false and changes nothing, so redundant sweep invocations are safe.
func (b *Blast) Expire(now time.Time) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}

	if b.status.IsTerminal() || !b.IsExpired(now) {
		return false, nil
	}

	b.status = Expired
	for _, r := range b.responses {
		r.expire(now)
	}

	return true, nil
}
