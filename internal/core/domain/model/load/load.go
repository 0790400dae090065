package load

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrLoadIsNotConstructed is returned when a Load instance was not created
	// through the NewLoad or RestoreLoad factory methods.
	ErrLoadIsNotConstructed = errors.New("Load must be created via NewLoad or RestoreLoad constructor")
)

// Load represents a single delivery job tracked through a status lifecycle.
// It is the aggregate root of the dispatch engine: every writer (dispatcher
// action, courier response, geofence detector, expiry sweep) mutates status
// exclusively through TransitionTo, never by writing the field directly.
//
// Load maintains these invariants:
//   - status changes follow the fixed transition table in Status
//   - actualPickupAt is stamped exactly once, on the transition into InProgress
//   - actualDeliveryAt is stamped exactly once, on the transition into
//     Delivered or Completed
//   - a Pending load carries no courier
//   - loads are never deleted; cancellation is a status, not a deletion
type Load struct {
	// id is the unique identifier for the load
	id kernel.UUID

	// reference is the human-readable reference number shown to dispatchers
	reference string

	// status is the current state in the load lifecycle
	status Status

	// courierID is the assigned courier's ID (nil if unassigned)
	courierID *kernel.UUID

	// pickupAddress and deliveryAddress are free-text addresses
	pickupAddress   string
	deliveryAddress string

	// pickupPoint and deliveryPoint are optional geocoded coordinates;
	// nil when geocoding has not run for the address
	pickupPoint   *kernel.GeoPoint
	deliveryPoint *kernel.GeoPoint

	createdAt time.Time
	updatedAt time.Time

	// actualPickupAt / actualDeliveryAt are stamped by TransitionTo per the
	// invariants above; nil until the corresponding transition happens
	actualPickupAt   *time.Time
	actualDeliveryAt *time.Time

	// isConstructed ensures the load was created via a constructor
	isConstructed bool
}

// NewLoad creates a new Load in Pending status.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - reference: human-readable reference number (required)
//   - pickupAddress, deliveryAddress: free-text addresses (required)
//   - pickupPoint, deliveryPoint: optional geocoded coordinates (nil allowed)
//   - now: creation timestamp
//
// Returns the created load or a validation error.
func NewLoad(
	id kernel.UUID,
	reference string,
	pickupAddress string,
	deliveryAddress string,
	pickupPoint *kernel.GeoPoint,
	deliveryPoint *kernel.GeoPoint,
	now time.Time,
) (*Load, error) {
	l := &Load{
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		l.setID(id),
		l.setReference(reference),
		l.setAddresses(pickupAddress, deliveryAddress),
		l.setPickupPoint(pickupPoint),
		l.setDeliveryPoint(deliveryPoint),
	); err != nil {
		return nil, err
	}

	return l, nil
}

// RestoreLoad reconstructs a Load from persistence without running the
// creation-time defaults. All invariants are still validated; repositories
// use this to rebuild aggregates from database rows.
func RestoreLoad(
	id kernel.UUID,
	reference string,
	status Status,
	courierID *kernel.UUID,
	pickupAddress string,
	deliveryAddress string,
	pickupPoint *kernel.GeoPoint,
	deliveryPoint *kernel.GeoPoint,
	createdAt time.Time,
	updatedAt time.Time,
	actualPickupAt *time.Time,
	actualDeliveryAt *time.Time,
) (*Load, error) {
	l := &Load{
		courierID:        courierID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		actualPickupAt:   actualPickupAt,
		actualDeliveryAt: actualDeliveryAt,
		isConstructed:    true,
	}

	if err := errors.Join(
		l.setID(id),
		l.setReference(reference),
		l.setAddresses(pickupAddress, deliveryAddress),
		l.setPickupPoint(pickupPoint),
		l.setDeliveryPoint(deliveryPoint),
		l.setStatus(status),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Validate ensures the Load instance was properly constructed through a
// factory method. This prevents bypassing validation by directly
// instantiating the struct.
func (l *Load) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLoadIsNotConstructed
	}
	return nil
}

// IsEqual compares two loads by their unique identifiers.
func (l *Load) IsEqual(other *Load) bool {
	return other != nil && l.id.IsEqual(other.id)
}

// ID returns the load's unique identifier.
func (l *Load) ID() kernel.UUID {
	return l.id
}

// Reference returns the human-readable reference number.
func (l *Load) Reference() string {
	return l.reference
}

// Status returns the current status of the load.
func (l *Load) Status() Status {
	return l.status
}

// Courier returns the assigned courier's ID, or nil if unassigned.
func (l *Load) Courier() *kernel.UUID {
	return l.courierID
}

// PickupAddress returns the free-text pickup address.
func (l *Load) PickupAddress() string {
	return l.pickupAddress
}

// DeliveryAddress returns the free-text delivery address.
func (l *Load) DeliveryAddress() string {
	return l.deliveryAddress
}

// PickupPoint returns the geocoded pickup coordinate, or nil when unknown.
func (l *Load) PickupPoint() *kernel.GeoPoint {
	return l.pickupPoint
}

// DeliveryPoint returns the geocoded delivery coordinate, or nil when unknown.
func (l *Load) DeliveryPoint() *kernel.GeoPoint {
	return l.deliveryPoint
}

// CreatedAt returns the creation timestamp.
func (l *Load) CreatedAt() time.Time {
	return l.createdAt
}

// UpdatedAt returns the timestamp of the last accepted transition.
func (l *Load) UpdatedAt() time.Time {
	return l.updatedAt
}

// ActualPickupAt returns the timestamp stamped on the transition into
// InProgress, or nil if that transition has not happened.
func (l *Load) ActualPickupAt() *time.Time {
	return l.actualPickupAt
}

// ActualDeliveryAt returns the timestamp stamped on the transition into
// Delivered or Completed, or nil if neither transition has happened.
func (l *Load) ActualDeliveryAt() *time.Time {
	return l.actualDeliveryAt
}

// TransitionTo moves the load to the given status.
//
// Behavior:
//   - to == current status: silent no-op, nil error, nothing is touched
//     (not even updatedAt). Callers must not record a status event for it.
//   - edge not in the transition table: *InvalidTransitionError, load unchanged.
//   - accepted: status and updatedAt change; actualPickupAt is stamped on
//     first entry into InProgress; actualDeliveryAt on first entry into
//     Delivered or Completed. A transition back to Pending detaches the
//     courier, since pending loads carry no courier.
//
// Example:
//
//	if err := l.TransitionTo(load.InTransit, time.Now()); err != nil {
//	    var invalid *load.InvalidTransitionError
//	    if errors.As(err, &invalid) {
//	        // surface invalid.From / invalid.To to the dispatcher
//	    }
//	}
func (l *Load) TransitionTo(to Status, now time.Time) error {
	if err := l.Validate(); err != nil {
		return err
	}

	if to == l.status {
		return nil
	}

	newStatus, err := l.status.TransitionTo(to)
	if err != nil {
		return err
	}

	l.status = newStatus
	l.updatedAt = now

	switch newStatus {
	case InProgress:
		if l.actualPickupAt == nil {
			stamped := now
			l.actualPickupAt = &stamped
		}
	case Delivered, Completed:
		if l.actualDeliveryAt == nil {
			stamped := now
			l.actualDeliveryAt = &stamped
		}
	case Pending:
		l.courierID = nil
	}

	return nil
}

// Assign attaches a courier and moves the load to Assigned.
// Valid from Pending, Blasted, or Assigned (reassignment to a different
// courier is a no-op transition followed by the courier swap).
//
// Returns an error if the courier ID is invalid or the transition is not
// allowed from the current status.
func (l *Load) Assign(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if err := l.TransitionTo(Assigned, now); err != nil {
		return err
	}

	l.courierID = &courierID
	return nil
}

// setID validates and sets the load's unique identifier.
func (l *Load) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

// setReference validates and sets the human-readable reference number.
func (l *Load) setReference(reference string) error {
	if reference == "" {
		return errs.NewValueIsRequiredError("reference")
	}
	l.reference = reference
	return nil
}

// setAddresses validates and sets the pickup and delivery addresses.
func (l *Load) setAddresses(pickup, delivery string) error {
	if pickup == "" {
		return errs.NewValueIsRequiredError("pickupAddress")
	}
	if delivery == "" {
		return errs.NewValueIsRequiredError("deliveryAddress")
	}
	l.pickupAddress = pickup
	l.deliveryAddress = delivery
	return nil
}

// setPickupPoint validates and sets the optional pickup coordinate.
func (l *Load) setPickupPoint(p *kernel.GeoPoint) error {
	if p == nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	l.pickupPoint = p
	return nil
}

// setDeliveryPoint validates and sets the optional delivery coordinate.
func (l *Load) setDeliveryPoint(p *kernel.GeoPoint) error {
	if p == nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	l.deliveryPoint = p
	return nil
}

// setStatus validates and sets the status during restoration.
func (l *Load) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	l.status = status
	return nil
}
