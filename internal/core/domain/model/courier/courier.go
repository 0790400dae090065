package courier

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ErrCourierIsNotConstructed is returned when a Courier instance was not
// created through the NewCourier factory method.
var ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")

// Courier is a delivery agent. The courier's records are owned by external
// CRUD pages; the dispatch engine reads identity, hub, coarse status, and the
// most recent position, and never writes any of them.
type Courier struct {
	// id is the unique identifier for the courier
	id kernel.UUID

	// name is the display name shown to dispatchers
	name string

	// hub is the geographic dispatch zone the courier works out of
	hub string

	// status is the coarse availability state maintained by the CRM
	status Status

	// isConstructed ensures the courier was created via NewCourier
	isConstructed bool
}

// NewCourier creates a Courier read model.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - name: display name (required)
//   - hub: home dispatch zone (may be empty for floaters)
//   - status: coarse availability status
//
// Returns the courier or a validation error. StatusUnknown is allowed here -
// CRM rows with unrecognized status strings still rank, just at the bottom.
func NewCourier(id kernel.UUID, name string, hub string, status Status) (*Courier, error) {
	c := &Courier{
		hub:           hub,
		status:        status,
		isConstructed: true,
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate ensures the Courier was created through NewCourier.
func (c *Courier) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCourierIsNotConstructed
	}
	return nil
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the display name.
func (c *Courier) Name() string {
	return c.name
}

// Hub returns the home dispatch zone.
func (c *Courier) Hub() string {
	return c.hub
}

// Status returns the coarse availability status.
func (c *Courier) Status() Status {
	return c.status
}

// IsAvailable reports whether the courier may be offered an assignment.
func (c *Courier) IsAvailable() bool {
	return c.status.IsAvailable()
}

// setID validates and sets the courier's unique identifier.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

// setName validates and sets the display name.
func (c *Courier) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	c.name = name
	return nil
}
