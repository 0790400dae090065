package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateLoadCommandIsNotConstructed = errors.New(
	"CreateLoadCommand must be created via NewCreateLoadCommand constructor",
)

// CreateLoadCommand registers a new delivery job. Loads always enter the
// system in pending status with no courier attached; assignment happens
// later, through a manual status change or a blast.
type CreateLoadCommand struct {
	loadID          kernel.UUID
	reference       string
	pickupAddress   string
	deliveryAddress string
	pickupPoint     *kernel.GeoPoint
	deliveryPoint   *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewCreateLoadCommand creates a command to register a load.
//
// Parameters:
//   - loadID: identifier for the new load
//   - reference: human-readable reference number (required)
//   - pickupAddress, deliveryAddress: street addresses (required)
//   - pickupPoint, deliveryPoint: geocoded coordinates; optional, geocoding
//     may lag or fail upstream
func NewCreateLoadCommand(
	loadID kernel.UUID,
	reference string,
	pickupAddress string,
	deliveryAddress string,
	pickupPoint *kernel.GeoPoint,
	deliveryPoint *kernel.GeoPoint,
) (CreateLoadCommand, error) {
	if err := loadID.Validate(); err != nil {
		return CreateLoadCommand{}, err
	}

	if reference == "" {
		return CreateLoadCommand{}, errs.NewValueIsRequiredError("reference")
	}

	return CreateLoadCommand{
		loadID:          loadID,
		reference:       reference,
		pickupAddress:   pickupAddress,
		deliveryAddress: deliveryAddress,
		pickupPoint:     pickupPoint,
		deliveryPoint:   deliveryPoint,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// LoadID returns the identifier for the new load.
func (c CreateLoadCommand) LoadID() kernel.UUID {
	return c.loadID
}

// Reference returns the human-readable reference number.
func (c CreateLoadCommand) Reference() string {
	return c.reference
}

// PickupAddress returns the pickup street address.
func (c CreateLoadCommand) PickupAddress() string {
	return c.pickupAddress
}

// DeliveryAddress returns the delivery street address.
func (c CreateLoadCommand) DeliveryAddress() string {
	return c.deliveryAddress
}

// PickupPoint returns the geocoded pickup coordinate, if known.
func (c CreateLoadCommand) PickupPoint() *kernel.GeoPoint {
	return c.pickupPoint
}

// DeliveryPoint returns the geocoded delivery coordinate, if known.
func (c CreateLoadCommand) DeliveryPoint() *kernel.GeoPoint {
	return c.deliveryPoint
}

// Validate ensures the command was created through the constructor.
func (c CreateLoadCommand) Validate() error {
	return c.guard.Validate(ErrCreateLoadCommandIsNotConstructed)
}
