package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/guard"
)

var ErrReportArrivalCommandIsNotConstructed = errors.New(
	"ReportArrivalCommand must be created via NewReportArrivalCommand constructor",
)

// ReportArrivalCommand carries a courier device's position report against a
// load's pickup or delivery coordinate. When the position passes the
// geofence check, the load transitions automatically; a rejected report
// leaves the load untouched and tells the actor how far off they were.
type ReportArrivalCommand struct {
	loadID    kernel.UUID
	courierID kernel.UUID
	eventType services.ArrivalEventType
	position  kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewReportArrivalCommand creates a command for an arrival report.
func NewReportArrivalCommand(
	loadID kernel.UUID,
	courierID kernel.UUID,
	eventType services.ArrivalEventType,
	position kernel.GeoPoint,
) (ReportArrivalCommand, error) {
	if err := errors.Join(loadID.Validate(), courierID.Validate(), position.Validate()); err != nil {
		return ReportArrivalCommand{}, err
	}

	return ReportArrivalCommand{
		loadID:    loadID,
		courierID: courierID,
		eventType: eventType,
		position:  position,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// LoadID returns the load the report refers to.
func (c ReportArrivalCommand) LoadID() kernel.UUID {
	return c.loadID
}

// CourierID returns the reporting courier.
func (c ReportArrivalCommand) CourierID() kernel.UUID {
	return c.courierID
}

// EventType returns which endpoint the report refers to.
func (c ReportArrivalCommand) EventType() services.ArrivalEventType {
	return c.eventType
}

// Position returns the reported device position.
func (c ReportArrivalCommand) Position() kernel.GeoPoint {
	return c.position
}

// Validate ensures the command was created through the constructor.
func (c ReportArrivalCommand) Validate() error {
	return c.guard.Validate(ErrReportArrivalCommandIsNotConstructed)
}
