package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRecordPositionCommandIsNotConstructed = errors.New(
	"RecordPositionCommand must be created via NewRecordPositionCommand constructor",
)

// RecordPositionCommand ingests one GPS sample from a courier device. The
// latest sample per courier feeds the scorer's distance band and arrival
// reporting.
type RecordPositionCommand struct {
	courierID  kernel.UUID
	point      kernel.GeoPoint
	recordedAt time.Time
	speedMph   float64
	headingDeg float64

	guard guard.ConstructorGuard
}

// NewRecordPositionCommand creates a command for a GPS sample.
// Pass negative speed or heading when the device did not report one.
func NewRecordPositionCommand(
	courierID kernel.UUID,
	point kernel.GeoPoint,
	recordedAt time.Time,
	speedMph float64,
	headingDeg float64,
) (RecordPositionCommand, error) {
	if err := errors.Join(courierID.Validate(), point.Validate()); err != nil {
		return RecordPositionCommand{}, err
	}

	if recordedAt.IsZero() {
		return RecordPositionCommand{}, errors.New("recordedAt must be set")
	}

	return RecordPositionCommand{
		courierID:  courierID,
		point:      point,
		recordedAt: recordedAt,
		speedMph:   speedMph,
		headingDeg: headingDeg,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// CourierID returns the reporting courier.
func (c RecordPositionCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Point returns the reported coordinates.
func (c RecordPositionCommand) Point() kernel.GeoPoint {
	return c.point
}

// RecordedAt returns the device timestamp of the sample.
func (c RecordPositionCommand) RecordedAt() time.Time {
	return c.recordedAt
}

// SpeedMph returns the reported speed, negative when not reported.
func (c RecordPositionCommand) SpeedMph() float64 {
	return c.speedMph
}

// HeadingDeg returns the reported heading, negative when not reported.
func (c RecordPositionCommand) HeadingDeg() float64 {
	return c.headingDeg
}

// Validate ensures the command was created through the constructor.
func (c RecordPositionCommand) Validate() error {
	return c.guard.Validate(ErrRecordPositionCommandIsNotConstructed)
}
