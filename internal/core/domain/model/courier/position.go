package courier

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ErrPositionIsNotConstructed is returned when a Position was not created
// via NewPosition.
var ErrPositionIsNotConstructed = errors.New("Position must be created via NewPosition constructor")

// Position is the most recent GPS sample for a courier. Samples are owned
// and appended by the external GPS reporting path; the engine only reads the
// latest sample per courier for scoring and geofence checks.
type Position struct {
	courierID  kernel.UUID
	point      kernel.GeoPoint
	recordedAt time.Time

	// speedMph and headingDeg are optional; negative values mean "not reported"
	speedMph   float64
	headingDeg float64

	isConstructed bool
}

// NewPosition creates a Position sample.
//
// Parameters:
//   - courierID: the courier the sample belongs to
//   - point: the reported coordinates
//   - recordedAt: device timestamp of the sample
//   - speedMph, headingDeg: optional telemetry; pass a negative value when
//     the device did not report one
func NewPosition(
	courierID kernel.UUID,
	point kernel.GeoPoint,
	recordedAt time.Time,
	speedMph float64,
	headingDeg float64,
) (Position, error) {
	if err := errors.Join(courierID.Validate(), point.Validate()); err != nil {
		return Position{}, err
	}

	return Position{
		courierID:     courierID,
		point:         point,
		recordedAt:    recordedAt,
		speedMph:      speedMph,
		headingDeg:    headingDeg,
		isConstructed: true,
	}, nil
}

// Validate ensures the position was created via NewPosition.
func (p Position) Validate() error {
	if !p.isConstructed {
		return ErrPositionIsNotConstructed
	}
	return nil
}

// CourierID returns the courier the sample belongs to.
func (p Position) CourierID() kernel.UUID {
	return p.courierID
}

// Point returns the reported coordinates.
func (p Position) Point() kernel.GeoPoint {
	return p.point
}

// RecordedAt returns the device timestamp of the sample.
func (p Position) RecordedAt() time.Time {
	return p.recordedAt
}

// SpeedMph returns the reported speed, negative when not reported.
func (p Position) SpeedMph() float64 {
	return p.speedMph
}

// HeadingDeg returns the reported heading, negative when not reported.
func (p Position) HeadingDeg() float64 {
	return p.headingDeg
}
