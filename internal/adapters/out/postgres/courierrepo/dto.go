// Package courierrepo provides data transfer objects and mapping functions
// for courier reference data and position telemetry.
package courierrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierDTO represents the database structure for persisting couriers.
type CourierDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"not null"`
	Hub    string    `gorm:"index"`
	Status string    `gorm:"type:varchar(32);not null"`
}

// TableName specifies the database table name for couriers.
func (CourierDTO) TableName() string {
	return "couriers"
}

// PositionDTO represents one GPS sample. Samples are append-only; the
// composite index serves the latest-sample-per-courier query.
type PositionDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID  uuid.UUID `gorm:"type:uuid;index:idx_positions_courier_recorded,priority:1;not null"`
	Lat        float64
	Lng        float64
	RecordedAt time.Time `gorm:"index:idx_positions_courier_recorded,priority:2,sort:desc"`
	SpeedMph   float64
	HeadingDeg float64
}

// TableName specifies the database table name for position samples.
func (PositionDTO) TableName() string {
	return "courier_positions"
}

// fromDomain converts a courier to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:     aggregate.ID().Bytes(),
		Name:   aggregate.Name(),
		Hub:    aggregate.Hub(),
		Status: aggregate.Status().String(),
	}
}

// toDomain converts a database DTO back into a courier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	// ParseStatus maps unrecognized strings to StatusUnknown, which still
	// ranks; CRM rows with odd status values are not rejected here.
	return courier.NewCourier(id, dto.Name, dto.Hub, courier.ParseStatus(dto.Status))
}

// positionFromDomain converts a position sample to its database representation.
func positionFromDomain(position courier.Position) PositionDTO {
	return PositionDTO{
		ID:         uuid.New(),
		CourierID:  position.CourierID().Bytes(),
		Lat:        position.Point().Lat(),
		Lng:        position.Point().Lng(),
		RecordedAt: position.RecordedAt(),
		SpeedMph:   position.SpeedMph(),
		HeadingDeg: position.HeadingDeg(),
	}
}

// positionToDomain converts a database DTO back into a position sample.
func positionToDomain(dto PositionDTO) (courier.Position, error) {
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return courier.Position{}, err
	}

	point, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return courier.Position{}, err
	}

	return courier.NewPosition(courierID, point, dto.RecordedAt, dto.SpeedMph, dto.HeadingDeg)
}
