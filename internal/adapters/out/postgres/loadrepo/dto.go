// Package loadrepo provides data transfer objects and mapping functions for
// load persistence. It implements the repository pattern for the load
// aggregate, converting between the domain entity and its relational
// representation.
package loadrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// LoadDTO represents the database structure for persisting load aggregates.
// Statuses are stored as their canonical snake_case strings so the table is
// readable in ad hoc SQL and the audit log matches the API surface.
type LoadDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference        string     `gorm:"uniqueIndex;not null"`
	Status           string     `gorm:"type:varchar(32);index;not null"`
	CourierID        *uuid.UUID `gorm:"type:uuid;index"`
	PickupAddress    string
	DeliveryAddress  string
	PickupLat        *float64
	PickupLng        *float64
	DeliveryLat      *float64
	DeliveryLng      *float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ActualPickupAt   *time.Time
	ActualDeliveryAt *time.Time
}

// TableName specifies the database table name for load entities.
func (LoadDTO) TableName() string {
	return "loads"
}

// fromDomain converts a load aggregate to its database representation.
func fromDomain(aggregate *load.Load) LoadDTO {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	dto := LoadDTO{
		ID:               aggregate.ID().Bytes(),
		Reference:        aggregate.Reference(),
		Status:           aggregate.Status().String(),
		CourierID:        courierID,
		PickupAddress:    aggregate.PickupAddress(),
		DeliveryAddress:  aggregate.DeliveryAddress(),
		CreatedAt:        aggregate.CreatedAt(),
		UpdatedAt:        aggregate.UpdatedAt(),
		ActualPickupAt:   aggregate.ActualPickupAt(),
		ActualDeliveryAt: aggregate.ActualDeliveryAt(),
	}

	if p := aggregate.PickupPoint(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.PickupLat, dto.PickupLng = &lat, &lng
	}
	if p := aggregate.DeliveryPoint(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.DeliveryLat, dto.DeliveryLng = &lat, &lng
	}

	return dto
}

// toDomain converts a database DTO back into a load aggregate.
func toDomain(dto LoadDTO) (*load.Load, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := load.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	pickupPoint, err := pointFrom(dto.PickupLat, dto.PickupLng)
	if err != nil {
		return nil, err
	}
	deliveryPoint, err := pointFrom(dto.DeliveryLat, dto.DeliveryLng)
	if err != nil {
		return nil, err
	}

	return load.RestoreLoad(
		id,
		dto.Reference,
		status,
		courierID,
		dto.PickupAddress,
		dto.DeliveryAddress,
		pickupPoint,
		deliveryPoint,
		dto.CreatedAt,
		dto.UpdatedAt,
		dto.ActualPickupAt,
		dto.ActualDeliveryAt,
	)
}

func pointFrom(lat, lng *float64) (*kernel.GeoPoint, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	p, err := kernel.NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
