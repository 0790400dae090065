// Package eventrepo provides data transfer objects and mapping functions for
// the append-only status event log.
package eventrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// StatusEventDTO represents the database structure for the audit log.
// Rows are insert-only; there is no updated_at and no soft delete.
type StatusEventDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LoadID     uuid.UUID `gorm:"type:uuid;index;not null"`
	FromStatus string    `gorm:"type:varchar(32);not null"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	Actor      string    `gorm:"not null"`
	Reason     string
	Lat        *float64
	Lng        *float64
	CreatedAt  time.Time `gorm:"index"`
}

// TableName specifies the database table name for status events.
func (StatusEventDTO) TableName() string {
	return "status_events"
}

// fromDomain converts a status event to its database representation.
func fromDomain(event load.StatusEvent) StatusEventDTO {
	dto := StatusEventDTO{
		ID:         event.ID().Bytes(),
		LoadID:     event.LoadID().Bytes(),
		FromStatus: event.From().String(),
		ToStatus:   event.To().String(),
		Actor:      event.Actor(),
		Reason:     event.Reason(),
		CreatedAt:  event.CreatedAt(),
	}

	if p := event.Position(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}

	return dto
}

// toDomain converts a database DTO back into a status event.
func toDomain(dto StatusEventDTO) (load.StatusEvent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return load.StatusEvent{}, err
	}

	loadID, err := kernel.UUIDFromBytes(dto.LoadID[:])
	if err != nil {
		return load.StatusEvent{}, err
	}

	from, err := load.ParseStatus(dto.FromStatus)
	if err != nil {
		return load.StatusEvent{}, err
	}

	to, err := load.ParseStatus(dto.ToStatus)
	if err != nil {
		return load.StatusEvent{}, err
	}

	var position *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if pointErr != nil {
			return load.StatusEvent{}, pointErr
		}
		position = &p
	}

	return load.NewStatusEvent(id, loadID, from, to, dto.Actor, dto.Reason, position, dto.CreatedAt)
}
