// Package blastrepo provides data transfer objects and mapping functions for
// blast persistence. A blast and its per-recipient responses form one
// aggregate; the repository loads and saves them together.
package blastrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
)

// BlastDTO represents the database structure for persisting blast aggregates.
// Recipients is denormalized into a text[] column so notification fan-out can
// read the audience without joining the responses table.
type BlastDTO struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	LoadID     uuid.UUID      `gorm:"type:uuid;index;not null"`
	Status     string         `gorm:"type:varchar(32);index;not null"`
	Recipients pq.StringArray `gorm:"type:text[]"`
	AcceptedBy *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt  time.Time
	ExpiresAt  time.Time `gorm:"index"`

	Responses []ResponseDTO `gorm:"foreignKey:BlastID"`
}

// TableName specifies the database table name for blast entities.
func (BlastDTO) TableName() string {
	return "blasts"
}

// ResponseDTO represents one courier's answer to a blast.
type ResponseDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BlastID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CourierID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Status      string    `gorm:"type:varchar(32);not null"`
	RespondedAt *time.Time
}

// TableName specifies the database table name for blast responses.
func (ResponseDTO) TableName() string {
	return "blast_responses"
}

// fromDomain converts a blast aggregate to its database representation.
func fromDomain(aggregate *blast.Blast) BlastDTO {
	var acceptedBy *uuid.UUID
	if id := aggregate.AcceptedBy(); id != nil {
		raw := id.Bytes()
		acceptedBy = &raw
	}

	responses := aggregate.Responses()
	dto := BlastDTO{
		ID:         aggregate.ID().Bytes(),
		LoadID:     aggregate.LoadID().Bytes(),
		Status:     aggregate.Status().String(),
		Recipients: make(pq.StringArray, 0, len(responses)),
		AcceptedBy: acceptedBy,
		CreatedAt:  aggregate.CreatedAt(),
		ExpiresAt:  aggregate.ExpiresAt(),
		Responses:  make([]ResponseDTO, 0, len(responses)),
	}

	for _, resp := range responses {
		dto.Recipients = append(dto.Recipients, resp.CourierID().String())
		dto.Responses = append(dto.Responses, ResponseDTO{
			ID:          resp.ID().Bytes(),
			BlastID:     resp.BlastID().Bytes(),
			CourierID:   resp.CourierID().Bytes(),
			Status:      resp.Status().String(),
			RespondedAt: resp.RespondedAt(),
		})
	}

	return dto
}

// toDomain converts a database DTO back into a blast aggregate.
func toDomain(dto BlastDTO) (*blast.Blast, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	loadID, err := kernel.UUIDFromBytes(dto.LoadID[:])
	if err != nil {
		return nil, err
	}

	status, err := blast.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var acceptedBy *kernel.UUID
	if dto.AcceptedBy != nil {
		aID, acceptedErr := kernel.UUIDFromBytes((*dto.AcceptedBy)[:])
		if acceptedErr != nil {
			return nil, acceptedErr
		}
		acceptedBy = &aID
	}

	responses := make([]*blast.Response, 0, len(dto.Responses))
	for _, respDTO := range dto.Responses {
		resp, respErr := responseToDomain(respDTO)
		if respErr != nil {
			return nil, respErr
		}
		responses = append(responses, resp)
	}

	return blast.RestoreBlast(
		id,
		loadID,
		status,
		responses,
		acceptedBy,
		dto.CreatedAt,
		dto.ExpiresAt,
	)
}

func responseToDomain(dto ResponseDTO) (*blast.Response, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	blastID, err := kernel.UUIDFromBytes(dto.BlastID[:])
	if err != nil {
		return nil, err
	}

	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	status, err := blast.ParseResponseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return blast.RestoreResponse(id, blastID, courierID, status, dto.RespondedAt)
}
