package eventrepo

import (
	"context"

	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// GormStatusEventRepository implements ports.StatusEventRepository using GORM.
// It runs on the shared connection, not inside the unit of work: appends
// happen after the load row commits and must not join that transaction.
type GormStatusEventRepository struct {
	db *gorm.DB
}

// NewGormStatusEventRepository creates a new GORM status event repository.
func NewGormStatusEventRepository(db *gorm.DB) *GormStatusEventRepository {
	return &GormStatusEventRepository{db: db}
}

// Add appends a status event to the log.
func (r *GormStatusEventRepository) Add(ctx context.Context, event load.StatusEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto := fromDomain(event)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetByLoad retrieves all events for a load, oldest first. Ties on the
// timestamp fall back to the event ID so the order is stable.
func (r *GormStatusEventRepository) GetByLoad(ctx context.Context, loadID kernel.UUID) ([]load.StatusEvent, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}

	var dtos []StatusEventDTO
	err := r.db.WithContext(ctx).
		Order("created_at, id").
		Find(&dtos, "load_id = ?", loadID.Bytes()).
		Error
	if err != nil {
		return nil, err
	}

	events := make([]load.StatusEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}
