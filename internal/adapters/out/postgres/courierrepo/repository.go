package courierrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// GormCourierRepository implements ports.CourierRepository using GORM.
type GormCourierRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB, tracker aggregateTracker) *GormCourierRepository {
	return &GormCourierRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing courier to the database.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&CourierDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByHub retrieves all couriers attached to a hub, ordered by name.
func (r *GormCourierRepository) GetByHub(ctx context.Context, hub string) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	err := r.db.WithContext(ctx).
		Order("name").
		Find(&dtos, "hub = ?", hub).
		Error
	if err != nil {
		return nil, err
	}

	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}

	return couriers, nil
}

// AddPosition appends a position sample for a courier.
func (r *GormCourierRepository) AddPosition(ctx context.Context, position courier.Position) error {
	if err := position.Validate(); err != nil {
		return err
	}

	dto := positionFromDomain(position)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetLatestPositions returns the most recent position sample per courier.
// Couriers with no samples are absent from the map.
func (r *GormCourierRepository) GetLatestPositions(
	ctx context.Context,
	courierIDs []kernel.UUID,
) (map[kernel.UUID]courier.Position, error) {
	if len(courierIDs) == 0 {
		return map[kernel.UUID]courier.Position{}, nil
	}

	ids := make([]uuid.UUID, 0, len(courierIDs))
	for _, id := range courierIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		ids = append(ids, id.Bytes())
	}

	var dtos []PositionDTO
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (courier_id)
			id, courier_id, lat, lng, recorded_at, speed_mph, heading_deg
		FROM courier_positions
		WHERE courier_id IN ?
		ORDER BY courier_id, recorded_at DESC`, ids).
		Scan(&dtos).
		Error
	if err != nil {
		return nil, err
	}

	positions := make(map[kernel.UUID]courier.Position, len(dtos))
	for _, dto := range dtos {
		pos, err := positionToDomain(dto)
		if err != nil {
			return nil, err
		}
		positions[pos.CourierID()] = pos
	}

	return positions, nil
}

// GetTodayLoadCounts returns the number of loads attached to each courier
// since the start of the current day. Couriers with no loads today are
// absent from the map.
func (r *GormCourierRepository) GetTodayLoadCounts(
	ctx context.Context,
	courierIDs []kernel.UUID,
) (map[kernel.UUID]int, error) {
	if len(courierIDs) == 0 {
		return map[kernel.UUID]int{}, nil
	}

	ids := make([]uuid.UUID, 0, len(courierIDs))
	for _, id := range courierIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		ids = append(ids, id.Bytes())
	}

	var rows []struct {
		CourierID uuid.UUID
		Total     int
	}
	err := r.db.WithContext(ctx).
		Raw(`SELECT courier_id, COUNT(*) AS total
		FROM loads
		WHERE courier_id IN ? AND created_at >= CURRENT_DATE
		GROUP BY courier_id`, ids).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	counts := make(map[kernel.UUID]int, len(rows))
	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.CourierID[:])
		if err != nil {
			return nil, err
		}
		counts[id] = row.Total
	}

	return counts, nil
}
