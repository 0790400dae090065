package loadrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ActiveAssignmentIndex is the partial unique index enforcing the
// one-active-load-per-courier invariant at the store boundary. Two
// dispatchers racing to assign the same courier cannot both commit; the
// loser's write fails and surfaces as ports.ErrCourierAlreadyAssigned.
const ActiveAssignmentIndex = "idx_loads_courier_active"

// ActiveAssignmentIndexDDL creates the partial unique index. GORM struct
// tags cannot express a partial index, so migration runs this statement
// alongside AutoMigrate.
const ActiveAssignmentIndexDDL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_loads_courier_active
ON loads (courier_id)
WHERE status IN ('assigned', 'in_progress', 'arrived_pickup', 'in_transit', 'arrived_delivery')
`

// GormLoadRepository implements ports.LoadRepository using GORM.
type GormLoadRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormLoadRepository creates a new GORM load repository.
func NewGormLoadRepository(db *gorm.DB, tracker aggregateTracker) *GormLoadRepository {
	return &GormLoadRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new load to the database.
func (r *GormLoadRepository) Add(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return translateAssignmentConflict(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing load to the database.
// Returns ports.ErrCourierAlreadyAssigned when the write collides with the
// active-assignment index.
func (r *GormLoadRepository) Update(ctx context.Context, aggregate *load.Load) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	// Save rather than Updates: zero and nil columns (a cleared courier, a
	// reopened status) must overwrite, not be skipped.
	result := r.db.WithContext(ctx).
		Model(&LoadDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return translateAssignmentConflict(result.Error)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a load by ID.
func (r *GormLoadRepository) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto LoadDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("load", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByCourier retrieves the loads actively assigned to a courier.
func (r *GormLoadRepository) GetByCourier(ctx context.Context, courierID kernel.UUID) ([]*load.Load, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []LoadDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "courier_id = ? AND status IN ?", courierID.Bytes(), activeAssignmentStatuses()).
		Error
	if err != nil {
		return nil, err
	}

	loads := make([]*load.Load, 0, len(dtos))
	for _, dto := range dtos {
		l, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}

	return loads, nil
}

func activeAssignmentStatuses() []string {
	return []string{
		load.Assigned.String(),
		load.InProgress.String(),
		load.ArrivedPickup.String(),
		load.InTransit.String(),
		load.ArrivedDelivery.String(),
	}
}

// translateAssignmentConflict maps a violation of the active-assignment
// index to the port-level sentinel. Other errors pass through unchanged.
func translateAssignmentConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == ActiveAssignmentIndex {
		return ports.ErrCourierAlreadyAssigned
	}
	return err
}
