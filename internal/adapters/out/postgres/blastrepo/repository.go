package blastrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ActiveBlastIndex backs the one-active-blast-per-load invariant: two
// dispatchers racing to broadcast the same load cannot both commit; the
// loser's insert fails and surfaces as ports.ErrActiveBlastExists.
const ActiveBlastIndex = "idx_blasts_load_active"

// ActiveBlastIndexDDL creates the partial unique index. GORM struct tags
// cannot express a partial index, so migration runs this statement alongside
// AutoMigrate.
const ActiveBlastIndexDDL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_blasts_load_active
ON blasts (load_id)
WHERE status = 'active'
`

// GormBlastRepository implements ports.BlastRepository using GORM.
type GormBlastRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormBlastRepository creates a new GORM blast repository.
func NewGormBlastRepository(db *gorm.DB, tracker aggregateTracker) *GormBlastRepository {
	return &GormBlastRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new blast and its responses to the database.
// Returns ports.ErrActiveBlastExists when the insert collides with the
// active-blast index.
func (r *GormBlastRepository) Add(ctx context.Context, aggregate *blast.Blast) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return translateActiveBlastConflict(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing blast and upserts its responses.
// Returns blast.ErrBlastResolved when the stored blast reached a different
// terminal state since it was read.
func (r *GormBlastRepository) Update(ctx context.Context, aggregate *blast.Blast) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	// A blast leaves active exactly once. The status guard makes the losing
	// writer of a concurrent resolution match zero rows instead of
	// overwriting a terminal state.
	result := r.db.WithContext(ctx).
		Model(&BlastDTO{}).
		Where("id = ?", dto.ID).
		Where("status IN ?", []string{blast.Active.String(), dto.Status}).
		Select("*").
		Omit("id", "created_at", "Responses").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&BlastDTO{}).
			Where("id = ?", dto.ID).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return fmt.Errorf("%w: blast %s", blast.ErrBlastResolved, aggregate.ID())
	}

	// Responses only ever move forward (pending → viewed → terminal), so a
	// blanket upsert on the primary key is safe.
	if len(dto.Responses) > 0 {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "responded_at"}),
			}).
			Create(&dto.Responses).
			Error
		if err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a blast by ID, responses included.
func (r *GormBlastRepository) Get(ctx context.Context, id kernel.UUID) (*blast.Blast, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BlastDTO
	err := r.db.WithContext(ctx).
		Preload("Responses").
		First(&dto, "id = ?", id.Bytes()).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("blast", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByLoad retrieves the active blast for a load, or nil when the
// load has none.
func (r *GormBlastRepository) GetActiveByLoad(ctx context.Context, loadID kernel.UUID) (*blast.Blast, error) {
	if err := loadID.Validate(); err != nil {
		return nil, err
	}

	var dto BlastDTO
	err := r.db.WithContext(ctx).
		Preload("Responses").
		First(&dto, "load_id = ? AND status = ?", loadID.Bytes(), blast.Active.String()).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetExpired retrieves blasts still marked active whose response window
// elapsed before the given instant.
func (r *GormBlastRepository) GetExpired(ctx context.Context, now time.Time) ([]*blast.Blast, error) {
	var dtos []BlastDTO
	err := r.db.WithContext(ctx).
		Preload("Responses").
		Find(&dtos, "status = ? AND expires_at < ?", blast.Active.String(), now).
		Error
	if err != nil {
		return nil, err
	}

	blasts := make([]*blast.Blast, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		blasts = append(blasts, b)
	}

	return blasts, nil
}

// translateActiveBlastConflict maps a violation of the active-blast index to
// the port-level sentinel. Other errors pass through unchanged.
func translateActiveBlastConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == ActiveBlastIndex {
		return ports.ErrActiveBlastExists
	}
	return err
}
