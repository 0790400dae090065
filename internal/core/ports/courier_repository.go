package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for couriers and their
// position telemetry. Couriers are reference data for this engine: the
// scorer and the blast coordinator read them, only telemetry ingestion
// writes.
type CourierRepository interface {
	// Add persists a new courier to storage.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetByHub retrieves all couriers attached to a hub.
	// Hub filtering happens here, upstream of scoring.
	GetByHub(ctx context.Context, hub string) ([]*courier.Courier, error)

	// AddPosition appends a position sample for a courier.
	AddPosition(ctx context.Context, position courier.Position) error

	// GetLatestPositions returns the most recent position sample per courier,
	// keyed by courier ID. Couriers with no samples are absent from the map.
	GetLatestPositions(ctx context.Context, courierIDs []kernel.UUID) (map[kernel.UUID]courier.Position, error)

	// GetTodayLoadCounts returns the number of loads attached to each courier
	// since the start of the current day, keyed by courier ID. Couriers with
	// no loads today are absent from the map.
	GetTodayLoadCounts(ctx context.Context, courierIDs []kernel.UUID) (map[kernel.UUID]int, error)
}
