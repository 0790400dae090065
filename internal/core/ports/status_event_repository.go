package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// StatusEventRepository defines the persistence contract for the append-only
// status audit log. Events are never updated or deleted; they are orderable
// by creation timestamp per load, with no global ordering across loads.
//
// Appends run after the load row commits and are best-effort: a failed
// append is logged as a partial-write warning and never rolls back the load
// mutation.
type StatusEventRepository interface {
	// Add appends a status event to the log.
	Add(ctx context.Context, event load.StatusEvent) error

	// GetByLoad retrieves all events for a load, oldest first.
	GetByLoad(ctx context.Context, loadID kernel.UUID) ([]load.StatusEvent, error)
}
