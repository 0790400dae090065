// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, notification, routing,
// and metrics collaborators. Interfaces live here so the core depends on
// abstractions and the adapters depend on the core, never the reverse.
package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// ErrCourierAlreadyAssigned is returned by LoadRepository.Update when the
// write would leave one courier holding two actively-assigned loads. Backed
// by a partial unique index, so two dispatchers racing to assign the same
// courier cannot both succeed.
var ErrCourierAlreadyAssigned = errors.New("courier already has an actively assigned load")

// LoadRepository defines the persistence contract for load aggregates.
//
// The load row is the single shared mutable resource of the dispatch engine;
// every writer goes through the aggregate's transition methods and then
// Update, never writing status directly. The store enforces the assignment
// invariant: at most one load per courier in an actively-assigned status
// (assigned, in_progress, arrived_pickup, in_transit, arrived_delivery),
// via a partial unique index on courier_id.
type LoadRepository interface {
	// Add persists a new load aggregate to storage.
	Add(ctx context.Context, aggregate *load.Load) error

	// Update persists changes to an existing load aggregate.
	// Returns ErrCourierAlreadyAssigned when the update would give the
	// courier a second actively-assigned load.
	Update(ctx context.Context, aggregate *load.Load) error

	// Get retrieves a load aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*load.Load, error)

	// GetByCourier retrieves the loads currently attached to a courier in an
	// actively-assigned status.
	GetByCourier(ctx context.Context, courierID kernel.UUID) ([]*load.Load, error)
}
