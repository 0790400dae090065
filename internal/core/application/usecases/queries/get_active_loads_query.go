package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveLoadsQueryIsNotConstructed = errors.New(
	"GetActiveLoadsQuery must be created via NewGetActiveLoadsQuery constructor",
)

// GetActiveLoadsQuery retrieves every load that has not reached the
// completed status, for the dispatcher board. Cancelled and failed loads
// are included: both can be reopened to pending.
type GetActiveLoadsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveLoadsQuery creates a query for the dispatcher board.
func NewGetActiveLoadsQuery() GetActiveLoadsQuery {
	return GetActiveLoadsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveLoadsQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveLoadsQueryIsNotConstructed)
}

// ActiveLoadResponse is one row on the dispatcher board.
type ActiveLoadResponse struct {
	LoadID    kernel.UUID
	Reference string
	Status    string
	CourierID *kernel.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
