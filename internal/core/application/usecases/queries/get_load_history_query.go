package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetLoadHistoryQueryIsNotConstructed = errors.New(
	"GetLoadHistoryQuery must be created via NewGetLoadHistoryQuery constructor",
)

// GetLoadHistoryQuery retrieves the audit trail of a load: every accepted
// status transition, oldest first. The event log is the sole source of truth
// for "what happened when"; the load row only holds current state.
type GetLoadHistoryQuery struct {
	loadID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetLoadHistoryQuery creates a query for a load's status history.
func NewGetLoadHistoryQuery(loadID kernel.UUID) (GetLoadHistoryQuery, error) {
	if err := loadID.Validate(); err != nil {
		return GetLoadHistoryQuery{}, err
	}

	return GetLoadHistoryQuery{
		loadID: loadID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// LoadID returns the load whose history to fetch.
func (q GetLoadHistoryQuery) LoadID() kernel.UUID {
	return q.loadID
}

// Validate ensures the query was created through the constructor.
func (q GetLoadHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetLoadHistoryQueryIsNotConstructed)
}

// LoadHistoryEntryResponse is one audit record in a load's history.
type LoadHistoryEntryResponse struct {
	EventID   kernel.UUID
	From      string
	To        string
	Actor     string
	Reason    string
	Position  *kernel.GeoPoint
	CreatedAt time.Time
}
