package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetCourierSuggestionsQueryIsNotConstructed = errors.New(
	"GetCourierSuggestionsQuery must be created via NewGetCourierSuggestionsQuery constructor",
)

// GetCourierSuggestionsQuery ranks a hub's couriers for a pickup location.
// The ranking is advisory: it feeds the dispatcher UI and blast recipient
// selection, and never assigns anything.
//
// Example:
//
//	query, _ := NewGetCourierSuggestionsQuery("ATL", &pickupPoint)
//	suggestions, err := handler.Handle(ctx, query)
type GetCourierSuggestionsQuery struct {
	hub    string
	pickup *kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewGetCourierSuggestionsQuery creates a query for ranked courier suggestions.
//
// Parameters:
//   - hub: the geographic zone whose couriers to rank (required)
//   - pickup: the load's pickup coordinate; nil when geocoding is missing,
//     in which case every courier gets the neutral distance value
func NewGetCourierSuggestionsQuery(hub string, pickup *kernel.GeoPoint) (GetCourierSuggestionsQuery, error) {
	if hub == "" {
		return GetCourierSuggestionsQuery{}, errs.NewValueIsRequiredError("hub")
	}

	if pickup != nil {
		if err := pickup.Validate(); err != nil {
			return GetCourierSuggestionsQuery{}, err
		}
	}

	return GetCourierSuggestionsQuery{
		hub:    hub,
		pickup: pickup,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Hub returns the zone whose couriers to rank.
func (q GetCourierSuggestionsQuery) Hub() string {
	return q.hub
}

// Pickup returns the pickup coordinate, if known.
func (q GetCourierSuggestionsQuery) Pickup() *kernel.GeoPoint {
	return q.pickup
}

// Validate ensures the query was created through the constructor.
func (q GetCourierSuggestionsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierSuggestionsQueryIsNotConstructed)
}

// CourierSuggestionResponse is one ranked courier in the suggestion list.
type CourierSuggestionResponse struct {
	CourierID   kernel.UUID
	Name        string
	Status      string
	Score       int
	Reason      string
	IsAvailable bool

	// DistanceMiles is nil when the courier has no recent position or the
	// pickup coordinate is unknown.
	DistanceMiles *float64

	// DriveETA is a routing-engine estimate from the courier's last position
	// to the pickup; nil when no estimate could be produced.
	DriveETA *time.Duration
}
