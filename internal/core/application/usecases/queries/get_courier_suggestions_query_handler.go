package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// GetCourierSuggestionsQueryHandler produces the ranked courier list for a
// pickup. It reads couriers, their latest positions, and today's load counts
// straight from the database, runs the scorer, and optionally decorates each
// suggestion with a routing-engine drive estimate.
//
// The ETA provider is optional and best-effort: a failed estimate is logged
// and the suggestion ships without one.
type GetCourierSuggestionsQueryHandler struct {
	db     *gorm.DB
	scorer services.CourierScorer
	eta    ports.ETAProvider
	logger *slog.Logger
}

// NewGetCourierSuggestionsQueryHandler creates a handler for courier ranking.
// Pass a nil eta provider to skip drive estimates entirely.
func NewGetCourierSuggestionsQueryHandler(
	db *gorm.DB,
	eta ports.ETAProvider,
	logger *slog.Logger,
) GetCourierSuggestionsQueryHandler {
	return GetCourierSuggestionsQueryHandler{
		db:     db,
		scorer: services.NewCourierScorer(),
		eta:    eta,
		logger: logger,
	}
}

// Handle executes the query and returns suggestions sorted descending by
// score, ties in courier name order.
func (h GetCourierSuggestionsQueryHandler) Handle(
	ctx context.Context,
	query GetCourierSuggestionsQuery,
) ([]CourierSuggestionResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers, err := h.fetchCouriers(ctx, query.Hub())
	if err != nil {
		return nil, err
	}
	if len(couriers) == 0 {
		return []CourierSuggestionResponse{}, nil
	}

	positions, err := h.fetchLatestPositions(ctx, query.Hub())
	if err != nil {
		return nil, err
	}

	counts, err := h.fetchTodayLoadCounts(ctx, query.Hub())
	if err != nil {
		return nil, err
	}

	scores, err := h.scorer.Score(couriers, positions, query.Pickup(), counts)
	if err != nil {
		return nil, err
	}

	suggestions := make([]CourierSuggestionResponse, 0, len(scores))
	for _, s := range scores {
		suggestion := CourierSuggestionResponse{
			CourierID:     s.Courier.ID(),
			Name:          s.Courier.Name(),
			Status:        s.Courier.Status().String(),
			Score:         s.Score,
			Reason:        s.Reason,
			IsAvailable:   s.IsAvailable,
			DistanceMiles: s.DistanceMiles,
		}

		if eta := h.driveETA(ctx, s.Courier.ID(), positions, query.Pickup()); eta != nil {
			suggestion.DriveETA = eta
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

func (h GetCourierSuggestionsQueryHandler) fetchCouriers(ctx context.Context, hub string) ([]*courier.Courier, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			hub,
			status
		FROM couriers
		WHERE hub = ?
		ORDER BY name
	`, hub).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	couriers := make([]*courier.Courier, 0)
	for rows.Next() {
		var id uuid.UUID
		var name, hubName, status string

		if err = rows.Scan(&id, &name, &hubName, &status); err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		c, cErr := courier.NewCourier(courierID, name, hubName, courier.ParseStatus(status))
		if cErr != nil {
			return nil, cErr
		}
		couriers = append(couriers, c)
	}

	return couriers, rows.Err()
}

func (h GetCourierSuggestionsQueryHandler) fetchLatestPositions(
	ctx context.Context,
	hub string,
) (map[kernel.UUID]courier.Position, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (p.courier_id)
			p.courier_id,
			p.lat,
			p.lng,
			p.recorded_at,
			p.speed_mph,
			p.heading_deg
		FROM courier_positions p
		JOIN couriers c ON c.id = p.courier_id
		WHERE c.hub = ?
		ORDER BY p.courier_id, p.recorded_at DESC
	`, hub).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[kernel.UUID]courier.Position)
	for rows.Next() {
		var id uuid.UUID
		var lat, lng, speed, heading float64
		var recordedAt time.Time

		if err = rows.Scan(&id, &lat, &lng, &recordedAt, &speed, &heading); err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		point, pErr := kernel.NewGeoPoint(lat, lng)
		if pErr != nil {
			return nil, pErr
		}

		position, posErr := courier.NewPosition(courierID, point, recordedAt, speed, heading)
		if posErr != nil {
			return nil, posErr
		}
		positions[courierID] = position
	}

	return positions, rows.Err()
}

func (h GetCourierSuggestionsQueryHandler) fetchTodayLoadCounts(
	ctx context.Context,
	hub string,
) (map[kernel.UUID]int, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			l.courier_id,
			COUNT(*)
		FROM loads l
		JOIN couriers c ON c.id = l.courier_id
		WHERE c.hub = ?
		  AND l.created_at >= CURRENT_DATE
		GROUP BY l.courier_id
	`, hub).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[kernel.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var count int

		if err = rows.Scan(&id, &count); err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		counts[courierID] = count
	}

	return counts, rows.Err()
}

// driveETA asks the routing engine for an estimate. Any failure is logged
// and swallowed; suggestions are useful without an ETA.
func (h GetCourierSuggestionsQueryHandler) driveETA(
	ctx context.Context,
	courierID kernel.UUID,
	positions map[kernel.UUID]courier.Position,
	pickup *kernel.GeoPoint,
) *time.Duration {
	if h.eta == nil || pickup == nil {
		return nil
	}

	position, ok := positions[courierID]
	if !ok {
		return nil
	}

	eta, err := h.eta.EstimateDrive(ctx, position.Point(), *pickup)
	if err != nil {
		h.logger.DebugContext(ctx, "drive estimate unavailable",
			"courier_id", courierID.String(), "error", err)
		return nil
	}

	return &eta
}
