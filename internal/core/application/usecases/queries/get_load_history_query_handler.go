package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
)

// GetLoadHistoryQueryHandler reads a load's audit trail from the database.
type GetLoadHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetLoadHistoryQueryHandler creates a handler for load history queries.
func NewGetLoadHistoryQueryHandler(db *gorm.DB) GetLoadHistoryQueryHandler {
	return GetLoadHistoryQueryHandler{db: db}
}

// Handle executes the query. Events come back oldest first; a load with no
// recorded transitions yields an empty slice, not an error.
func (h GetLoadHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetLoadHistoryQuery,
) ([]LoadHistoryEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			from_status,
			to_status,
			actor,
			reason,
			lat,
			lng,
			created_at
		FROM status_events
		WHERE load_id = ?
		ORDER BY created_at, id
	`, query.LoadID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]LoadHistoryEntryResponse, 0)
	for rows.Next() {
		var id uuid.UUID
		var fromStatus, toStatus, actor, reason string
		var lat, lng sql.NullFloat64
		var createdAt time.Time

		if err = rows.Scan(&id, &fromStatus, &toStatus, &actor, &reason, &lat, &lng, &createdAt); err != nil {
			return nil, err
		}

		eventID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		entry := LoadHistoryEntryResponse{
			EventID:   eventID,
			From:      fromStatus,
			To:        toStatus,
			Actor:     actor,
			Reason:    reason,
			CreatedAt: createdAt,
		}

		if lat.Valid && lng.Valid {
			point, pErr := kernel.NewGeoPoint(lat.Float64, lng.Float64)
			if pErr != nil {
				return nil, pErr
			}
			entry.Position = &point
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
