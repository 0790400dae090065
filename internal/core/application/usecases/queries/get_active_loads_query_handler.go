package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
)

// GetActiveLoadsQueryHandler reads the dispatcher board from the database.
type GetActiveLoadsQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveLoadsQueryHandler creates a handler for dispatcher board queries.
func NewGetActiveLoadsQueryHandler(db *gorm.DB) GetActiveLoadsQueryHandler {
	return GetActiveLoadsQueryHandler{db: db}
}

// Handle executes the query. Loads come back newest first.
func (h GetActiveLoadsQueryHandler) Handle(
	ctx context.Context,
	query GetActiveLoadsQuery,
) ([]ActiveLoadResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			reference,
			status,
			courier_id,
			created_at,
			updated_at
		FROM loads
		WHERE status != ?
		ORDER BY created_at DESC
	`, load.Completed.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := make([]ActiveLoadResponse, 0)
	for rows.Next() {
		var id uuid.UUID
		var courierID *uuid.UUID
		var reference, status string
		var createdAt, updatedAt time.Time

		if err = rows.Scan(&id, &reference, &status, &courierID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		loadID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		resp := ActiveLoadResponse{
			LoadID:    loadID,
			Reference: reference,
			Status:    status,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		}

		if courierID != nil {
			cid, cErr := kernel.UUIDFromBytes(courierID[:])
			if cErr != nil {
				return nil, cErr
			}
			resp.CourierID = &cid
		}

		loads = append(loads, resp)
	}

	return loads, rows.Err()
}
