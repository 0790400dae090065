package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// ETAProvider estimates driving time between two coordinates.
//
// Estimates decorate courier suggestions; they are advisory and optional.
// A provider that cannot produce an estimate returns an error and the caller
// proceeds without one.
type ETAProvider interface {
	// EstimateDrive returns the expected driving duration from one point to
	// another.
	EstimateDrive(ctx context.Context, from kernel.GeoPoint, to kernel.GeoPoint) (time.Duration, error)
}
