package ports

import (
	"context"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
)

// BlastNotifier pushes blast lifecycle events to courier devices.
//
// Notification is best-effort and outside the transaction boundary: a failed
// push is logged and never fails or rolls back the operation that triggered
// it.
type BlastNotifier interface {
	// NotifyBlastCreated announces a new offer to every recipient.
	NotifyBlastCreated(ctx context.Context, aggregate *blast.Blast) error

	// NotifyBlastResolved tells recipients the offer is over, so devices can
	// drop it from their screens. Covers acceptance, cancellation, and expiry.
	NotifyBlastResolved(ctx context.Context, aggregate *blast.Blast) error

	// NotifyLoadAssigned tells the winning courier the load is theirs.
	NotifyLoadAssigned(ctx context.Context, courierID kernel.UUID, loadID kernel.UUID) error
}
