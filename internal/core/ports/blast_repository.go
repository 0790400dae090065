package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrActiveBlastExists is returned by BlastRepository.Add when the load
// already has a live blast. Backed by a partial unique index, so two
// dispatchers racing to broadcast the same load cannot both succeed; the
// create handler also returns it from its pre-insert check.
var ErrActiveBlastExists = errors.New("load already has an active blast")

// BlastRepository defines the persistence contract for blast aggregates and
// their per-recipient responses. The blast row's status, not the response
// rows, is authoritative for whether a blast is still live.
type BlastRepository interface {
	// Add persists a new blast aggregate with its responses. Returns
	// ErrActiveBlastExists when the load already has a live blast.
	Add(ctx context.Context, aggregate *blast.Blast) error

	// Update persists changes to an existing blast aggregate and its
	// responses. Returns blast.ErrBlastResolved when the stored blast
	// reached a different terminal state since it was read, so concurrent
	// resolutions cannot overwrite each other.
	Update(ctx context.Context, aggregate *blast.Blast) error

	// Get retrieves a blast aggregate by its unique identifier, responses
	// included.
	Get(ctx context.Context, id kernel.UUID) (*blast.Blast, error)

	// GetActiveByLoad retrieves the active blast for a load, or nil when the
	// load has none. Checked before create: at most one active blast may
	// exist per load.
	GetActiveByLoad(ctx context.Context, loadID kernel.UUID) (*blast.Blast, error)

	// GetExpired retrieves all blasts still marked active whose response
	// window elapsed before the given instant. Consumed by the expiry sweep.
	GetExpired(ctx context.Context, now time.Time) ([]*blast.Blast, error)
}
