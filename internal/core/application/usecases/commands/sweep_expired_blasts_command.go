package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var ErrSweepExpiredBlastsCommandIsNotConstructed = errors.New(
	"SweepExpiredBlastsCommand must be created via NewSweepExpiredBlastsCommand constructor",
)

// SweepExpiredBlastsCommand resolves every blast whose response window has
// elapsed without an acceptance. The sweep is idempotent and safe to invoke
// redundantly on any cadence; each pass only touches blasts still active
// past their expiry.
type SweepExpiredBlastsCommand struct {
	now time.Time

	guard guard.ConstructorGuard
}

// NewSweepExpiredBlastsCommand creates a sweep command for the given instant.
func NewSweepExpiredBlastsCommand(now time.Time) (SweepExpiredBlastsCommand, error) {
	if now.IsZero() {
		return SweepExpiredBlastsCommand{}, errors.New("sweep instant must be set")
	}

	return SweepExpiredBlastsCommand{
		now:   now,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Now returns the instant expiry is measured against.
func (c SweepExpiredBlastsCommand) Now() time.Time {
	return c.now
}

// Validate ensures the command was created through the constructor.
func (c SweepExpiredBlastsCommand) Validate() error {
	return c.guard.Validate(ErrSweepExpiredBlastsCommandIsNotConstructed)
}
