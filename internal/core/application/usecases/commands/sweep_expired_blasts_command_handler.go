package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// SweepExpiredBlastsCommandHandler times out stale broadcasts.
//
// Each expired blast resolves in its own transaction and its load reverts
// to pending; one failing blast is logged and skipped so the rest of the
// sweep still runs. Reverted loads go back into the dispatcher's pending
// queue for another blast or a manual assignment.
type SweepExpiredBlastsCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.BlastNotifier
	eventLog   statusEventLog
	logger     *slog.Logger
	metrics    ports.EngineMetrics
}

// NewSweepExpiredBlastsCommandHandler creates a handler for the expiry sweep.
func NewSweepExpiredBlastsCommandHandler(
	uowFactory UoWFactory,
	notifier ports.BlastNotifier,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) SweepExpiredBlastsCommandHandler {
	return SweepExpiredBlastsCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		eventLog:   newStatusEventLog(events, logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle processes the sweep command. Returns the number of blasts expired.
func (h SweepExpiredBlastsCommandHandler) Handle(ctx context.Context, command SweepExpiredBlastsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	expired, err := uow.BlastRepository().GetExpired(ctx, command.Now())
	if rollbackErr := uow.Rollback(ctx); rollbackErr != nil && err == nil {
		err = rollbackErr
	}
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, stale := range expired {
		expiredNow, err := h.expireOne(ctx, stale.ID(), command)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to expire blast, skipping",
				"blast_id", stale.ID().String(),
				"load_id", stale.LoadID().String(),
				"error", err,
			)
			continue
		}
		if expiredNow {
			swept++
		}
	}

	return swept, nil
}

// expireOne resolves a single stale blast in its own transaction.
//
// The blast is re-read inside that transaction rather than trusting the
// sweep's snapshot: a courier can accept right at the deadline, and a
// resolved blast must never be rewritten. A blast that resolved since the
// snapshot reports false and is left untouched.
func (h SweepExpiredBlastsCommandHandler) expireOne(
	ctx context.Context,
	blastID kernel.UUID,
	command SweepExpiredBlastsCommand,
) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	blastRepo := uow.BlastRepository()

	b, err := blastRepo.Get(ctx, blastID)
	if err != nil {
		return false, err
	}

	changed, err := b.Expire(command.Now())
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	loadRepo := uow.LoadRepository()

	ld, err := loadRepo.Get(ctx, b.LoadID())
	if err != nil {
		return false, err
	}

	from := ld.Status()
	if err = ld.TransitionTo(load.Pending, command.Now()); err != nil {
		return false, err
	}

	if err = blastRepo.Update(ctx, b); err != nil {
		return false, err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.metrics.TransitionApplied(from, load.Pending)
	h.metrics.BlastResolved(blast.Expired)
	h.eventLog.append(ctx, ld.ID(), from, load.Pending, "system:expiry_sweep", "blast expired", nil)

	if err = h.notifier.NotifyBlastResolved(ctx, b); err != nil {
		h.logger.WarnContext(ctx, "blast expired but recipient notification failed",
			"blast_id", b.ID().String(), "error", err)
	}

	return true, nil
}
