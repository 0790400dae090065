package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// CancelBlastCommandHandler calls off live broadcasts.
//
// Cancellation is idempotent: a blast that already resolved is left exactly
// as it is and the handler returns nil, so redundant cancel clicks and
// retries are harmless.
type CancelBlastCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.BlastNotifier
	eventLog   statusEventLog
	logger     *slog.Logger
	metrics    ports.EngineMetrics
}

// NewCancelBlastCommandHandler creates a handler for blast cancellation.
func NewCancelBlastCommandHandler(
	uowFactory UoWFactory,
	notifier ports.BlastNotifier,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) CancelBlastCommandHandler {
	return CancelBlastCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		eventLog:   newStatusEventLog(events, logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle processes the blast cancellation command.
func (h CancelBlastCommandHandler) Handle(ctx context.Context, command CancelBlastCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	blastRepo := uow.BlastRepository()

	b, err := blastRepo.Get(ctx, command.BlastID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	changed, err := b.Cancel(now)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	loadRepo := uow.LoadRepository()

	ld, err := loadRepo.Get(ctx, b.LoadID())
	if err != nil {
		return err
	}

	from := ld.Status()
	if err = ld.TransitionTo(load.Pending, now); err != nil {
		return err
	}

	if err = blastRepo.Update(ctx, b); err != nil {
		return err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.TransitionApplied(from, load.Pending)
	h.metrics.BlastResolved(blast.Cancelled)
	h.eventLog.append(ctx, ld.ID(), from, load.Pending, command.Actor(), "blast cancelled", nil)

	if err = h.notifier.NotifyBlastResolved(ctx, b); err != nil {
		h.logger.WarnContext(ctx, "blast cancelled but recipient notification failed",
			"blast_id", b.ID().String(), "error", err)
	}

	return nil
}
