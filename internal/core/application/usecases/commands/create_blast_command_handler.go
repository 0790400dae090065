package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// CreateBlastCommandHandler broadcasts loads to couriers.
//
// The blast row and the load's move to blasted commit together; the push
// notification to recipients runs after commit and is best-effort, so a
// failed push never fails the blast creation.
type CreateBlastCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.BlastNotifier
	eventLog   statusEventLog
	logger     *slog.Logger
	metrics    ports.EngineMetrics
}

// NewCreateBlastCommandHandler creates a handler for blast creation.
func NewCreateBlastCommandHandler(
	uowFactory UoWFactory,
	notifier ports.BlastNotifier,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) CreateBlastCommandHandler {
	return CreateBlastCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		eventLog:   newStatusEventLog(events, logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle processes the blast creation command.
func (h CreateBlastCommandHandler) Handle(ctx context.Context, command CreateBlastCommand) error {
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

	loadRepo := uow.LoadRepository()
	blastRepo := uow.BlastRepository()

	ld, err := loadRepo.Get(ctx, command.LoadID())
	if err != nil {
		return err
	}

	// Early rejection for the common case; the partial unique index on
	// blasts makes the losing side of a create race fail at insert with the
	// same sentinel.
	existing, err := blastRepo.GetActiveByLoad(ctx, command.LoadID())
	if err != nil {
		return err
	}
	if existing != nil {
		return ports.ErrActiveBlastExists
	}

	now := time.Now().UTC()
	b, err := blast.NewBlast(command.BlastID(), command.LoadID(), command.RecipientIDs(), command.Window(), now)
	if err != nil {
		return err
	}

	from := ld.Status()
	if err = ld.TransitionTo(load.Blasted, now); err != nil {
		return err
	}

	if err = blastRepo.Add(ctx, b); err != nil {
		return err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.TransitionApplied(from, load.Blasted)
	h.eventLog.append(ctx, ld.ID(), from, load.Blasted, command.Actor(), "blast created", nil)

	if err = h.notifier.NotifyBlastCreated(ctx, b); err != nil {
		h.logger.WarnContext(ctx, "blast created but recipient notification failed",
			"blast_id", b.ID().String(),
			"load_id", ld.ID().String(),
			"error", err,
		)
	}

	return nil
}
