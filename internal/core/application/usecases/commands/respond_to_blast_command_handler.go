package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// RespondToBlastCommandHandler resolves courier answers to broadcast offers.
//
// The first interested response wins: the blast resolves to accepted, every
// other response is forced to expired, and the load moves to assigned with
// the winning courier attached — advisory interest surfaced for dispatcher
// confirmation, not a finalized job. Viewed and declined answers mutate
// only the blast. A response against an already-resolved blast fails with
// blast.ErrBlastResolved and changes nothing.
type RespondToBlastCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.BlastNotifier
	eventLog   statusEventLog
	logger     *slog.Logger
	metrics    ports.EngineMetrics
}

// NewRespondToBlastCommandHandler creates a handler for blast responses.
func NewRespondToBlastCommandHandler(
	uowFactory UoWFactory,
	notifier ports.BlastNotifier,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) RespondToBlastCommandHandler {
	return RespondToBlastCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		eventLog:   newStatusEventLog(events, logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle processes the blast response command.
func (h RespondToBlastCommandHandler) Handle(ctx context.Context, command RespondToBlastCommand) error {
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

	switch command.Reply() {
	case ReplyViewed:
		if err = b.MarkViewed(command.CourierID()); err != nil {
			return err
		}
		if err = blastRepo.Update(ctx, b); err != nil {
			return err
		}
		return uow.Commit(ctx)

	case ReplyDeclined:
		if err = b.Decline(command.CourierID(), now); err != nil {
			return err
		}
		if err = blastRepo.Update(ctx, b); err != nil {
			return err
		}
		return uow.Commit(ctx)

	case ReplyInterested:
		return h.accept(ctx, uow, b, command, now)

	default:
		return fmt.Errorf("%d is not a valid blast reply", command.Reply())
	}
}

// accept resolves the blast in the courier's favor and assigns the load.
func (h RespondToBlastCommandHandler) accept(
	ctx context.Context,
	uow UoW,
	b *blast.Blast,
	command RespondToBlastCommand,
	now time.Time,
) error {
	if err := b.Accept(command.CourierID(), now); err != nil {
		return err
	}

	loadRepo := uow.LoadRepository()

	ld, err := loadRepo.Get(ctx, b.LoadID())
	if err != nil {
		return err
	}

	from := ld.Status()
	if err = ld.Assign(command.CourierID(), now); err != nil {
		return err
	}

	if err = uow.BlastRepository().Update(ctx, b); err != nil {
		return err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.TransitionApplied(from, load.Assigned)
	h.metrics.BlastResolved(blast.Accepted)

	actor := fmt.Sprintf("courier:%s", command.CourierID())
	h.eventLog.append(ctx, ld.ID(), from, load.Assigned, actor, "blast accepted", nil)

	if err = h.notifier.NotifyBlastResolved(ctx, b); err != nil {
		h.logger.WarnContext(ctx, "blast resolved but recipient notification failed",
			"blast_id", b.ID().String(), "error", err)
	}
	if err = h.notifier.NotifyLoadAssigned(ctx, command.CourierID(), ld.ID()); err != nil {
		h.logger.WarnContext(ctx, "load assigned but courier notification failed",
			"load_id", ld.ID().String(), "error", err)
	}

	return nil
}
