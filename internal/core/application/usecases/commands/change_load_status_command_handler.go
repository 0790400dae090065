package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

// ChangeLoadStatusCommandHandler applies manual status transitions.
//
// The load row mutates inside a transaction; the status-event append runs
// after commit and is best-effort, so a failed append leaves the new status
// in place with only a logged warning. A same-status request is a silent
// no-op: nothing is written and no event is recorded.
//
// Example:
//
//	handler := NewChangeLoadStatusCommandHandler(uowFactory, eventRepo, logger, metrics)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, load.ErrInvalidTransition):
//	    // rejected, non-fatal; tell the actor which from→to pair failed
//	case errors.Is(err, ports.ErrCourierAlreadyAssigned):
//	    // assignment conflict, another dispatcher won the race
//	case err != nil:
//	    // store failure, safe to retry with the same arguments
//	}
type ChangeLoadStatusCommandHandler struct {
	uowFactory LoadUoWFactory
	eventLog   statusEventLog
	metrics    ports.EngineMetrics
}

// NewChangeLoadStatusCommandHandler creates a handler for manual transitions.
func NewChangeLoadStatusCommandHandler(
	uowFactory LoadUoWFactory,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) ChangeLoadStatusCommandHandler {
	return ChangeLoadStatusCommandHandler{
		uowFactory: uowFactory,
		eventLog:   newStatusEventLog(events, logger, metrics),
		metrics:    metrics,
	}
}

// Handle processes the status change command.
func (h ChangeLoadStatusCommandHandler) Handle(ctx context.Context, command ChangeLoadStatusCommand) error {
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

	ld, err := loadRepo.Get(ctx, command.LoadID())
	if err != nil {
		return err
	}

	from := ld.Status()
	if from == command.Target() && !isCourierSwap(ld, command) {
		return nil
	}

	now := time.Now().UTC()
	if command.Target() == load.Assigned {
		err = ld.Assign(*command.CourierID(), now)
	} else {
		err = ld.TransitionTo(command.Target(), now)
	}

	var transitionErr *load.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		h.metrics.TransitionRejected(transitionErr.From, transitionErr.To)
		return err
	}
	if err != nil {
		return err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.TransitionApplied(from, command.Target())
	h.eventLog.append(ctx, ld.ID(), from, command.Target(), command.Actor(), command.Reason(), nil)

	return nil
}

// isCourierSwap reports whether an assigned-target request moves the load to
// a different courier. The status itself does not change, but the swap must
// still run through Assign and be persisted and audited rather than
// short-circuited as a no-op.
func isCourierSwap(ld *load.Load, command ChangeLoadStatusCommand) bool {
	if command.Target() != load.Assigned || command.CourierID() == nil {
		return false
	}
	current := ld.Courier()
	return current == nil || !current.IsEqual(*command.CourierID())
}
