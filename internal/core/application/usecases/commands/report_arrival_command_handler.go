package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// ReportArrivalCommandHandler drives geofence-triggered automatic transitions.
//
// The ArrivalDetector decides whether the reported position justifies a
// transition; on approval the handler performs it and records a status event
// whose actor and reason mark it as automatic, so the audit trail
// distinguishes geofence transitions from manual ones.
//
// Example:
//
//	handler := NewReportArrivalCommandHandler(uowFactory, detector, eventRepo, logger, metrics)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrOutOfGeofence):
//	    // too far from the target; the error carries the measured distance
//	case errors.Is(err, load.ErrInvalidTransition):
//	    // load is not in a state this event type can fire from
//	}
type ReportArrivalCommandHandler struct {
	uowFactory LoadUoWFactory
	detector   services.ArrivalDetector
	eventLog   statusEventLog
	metrics    ports.EngineMetrics
}

// NewReportArrivalCommandHandler creates a handler for arrival reports.
func NewReportArrivalCommandHandler(
	uowFactory LoadUoWFactory,
	detector services.ArrivalDetector,
	events ports.StatusEventRepository,
	logger *slog.Logger,
	metrics ports.EngineMetrics,
) ReportArrivalCommandHandler {
	return ReportArrivalCommandHandler{
		uowFactory: uowFactory,
		detector:   detector,
		eventLog:   newStatusEventLog(events, logger, metrics),
		metrics:    metrics,
	}
}

// Handle processes the arrival report.
func (h ReportArrivalCommandHandler) Handle(ctx context.Context, command ReportArrivalCommand) error {
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

	target, reason, err := h.detector.CheckArrival(ld, command.EventType(), command.Position())

	var transitionErr *load.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		h.metrics.TransitionRejected(transitionErr.From, transitionErr.To)
		return err
	}
	if errors.Is(err, services.ErrOutOfGeofence) {
		h.metrics.GeofenceRejected(command.EventType().String())
		return err
	}
	if err != nil {
		return err
	}

	from := ld.Status()
	if err = ld.TransitionTo(target, time.Now().UTC()); err != nil {
		return err
	}

	if err = loadRepo.Update(ctx, ld); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.TransitionApplied(from, target)

	position := command.Position()
	actor := fmt.Sprintf("courier:%s", command.CourierID())
	h.eventLog.append(ctx, ld.ID(), from, target, actor, reason, &position)

	return nil
}
