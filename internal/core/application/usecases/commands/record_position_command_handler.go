package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
)

// RecordPositionCommandHandler appends courier GPS samples.
type RecordPositionCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewRecordPositionCommandHandler creates a handler for position ingestion.
func NewRecordPositionCommandHandler(uowFactory CourierUoWFactory) RecordPositionCommandHandler {
	return RecordPositionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the position sample.
func (h RecordPositionCommandHandler) Handle(ctx context.Context, command RecordPositionCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	position, err := courier.NewPosition(
		command.CourierID(),
		command.Point(),
		command.RecordedAt(),
		command.SpeedMph(),
		command.HeadingDeg(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.CourierRepository().AddPosition(ctx, position); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
