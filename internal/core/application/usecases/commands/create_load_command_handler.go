package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/load"
)

// CreateLoadCommandHandler persists new loads.
type CreateLoadCommandHandler struct {
	uowFactory LoadUoWFactory
}

// NewCreateLoadCommandHandler creates a handler for load registration.
func NewCreateLoadCommandHandler(uowFactory LoadUoWFactory) CreateLoadCommandHandler {
	return CreateLoadCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the load creation command.
func (h CreateLoadCommandHandler) Handle(ctx context.Context, command CreateLoadCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	ld, err := load.NewLoad(
		command.LoadID(),
		command.Reference(),
		command.PickupAddress(),
		command.DeliveryAddress(),
		command.PickupPoint(),
		command.DeliveryPoint(),
		time.Now().UTC(),
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

	if err = uow.LoadRepository().Add(ctx, ld); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
