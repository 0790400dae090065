package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

func arrivalHandler(factory *MockLoadUoWFactory, eventRepo *MockStatusEventRepository) commands.ReportArrivalCommandHandler {
	return commands.NewReportArrivalCommandHandler(
		factory, services.NewArrivalDetector(), eventRepo, testLogger(), ports.NopEngineMetrics{},
	)
}

func TestReportArrivalCommandHandler_Handle_WithinGeofence(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	ld := testLoad(t, load.Assigned, &courierID)

	// ~111 m north of the test pickup point.
	reported, err := kernel.NewGeoPoint(33.7500, -84.3880)
	require.NoError(t, err)

	cmd, err := commands.NewReportArrivalCommand(ld.ID(), courierID, services.ArrivedPickup, reported)
	require.NoError(t, err)

	loadRepo := &MockLoadRepository{}
	loadRepo.On("Get", ctx, ld.ID()).Return(ld, nil)
	loadRepo.On("Update", ctx, ld).Return(nil)

	eventRepo := &MockStatusEventRepository{}
	eventRepo.On("Add", ctx, mock.MatchedBy(func(e load.StatusEvent) bool {
		return e.From() == load.Assigned && e.To() == load.ArrivedPickup &&
			e.Position() != nil
	})).Return(nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("LoadRepository").Return(loadRepo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockLoadUoWFactory{}
	factory.On("Create").Return(uow)

	err = arrivalHandler(factory, eventRepo).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, load.ArrivedPickup, ld.Status())
	// Arrival at pickup never stamps actual_pickup; only in_progress does.
	assert.Nil(t, ld.ActualPickupAt())
	eventRepo.AssertExpectations(t)
}

func TestReportArrivalCommandHandler_Handle_OutsideGeofence(t *testing.T) {
	ctx := t.Context()

	courierID := kernel.NewUUID()
	ld := testLoad(t, load.Assigned, &courierID)

	// ~1.1 km north of the test pickup point.
	reported, err := kernel.NewGeoPoint(33.7590, -84.3880)
	require.NoError(t, err)

	cmd, err := commands.NewReportArrivalCommand(ld.ID(), courierID, services.ArrivedPickup, reported)
	require.NoError(t, err)

	loadRepo := &MockLoadRepository{}
	loadRepo.On("Get", ctx, ld.ID()).Return(ld, nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("LoadRepository").Return(loadRepo)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockLoadUoWFactory{}
	factory.On("Create").Return(uow)

	eventRepo := &MockStatusEventRepository{}

	err = arrivalHandler(factory, eventRepo).Handle(ctx, cmd)

	require.ErrorIs(t, err, services.ErrOutOfGeofence)
	assert.Equal(t, load.Assigned, ld.Status())
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	loadRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReportArrivalCommandHandler_Handle_PreconditionRejected(t *testing.T) {
	ctx := t.Context()

	ld := testLoad(t, load.Pending, nil)
	courierID := kernel.NewUUID()

	reported, err := kernel.NewGeoPoint(33.7490, -84.3880)
	require.NoError(t, err)

	cmd, err := commands.NewReportArrivalCommand(ld.ID(), courierID, services.ArrivedPickup, reported)
	require.NoError(t, err)

	loadRepo := &MockLoadRepository{}
	loadRepo.On("Get", ctx, ld.ID()).Return(ld, nil)

	uow := &MockUoW{}
	uow.On("Begin", ctx).Return(nil)
	uow.On("LoadRepository").Return(loadRepo)
	uow.On("Rollback", ctx).Return(nil)

	factory := &MockLoadUoWFactory{}
	factory.On("Create").Return(uow)

	eventRepo := &MockStatusEventRepository{}

	err = arrivalHandler(factory, eventRepo).Handle(ctx, cmd)

	require.ErrorIs(t, err, load.ErrInvalidTransition)
	assert.Equal(t, load.Pending, ld.Status())
}
