package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

func respondHandler(
	factory *MockUoWFactory,
	notifier *MockBlastNotifier,
	eventRepo *MockStatusEventRepository,
) commands.RespondToBlastCommandHandler {
	return commands.NewRespondToBlastCommandHandler(factory, notifier, eventRepo, testLogger(), ports.NopEngineMetrics{})
}

func TestRespondToBlastCommandHandler_Handle_FirstInterestedWins(t *testing.T) {
	ctx := t.Context()

	ld := testLoad(t, load.Blasted, nil)
	courierA := kernel.NewUUID()
	courierB := kernel.NewUUID()

	b, err := blast.NewBlast(kernel.NewUUID(), ld.ID(), []kernel.UUID{courierA, courierB}, 15*time.Minute, time.Now())
	require.NoError(t, err)

	loadRepo := &MockLoadRepository{}
	loadRepo.On("Get", ctx, ld.ID()).Return(ld, nil)
	loadRepo.On("Update", ctx, ld).Return(nil)

	blastRepo := &MockBlastRepository{}
	blastRepo.On("Get", ctx, b.ID()).Return(b, nil)
	blastRepo.On("Update", ctx, b).Return(nil)

	_, factory := newBlastUoW(ctx, loadRepo, blastRepo)

	eventRepo := &MockStatusEventRepository{}
	eventRepo.On("Add", ctx, mock.MatchedBy(func(e load.StatusEvent) bool {
		return e.From() == load.Blasted && e.To() == load.Assigned
	})).Return(nil)

	notifier := &MockBlastNotifier{}
	notifier.On("NotifyBlastResolved", ctx, b).Return(nil)
	notifier.On("NotifyLoadAssigned", ctx, courierA, ld.ID()).Return(nil)

	// Courier B declines first; the blast stays live.
	declineCmd, err := commands.NewRespondToBlastCommand(b.ID(), courierB, commands.ReplyDeclined)
	require.NoError(t, err)
	require.NoError(t, respondHandler(factory, notifier, eventRepo).Handle(ctx, declineCmd))
	assert.Equal(t, blast.Active, b.Status())
	assert.Equal(t, load.Blasted, ld.Status())

	// Courier A is interested: blast accepted, load assigned to A.
	interestedCmd, err := commands.NewRespondToBlastCommand(b.ID(), courierA, commands.ReplyInterested)
	require.NoError(t, err)
	require.NoError(t, respondHandler(factory, notifier, eventRepo).Handle(ctx, interestedCmd))

	assert.Equal(t, blast.Accepted, b.Status())
	require.NotNil(t, b.AcceptedBy())
	assert.True(t, b.AcceptedBy().IsEqual(courierA))
	assert.Equal(t, load.Assigned, ld.Status())
	require.NotNil(t, ld.Courier())
	assert.True(t, ld.Courier().IsEqual(courierA))

	notifier.AssertExpectations(t)
	eventRepo.AssertExpectations(t)
}

func TestRespondToBlastCommandHandler_Handle_SecondInterestedRejected(t *testing.T) {
	ctx := t.Context()

	ld := testLoad(t, load.Blasted, nil)
	courierA := kernel.NewUUID()
	courierB := kernel.NewUUID()

	b, err := blast.NewBlast(kernel.NewUUID(), ld.ID(), []kernel.UUID{courierA, courierB}, 15*time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, b.Accept(courierA, time.Now()))

	blastRepo := &MockBlastRepository{}
	blastRepo.On("Get", ctx, b.ID()).Return(b, nil)

	loadRepo := &MockLoadRepository{}
	uow, factory := newBlastUoW(ctx, loadRepo, blastRepo)

	notifier := &MockBlastNotifier{}
	eventRepo := &MockStatusEventRepository{}

	cmd, err := commands.NewRespondToBlastCommand(b.ID(), courierB, commands.ReplyInterested)
	require.NoError(t, err)

	err = respondHandler(factory, notifier, eventRepo).Handle(ctx, cmd)

	require.ErrorIs(t, err, blast.ErrBlastResolved)
	assert.True(t, b.AcceptedBy().IsEqual(courierA))
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	blastRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRespondToBlastCommandHandler_Handle_ViewedTouchesOnlyTheBlast(t *testing.T) {
	ctx := t.Context()

	courierA := kernel.NewUUID()
	loadID := kernel.NewUUID()

	b, err := blast.NewBlast(kernel.NewUUID(), loadID, []kernel.UUID{courierA}, 15*time.Minute, time.Now())
	require.NoError(t, err)

	blastRepo := &MockBlastRepository{}
	blastRepo.On("Get", ctx, b.ID()).Return(b, nil)
	blastRepo.On("Update", ctx, b).Return(nil)

	loadRepo := &MockLoadRepository{}
	_, factory := newBlastUoW(ctx, loadRepo, blastRepo)

	notifier := &MockBlastNotifier{}
	eventRepo := &MockStatusEventRepository{}

	cmd, err := commands.NewRespondToBlastCommand(b.ID(), courierA, commands.ReplyViewed)
	require.NoError(t, err)

	require.NoError(t, respondHandler(factory, notifier, eventRepo).Handle(ctx, cmd))

	assert.Equal(t, blast.ResponseViewed, b.ResponseFor(courierA).Status())
	assert.Equal(t, blast.Active, b.Status())
	loadRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	eventRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}
