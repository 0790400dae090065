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

func TestCancelBlastCommandHandler_Handle_RevertsLoadToPending(t *testing.T) {
	ctx := t.Context()

	ld := testLoad(t, load.Blasted, nil)
	recipients := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

	b, err := blast.NewBlast(kernel.NewUUID(), ld.ID(), recipients, 15*time.Minute, time.Now())
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
		return e.From() == load.Blasted && e.To() == load.Pending && e.Reason() == "blast cancelled"
	})).Return(nil)

	notifier := &MockBlastNotifier{}
	notifier.On("NotifyBlastResolved", ctx, b).Return(nil)

	cmd, err := commands.NewCancelBlastCommand(b.ID(), "dispatcher:amy")
	require.NoError(t, err)

	handler := commands.NewCancelBlastCommandHandler(factory, notifier, eventRepo, testLogger(), ports.NopEngineMetrics{})
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.Equal(t, blast.Cancelled, b.Status())
	assert.Equal(t, load.Pending, ld.Status())
	for _, r := range b.Responses() {
		assert.Equal(t, blast.ResponseExpired, r.Status())
	}
	eventRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCancelBlastCommandHandler_Handle_ResolvedBlastIsNoOp(t *testing.T) {
	ctx := t.Context()

	courierA := kernel.NewUUID()
	loadID := kernel.NewUUID()

	b, err := blast.NewBlast(kernel.NewUUID(), loadID, []kernel.UUID{courierA}, 15*time.Minute, time.Now())
	require.NoError(t, err)
	require.NoError(t, b.Accept(courierA, time.Now()))

	blastRepo := &MockBlastRepository{}
	blastRepo.On("Get", ctx, b.ID()).Return(b, nil)

	loadRepo := &MockLoadRepository{}
	uow, factory := newBlastUoW(ctx, loadRepo, blastRepo)

	notifier := &MockBlastNotifier{}
	eventRepo := &MockStatusEventRepository{}

	cmd, err := commands.NewCancelBlastCommand(b.ID(), "dispatcher:amy")
	require.NoError(t, err)

	handler := commands.NewCancelBlastCommandHandler(factory, notifier, eventRepo, testLogger(), ports.NopEngineMetrics{})
	require.NoError(t, handler.Handle(ctx, cmd))

	// Already resolved: nothing mutated, nothing notified.
	assert.Equal(t, blast.Accepted, b.Status())
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	blastRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyBlastResolved", mock.Anything, mock.Anything)
}
