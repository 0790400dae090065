package commands_test

import (
	"context"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
)

type MockLoadRepository struct{ mock.Mock }

func (m *MockLoadRepository) Add(ctx context.Context, l *load.Load) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoadRepository) Update(ctx context.Context, l *load.Load) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoadRepository) Get(ctx context.Context, id kernel.UUID) (*load.Load, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*load.Load), args.Error(1)
}

func (m *MockLoadRepository) GetByCourier(ctx context.Context, courierID kernel.UUID) ([]*load.Load, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*load.Load), args.Error(1)
}

type MockBlastRepository struct{ mock.Mock }

func (m *MockBlastRepository) Add(ctx context.Context, b *blast.Blast) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBlastRepository) Update(ctx context.Context, b *blast.Blast) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBlastRepository) Get(ctx context.Context, id kernel.UUID) (*blast.Blast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blast.Blast), args.Error(1)
}

func (m *MockBlastRepository) GetActiveByLoad(ctx context.Context, loadID kernel.UUID) (*blast.Blast, error) {
	args := m.Called(ctx, loadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blast.Blast), args.Error(1)
}

func (m *MockBlastRepository) GetExpired(ctx context.Context, now time.Time) ([]*blast.Blast, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blast.Blast), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetByHub(ctx context.Context, hub string) ([]*courier.Courier, error) {
	args := m.Called(ctx, hub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) AddPosition(ctx context.Context, p courier.Position) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCourierRepository) GetLatestPositions(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]courier.Position, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]courier.Position), args.Error(1)
}

func (m *MockCourierRepository) GetTodayLoadCounts(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]int, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]int), args.Error(1)
}

type MockStatusEventRepository struct{ mock.Mock }

func (m *MockStatusEventRepository) Add(ctx context.Context, e load.StatusEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStatusEventRepository) GetByLoad(ctx context.Context, loadID kernel.UUID) ([]load.StatusEvent, error) {
	args := m.Called(ctx, loadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]load.StatusEvent), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) LoadRepository() ports.LoadRepository {
	args := m.Called()
	return args.Get(0).(ports.LoadRepository)
}

func (m *MockUoW) BlastRepository() ports.BlastRepository {
	args := m.Called()
	return args.Get(0).(ports.BlastRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockLoadUoWFactory struct{ mock.Mock }

func (m *MockLoadUoWFactory) Create() commands.LoadUoW {
	args := m.Called()
	return args.Get(0).(commands.LoadUoW)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

type MockBlastNotifier struct{ mock.Mock }

func (m *MockBlastNotifier) NotifyBlastCreated(ctx context.Context, b *blast.Blast) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBlastNotifier) NotifyBlastResolved(ctx context.Context, b *blast.Blast) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBlastNotifier) NotifyLoadAssigned(ctx context.Context, courierID kernel.UUID, loadID kernel.UUID) error {
	args := m.Called(ctx, courierID, loadID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testLoad(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, status load.Status, courierID *kernel.UUID) *load.Load {
	t.Helper()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	if err != nil {
		t.Fatalf("pickup point: %v", err)
	}
	delivery, err := kernel.NewGeoPoint(33.7720, -84.3880)
	if err != nil {
		t.Fatalf("delivery point: %v", err)
	}

	ld, err := load.RestoreLoad(
		kernel.NewUUID(), "LD-1001", status, courierID,
		"100 Peachtree St NE, Atlanta", "400 W Peachtree St NW, Atlanta",
		&pickup, &delivery,
		now, now, nil, nil,
	)
	if err != nil {
		t.Fatalf("restore load: %v", err)
	}
	return ld
}
