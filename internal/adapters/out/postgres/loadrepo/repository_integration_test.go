package loadrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/loadrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// LoadRepositoryIntegrationTestSuite provides integration tests for
// LoadRepository using PostgreSQL containers, including the partial unique
// index that enforces one active load per courier.
type LoadRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *loadrepo.GormLoadRepository
	tracker    *MockAggregateTracker
}

func (suite *LoadRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&loadrepo.LoadDTO{}))
	suite.Require().NoError(db.Exec(loadrepo.ActiveAssignmentIndexDDL).Error)
}

func (suite *LoadRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE loads").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = loadrepo.NewGormLoadRepository(suite.db, suite.tracker)
}

func (suite *LoadRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *LoadRepositoryIntegrationTestSuite) TestAdd_ValidLoad_Success() {
	ctx := context.Background()

	testLoad := suite.createTestLoad("LD-2001")
	suite.tracker.On("TrackAggregate", testLoad.ID(), testLoad).Once()

	err := suite.repository.Add(ctx, testLoad)
	suite.Require().NoError(err)

	suite.assertLoadCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestGet_ExistingLoad_RoundTrips() {
	ctx := context.Background()

	original := suite.createTestLoad("LD-2002")
	suite.tracker.On("TrackAggregate", original.ID(), original).Once()
	suite.Require().NoError(suite.repository.Add(ctx, original))

	retrieved, err := suite.repository.Get(ctx, original.ID())
	suite.Require().NoError(err)

	suite.Equal(original.ID(), retrieved.ID())
	suite.Equal("LD-2002", retrieved.Reference())
	suite.Equal(load.Pending, retrieved.Status())
	suite.Nil(retrieved.Courier())
	suite.Equal(original.PickupAddress(), retrieved.PickupAddress())
	suite.Require().NotNil(retrieved.PickupPoint())
	suite.InDelta(original.PickupPoint().Lat(), retrieved.PickupPoint().Lat(), 1e-9)
	suite.Nil(retrieved.ActualPickupAt())
	suite.Nil(retrieved.ActualDeliveryAt())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestGet_NonExistentLoad_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestUpdate_ClearedCourierPersistsAsNull() {
	ctx := context.Background()

	courierID := kernel.NewUUID()
	assigned := suite.createTestLoadWithStatus("LD-2003", load.Assigned, &courierID)
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(2)
	suite.Require().NoError(suite.repository.Add(ctx, assigned))

	// Reverting to pending clears the courier; the NULL must overwrite the
	// stored value, not be skipped as a zero field.
	reverted := suite.createTestLoadWithStatusAndID(assigned.ID(), "LD-2003", load.Pending, nil)
	suite.Require().NoError(suite.repository.Update(ctx, reverted))

	retrieved, err := suite.repository.Get(ctx, assigned.ID())
	suite.Require().NoError(err)
	suite.Equal(load.Pending, retrieved.Status())
	suite.Nil(retrieved.Courier())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestUpdate_NonExistentLoad_ReturnsError() {
	ctx := context.Background()

	ghost := suite.createTestLoad("LD-2004")
	err := suite.repository.Update(ctx, ghost)

	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestAdd_SecondActiveLoadForCourier_ReturnsConflict() {
	ctx := context.Background()

	courierID := kernel.NewUUID()
	first := suite.createTestLoadWithStatus("LD-2005", load.Assigned, &courierID)
	suite.tracker.On("TrackAggregate", first.ID(), first).Once()
	suite.Require().NoError(suite.repository.Add(ctx, first))

	second := suite.createTestLoadWithStatus("LD-2006", load.InTransit, &courierID)
	err := suite.repository.Add(ctx, second)

	suite.Require().ErrorIs(err, ports.ErrCourierAlreadyAssigned)
	suite.assertLoadCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestAdd_CompletedLoadDoesNotBlockNewAssignment() {
	ctx := context.Background()

	courierID := kernel.NewUUID()
	finished := suite.createTestLoadWithStatus("LD-2007", load.Completed, &courierID)
	next := suite.createTestLoadWithStatus("LD-2008", load.Assigned, &courierID)
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(2)

	suite.Require().NoError(suite.repository.Add(ctx, finished))
	suite.Require().NoError(suite.repository.Add(ctx, next))

	suite.assertLoadCount(2)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestUpdate_AssignmentCollision_ReturnsConflict() {
	ctx := context.Background()

	courierID := kernel.NewUUID()
	held := suite.createTestLoadWithStatus("LD-2009", load.InProgress, &courierID)
	pending := suite.createTestLoad("LD-2010")
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(2)
	suite.Require().NoError(suite.repository.Add(ctx, held))
	suite.Require().NoError(suite.repository.Add(ctx, pending))

	// A dispatcher assigning the busy courier a second load loses to the
	// partial unique index.
	grabbed := suite.createTestLoadWithStatusAndID(pending.ID(), "LD-2010", load.Assigned, &courierID)
	err := suite.repository.Update(ctx, grabbed)

	suite.Require().ErrorIs(err, ports.ErrCourierAlreadyAssigned)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *LoadRepositoryIntegrationTestSuite) TestGetByCourier_ReturnsOnlyActiveLoads() {
	ctx := context.Background()

	courierID := kernel.NewUUID()
	otherCourier := kernel.NewUUID()
	active := suite.createTestLoadWithStatus("LD-2011", load.InTransit, &courierID)
	done := suite.createTestLoadWithStatus("LD-2012", load.Delivered, &courierID)
	foreign := suite.createTestLoadWithStatus("LD-2013", load.Assigned, &otherCourier)
	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything).Times(3)

	suite.Require().NoError(suite.repository.Add(ctx, active))
	suite.Require().NoError(suite.repository.Add(ctx, done))
	suite.Require().NoError(suite.repository.Add(ctx, foreign))

	loads, err := suite.repository.GetByCourier(ctx, courierID)
	suite.Require().NoError(err)
	suite.Require().Len(loads, 1)
	suite.Equal(active.ID(), loads[0].ID())

	suite.tracker.AssertExpectations(suite.T())
}

// createTestLoad creates a pending load with both coordinates set.
func (suite *LoadRepositoryIntegrationTestSuite) createTestLoad(reference string) *load.Load {
	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)
	delivery, err := kernel.NewGeoPoint(33.7720, -84.3880)
	suite.Require().NoError(err)

	testLoad, err := load.NewLoad(
		kernel.NewUUID(),
		reference,
		"100 Peachtree St NW, Atlanta",
		"1270 Spring St NW, Atlanta",
		&pickup,
		&delivery,
		time.Now().UTC(),
	)
	suite.Require().NoError(err)
	return testLoad
}

func (suite *LoadRepositoryIntegrationTestSuite) createTestLoadWithStatus(
	reference string, status load.Status, courierID *kernel.UUID,
) *load.Load {
	return suite.createTestLoadWithStatusAndID(kernel.NewUUID(), reference, status, courierID)
}

func (suite *LoadRepositoryIntegrationTestSuite) createTestLoadWithStatusAndID(
	id kernel.UUID, reference string, status load.Status, courierID *kernel.UUID,
) *load.Load {
	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)
	delivery, err := kernel.NewGeoPoint(33.7720, -84.3880)
	suite.Require().NoError(err)

	now := time.Now().UTC()
	testLoad, err := load.RestoreLoad(
		id,
		reference,
		status,
		courierID,
		"100 Peachtree St NW, Atlanta",
		"1270 Spring St NW, Atlanta",
		&pickup,
		&delivery,
		now,
		now,
		nil,
		nil,
	)
	suite.Require().NoError(err)
	return testLoad
}

func (suite *LoadRepositoryIntegrationTestSuite) assertLoadCount(expected int) {
	var count int64
	err := suite.db.Model(&loadrepo.LoadDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestLoadRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(LoadRepositoryIntegrationTestSuite))
}
