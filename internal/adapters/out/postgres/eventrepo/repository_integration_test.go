package eventrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/eventrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// StatusEventRepositoryIntegrationTestSuite verifies the append-only audit
// log persists events and returns them in stable chronological order.
type StatusEventRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *eventrepo.GormStatusEventRepository
}

func (suite *StatusEventRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&eventrepo.StatusEventDTO{}))
}

func (suite *StatusEventRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE status_events").Error)
	suite.repository = eventrepo.NewGormStatusEventRepository(suite.db)
}

func (suite *StatusEventRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *StatusEventRepositoryIntegrationTestSuite) TestGetByLoad_ReturnsEventsOldestFirst() {
	ctx := context.Background()

	loadID := kernel.NewUUID()
	base := time.Now().UTC().Truncate(time.Microsecond)
	position, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)

	// Appended out of order on purpose.
	suite.appendEvent(ctx, loadID, load.Assigned, load.InProgress, "courier:abc", nil, base.Add(time.Minute))
	suite.appendEvent(ctx, loadID, load.Pending, load.Assigned, "dispatcher:kelly", nil, base)
	suite.appendEvent(ctx, loadID, load.InProgress, load.ArrivedPickup, "geofence", &position, base.Add(2*time.Minute))
	suite.appendEvent(ctx, kernel.NewUUID(), load.Pending, load.Cancelled, "dispatcher:kelly", nil, base)

	events, err := suite.repository.GetByLoad(ctx, loadID)
	suite.Require().NoError(err)
	suite.Require().Len(events, 3)

	suite.Equal(load.Assigned, events[0].To())
	suite.Equal(load.InProgress, events[1].To())
	suite.Equal(load.ArrivedPickup, events[2].To())

	suite.Require().NotNil(events[2].Position())
	suite.InDelta(33.7490, events[2].Position().Lat(), 1e-9)
	suite.Nil(events[0].Position())
}

func (suite *StatusEventRepositoryIntegrationTestSuite) TestGetByLoad_NoEvents_ReturnsEmptySlice() {
	events, err := suite.repository.GetByLoad(context.Background(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Empty(events)
}

func (suite *StatusEventRepositoryIntegrationTestSuite) appendEvent(
	ctx context.Context,
	loadID kernel.UUID,
	from, to load.Status,
	actor string,
	position *kernel.GeoPoint,
	createdAt time.Time,
) {
	event, err := load.NewStatusEvent(
		kernel.NewUUID(), loadID, from, to, actor, "", position, createdAt,
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, event))
}

func TestStatusEventRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StatusEventRepositoryIntegrationTestSuite))
}
