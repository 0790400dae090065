package queries_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/eventrepo"
	"dispatch/internal/adapters/out/postgres/loadrepo"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// stubETAProvider returns a fixed estimate for every pair of points.
type stubETAProvider struct {
	eta time.Duration
}

func (s stubETAProvider) EstimateDrive(_ context.Context, _, _ kernel.GeoPoint) (time.Duration, error) {
	return s.eta, nil
}

// QueryHandlersIntegrationTestSuite exercises the read-side handlers against
// PostgreSQL, seeding rows through the persistence DTOs so the raw SQL in
// each handler is covered end to end.
type QueryHandlersIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
}

func (suite *QueryHandlersIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
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

	suite.Require().NoError(postgres.Migrate(db))
}

func (suite *QueryHandlersIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE loads, couriers, courier_positions, status_events").Error
	suite.Require().NoError(err)
}

func (suite *QueryHandlersIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCourierSuggestions_RanksByScore() {
	near := suite.insertCourier("Alice", "ATL", "idle")
	noGPS := suite.insertCourier("Bob", "ATL", "idle")
	busy := suite.insertCourier("Carol", "ATL", "on_load")

	// Alice is a few blocks from the pickup, Carol is out past Macon.
	suite.insertPosition(near, 33.7550, -84.3900, time.Now().UTC())
	suite.insertPosition(busy, 32.8407, -83.6324, time.Now().UTC())

	suite.insertLoadFor(busy, "completed")
	suite.insertLoadFor(busy, "in_transit")

	handler := queries.NewGetCourierSuggestionsQueryHandler(suite.db, nil, testLogger())

	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)
	query, err := queries.NewGetCourierSuggestionsQuery("ATL", &pickup)
	suite.Require().NoError(err)

	suggestions, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(suggestions, 3)

	// idle + near + no loads, idle + unknown position + no loads,
	// on_load + far + two loads today.
	suite.Equal("Alice", suggestions[0].Name)
	suite.Equal(100, suggestions[0].Score)
	suite.True(suggestions[0].IsAvailable)
	suite.Require().NotNil(suggestions[0].DistanceMiles)
	suite.Less(*suggestions[0].DistanceMiles, 5.0)

	suite.Equal(noGPS, suggestions[1].CourierID.Bytes())
	suite.Equal("Bob", suggestions[1].Name)
	suite.Equal(73, suggestions[1].Score)
	suite.Nil(suggestions[1].DistanceMiles)

	suite.Equal("Carol", suggestions[2].Name)
	suite.Equal(21, suggestions[2].Score)
	suite.False(suggestions[2].IsAvailable)

	for _, s := range suggestions {
		suite.Nil(s.DriveETA)
	}
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCourierSuggestions_IgnoresOtherHubs() {
	suite.insertCourier("Dave", "SAV", "idle")

	handler := queries.NewGetCourierSuggestionsQueryHandler(suite.db, nil, testLogger())

	query, err := queries.NewGetCourierSuggestionsQuery("ATL", nil)
	suite.Require().NoError(err)

	suggestions, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(suggestions)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCourierSuggestions_UsesLatestPositionOnly() {
	id := suite.insertCourier("Erin", "ATL", "active")

	// Stale sample far away, fresh sample at the pickup.
	suite.insertPosition(id, 32.8407, -83.6324, time.Now().UTC().Add(-time.Hour))
	suite.insertPosition(id, 33.7490, -84.3880, time.Now().UTC())

	handler := queries.NewGetCourierSuggestionsQueryHandler(suite.db, nil, testLogger())

	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)
	query, err := queries.NewGetCourierSuggestionsQuery("ATL", &pickup)
	suite.Require().NoError(err)

	suggestions, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(suggestions, 1)
	suite.Require().NotNil(suggestions[0].DistanceMiles)
	suite.InDelta(0.0, *suggestions[0].DistanceMiles, 0.01)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetCourierSuggestions_DriveETAForPositionedCouriers() {
	withGPS := suite.insertCourier("Frank", "ATL", "idle")
	suite.insertCourier("Grace", "ATL", "idle")
	suite.insertPosition(withGPS, 33.7550, -84.3900, time.Now().UTC())

	provider := stubETAProvider{eta: 7 * time.Minute}
	handler := queries.NewGetCourierSuggestionsQueryHandler(suite.db, provider, testLogger())

	pickup, err := kernel.NewGeoPoint(33.7490, -84.3880)
	suite.Require().NoError(err)
	query, err := queries.NewGetCourierSuggestionsQuery("ATL", &pickup)
	suite.Require().NoError(err)

	suggestions, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(suggestions, 2)

	byName := map[string]queries.CourierSuggestionResponse{}
	for _, s := range suggestions {
		byName[s.Name] = s
	}

	suite.Require().NotNil(byName["Frank"].DriveETA)
	suite.Equal(7*time.Minute, *byName["Frank"].DriveETA)
	suite.Nil(byName["Grace"].DriveETA)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetLoadHistory_OrdersOldestFirst() {
	loadID := kernel.NewUUID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	lat, lng := 33.7490, -84.3880
	suite.insertEvent(loadID, "assigned", "in_progress", "courier:c1", base.Add(time.Minute), &lat, &lng)
	suite.insertEvent(loadID, "pending", "assigned", "dispatcher:amy", base, nil, nil)

	handler := queries.NewGetLoadHistoryQueryHandler(suite.db)

	query, err := queries.NewGetLoadHistoryQuery(loadID)
	suite.Require().NoError(err)

	entries, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)

	suite.Equal("pending", entries[0].From)
	suite.Equal("assigned", entries[0].To)
	suite.Equal("dispatcher:amy", entries[0].Actor)
	suite.Nil(entries[0].Position)

	suite.Equal("in_progress", entries[1].To)
	suite.Require().NotNil(entries[1].Position)
	suite.InDelta(lat, entries[1].Position.Lat(), 0.0001)
	suite.InDelta(lng, entries[1].Position.Lng(), 0.0001)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetLoadHistory_EmptyForUnknownLoad() {
	handler := queries.NewGetLoadHistoryQueryHandler(suite.db)

	query, err := queries.NewGetLoadHistoryQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	entries, err := handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *QueryHandlersIntegrationTestSuite) TestGetActiveLoads_ExcludesCompletedNewestFirst() {
	courierID := suite.insertCourier("Heidi", "ATL", "on_load")

	old := suite.insertLoadAt(nil, "pending", time.Now().UTC().Add(-2*time.Hour))
	fresh := suite.insertLoadAt(&courierID, "assigned", time.Now().UTC())
	suite.insertLoadAt(nil, "completed", time.Now().UTC().Add(-time.Hour))

	handler := queries.NewGetActiveLoadsQueryHandler(suite.db)

	loads, err := handler.Handle(context.Background(), queries.NewGetActiveLoadsQuery())
	suite.Require().NoError(err)
	suite.Require().Len(loads, 2)

	suite.Equal(fresh, loads[0].LoadID.Bytes())
	suite.Require().NotNil(loads[0].CourierID)
	suite.Equal(courierID, loads[0].CourierID.Bytes())

	suite.Equal(old, loads[1].LoadID.Bytes())
	suite.Nil(loads[1].CourierID)
}

func (suite *QueryHandlersIntegrationTestSuite) insertCourier(name, hub, status string) uuid.UUID {
	dto := courierrepo.CourierDTO{ID: uuid.New(), Name: name, Hub: hub, Status: status}
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return dto.ID
}

func (suite *QueryHandlersIntegrationTestSuite) insertPosition(courierID uuid.UUID, lat, lng float64, recordedAt time.Time) {
	dto := courierrepo.PositionDTO{
		ID:         uuid.New(),
		CourierID:  courierID,
		Lat:        lat,
		Lng:        lng,
		RecordedAt: recordedAt,
		SpeedMph:   25,
		HeadingDeg: 90,
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
}

func (suite *QueryHandlersIntegrationTestSuite) insertLoadFor(courierID uuid.UUID, status string) {
	suite.insertLoadAt(&courierID, status, time.Now().UTC())
}

func (suite *QueryHandlersIntegrationTestSuite) insertLoadAt(courierID *uuid.UUID, status string, createdAt time.Time) uuid.UUID {
	dto := loadrepo.LoadDTO{
		ID:              uuid.New(),
		Reference:       "LD-" + uuid.NewString()[:8],
		Status:          status,
		CourierID:       courierID,
		PickupAddress:   "100 Peachtree St NW, Atlanta",
		DeliveryAddress: "1270 Spring St NW, Atlanta",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
	return dto.ID
}

func (suite *QueryHandlersIntegrationTestSuite) insertEvent(
	loadID kernel.UUID,
	from, to, actor string,
	createdAt time.Time,
	lat, lng *float64,
) {
	dto := eventrepo.StatusEventDTO{
		ID:         uuid.New(),
		LoadID:     loadID.Bytes(),
		FromStatus: from,
		ToStatus:   to,
		Actor:      actor,
		Reason:     "",
		Lat:        lat,
		Lng:        lng,
		CreatedAt:  createdAt,
	}
	suite.Require().NoError(suite.db.Create(&dto).Error)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueryHandlersIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueryHandlersIntegrationTestSuite))
}
