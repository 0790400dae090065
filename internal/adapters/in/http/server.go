// Package http exposes the dispatch engine over a JSON API.
// It coordinates between HTTP handlers and application use cases: handlers
// parse and map, use cases decide.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/blast"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/load"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Server wires the HTTP routes to the command and query handlers.
type Server struct {
	// Command handlers
	createLoadHandler       commands.CreateLoadCommandHandler
	changeLoadStatusHandler commands.ChangeLoadStatusCommandHandler
	reportArrivalHandler    commands.ReportArrivalCommandHandler
	createBlastHandler      commands.CreateBlastCommandHandler
	respondToBlastHandler   commands.RespondToBlastCommandHandler
	cancelBlastHandler      commands.CancelBlastCommandHandler
	recordPositionHandler   commands.RecordPositionCommandHandler

	// Query handlers
	getSuggestionsHandler queries.GetCourierSuggestionsQueryHandler
	getHistoryHandler     queries.GetLoadHistoryQueryHandler
	getActiveLoadsHandler queries.GetActiveLoadsQueryHandler
}

// NewServer creates an HTTP server with the required handlers.
func NewServer(
	createLoadHandler commands.CreateLoadCommandHandler,
	changeLoadStatusHandler commands.ChangeLoadStatusCommandHandler,
	reportArrivalHandler commands.ReportArrivalCommandHandler,
	createBlastHandler commands.CreateBlastCommandHandler,
	respondToBlastHandler commands.RespondToBlastCommandHandler,
	cancelBlastHandler commands.CancelBlastCommandHandler,
	recordPositionHandler commands.RecordPositionCommandHandler,
	getSuggestionsHandler queries.GetCourierSuggestionsQueryHandler,
	getHistoryHandler queries.GetLoadHistoryQueryHandler,
	getActiveLoadsHandler queries.GetActiveLoadsQueryHandler,
) *Server {
	return &Server{
		createLoadHandler:       createLoadHandler,
		changeLoadStatusHandler: changeLoadStatusHandler,
		reportArrivalHandler:    reportArrivalHandler,
		createBlastHandler:      createBlastHandler,
		respondToBlastHandler:   respondToBlastHandler,
		cancelBlastHandler:      cancelBlastHandler,
		recordPositionHandler:   recordPositionHandler,
		getSuggestionsHandler:   getSuggestionsHandler,
		getHistoryHandler:       getHistoryHandler,
		getActiveLoadsHandler:   getActiveLoadsHandler,
	}
}

// RegisterRoutes attaches every route to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/loads", s.CreateLoad)
	api.GET("/loads", s.GetActiveLoads)
	api.POST("/loads/:id/status", s.ChangeLoadStatus)
	api.POST("/loads/:id/arrival", s.ReportArrival)
	api.GET("/loads/:id/history", s.GetLoadHistory)
	api.POST("/loads/:id/blasts", s.CreateBlast)
	api.POST("/blasts/:id/responses", s.RespondToBlast)
	api.POST("/blasts/:id/cancel", s.CancelBlast)
	api.GET("/couriers/suggestions", s.GetCourierSuggestions)
	api.POST("/couriers/:id/positions", s.RecordPosition)
}

// ErrorResponse is the JSON body every failed request carries.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

type createLoadRequest struct {
	Reference       string   `json:"reference"`
	PickupAddress   string   `json:"pickup_address"`
	DeliveryAddress string   `json:"delivery_address"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DeliveryLat     *float64 `json:"delivery_lat"`
	DeliveryLng     *float64 `json:"delivery_lng"`
}

type createLoadResponse struct {
	LoadID string `json:"load_id"`
}

// CreateLoad handles POST /api/v1/loads.
func (s *Server) CreateLoad(ctx echo.Context) error {
	var req createLoadRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	pickupPoint, err := optionalPoint(req.PickupLat, req.PickupLng)
	if err != nil {
		return writeError(ctx, err)
	}
	deliveryPoint, err := optionalPoint(req.DeliveryLat, req.DeliveryLng)
	if err != nil {
		return writeError(ctx, err)
	}

	loadID := kernel.NewUUID()
	cmd, err := commands.NewCreateLoadCommand(
		loadID,
		req.Reference,
		req.PickupAddress,
		req.DeliveryAddress,
		pickupPoint,
		deliveryPoint,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.createLoadHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createLoadResponse{LoadID: loadID.String()})
}

type changeLoadStatusRequest struct {
	Target    string  `json:"target"`
	Actor     string  `json:"actor"`
	Reason    string  `json:"reason"`
	CourierID *string `json:"courier_id"`
}

// ChangeLoadStatus handles POST /api/v1/loads/:id/status.
func (s *Server) ChangeLoadStatus(ctx echo.Context) error {
	loadID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid load ID")
	}

	var req changeLoadStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := load.ParseStatus(req.Target)
	if err != nil {
		return writeError(ctx, err)
	}

	var courierID *kernel.UUID
	if req.CourierID != nil {
		id, idErr := kernel.UUIDFromString(*req.CourierID)
		if idErr != nil {
			return badRequest(ctx, "Invalid courier ID")
		}
		courierID = &id
	}

	cmd, err := commands.NewChangeLoadStatusCommand(loadID, target, req.Actor, req.Reason, courierID)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.changeLoadStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type reportArrivalRequest struct {
	CourierID string  `json:"courier_id"`
	EventType string  `json:"event_type"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// ReportArrival handles POST /api/v1/loads/:id/arrival.
func (s *Server) ReportArrival(ctx echo.Context) error {
	loadID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid load ID")
	}

	var req reportArrivalRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	eventType, err := services.ParseArrivalEventType(req.EventType)
	if err != nil {
		return writeError(ctx, err)
	}

	position, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewReportArrivalCommand(loadID, courierID, eventType, position)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.reportArrivalHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type createBlastRequest struct {
	Recipients    []string `json:"recipients"`
	WindowSeconds int      `json:"window_seconds"`
	Actor         string   `json:"actor"`
}

type createBlastResponse struct {
	BlastID string `json:"blast_id"`
}

// CreateBlast handles POST /api/v1/loads/:id/blasts.
func (s *Server) CreateBlast(ctx echo.Context) error {
	loadID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid load ID")
	}

	var req createBlastRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	recipients := make([]kernel.UUID, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		id, idErr := kernel.UUIDFromString(raw)
		if idErr != nil {
			return badRequest(ctx, "Invalid recipient ID: "+raw)
		}
		recipients = append(recipients, id)
	}

	blastID := kernel.NewUUID()
	cmd, err := commands.NewCreateBlastCommand(
		blastID,
		loadID,
		recipients,
		time.Duration(req.WindowSeconds)*time.Second,
		req.Actor,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.createBlastHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, createBlastResponse{BlastID: blastID.String()})
}

type respondToBlastRequest struct {
	CourierID string `json:"courier_id"`
	Reply     string `json:"reply"`
}

// RespondToBlast handles POST /api/v1/blasts/:id/responses.
func (s *Server) RespondToBlast(ctx echo.Context) error {
	blastID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid blast ID")
	}

	var req respondToBlastRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	reply, err := commands.ParseBlastReply(req.Reply)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewRespondToBlastCommand(blastID, courierID, reply)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.respondToBlastHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type cancelBlastRequest struct {
	Actor string `json:"actor"`
}

// CancelBlast handles POST /api/v1/blasts/:id/cancel.
func (s *Server) CancelBlast(ctx echo.Context) error {
	blastID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid blast ID")
	}

	var req cancelBlastRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelBlastCommand(blastID, req.Actor)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.cancelBlastHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type recordPositionRequest struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	RecordedAt *time.Time `json:"recorded_at"`
	SpeedMph   *float64   `json:"speed_mph"`
	HeadingDeg *float64   `json:"heading_deg"`
}

// RecordPosition handles POST /api/v1/couriers/:id/positions.
func (s *Server) RecordPosition(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	var req recordPositionRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return writeError(ctx, err)
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	speed, heading := -1.0, -1.0
	if req.SpeedMph != nil {
		speed = *req.SpeedMph
	}
	if req.HeadingDeg != nil {
		heading = *req.HeadingDeg
	}

	cmd, err := commands.NewRecordPositionCommand(courierID, point, recordedAt, speed, heading)
	if err != nil {
		return writeError(ctx, err)
	}

	if err := s.recordPositionHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusAccepted)
}

type courierSuggestion struct {
	CourierID     string   `json:"courier_id"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	Score         int      `json:"score"`
	Reason        string   `json:"reason"`
	IsAvailable   bool     `json:"is_available"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	DriveETASec   *int     `json:"drive_eta_seconds,omitempty"`
}

// GetCourierSuggestions handles GET /api/v1/couriers/suggestions.
func (s *Server) GetCourierSuggestions(ctx echo.Context) error {
	hub := ctx.QueryParam("hub")

	var pickup *kernel.GeoPoint
	latParam, lngParam := ctx.QueryParam("pickup_lat"), ctx.QueryParam("pickup_lng")
	if latParam != "" && lngParam != "" {
		point, err := parsePoint(latParam, lngParam)
		if err != nil {
			return badRequest(ctx, "Invalid pickup coordinates")
		}
		pickup = &point
	}

	query, err := queries.NewGetCourierSuggestionsQuery(hub, pickup)
	if err != nil {
		return writeError(ctx, err)
	}

	suggestions, err := s.getSuggestionsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]courierSuggestion, len(suggestions))
	for i, sug := range suggestions {
		response[i] = courierSuggestion{
			CourierID:     sug.CourierID.String(),
			Name:          sug.Name,
			Status:        sug.Status,
			Score:         sug.Score,
			Reason:        sug.Reason,
			IsAvailable:   sug.IsAvailable,
			DistanceMiles: sug.DistanceMiles,
		}
		if sug.DriveETA != nil {
			sec := int(sug.DriveETA.Seconds())
			response[i].DriveETASec = &sec
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

type historyEntry struct {
	EventID   string    `json:"event_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GetLoadHistory handles GET /api/v1/loads/:id/history.
func (s *Server) GetLoadHistory(ctx echo.Context) error {
	loadID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid load ID")
	}

	query, err := queries.NewGetLoadHistoryQuery(loadID)
	if err != nil {
		return writeError(ctx, err)
	}

	entries, err := s.getHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]historyEntry, len(entries))
	for i, entry := range entries {
		response[i] = historyEntry{
			EventID:   entry.EventID.String(),
			From:      entry.From,
			To:        entry.To,
			Actor:     entry.Actor,
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
		}
		if entry.Position != nil {
			lat, lng := entry.Position.Lat(), entry.Position.Lng()
			response[i].Lat, response[i].Lng = &lat, &lng
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

type activeLoad struct {
	LoadID    string    `json:"load_id"`
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	CourierID *string   `json:"courier_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetActiveLoads handles GET /api/v1/loads.
func (s *Server) GetActiveLoads(ctx echo.Context) error {
	query := queries.NewGetActiveLoadsQuery()

	loads, err := s.getActiveLoadsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]activeLoad, len(loads))
	for i, ld := range loads {
		response[i] = activeLoad{
			LoadID:    ld.LoadID.String(),
			Reference: ld.Reference,
			Status:    ld.Status,
			CreatedAt: ld.CreatedAt,
			UpdatedAt: ld.UpdatedAt,
		}
		if ld.CourierID != nil {
			id := ld.CourierID.String()
			response[i].CourierID = &id
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// parsePoint builds a GeoPoint from query-string coordinates.
func parsePoint(latParam, lngParam string) (kernel.GeoPoint, error) {
	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		return kernel.GeoPoint{}, err
	}
	lng, err := strconv.ParseFloat(lngParam, 64)
	if err != nil {
		return kernel.GeoPoint{}, err
	}
	return kernel.NewGeoPoint(lat, lng)
}

// optionalPoint builds a GeoPoint when both coordinates are present.
func optionalPoint(lat, lng *float64) (*kernel.GeoPoint, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	point, err := kernel.NewGeoPoint(*lat, *lng)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps domain and application errors onto HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	code := statusFor(err)
	return ctx.JSON(code, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func statusFor(err error) int {
	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}

	var outOfGeofence *services.OutOfGeofenceError
	if errors.As(err, &outOfGeofence) {
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, load.ErrInvalidTransition),
		errors.Is(err, blast.ErrBlastResolved),
		errors.Is(err, blast.ErrResponseResolved),
		errors.Is(err, ports.ErrActiveBlastExists),
		errors.Is(err, ports.ErrCourierAlreadyAssigned):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
