package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/eventrepo"
	"dispatch/internal/adapters/out/rabbitmq"
	rediscache "dispatch/internal/adapters/out/redis"
	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	eventRepo  ports.StatusEventRepository
	notifier   *rabbitmq.BlastNotifier
	eta        ports.ETAProvider
	detector   services.ArrivalDetector
	metrics    ports.EngineMetrics
	logger     *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	notifier, err := rabbitmq.NewBlastNotifier(configs.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	engineMetrics, err := metrics.NewPromEngineMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	eta, err := buildETAProvider(configs, logger)
	if err != nil {
		return nil, err
	}

	detector, err := buildArrivalDetector(configs)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		eventRepo:  eventrepo.NewGormStatusEventRepository(gormDB),
		notifier:   notifier,
		eta:        eta,
		detector:   detector,
		metrics:    engineMetrics,
		logger:     logger,
	}, nil
}

// buildETAProvider assembles the drive-time estimator chain: the routing
// engine client, wrapped in the Redis cache when a Redis address is
// configured. With no routing base URL suggestions ship without estimates.
func buildETAProvider(configs Config, logger *slog.Logger) (ports.ETAProvider, error) {
	if configs.RoutingBaseURL == "" {
		return nil, nil
	}

	client, err := routing.NewClient(configs.RoutingBaseURL)
	if err != nil {
		return nil, fmt.Errorf("routing client: %w", err)
	}

	if configs.RedisAddr == "" {
		return client, nil
	}

	redisClient := goredis.NewClient(&goredis.Options{Addr: configs.RedisAddr})
	return rediscache.NewETACache(redisClient, client, logger), nil
}

func buildArrivalDetector(configs Config) (services.ArrivalDetector, error) {
	if configs.GeofenceToleranceMeters == "" {
		return services.NewArrivalDetector(), nil
	}

	tolerance, err := strconv.ParseFloat(configs.GeofenceToleranceMeters, 64)
	if err != nil {
		return services.ArrivalDetector{}, fmt.Errorf("parse geofence tolerance: %w", err)
	}
	return services.NewArrivalDetectorWithTolerance(tolerance)
}

// Close releases long-lived connections held by the outbound adapters.
func (c *CompositionRoot) Close() error {
	return c.notifier.Close()
}

func (c *CompositionRoot) CreateCreateLoadCommandHandler() commands.CreateLoadCommandHandler {
	var f commands.LoadUoWFactory = FuncLoadUoWFactory(func() commands.LoadUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateLoadCommandHandler(f)
}

func (c *CompositionRoot) CreateChangeLoadStatusCommandHandler() commands.ChangeLoadStatusCommandHandler {
	var f commands.LoadUoWFactory = FuncLoadUoWFactory(func() commands.LoadUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeLoadStatusCommandHandler(f, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateReportArrivalCommandHandler() commands.ReportArrivalCommandHandler {
	var f commands.LoadUoWFactory = FuncLoadUoWFactory(func() commands.LoadUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportArrivalCommandHandler(f, c.detector, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateCreateBlastCommandHandler() commands.CreateBlastCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateBlastCommandHandler(f, c.notifier, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateRespondToBlastCommandHandler() commands.RespondToBlastCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewRespondToBlastCommandHandler(f, c.notifier, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateCancelBlastCommandHandler() commands.CancelBlastCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelBlastCommandHandler(f, c.notifier, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateRecordPositionCommandHandler() commands.RecordPositionCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordPositionCommandHandler(f)
}

func (c *CompositionRoot) CreateSweepExpiredBlastsCommandHandler() commands.SweepExpiredBlastsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepExpiredBlastsCommandHandler(f, c.notifier, c.eventRepo, c.logger, c.metrics)
}

func (c *CompositionRoot) CreateGetCourierSuggestionsQueryHandler() queries.GetCourierSuggestionsQueryHandler {
	return queries.NewGetCourierSuggestionsQueryHandler(c.gormDB, c.eta, c.logger)
}

func (c *CompositionRoot) CreateGetLoadHistoryQueryHandler() queries.GetLoadHistoryQueryHandler {
	return queries.NewGetLoadHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveLoadsQueryHandler() queries.GetActiveLoadsQueryHandler {
	return queries.NewGetActiveLoadsQueryHandler(c.gormDB)
}

type FuncLoadUoWFactory func() commands.LoadUoW

func (f FuncLoadUoWFactory) Create() commands.LoadUoW {
	return f()
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
