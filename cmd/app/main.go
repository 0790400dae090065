package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(gormpostgres.Open(dsn(configs)), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := postgres.Migrate(gormDB); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("build composition root: %v", err)
	}
	defer func() {
		_ = app.Close()
	}()

	jobManager := jobs.NewJobManager(app.CreateSweepExpiredBlastsCommandHandler(), logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, logger, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file found, relying on environment: %v", err)
	}
	return cmd.Config{
		HTTPPort:                os.Getenv("HTTP_PORT"),
		DBHost:                  os.Getenv("DB_HOST"),
		DBPort:                  os.Getenv("DB_PORT"),
		DBUser:                  os.Getenv("DB_USER"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  os.Getenv("DB_NAME"),
		DBSslMode:               os.Getenv("DB_SSLMODE"),
		RabbitMQURL:             os.Getenv("RABBITMQ_URL"),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RoutingBaseURL:          os.Getenv("ROUTING_BASE_URL"),
		GeofenceToleranceMeters: os.Getenv("GEOFENCE_TOLERANCE_METERS"),
	}
}

func dsn(configs cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword,
		configs.DBName, configs.DBSslMode)
}

func startWebServer(app *cmd.CompositionRoot, logger *slog.Logger, port string) {
	e := echo.New()
	e.HideBanner = true

	server := httpin.NewServer(
		app.CreateCreateLoadCommandHandler(),
		app.CreateChangeLoadStatusCommandHandler(),
		app.CreateReportArrivalCommandHandler(),
		app.CreateCreateBlastCommandHandler(),
		app.CreateRespondToBlastCommandHandler(),
		app.CreateCancelBlastCommandHandler(),
		app.CreateRecordPositionCommandHandler(),
		app.CreateGetCourierSuggestionsQueryHandler(),
		app.CreateGetLoadHistoryQueryHandler(),
		app.CreateGetActiveLoadsQueryHandler(),
	)
	server.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
}
