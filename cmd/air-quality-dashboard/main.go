package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/airquality/providers"
	httpapi "github.com/i474232898/air-quality-dashboard/internal/api/http"
	"github.com/i474232898/air-quality-dashboard/internal/config"
	"github.com/i474232898/air-quality-dashboard/internal/logger"
	"github.com/i474232898/air-quality-dashboard/internal/scheduler"
	"github.com/i474232898/air-quality-dashboard/internal/store"
	"github.com/i474232898/air-quality-dashboard/internal/telemetry"
)

// Version is set at build time.
var Version = "dev"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("air-quality-dashboard", "info", false)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", Version).Str("api_base", cfg.APIBase).Msg("starting air quality dashboard")

	ctx := context.Background()
	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	metrics, err := telemetry.NewMetrics(tel.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create metrics")
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Circuit breaker defaults apply to both upstreams.
	source := providers.NewLiveDataProvider(httpClient, cfg.APIBase, providers.BreakerConfig{})

	var weatherSource airquality.WeatherSource
	if cfg.WeatherEnabled {
		weatherSource = providers.NewOpenMeteoProvider(httpClient, cfg.WeatherBaseURL,
			cfg.WeatherLatitude, cfg.WeatherLongitude, providers.BreakerConfig{})
	}

	memStore := store.NewMemoryStore(cfg.HistoryCapacity)

	// Core service orchestrating the source and the store.
	service := airquality.NewService(airquality.ServiceConfig{
		Source:   source,
		Weather:  weatherSource,
		Store:    memStore,
		Observer: metrics,
		Logger:   log.With().Str("component", "poller").Logger(),
		// A cycle never outlives its poll slot.
		CycleTimeout: cfg.PollInterval,
	})

	// Scheduler that periodically polls and publishes.
	sched := scheduler.New(service, scheduler.Config{
		PollInterval:    cfg.PollInterval,
		WeatherEnabled:  cfg.WeatherEnabled,
		WeatherInterval: cfg.WeatherInterval,
	}, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	app := newApp(cfg.ServiceName, service, log.With().Str("component", "http").Logger())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("http server listening")

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info().Msg("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during http shutdown")
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during telemetry shutdown")
	}
}

// newApp builds the fiber app with global middleware, the health check and
// the API routes.
func newApp(serviceName string, service *airquality.Service, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpapi.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	httpapi.RegisterRoutes(app, service)
	return app
}
