package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/easy-aqi/internal/api"
	"github.com/bobby-s-dev/easy-aqi/internal/config"
	"github.com/bobby-s-dev/easy-aqi/internal/models"
	"github.com/bobby-s-dev/easy-aqi/internal/scheduler"
	"github.com/bobby-s-dev/easy-aqi/internal/services"
	"github.com/bobby-s-dev/easy-aqi/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// probePoint is Times Square; reverse geocoding it keeps the probe cheap.
var probePoint = models.GeoPoint{Latitude: 40.758, Longitude: -73.9855}

func main() {
	// Initialize logger
	zapConfig := zap.NewProductionConfig()
	logger, _ := zapConfig.Build()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting AQI service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	level, err := zapcore.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Unknown log level, keeping info", zap.String("level", cfg.Server.LogLevel))
	} else {
		zapConfig.Level.SetLevel(level)
	}

	// Initialize upstream clients
	clientConfig := client.ClientConfig{
		Timeout:        cfg.HTTP.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}
	airNow := client.NewAirNowClient(cfg.AirNow.APIKey, cfg.AirNow.BaseURL, cfg.AirNow.Distance, clientConfig, logger)

	nominatimConfig := clientConfig
	nominatimConfig.UserAgent = cfg.Nominatim.UserAgent
	nominatim := client.NewNominatimClient(cfg.Nominatim.BaseURL, nominatimConfig, logger)

	// Initialize probe scheduler
	var probes *scheduler.Scheduler
	if cfg.Probe.Schedule != "" {
		probes, err = scheduler.NewScheduler(cfg.Probe.Schedule, []scheduler.Target{
			{
				Name: airNow.Name(),
				Check: func(ctx context.Context) error {
					_, err := airNow.GetForecast(ctx, cfg.Probe.ZipCode)
					return err
				},
			},
			{
				Name: nominatim.Name(),
				Check: func(ctx context.Context) error {
					_, err := nominatim.Postcode(ctx, probePoint)
					return err
				},
			},
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize probe scheduler", zap.Error(err))
		}
	}

	// Create Fiber app
	app := newApp(cfg)

	// Setup handlers and routes
	var probeStatus api.ProbeStatus
	if probes != nil {
		probeStatus = probes
	}
	loader := services.NewLoader(airNow, logger)
	handler := api.NewHandler(loader, airNow, nominatim, []api.Upstream{airNow, nominatim}, probeStatus, logger)
	api.SetupRoutes(app, handler, logger)

	if probes != nil {
		probes.Start()
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if probes != nil {
		probes.Stop()
	}

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newApp(cfg *config.Config) *fiber.App {
	return fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: errorHandler,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
