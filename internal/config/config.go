package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var ErrMissingAPIKey = errors.New("AIRNOW_API_KEY is not set")

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	AirNow struct {
		APIKey   string
		BaseURL  string
		Distance int
	}

	Nominatim struct {
		BaseURL   string
		UserAgent string
	}

	HTTP struct {
		// Zero leaves the transport defaults in charge.
		Timeout time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Probe struct {
		Schedule string
		ZipCode  string
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// AirNow configuration
	cfg.AirNow.APIKey = getEnv("AIRNOW_API_KEY", "")
	cfg.AirNow.BaseURL = getEnv("AIRNOW_URL", "https://www.airnowapi.org")
	cfg.AirNow.Distance = parseInt(getEnv("AIRNOW_DISTANCE", "10"))

	// Nominatim configuration
	cfg.Nominatim.BaseURL = getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Nominatim.UserAgent = getEnv("NOMINATIM_USER_AGENT", "easy-aqi/1.0")

	cfg.HTTP.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "0s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "5"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Upstream probe configuration
	cfg.Probe.Schedule = os.Getenv("PROBE_SCHEDULE")
	if _, set := os.LookupEnv("PROBE_SCHEDULE"); !set {
		cfg.Probe.Schedule = "@every 5m"
	}
	cfg.Probe.ZipCode = getEnv("PROBE_ZIPCODE", "10001")

	if cfg.AirNow.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}
