package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

var validate = validator.New()

type AppConfig struct {
	// APIBase is the origin of the live-data API.
	APIBase string `validate:"required,url"`

	PollInterval    time.Duration `validate:"gt=0"`
	HistoryCapacity int           `validate:"gt=0"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	WeatherEnabled   bool
	WeatherBaseURL   string        `validate:"required,url"`
	WeatherInterval  time.Duration `validate:"gt=0"`
	WeatherLatitude  float64       `validate:"gte=-90,lte=90"`
	WeatherLongitude float64       `validate:"gte=-180,lte=180"`

	Port string `validate:"required,numeric"`

	LogLevel  string
	LogPretty bool

	ServiceName  string `validate:"required"`
	OTelEnabled  bool
	OTLPEndpoint string `validate:"required_if=OTelEnabled true"`
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{
		APIBase:        getenvDefault("API_BASE", "http://localhost:5000"),
		WeatherBaseURL: getenvDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		Port:           getenvDefault("PORT", "8080"),
		LogLevel:       getenvDefault("LOG_LEVEL", "info"),
		ServiceName:    getenvDefault("SERVICE_NAME", "air-quality-dashboard"),
		OTLPEndpoint:   getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.HistoryCapacity, err = getenvInt("HISTORY_CAPACITY", airquality.DefaultHistoryCapacity); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getenvDuration("POLL_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.WeatherInterval, err = getenvDuration("WEATHER_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WeatherEnabled, err = getenvBool("WEATHER_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getenvBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if cfg.OTelEnabled, err = getenvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.WeatherLatitude, err = getenvFloat("WEATHER_LATITUDE", 28.6139); err != nil {
		return nil, err
	}
	if cfg.WeatherLongitude, err = getenvFloat("WEATHER_LONGITUDE", 77.2090); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
