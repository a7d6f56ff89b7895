// Package config loads process-level settings for programs built on the form
// validator: logging, the async validation worker pool and OpenTelemetry.
// Library users configure form validators through functional options instead.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when the environment cannot be parsed into Config.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config is read from the environment, optionally seeded from .env files.
type Config struct {
	Subsystem string     `env:"EDITFORM_SUBSYSTEM" envDefault:"editform"`
	LogJSON   bool       `env:"LOG_JSON"           envDefault:"false"`
	LogLevel  slog.Level `env:"LOG_LEVEL"          envDefault:"INFO"`

	// AsyncWorkers bounds how many async validations run at once.
	AsyncWorkers int `env:"EDITFORM_ASYNC_WORKERS" envDefault:"10"`

	// AsyncTimeout bounds a single ValidateAsync call. Zero means no bound.
	AsyncTimeout time.Duration `env:"EDITFORM_ASYNC_TIMEOUT" envDefault:"0s"`

	Telemetry Telemetry `envPrefix:"OTEL_"`
}

// Telemetry holds the OpenTelemetry exporter settings.
type Telemetry struct {
	Enabled        bool          `env:"ENABLED"                            envDefault:"false"`
	LogsEnabled    bool          `env:"LOGS_ENABLED"                       envDefault:"false"`
	ServiceName    string        `env:"SERVICE_NAME"`
	ServiceVersion string        `env:"SERVICE_VERSION"                    envDefault:"1.0.0"`
	Environment    string        `env:"DEPLOYMENT_ENVIRONMENT"             envDefault:"local"`
	TraceEndpoint  string        `env:"EXPORTER_OTLP_TRACES_ENDPOINT"`
	LogEndpoint    string        `env:"EXPORTER_OTLP_LOGS_ENDPOINT"`
	Timeout        time.Duration `env:"EXPORTER_OTLP_TIMEOUT"              envDefault:"5s"`
}

// Load reads .env files (missing files are fine) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.Subsystem
	}

	return cfg, nil
}
