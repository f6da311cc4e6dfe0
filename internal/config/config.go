// Package config defines the configuration for the Matchday digest worker.
// Configuration is loaded once at process initialization (cold start) and is
// immutable thereafter, following 12-Factor principles: code and config are
// strictly separated, and any missing required value aborts startup with a
// fatal error before any network I/O is attempted.
package config

import (
	"time"

	"matchday/internal/types"
)

// SecretString aliases types.SecretString, the redacted secret type used for
// credentials so they cannot leak through logs or JSON output.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the digest worker.
// Sub-components receive only the config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	Database      DatabaseConfig
	Email         EmailConfig
	Digest        DigestConfig
	Dispatch      DispatchConfig
	Observability ObservabilityConfig
}

// DatabaseConfig holds the data-store connection string and pool tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"4"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout  time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
}

// EmailConfig holds the email transport credentials and the fixed per-run
// sender identity. The API key is required outside local/test mode; in
// local/test mode a logging stub provider is wired instead.
type EmailConfig struct {
	ResendAPIKey SecretString `envconfig:"RESEND_API_KEY"`
	FromAddress  string       `envconfig:"EMAIL_FROM_ADDRESS" default:"alerts@matchday.app" validate:"required,email"`
	FromName     string       `envconfig:"EMAIL_FROM_NAME" default:"Matchday"`
}

// DigestConfig holds the date-resolution parameters. The reference timezone
// drives both the today/tomorrow cutoff decision and the localized dates in
// the rendered digest.
type DigestConfig struct {
	Timezone   string `envconfig:"DIGEST_TIMEZONE" default:"Europe/Paris"`
	CutoffHour int    `envconfig:"DIGEST_CUTOFF_HOUR" default:"6" validate:"min=0,max=23"`
}

// DispatchConfig holds the send pacing constants. The delays exist to stay
// inside the email transport's rate limits; they are fixed pacing, not
// adaptive backoff.
type DispatchConfig struct {
	BatchSize  int           `envconfig:"DISPATCH_BATCH_SIZE" default:"10" validate:"min=1"`
	SendDelay  time.Duration `envconfig:"DISPATCH_SEND_DELAY" default:"200ms"`
	BatchDelay time.Duration `envconfig:"DISPATCH_BATCH_DELAY" default:"2s"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Matchday"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// IsLocal reports whether the worker runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into
	// its target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
