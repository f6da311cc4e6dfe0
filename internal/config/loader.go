// loader.go implements the configuration loading lifecycle for the digest
// worker.
//
// The loading sequence is:
//  1. Enforce UTC as the process timezone; the digest's reference timezone
//     is loaded explicitly where needed, never from time.Local.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Process envconfig struct tags to populate the Config struct.
//  4. Validate the struct using go-playground/validator.
//  5. Apply cross-field rules that tags cannot express (transport key
//     required outside local/test mode, reference timezone must resolve).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is the diagnostic error type returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load loads and validates the worker configuration from the environment.
// It must be called before any database or transport client is constructed:
// a missing required value aborts startup here, before any I/O.
func Load() (*Config, error) {
	// Step 1: pin the process to UTC so implicit time.Local use cannot
	// drift with the host. Civil-time logic loads its zone explicitly.
	time.Local = time.UTC

	// Step 2: .env for local development. Does not override real env vars.
	_ = godotenv.Load()

	// Step 3: populate from environment.
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate applies struct tag validation plus the cross-field rules.
// Exported so tests can validate hand-built configs directly.
func Validate(cfg *Config) error {
	// Step 4: tag-based validation.
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration failed validation",
			Err:     err,
		}
	}

	// Step 5a: the email transport key is required whenever real sends can
	// happen. Local and test-mode runs use the logging stub provider.
	if !cfg.IsLocal() && !cfg.IsTestMode && !cfg.Email.ResendAPIKey.IsSet() {
		return &ConfigError{
			Type:    ErrMissingEnv,
			Message: "RESEND_API_KEY is required when APP_ENV is not local and IS_TEST_MODE is false",
		}
	}

	// Step 5b: the reference timezone must resolve to a real zoneinfo
	// location; the 6 AM cutoff depends on exact civil-time semantics.
	if _, err := time.LoadLocation(cfg.Digest.Timezone); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: fmt.Sprintf("DIGEST_TIMEZONE %q is not a valid IANA timezone", cfg.Digest.Timezone),
			Err:     err,
		}
	}

	return nil
}
