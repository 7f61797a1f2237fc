// Package config loads the application configuration from command-line flags,
// environment variables, and an optional .env file, then validates the result.
// Environment variables win over flags, flags win over defaults.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr              string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel             string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN          string        `env:"DATABASE_DSN"`
	DBConnectionTimeout  time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir        string        `env:"MIGRATIONS_DIR"`
	SessionCookieName    string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionSigningSecret string        `env:"SESSION_SIGNING_SECRET_KEY" validate:"base64url"`
	SessionTTL           time.Duration `env:"SESSION_TTL"`
	PasswordHashCost     int           `env:"PASSWORD_HASH_COST"`
}

var defaultConfig = Config{
	RunAddr:              ":8080",
	LogLevel:             "info",
	DatabaseDSN:          "",
	DBConnectionTimeout:  10 * time.Second,
	MigrationsDir:        "cmd/shrinkray/migrations",
	SessionCookieName:    "session",
	SessionSigningSecret: "c2hyaW5rLXJheS1kZXYtb25seS1zaWduaW5nLWtleQ==",
	SessionTTL:           8 * time.Hour,
	PasswordHashCost:     0,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	theValidator := validator.New()

	if err := theValidator.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return theValidator.Struct(c)
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips flag.Parse(), which tests need because the
// testing package owns the flag set there.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New loads, merges, and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := defaultConfig

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "database connection string; empty selects the in-memory backend")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose SQL migrations")
		flag.Parse()
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	applyEnvOverrides(&values, &valuesFromEnv)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}

func applyEnvOverrides(values, fromEnv *Config) {
	if fromEnv.RunAddr != "" {
		values.RunAddr = fromEnv.RunAddr
	}
	if fromEnv.LogLevel != "" {
		values.LogLevel = fromEnv.LogLevel
	}
	if fromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = fromEnv.DatabaseDSN
	}
	if fromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = fromEnv.DBConnectionTimeout
	}
	if fromEnv.MigrationsDir != "" {
		values.MigrationsDir = fromEnv.MigrationsDir
	}
	if fromEnv.SessionCookieName != "" {
		values.SessionCookieName = fromEnv.SessionCookieName
	}
	if fromEnv.SessionSigningSecret != "" {
		values.SessionSigningSecret = fromEnv.SessionSigningSecret
	}
	if fromEnv.SessionTTL != 0 {
		values.SessionTTL = fromEnv.SessionTTL
	}
	if fromEnv.PasswordHashCost != 0 {
		values.PasswordHashCost = fromEnv.PasswordHashCost
	}
}
