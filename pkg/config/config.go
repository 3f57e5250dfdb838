// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ErfanXH/Polaris/pkg/database"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all settings of the server and CLI.
type Config struct {
	DB     DBConfig     `envPrefix:"DB_"`
	Server ServerConfig `envPrefix:"SERVER_"`
	JWT    JWTConfig    `envPrefix:"JWT_"`

	BulkMaxRecords int `env:"BULK_MAX_RECORDS" envDefault:"5000"`
}

// DBConfig selects and addresses the database.
type DBConfig struct {
	Driver         string        `env:"DRIVER" envDefault:"postgres"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	User           string        `env:"USER" envDefault:"polaris"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"polaris"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	Path           string        `env:"PATH" envDefault:"polaris.db"`
	HealthInterval time.Duration `env:"HEALTH_INTERVAL" envDefault:"30s"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8000"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret string        `env:"SECRET"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// Load reads a .env file when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from environment variables only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the database settings.
func (c *Config) Validate() error {
	dialect, err := database.ParseDialect(c.DB.Driver)
	if err != nil {
		return err
	}

	if dialect == database.DialectSQLite {
		if c.DB.Path == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	} else if c.DB.Host == "" || c.DB.Name == "" {
		return errors.New("DB_HOST and DB_NAME are required for the postgres driver")
	}

	if c.DB.HealthInterval <= 0 {
		return errors.New("DB_HEALTH_INTERVAL must be positive")
	}
	if c.BulkMaxRecords < 0 {
		return errors.New("BULK_MAX_RECORDS must not be negative")
	}

	return nil
}

// ValidateServer checks the settings needed to serve HTTP.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "change_me_in_production" {
		return errors.New("JWT_SECRET environment variable is not set or has an invalid value")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// DatabaseOptions returns the connection options for database.NewDatabaseManager.
func (c *Config) DatabaseOptions() (database.Options, error) {
	dialect, err := database.ParseDialect(c.DB.Driver)
	if err != nil {
		return database.Options{}, err
	}

	opts := database.Options{
		Dialect:        dialect,
		HealthInterval: c.DB.HealthInterval,
	}
	if dialect == database.DialectSQLite {
		opts.DSN = c.DB.Path
	} else {
		opts.DSN = database.PostgresDSN(c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
	}

	return opts, nil
}
