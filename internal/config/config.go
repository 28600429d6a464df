// Package config loads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the service
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	NumWorkers   int    `env:"NUM_WORKERS" envDefault:"5"`
	DefaultOwner string `env:"DEFAULT_OWNER" envDefault:"default"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty    bool   `env:"LOG_PRETTY" envDefault:"true"`
	DB           DB
}

// DB selects and configures the storage backend
type DB struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5433"`
	User       string `env:"DB_USER" envDefault:"portfolio"`
	Password   string `env:"DB_PASSWORD" envDefault:"portfolio123"`
	Name       string `env:"DB_NAME" envDefault:"portfolio_db"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/portfolio.db"`
}

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("NUM_WORKERS must be at least 1, got %d", c.NumWorkers)
	}
	if c.DefaultOwner == "" {
		return errors.New("DEFAULT_OWNER cannot be empty")
	}
	return nil
}

// PostgresDSN builds a lib/pq connection string
func (d DB) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
