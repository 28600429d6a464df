package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/atharvakonge/portfolio-pilot/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS investments (
    id             TEXT PRIMARY KEY,
    owner_id       TEXT NOT NULL,
    stock_symbol   TEXT NOT NULL,
    stock_name     TEXT NOT NULL DEFAULT '',
    type           TEXT NOT NULL,
    purchase_date  TIMESTAMP NOT NULL,
    quantity       DOUBLE PRECISION NOT NULL,
    purchase_price DOUBLE PRECISION NOT NULL,
    current_price  DOUBLE PRECISION NOT NULL,
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMP NOT NULL,
    updated_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_investments_owner_created
    ON investments (owner_id, created_at);
`

// Open connects to the SQL backend selected by cfg.Driver
func Open(cfg config.DB, log zerolog.Logger) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err = sql.Open("postgres", cfg.PostgresDSN())
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
		conn, err = sql.Open("sqlite", cfg.SQLitePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test connection
	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time
		conn.SetMaxOpenConns(1)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Database connected successfully")
	return conn, nil
}

// Migrate creates the investments table when it does not exist
func Migrate(conn *sql.DB) error {
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(conn *sql.DB, log zerolog.Logger) {
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
			return
		}
		log.Info().Msg("Database connection closed")
	}
}
