package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/config"
	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// SetupTestDB opens a migrated in-memory sqlite database
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every new connection would get its own empty :memory: database
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	if err = Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// SetupTestStore returns a SQLStore backed by SetupTestDB
func SetupTestStore(t testing.TB) *SQLStore {
	t.Helper()
	return NewSQLStore(SetupTestDB(t), config.DriverSQLite, zerolog.Nop())
}

// CleanupTestDB deletes all test data
func CleanupTestDB(t testing.TB, conn *sql.DB) {
	if _, err := conn.Exec("DELETE FROM investments"); err != nil {
		t.Logf("Warning: Failed to cleanup investments: %v", err)
	}
}

// SampleInvestment builds valid create fields for a symbol
func SampleInvestment(symbol string, qty, buy, cur float64) models.NewInvestment {
	return models.NewInvestment{
		StockSymbol:   symbol,
		Type:          models.TypeStock,
		PurchaseDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Quantity:      qty,
		PurchasePrice: buy,
		CurrentPrice:  cur,
	}
}

// CreateTestInvestment stores a record and returns it
func CreateTestInvestment(t testing.TB, s Store, ownerID string, fields models.NewInvestment) models.Investment {
	t.Helper()

	inv, err := s.Create(context.Background(), ownerID, fields)
	if err != nil {
		t.Fatalf("Failed to create test investment: %v", err)
	}
	return *inv
}
