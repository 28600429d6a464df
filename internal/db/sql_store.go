package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/config"
	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

const investmentColumns = `id, owner_id, stock_symbol, stock_name, type, purchase_date,
        quantity, purchase_price, current_price, notes, created_at, updated_at`

// SQLStore keeps investments in a postgres or sqlite database
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
	log    zerolog.Logger
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open connection. driver decides the SQL dialect.
func NewSQLStore(conn *sql.DB, driver string, log zerolog.Logger) *SQLStore {
	return &SQLStore{
		db:     conn,
		driver: driver,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// sqlite numbers its parameters ?1, ?2 where postgres uses $1, $2
func (s *SQLStore) rebind(query string) string {
	if s.driver == config.DriverSQLite {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

// FindAll handles the full-collection scan, newest first
func (s *SQLStore) FindAll(ctx context.Context, ownerID string) ([]models.Investment, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
        SELECT `+investmentColumns+`
        FROM investments
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch investments: %w", err)
	}
	defer rows.Close()

	investments := make([]models.Investment, 0)
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch investments: %w", err)
	}
	return investments, nil
}

// FindByID looks up a single record
func (s *SQLStore) FindByID(ctx context.Context, ownerID, id string) (*models.Investment, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
        SELECT `+investmentColumns+`
        FROM investments
        WHERE owner_id = $1 AND id = $2
    `), ownerID, id)

	inv, err := scanInvestment(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch investment: %w", err)
	}
	return &inv, nil
}

// Create inserts a new record with a fresh id and timestamps
func (s *SQLStore) Create(ctx context.Context, ownerID string, fields models.NewInvestment) (*models.Investment, error) {
	inv := fields.Build(uuid.NewString(), ownerID, s.now())
	inv.PurchaseDate = inv.PurchaseDate.UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(`
        INSERT INTO investments (`+investmentColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `), inv.ID, inv.OwnerID, inv.StockSymbol, inv.StockName, string(inv.Type), inv.PurchaseDate,
		inv.Quantity, inv.PurchasePrice, inv.CurrentPrice, inv.Notes, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert investment: %w", err)
	}

	s.log.Debug().Str("id", inv.ID).Str("owner", ownerID).Str("symbol", inv.StockSymbol).Msg("Investment created")
	return &inv, nil
}

// Update applies patch to an existing record inside a transaction
func (s *SQLStore) Update(ctx context.Context, ownerID, id string, patch models.InvestmentPatch) (*models.Investment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("transaction failed: %w", err)
	}
	defer tx.Rollback() // Rollback if we don't commit

	query := `
        SELECT ` + investmentColumns + `
        FROM investments
        WHERE owner_id = $1 AND id = $2`
	if s.driver == config.DriverPostgres {
		query += " FOR UPDATE"
	}

	inv, err := scanInvestment(tx.QueryRowContext(ctx, s.rebind(query), ownerID, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch investment: %w", err)
	}

	patch.Apply(&inv)
	inv.PurchaseDate = inv.PurchaseDate.UTC()
	inv.UpdatedAt = s.now()

	_, err = tx.ExecContext(ctx, s.rebind(`
        UPDATE investments SET
            stock_symbol = $1, stock_name = $2, type = $3, purchase_date = $4,
            quantity = $5, purchase_price = $6, current_price = $7, notes = $8,
            updated_at = $9
        WHERE owner_id = $10 AND id = $11
    `), inv.StockSymbol, inv.StockName, string(inv.Type), inv.PurchaseDate,
		inv.Quantity, inv.PurchasePrice, inv.CurrentPrice, inv.Notes,
		inv.UpdatedAt, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update investment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	s.log.Debug().Str("id", id).Str("owner", ownerID).Msg("Investment updated")
	return &inv, nil
}

// Delete removes a record
func (s *SQLStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		"DELETE FROM investments WHERE owner_id = $1 AND id = $2",
	), ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.log.Debug().Str("id", id).Str("owner", ownerID).Msg("Investment deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvestment(row rowScanner) (models.Investment, error) {
	var (
		inv models.Investment
		typ string
	)
	err := row.Scan(&inv.ID, &inv.OwnerID, &inv.StockSymbol, &inv.StockName, &typ, &inv.PurchaseDate,
		&inv.Quantity, &inv.PurchasePrice, &inv.CurrentPrice, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return models.Investment{}, err
	}
	inv.Type = models.InvestmentType(typ)
	inv.PurchaseDate = inv.PurchaseDate.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.UpdatedAt = inv.UpdatedAt.UTC()
	return inv, nil
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
