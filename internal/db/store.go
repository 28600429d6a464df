// Package db persists investment records. The core computations never talk
// to it directly; callers load a collection and hand it over.
package db

import (
	"context"
	"errors"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// ErrNotFound is returned when no record with the given id exists for the owner.
var ErrNotFound = errors.New("investment not found")

// Store is the storage collaborator for investment records. Every call is
// scoped to an owner.
type Store interface {
	FindAll(ctx context.Context, ownerID string) ([]models.Investment, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Investment, error)
	Create(ctx context.Context, ownerID string, fields models.NewInvestment) (*models.Investment, error)
	Update(ctx context.Context, ownerID, id string, patch models.InvestmentPatch) (*models.Investment, error)
	Delete(ctx context.Context, ownerID, id string) error
}
