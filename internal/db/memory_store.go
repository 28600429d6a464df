package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// MemoryStore keeps investments in-memory. Useful for tests or ephemeral
// runs where persistence is not required.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Investment
	order []string // insertion order
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]models.Investment),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// FindAll returns copies of the owner's records, newest first
func (m *MemoryStore) FindAll(ctx context.Context, ownerID string) ([]models.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Investment, 0)
	for _, id := range slices.Backward(m.order) {
		if inv := m.items[id]; inv.OwnerID == ownerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, ownerID, id string) (*models.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.items[id]
	if !ok || inv.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (m *MemoryStore) Create(ctx context.Context, ownerID string, fields models.NewInvestment) (*models.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv := fields.Build(uuid.NewString(), ownerID, m.now())
	m.items[inv.ID] = inv
	m.order = append(m.order, inv.ID)
	return &inv, nil
}

func (m *MemoryStore) Update(ctx context.Context, ownerID, id string, patch models.InvestmentPatch) (*models.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.items[id]
	if !ok || inv.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	patch.Apply(&inv)
	inv.UpdatedAt = m.now()
	m.items[id] = inv
	return &inv, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.items[id]
	if !ok || inv.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.items, id)
	m.order = slices.DeleteFunc(m.order, func(v string) bool { return v == id })
	return nil
}
