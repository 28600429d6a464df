package models

import (
	"sync"
)

// PortfolioManager serialises writes to a portfolio
// Uses per-owner locks instead of a global lock
type PortfolioManager struct {
	ownerLocks map[string]*sync.Mutex // Map of owner_id → mutex
	mapMutex   sync.RWMutex           // Protects the map itself
}

// NewPortfolioManager creates a new portfolio manager
func NewPortfolioManager() *PortfolioManager {
	return &PortfolioManager{
		ownerLocks: make(map[string]*sync.Mutex),
	}
}

// LockOwner locks the portfolio of a specific owner
func (pm *PortfolioManager) LockOwner(ownerID string) {
	pm.mapMutex.Lock()

	if pm.ownerLocks[ownerID] == nil {
		pm.ownerLocks[ownerID] = &sync.Mutex{}
	}

	ownerMutex := pm.ownerLocks[ownerID]
	pm.mapMutex.Unlock()

	ownerMutex.Lock()
}

// UnlockOwner unlocks the portfolio of a specific owner
func (pm *PortfolioManager) UnlockOwner(ownerID string) {
	pm.mapMutex.RLock()
	ownerMutex := pm.ownerLocks[ownerID]
	pm.mapMutex.RUnlock()

	if ownerMutex != nil {
		ownerMutex.Unlock()
	}
}
