package models

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInvestmentType_Valid(t *testing.T) {
	assert.True(t, TypeStock.Valid())
	assert.True(t, TypeIPO.Valid())
	assert.False(t, InvestmentType("Bond").Valid())
	assert.False(t, InvestmentType("stock").Valid())
}

func TestInvestmentPatch_Apply(t *testing.T) {
	inv := Investment{
		StockSymbol:   "AAPL",
		StockName:     "Apple",
		Type:          TypeStock,
		Quantity:      10,
		PurchasePrice: 100,
		CurrentPrice:  150,
		Notes:         "long term",
	}

	price := 175.5
	name := ""
	patch := InvestmentPatch{CurrentPrice: &price, StockName: &name}
	assert.False(t, patch.Empty())

	patch.Apply(&inv)

	assert.Equal(t, 175.5, inv.CurrentPrice)
	assert.Equal(t, "", inv.StockName)
	// untouched fields survive
	assert.Equal(t, "AAPL", inv.StockSymbol)
	assert.Equal(t, 10.0, inv.Quantity)
	assert.Equal(t, "long term", inv.Notes)
}

func TestInvestmentPatch_Empty(t *testing.T) {
	assert.True(t, InvestmentPatch{}.Empty())
}

func TestNewInvestment_Build(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := NewInvestment{StockSymbol: "TSLA", Type: TypeIPO, Quantity: 5, PurchasePrice: 200, CurrentPrice: 180}

	inv := n.Build("id-1", "owner-1", now)

	assert.Equal(t, "id-1", inv.ID)
	assert.Equal(t, "owner-1", inv.OwnerID)
	assert.Equal(t, "TSLA", inv.StockSymbol)
	assert.Equal(t, now, inv.CreatedAt)
	assert.Equal(t, now, inv.UpdatedAt)
}

func TestPortfolioManager_SerialisesSameOwner(t *testing.T) {
	pm := NewPortfolioManager()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pm.LockOwner("default")
			defer pm.UnlockOwner("default")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestPortfolioManager_UnlockUnknownOwner(t *testing.T) {
	pm := NewPortfolioManager()
	assert.NotPanics(t, func() { pm.UnlockOwner("nobody") })
}
