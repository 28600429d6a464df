package models

import "time"

// InvestmentType is the kind of lot being tracked
type InvestmentType string

const (
	TypeStock InvestmentType = "Stock"
	TypeIPO   InvestmentType = "IPO"
)

// Valid reports whether t is one of the known investment types
func (t InvestmentType) Valid() bool {
	return t == TypeStock || t == TypeIPO
}

// Investment represents a single purchase lot owned by a user
type Investment struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	StockSymbol   string         `json:"stockSymbol"`
	StockName     string         `json:"stockName,omitempty"`
	Type          InvestmentType `json:"type"`
	PurchaseDate  time.Time      `json:"purchaseDate"`
	Quantity      float64        `json:"quantity"`
	PurchasePrice float64        `json:"purchasePrice"`
	CurrentPrice  float64        `json:"currentPrice"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewInvestment - validated fields for a record about to be created
type NewInvestment struct {
	StockSymbol   string
	StockName     string
	Type          InvestmentType
	PurchaseDate  time.Time
	Quantity      float64
	PurchasePrice float64
	CurrentPrice  float64
	Notes         string
}

// InvestmentPatch - validated partial update, nil fields are left untouched
type InvestmentPatch struct {
	StockSymbol   *string
	StockName     *string
	Type          *InvestmentType
	PurchaseDate  *time.Time
	Quantity      *float64
	PurchasePrice *float64
	CurrentPrice  *float64
	Notes         *string
}

// Empty reports whether the patch changes nothing
func (p InvestmentPatch) Empty() bool {
	return p.StockSymbol == nil && p.StockName == nil && p.Type == nil &&
		p.PurchaseDate == nil && p.Quantity == nil && p.PurchasePrice == nil &&
		p.CurrentPrice == nil && p.Notes == nil
}

// Apply copies the present patch fields onto inv
func (p InvestmentPatch) Apply(inv *Investment) {
	if p.StockSymbol != nil {
		inv.StockSymbol = *p.StockSymbol
	}
	if p.StockName != nil {
		inv.StockName = *p.StockName
	}
	if p.Type != nil {
		inv.Type = *p.Type
	}
	if p.PurchaseDate != nil {
		inv.PurchaseDate = *p.PurchaseDate
	}
	if p.Quantity != nil {
		inv.Quantity = *p.Quantity
	}
	if p.PurchasePrice != nil {
		inv.PurchasePrice = *p.PurchasePrice
	}
	if p.CurrentPrice != nil {
		inv.CurrentPrice = *p.CurrentPrice
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
}

// Build turns validated fields into a record owned by ownerID
func (n NewInvestment) Build(id, ownerID string, now time.Time) Investment {
	return Investment{
		ID:            id,
		OwnerID:       ownerID,
		StockSymbol:   n.StockSymbol,
		StockName:     n.StockName,
		Type:          n.Type,
		PurchaseDate:  n.PurchaseDate,
		Quantity:      n.Quantity,
		PurchasePrice: n.PurchasePrice,
		CurrentPrice:  n.CurrentPrice,
		Notes:         n.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
