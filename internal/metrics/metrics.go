// Package metrics derives per-lot and portfolio-level profit/loss figures
// from raw investment records. Every function here is pure.
package metrics

import (
	"encoding/json"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// DerivedMetrics are the figures computed for a single lot
type DerivedMetrics struct {
	InvestedAmount    float64 `json:"investedAmount"`
	CurrentValue      float64 `json:"currentValue"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
	IsProfit          bool    `json:"isProfit"`
}

// MarshalJSON writes a non-finite percentage as its string marker, which
// plain JSON numbers cannot carry.
func (m DerivedMetrics) MarshalJSON() ([]byte, error) {
	type plain DerivedMetrics
	if s, ok := NonFinite(m.ProfitLossPercent); ok {
		return json.Marshal(struct {
			plain
			ProfitLossPercent string `json:"profitLossPercent"`
		}{plain(m), s})
	}
	return json.Marshal(plain(m))
}

// PortfolioMetrics aggregates a whole collection of lots
type PortfolioMetrics struct {
	TotalInvested     float64 `json:"totalInvested"`
	TotalCurrentValue float64 `json:"totalCurrentValue"`
	PortfolioProfit   float64 `json:"portfolioProfit"`
	PortfolioPercent  float64 `json:"portfolioPercent"`
}

// InvestedAmount is the cost basis of a lot
func InvestedAmount(inv models.Investment) float64 {
	return inv.Quantity * inv.PurchasePrice
}

// CurrentValue is the present value of a lot
func CurrentValue(inv models.Investment) float64 {
	return inv.Quantity * inv.CurrentPrice
}

// ProfitLoss is CurrentValue minus InvestedAmount
func ProfitLoss(inv models.Investment) float64 {
	return CurrentValue(inv) - InvestedAmount(inv)
}

// ComputeInvestmentMetrics derives the figures of a single lot.
//
// A zero invested amount only happens when write validation was bypassed; the
// percentage is then NaN or ±Inf and is left that way for the caller to render.
func ComputeInvestmentMetrics(inv models.Investment) DerivedMetrics {
	invested := InvestedAmount(inv)
	current := CurrentValue(inv)
	pl := current - invested

	return DerivedMetrics{
		InvestedAmount:    invested,
		CurrentValue:      current,
		ProfitLoss:        pl,
		ProfitLossPercent: pl / invested * 100,
		IsProfit:          pl >= 0,
	}
}

// ComputePortfolioMetrics sums the lots in input order.
func ComputePortfolioMetrics(invs []models.Investment) PortfolioMetrics {
	if len(invs) == 0 {
		return PortfolioMetrics{}
	}

	var totalInvested, totalCurrent float64
	for _, inv := range invs {
		totalInvested += InvestedAmount(inv)
		totalCurrent += CurrentValue(inv)
	}

	profit := totalCurrent - totalInvested
	percent := 0.0
	if totalInvested > 0 {
		percent = profit / totalInvested * 100
	}

	return PortfolioMetrics{
		TotalInvested:     totalInvested,
		TotalCurrentValue: totalCurrent,
		PortfolioProfit:   profit,
		PortfolioPercent:  percent,
	}
}

// Holding pairs a record with its derived figures for rendering
type Holding struct {
	models.Investment
	Metrics DerivedMetrics `json:"metrics"`
}

// Holdings computes the metrics of every lot, preserving order
func Holdings(invs []models.Investment) []Holding {
	out := make([]Holding, 0, len(invs))
	for _, inv := range invs {
		out = append(out, Holding{Investment: inv, Metrics: ComputeInvestmentMetrics(inv)})
	}
	return out
}
