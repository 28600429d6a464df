package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

const tolerance = 1e-9

func lot(symbol string, qty, buy, cur float64) models.Investment {
	return models.Investment{
		StockSymbol:   symbol,
		Type:          models.TypeStock,
		Quantity:      qty,
		PurchasePrice: buy,
		CurrentPrice:  cur,
	}
}

func TestComputeInvestmentMetrics_Profit(t *testing.T) {
	m := ComputeInvestmentMetrics(lot("AAPL", 10, 100, 150))

	assert.Equal(t, 1000.0, m.InvestedAmount)
	assert.Equal(t, 1500.0, m.CurrentValue)
	assert.Equal(t, 500.0, m.ProfitLoss)
	assert.InDelta(t, 50.0, m.ProfitLossPercent, tolerance)
	assert.True(t, m.IsProfit)
}

func TestComputeInvestmentMetrics_Loss(t *testing.T) {
	m := ComputeInvestmentMetrics(lot("TSLA", 5, 200, 180))

	assert.Equal(t, 1000.0, m.InvestedAmount)
	assert.Equal(t, 900.0, m.CurrentValue)
	assert.Equal(t, -100.0, m.ProfitLoss)
	assert.InDelta(t, -10.0, m.ProfitLossPercent, tolerance)
	assert.False(t, m.IsProfit)
}

func TestComputeInvestmentMetrics_BreakEvenCountsAsProfit(t *testing.T) {
	m := ComputeInvestmentMetrics(lot("MSFT", 3, 120, 120))

	assert.Equal(t, 0.0, m.ProfitLoss)
	assert.True(t, m.IsProfit)
}

func TestComputeInvestmentMetrics_Identities(t *testing.T) {
	lots := []models.Investment{
		lot("A", 0.5, 33.33, 12.01),
		lot("B", 1234, 0.07, 0.11),
		lot("C", 7, 1e6, 999999.99),
		lot("D", 3.3333, 19.99, 23.45),
	}
	for _, inv := range lots {
		m := ComputeInvestmentMetrics(inv)
		require.Greater(t, m.InvestedAmount, 0.0)
		assert.InDelta(t, m.CurrentValue-m.InvestedAmount, m.ProfitLoss, tolerance, inv.StockSymbol)
		assert.InDelta(t, m.ProfitLoss/m.InvestedAmount*100, m.ProfitLossPercent, tolerance, inv.StockSymbol)
	}
}

func TestComputeInvestmentMetrics_ZeroInvestedIsNonFinite(t *testing.T) {
	m := ComputeInvestmentMetrics(lot("ZERO", 10, 0, 5))
	assert.True(t, math.IsInf(m.ProfitLossPercent, 1))

	m = ComputeInvestmentMetrics(lot("ZERO", 10, 0, 0))
	assert.True(t, math.IsNaN(m.ProfitLossPercent))
}

func TestComputePortfolioMetrics_Empty(t *testing.T) {
	assert.Equal(t, PortfolioMetrics{}, ComputePortfolioMetrics(nil))
	assert.Equal(t, PortfolioMetrics{}, ComputePortfolioMetrics([]models.Investment{}))
}

func TestComputePortfolioMetrics_TwoLots(t *testing.T) {
	pm := ComputePortfolioMetrics([]models.Investment{
		lot("AAPL", 10, 100, 150),
		lot("TSLA", 5, 200, 180),
	})

	assert.Equal(t, 2000.0, pm.TotalInvested)
	assert.Equal(t, 2400.0, pm.TotalCurrentValue)
	assert.Equal(t, 400.0, pm.PortfolioProfit)
	assert.InDelta(t, 20.0, pm.PortfolioPercent, tolerance)
}

func TestComputePortfolioMetrics_OrderIndependent(t *testing.T) {
	a := lot("A", 1.5, 10.1, 11.7)
	b := lot("B", 3, 99.99, 80.25)
	c := lot("C", 250, 0.42, 0.61)

	base := ComputePortfolioMetrics([]models.Investment{a, b, c})
	for _, perm := range [][]models.Investment{
		{a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	} {
		got := ComputePortfolioMetrics(perm)
		assert.InDelta(t, base.TotalInvested, got.TotalInvested, tolerance)
		assert.InDelta(t, base.TotalCurrentValue, got.TotalCurrentValue, tolerance)
		assert.InDelta(t, base.PortfolioProfit, got.PortfolioProfit, tolerance)
		assert.InDelta(t, base.PortfolioPercent, got.PortfolioPercent, tolerance)
	}
}

func TestComputePortfolioMetrics_ZeroInvestedPercentIsZero(t *testing.T) {
	pm := ComputePortfolioMetrics([]models.Investment{lot("ZERO", 10, 0, 5)})

	assert.Equal(t, 0.0, pm.TotalInvested)
	assert.Equal(t, 50.0, pm.PortfolioProfit)
	assert.Equal(t, 0.0, pm.PortfolioPercent)
}

func TestHoldings(t *testing.T) {
	hs := Holdings([]models.Investment{lot("AAPL", 10, 100, 150), lot("TSLA", 5, 200, 180)})

	require.Len(t, hs, 2)
	assert.Equal(t, "AAPL", hs[0].StockSymbol)
	assert.Equal(t, 500.0, hs[0].Metrics.ProfitLoss)
	assert.Equal(t, "TSLA", hs[1].StockSymbol)
	assert.Equal(t, -100.0, hs[1].Metrics.ProfitLoss)
}

func TestSummarize(t *testing.T) {
	ipo := lot("NEWCO", 4, 25, 50)
	ipo.Type = models.TypeIPO

	s := Summarize([]models.Investment{lot("AAPL", 10, 100, 150), lot("TSLA", 5, 200, 180), ipo})

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.ByType[models.TypeStock])
	assert.Equal(t, 1, s.ByType[models.TypeIPO])
	assert.Equal(t, 2100.0, s.TotalInvested)
	assert.Equal(t, "$2,100.00", s.Formatted.TotalInvested)
	assert.Equal(t, "$2,600.00", s.Formatted.TotalCurrentValue)
	assert.Equal(t, "$500.00", s.Formatted.PortfolioProfit)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Count)
	assert.Equal(t, "$0.00", s.Formatted.TotalInvested)
	assert.Equal(t, "+0.00%", s.Formatted.PortfolioPercent)
}

func TestDerivedMetrics_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(ComputeInvestmentMetrics(lot("AAPL", 10, 100, 150)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"investedAmount":1000,"currentValue":1500,"profitLoss":500,"profitLossPercent":50,"isProfit":true}`, string(raw))

	raw, err = json.Marshal(ComputeInvestmentMetrics(lot("ZERO", 10, 0, 5)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"investedAmount":0,"currentValue":50,"profitLoss":50,"profitLossPercent":"Infinity","isProfit":true}`, string(raw))

	raw, err = json.Marshal(Holdings([]models.Investment{lot("ZERO", 1, 0, 0)}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"profitLossPercent":"NaN"`)
}
