package metrics

import "github.com/atharvakonge/portfolio-pilot/internal/models"

// Summary is what the dashboard header shows for a portfolio
type Summary struct {
	PortfolioMetrics
	Count     int                           `json:"count"`
	ByType    map[models.InvestmentType]int `json:"byType"`
	Formatted FormattedMetrics              `json:"formatted"`
}

// FormattedMetrics holds display strings for the aggregate figures
type FormattedMetrics struct {
	TotalInvested     string `json:"totalInvested"`
	TotalCurrentValue string `json:"totalCurrentValue"`
	PortfolioProfit   string `json:"portfolioProfit"`
	PortfolioPercent  string `json:"portfolioPercent"`
}

// Summarize computes the aggregate metrics of invs along with lot counts.
func Summarize(invs []models.Investment) Summary {
	pm := ComputePortfolioMetrics(invs)

	byType := map[models.InvestmentType]int{
		models.TypeStock: 0,
		models.TypeIPO:   0,
	}
	for _, inv := range invs {
		byType[inv.Type]++
	}

	return Summary{
		PortfolioMetrics: pm,
		Count:            len(invs),
		ByType:           byType,
		Formatted: FormattedMetrics{
			TotalInvested:     FormatCurrency(pm.TotalInvested),
			TotalCurrentValue: FormatCurrency(pm.TotalCurrentValue),
			PortfolioProfit:   FormatCurrency(pm.PortfolioProfit),
			PortfolioPercent:  FormatPercent(pm.PortfolioPercent),
		},
	}
}
