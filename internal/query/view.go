// Package query derives the filtered, sorted view of a portfolio that the
// dashboard displays.
package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// FilterType restricts a view to one investment type
type FilterType string

const FilterAll FilterType = "all"

// SortKey names an ordering of the view
type SortKey string

const (
	SortName         SortKey = "name"
	SortNameDesc     SortKey = "name-desc"
	SortProfitDesc   SortKey = "profit-desc"
	SortProfitAsc    SortKey = "profit-asc"
	SortInvestedDesc SortKey = "invested-desc"
	SortInvestedAsc  SortKey = "invested-asc"
	SortDateDesc     SortKey = "date-desc"
	SortDateAsc      SortKey = "date-asc"
)

// Criteria are the user's current search, filter and sort choices
type Criteria struct {
	SearchTerm string     `json:"searchTerm"`
	FilterType FilterType `json:"filterType"`
	SortBy     SortKey    `json:"sortBy"`
}

// ParseCriteria builds Criteria from raw query parameters.
func ParseCriteria(search, filter, sortBy string) Criteria {
	return Criteria{
		SearchTerm: strings.TrimSpace(search),
		FilterType: FilterType(strings.TrimSpace(filter)),
		SortBy:     SortKey(strings.TrimSpace(sortBy)),
	}
}

// ApplyView searches, filters and then sorts invs. The input slice is never
// modified; the result is always a fresh slice. Sorting is stable, and an
// unknown sort key keeps the filtered records in input order.
func ApplyView(invs []models.Investment, c Criteria) []models.Investment {
	out := make([]models.Investment, 0, len(invs))
	term := strings.ToLower(c.SearchTerm)
	for _, inv := range invs {
		if !matchesSearch(inv, term) || !matchesType(inv, c.FilterType) {
			continue
		}
		out = append(out, inv)
	}

	if less := comparator(c.SortBy); less != nil {
		slices.SortStableFunc(out, less)
	}
	return out
}

func matchesSearch(inv models.Investment, lowerTerm string) bool {
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(strings.ToLower(inv.StockSymbol), lowerTerm) ||
		strings.Contains(strings.ToLower(inv.StockName), lowerTerm)
}

func matchesType(inv models.Investment, f FilterType) bool {
	if f == "" || f == FilterAll {
		return true
	}
	return string(inv.Type) == string(f)
}

func comparator(key SortKey) func(a, b models.Investment) int {
	switch key {
	case SortName, SortNameDesc:
		// collators keep scratch buffers, so each view gets its own
		col := collate.New(language.English, collate.IgnoreCase)
		if key == SortName {
			return func(a, b models.Investment) int {
				return col.CompareString(a.StockSymbol, b.StockSymbol)
			}
		}
		return func(a, b models.Investment) int {
			return col.CompareString(b.StockSymbol, a.StockSymbol)
		}
	case SortProfitDesc:
		return func(a, b models.Investment) int { return cmp.Compare(profit(b), profit(a)) }
	case SortProfitAsc:
		return func(a, b models.Investment) int { return cmp.Compare(profit(a), profit(b)) }
	case SortInvestedDesc:
		return func(a, b models.Investment) int { return cmp.Compare(invested(b), invested(a)) }
	case SortInvestedAsc:
		return func(a, b models.Investment) int { return cmp.Compare(invested(a), invested(b)) }
	case SortDateDesc:
		return func(a, b models.Investment) int { return b.PurchaseDate.Compare(a.PurchaseDate) }
	case SortDateAsc:
		return func(a, b models.Investment) int { return a.PurchaseDate.Compare(b.PurchaseDate) }
	}
	return nil
}

// Recomputed from raw fields so the view does not depend on derived metrics.
func profit(inv models.Investment) float64 {
	return inv.Quantity*inv.CurrentPrice - inv.Quantity*inv.PurchasePrice
}

func invested(inv models.Investment) float64 {
	return inv.Quantity * inv.PurchasePrice
}
