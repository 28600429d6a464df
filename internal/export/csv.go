// Package export renders a whole portfolio as CSV for spreadsheet import.
package export

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atharvakonge/portfolio-pilot/internal/metrics"
	"github.com/atharvakonge/portfolio-pilot/internal/models"
)

// ErrNoInvestments is returned when there is nothing to export.
var ErrNoInvestments = errors.New("no investments to export")

// DateLayout is day/month/year, as spreadsheets in most locales expect.
const DateLayout = "02/01/2006"

// Header is the fixed first line. Column order and titles are relied on by
// spreadsheet imports and must not change.
var Header = []string{
	"Stock Symbol",
	"Stock Name",
	"Type",
	"Purchase Date",
	"Quantity",
	"Purchase Price",
	"Current Price",
	"Invested Amount",
	"Current Value",
	"Profit/Loss",
	"P/L %",
	"Notes",
}

// SerializeToCSV renders every record, in order, below the header.
func SerializeToCSV(invs []models.Investment) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, invs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV writes the CSV rendering of invs to w. Nothing is written when
// invs is empty.
func WriteCSV(w io.Writer, invs []models.Investment) error {
	if len(invs) == 0 {
		return ErrNoInvestments
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Header, ","))
	bw.WriteByte('\n')

	for _, inv := range invs {
		for i, field := range Row(inv) {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(field))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Row returns the unquoted cells of one record in Header order.
func Row(inv models.Investment) []string {
	m := metrics.ComputeInvestmentMetrics(inv)
	return []string{
		inv.StockSymbol,
		inv.StockName,
		string(inv.Type),
		inv.PurchaseDate.UTC().Format(DateLayout),
		plain(inv.Quantity),
		plain(inv.PurchasePrice),
		plain(inv.CurrentPrice),
		fixed2(m.InvestedAmount),
		fixed2(m.CurrentValue),
		fixed2(m.ProfitLoss),
		fixed2(m.ProfitLossPercent),
		inv.Notes,
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// plain is the shortest representation that round-trips, e.g. 10 or 150.5.
func plain(v float64) string {
	if s, ok := metrics.NonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fixed2 rounds half away from zero to exactly two decimals. A zero invested
// amount makes the percentage non-finite; it is written as NaN, Infinity or
// -Infinity rather than a number.
func fixed2(v float64) string {
	if s, ok := metrics.NonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
