package metrics

import (
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
)

// Markers used wherever a non-finite percentage has to be rendered.
const (
	NaNMarker    = "NaN"
	PosInfMarker = "Infinity"
	NegInfMarker = "-Infinity"

	displayCurrency = money.USD
)

// NonFinite returns the marker for v and true when v is NaN or ±Inf.
func NonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return NaNMarker, true
	case math.IsInf(v, 1):
		return PosInfMarker, true
	case math.IsInf(v, -1):
		return NegInfMarker, true
	}
	return "", false
}

// FormatCurrency renders an amount as dollars, e.g. "$1,234.50" or "-$100.00".
func FormatCurrency(amount float64) string {
	if s, ok := NonFinite(amount); ok {
		return s
	}
	return money.NewFromFloat(amount, displayCurrency).Display()
}

// FormatPercent renders a signed percentage with two decimals, e.g. "+20.00%".
func FormatPercent(percent float64) string {
	if s, ok := NonFinite(percent); ok {
		return s + "%"
	}
	sign := ""
	if percent >= 0 {
		sign = "+"
	}
	return sign + strconv.FormatFloat(percent, 'f', 2, 64) + "%"
}
