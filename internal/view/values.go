package view

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/importer-intel/internal/model"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders a numeric count with thousands separators. Anything
// else ("~120", "Not available") is returned as sent.
func FormatCount(c model.Count) string {
	s := strings.TrimSpace(string(c))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return string(c)
	}
	return FormatVolume(v)
}

// FormatVolume renders a number with thousands separators and no trailing
// zeros, e.g. 12500 -> "12,500", 1234.5 -> "1,234.5".
func FormatVolume(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return s
	}
	out := printer.Sprintf("%d", n)
	if n == 0 && strings.HasPrefix(whole, "-") {
		out = "-0"
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}

// Stat is one labelled shipment count.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Counts returns the three shipment counts in display order.
func Counts(c model.ShipmentCounts) []Stat {
	return []Stat{
		{Label: "Last Month", Value: FormatCount(c.LastMonth)},
		{Label: "Last Quarter", Value: FormatCount(c.LastQuarter)},
		{Label: "Last Year", Value: FormatCount(c.LastYear)},
	}
}
