package view

import (
	"strings"

	"github.com/sells-group/importer-intel/internal/model"
)

// Trend is the direction of a commodity's market.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendUnknown    Trend = "unknown"
)

// TrendOf classifies a free-text market trend. The first keyword found in
// the order increasing, decreasing, stable wins.
func TrendOf(text string) Trend {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "increasing"):
		return TrendIncreasing
	case strings.Contains(lower, "decreasing"):
		return TrendDecreasing
	case strings.Contains(lower, "stable"):
		return TrendStable
	default:
		return TrendUnknown
	}
}

// CommodityRow is a commodity flow prepared for display. Optional fields the
// model sent as "N/A" are blank.
type CommodityRow struct {
	Name         string    `json:"name"`
	Percentage   string    `json:"percentage"`
	AveragePrice string    `json:"averagePrice,omitempty"`
	MarketTrend  string    `json:"marketTrend,omitempty"`
	Trend        Trend     `json:"trend"`
	TopSupplier  string    `json:"topSupplier,omitempty"`
	Sparkline    []float64 `json:"sparkline,omitempty"` // set only with two or more points
}

// Commodities prepares the commodity flows.
func Commodities(flows []model.CommodityFlow) []CommodityRow {
	rows := make([]CommodityRow, 0, len(flows))
	for _, f := range flows {
		row := CommodityRow{
			Name:         f.Name,
			Percentage:   f.Percentage,
			AveragePrice: present(f.AveragePrice),
			MarketTrend:  present(f.MarketTrend),
			TopSupplier:  present(f.TopSupplier),
		}
		row.Trend = TrendOf(row.MarketTrend)
		if len(f.ImportVolumeTrendData) > 1 {
			row.Sparkline = append([]float64(nil), f.ImportVolumeTrendData...)
		}
		rows = append(rows, row)
	}
	return rows
}

func present(s string) string {
	if s == "N/A" {
		return ""
	}
	return s
}
