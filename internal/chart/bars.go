// Package chart computes drawable geometry for the annual volume bar chart
// and the commodity sparklines, and renders both as SVG.
//
// Layout functions are pure: they copy their input and never touch the
// caller's slices.
package chart

import (
	"math"
	"sort"
	"strconv"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/shopspring/decimal"

	"github.com/sells-group/importer-intel/internal/model"
)

const (
	headroom  = 1.1
	maxBarW   = 40.0
	barFill   = 0.6
	tickCount = 4
)

// Padding is the space around the plot area.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// Viewport is the chart's coordinate space (SVG view box units).
type Viewport struct {
	Width   float64
	Height  float64
	Padding Padding
}

// DefaultViewport is the 500x200 view box used by the detail overlay.
func DefaultViewport() Viewport {
	return Viewport{
		Width:   500,
		Height:  200,
		Padding: Padding{Top: 20, Right: 20, Bottom: 30, Left: 60},
	}
}

// Plot returns the inner plot rectangle.
func (v Viewport) Plot() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: v.Padding.Left, Hi: v.Width - v.Padding.Right},
		Y: r1.Interval{Lo: v.Padding.Top, Hi: v.Height - v.Padding.Bottom},
	}
}

// DataPoint is one year of volume.
type DataPoint struct {
	Year   int     `json:"year"`
	Volume float64 `json:"volume"`
}

// FromVolumeHistory converts the stored series into chart input.
func FromVolumeHistory(history []model.ShipmentVolume) []DataPoint {
	out := make([]DataPoint, len(history))
	for i, h := range history {
		out[i] = DataPoint{Year: int(h.Year), Volume: float64(h.Volume)}
	}
	return out
}

// Bar is one drawable bar.
type Bar struct {
	Year    int     `json:"year"`
	Volume  float64 `json:"volume"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	CenterX float64 `json:"centerX"`
}

// Tick is a horizontal gridline with its axis label.
type Tick struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Tooltip is the hover readout anchored at a bar's scaled point.
type Tooltip struct {
	Year   int     `json:"year"`
	Volume float64 `json:"volume"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// BarLayout is the computed geometry of the volume chart.
type BarLayout struct {
	Viewport     Viewport `json:"viewport"`
	Insufficient bool     `json:"insufficient"`
	MaxVolume    float64  `json:"maxVolume"`
	Baseline     float64  `json:"baseline"`
	SlotWidth    float64  `json:"slotWidth"`
	BarWidth     float64  `json:"barWidth"`
	Bars         []Bar    `json:"bars"`
	Ticks        []Tick   `json:"ticks"`
}

// LayoutBars lays out series inside vp. Fewer than two points produce a
// layout flagged Insufficient rather than an error.
func LayoutBars(series []DataPoint, vp Viewport) BarLayout {
	l := BarLayout{Viewport: vp}
	if len(series) < 2 {
		l.Insufficient = true
		return l
	}

	sorted := make([]DataPoint, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	peak := 0.0
	for _, d := range sorted {
		if d.Volume > peak {
			peak = d.Volume
		}
	}
	l.MaxVolume = peak * headroom
	l.Baseline = l.Scale(0)

	plot := vp.Plot()
	l.SlotWidth = plot.X.Length() / float64(len(sorted))
	l.BarWidth = math.Min(maxBarW, l.SlotWidth*barFill)

	l.Bars = make([]Bar, len(sorted))
	for i, d := range sorted {
		x := plot.X.Lo + l.SlotWidth*float64(i) + (l.SlotWidth-l.BarWidth)/2
		y := l.Scale(d.Volume)
		l.Bars[i] = Bar{
			Year:    d.Year,
			Volume:  d.Volume,
			X:       x,
			Y:       y,
			Width:   l.BarWidth,
			Height:  l.Baseline - y,
			CenterX: x + l.BarWidth/2,
		}
	}

	if l.MaxVolume > 0 {
		step := l.MaxVolume / tickCount
		for i := 0; i <= tickCount; i++ {
			v := math.Round(float64(i) * step)
			l.Ticks = append(l.Ticks, Tick{Value: v, Y: l.Scale(v), Label: FormatTick(v)})
		}
	}
	return l
}

// Scale maps a volume onto the inverted Y axis. With no positive volume the
// scale is degenerate and everything sits on the baseline. Negative volumes
// clamp to zero so bars never extend below the baseline.
func (l BarLayout) Scale(volume float64) float64 {
	plot := l.Viewport.Plot()
	if l.MaxVolume <= 0 || volume <= 0 || math.IsNaN(volume) {
		return plot.Y.Hi
	}
	return plot.Y.Hi - (volume/l.MaxVolume)*plot.Y.Length()
}

// Hover resolves a pointer X coordinate (view box units) to the slot under
// it. The whole slot is the hover zone, not just the bar's pixels.
func (l BarLayout) Hover(x float64) (Tooltip, bool) {
	if l.Insufficient || len(l.Bars) == 0 || l.SlotWidth <= 0 {
		return Tooltip{}, false
	}
	plot := l.Viewport.Plot()
	if !plot.X.Contains(x) {
		return Tooltip{}, false
	}
	idx := int(math.Floor((x - plot.X.Lo) / l.SlotWidth))
	if idx < 0 || idx >= len(l.Bars) {
		return Tooltip{}, false
	}
	b := l.Bars[idx]
	return Tooltip{Year: b.Year, Volume: b.Volume, X: b.CenterX, Y: b.Y}, true
}

// FormatTick renders an axis value: "1.5k" from 1000 up, the integer below.
func FormatTick(v float64) string {
	if v >= 1000 {
		return decimal.NewFromFloat(v).Div(decimal.NewFromInt(1000)).StringFixed(1) + "k"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
