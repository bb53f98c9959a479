package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
)

const (
	barColor  = "#f97316"
	axisColor = "#64748b"
	yearColor = "#94a3b8"
)

// InsufficientMessage is shown in place of a chart with fewer than two points.
const InsufficientMessage = "Not enough annual volume data to display a chart."

// RenderBars renders the layout as an SVG document. A non-nil hover draws
// the indicator dot at the tooltip anchor.
func RenderBars(l BarLayout, hover *Tooltip) string {
	vp := l.Viewport
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`, num(vp.Width), num(vp.Height))

	if l.Insufficient {
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="12" fill="%s">%s</text>`,
			num(vp.Width/2), num(vp.Height/2), axisColor, InsufficientMessage)
		b.WriteString(`</svg>`)
		return b.String()
	}

	plot := vp.Plot()
	for _, t := range l.Ticks {
		fmt.Fprintf(&b, `<line x1="%s" x2="%s" y1="%s" y2="%s" stroke="%s" stroke-width="0.5" stroke-dasharray="3,3"/>`,
			num(plot.X.Lo), num(plot.X.Hi), num(t.Y), num(t.Y), axisColor)
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="end" dominant-baseline="middle" font-size="10" fill="%s">%s</text>`,
			num(plot.X.Lo-10), num(t.Y), axisColor, t.Label)
	}

	for _, bar := range l.Bars {
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"><title>%d: %s</title></rect>`,
			num(bar.X), num(bar.Y), num(bar.Width), num(bar.Height), barColor, bar.Year, num(bar.Volume))
		fmt.Fprintf(&b, `<text x="%s" y="%s" text-anchor="middle" font-size="10" fill="%s">%d</text>`,
			num(bar.CenterX), num(plot.Y.Hi+15), yearColor, bar.Year)
	}

	if hover != nil {
		fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="4" fill="#fff" stroke="%s" stroke-width="2" pointer-events="none"/>`,
			num(hover.X), num(hover.Y), barColor)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

// RenderSparkline renders points as a standalone SVG polyline. Empty input
// renders nothing.
func RenderSparkline(pts []r2.Point, vp SparkViewport) string {
	if len(pts) < 2 {
		return ""
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+
			`<polyline fill="none" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round" points="%s"/></svg>`,
		num(vp.Width), num(vp.Height), num(vp.Width), num(vp.Height), barColor, num(vp.StrokeWidth), PolylinePoints(pts),
	)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
