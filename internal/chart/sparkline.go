package chart

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
)

// SparkViewport is the fixed box a sparkline is drawn in.
type SparkViewport struct {
	Width       float64
	Height      float64
	StrokeWidth float64
}

// DefaultSparkViewport matches the inline commodity trend cells.
func DefaultSparkViewport() SparkViewport {
	return SparkViewport{Width: 100, Height: 25, StrokeWidth: 1.5}
}

// Sparkline normalizes values into polyline points. Fewer than two values
// produce nil. Values are inset by half the stroke width top and bottom so
// the line is never clipped; a constant series is drawn flat at mid-height.
func Sparkline(values []float64, vp SparkViewport) []r2.Point {
	if len(values) < 2 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	inset := vp.StrokeWidth / 2
	usable := vp.Height - vp.StrokeWidth
	bottom := vp.Height - inset
	last := float64(len(values) - 1)

	pts := make([]r2.Point, len(values))
	for i, v := range values {
		y := vp.Height / 2
		if span != 0 {
			y = bottom - ((v-lo)/span)*usable
		}
		pts[i] = r2.Point{X: float64(i) / last * vp.Width, Y: y}
	}
	return pts
}

// PolylinePoints formats points for an SVG polyline "points" attribute.
func PolylinePoints(pts []r2.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
