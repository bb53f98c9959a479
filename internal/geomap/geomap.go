package geomap

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang/geo/r2"

	"github.com/sells-group/importer-intel/internal/model"
)

// Tier buckets a partner's trade volume for coloring.
type Tier string

const (
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
	TierQuantity Tier = "quantity" // volume text carries a number but no keyword
	TierNone     Tier = "none"
)

// Fill colors. NoDataColor is used for regions without any matching partner.
const (
	HighColor    = "#f97316"
	MediumColor  = "#fb923c"
	LowColor     = "#fcd34d"
	NeutralColor = "#cbd5e1"
	NoDataColor  = "#475569"
	strokeColor  = "#1e293b"
)

// VolumeTier classifies free-text volume ("High", "Medium volume", "1.2M USD").
func VolumeTier(volume string) Tier {
	v := strings.ToLower(volume)
	switch {
	case strings.Contains(v, "high"):
		return TierHigh
	case strings.Contains(v, "medium"):
		return TierMedium
	case strings.Contains(v, "low"):
		return TierLow
	case strings.IndexFunc(v, unicode.IsDigit) >= 0:
		return TierQuantity
	default:
		return TierNone
	}
}

// TierColor returns the fill for a matched partner.
func TierColor(t Tier) string {
	switch t {
	case TierHigh:
		return HighColor
	case TierMedium, TierQuantity:
		return MediumColor
	case TierLow:
		return LowColor
	default:
		return NeutralColor
	}
}

// Region is one drawable shape with its resolved partner, if any.
type Region struct {
	Name    string              `json:"name"`
	Box     [4]float64          `json:"box"`
	Fill    string              `json:"fill"`
	Partner *model.TradePartner `json:"partner,omitempty"`
}

// Container is the on-screen bounding box of the rendered map.
type Container struct {
	Left, Top, Width, Height float64
}

// Tooltip is the hover readout. X and Y are relative to the container.
type Tooltip struct {
	Country string  `json:"country"`
	Volume  string  `json:"volume"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Map binds a partner list to an atlas.
type Map struct {
	atlas    *Atlas
	partners map[string]model.TradePartner
	unmapped []model.TradePartner
}

// New builds a map over the embedded atlas.
func New(partners []model.TradePartner) *Map {
	return NewWithAtlas(defaultAtlas, partners)
}

// NewWithAtlas builds a map over a custom atlas. Partners are keyed by their
// canonical country name; a later entry for the same country replaces an
// earlier one.
func NewWithAtlas(a *Atlas, partners []model.TradePartner) *Map {
	m := &Map{atlas: a, partners: make(map[string]model.TradePartner, len(partners))}
	unmappedAt := map[string]int{}
	for _, p := range partners {
		key := a.Canonical(p.Country)
		m.partners[key] = p
		if a.Supported(key) {
			continue
		}
		if i, dup := unmappedAt[key]; dup {
			m.unmapped[i] = p
			continue
		}
		unmappedAt[key] = len(m.unmapped)
		m.unmapped = append(m.unmapped, p)
	}
	return m
}

// Partner looks up a partner by any spelling of its country.
func (m *Map) Partner(country string) (model.TradePartner, bool) {
	p, ok := m.partners[m.atlas.Canonical(country)]
	return p, ok
}

// Unmapped returns partners whose country has no region shape.
func (m *Map) Unmapped() []model.TradePartner {
	return m.unmapped
}

// Regions resolves every atlas region to its fill.
func (m *Map) Regions() []Region {
	out := make([]Region, 0, len(m.atlas.shapes))
	for _, s := range m.atlas.shapes {
		out = append(out, m.region(s))
	}
	return out
}

func (m *Map) region(s shape) Region {
	r := Region{
		Name: s.name,
		Box:  [4]float64{s.box.X.Lo, s.box.Y.Lo, s.box.X.Hi, s.box.Y.Hi},
		Fill: NoDataColor,
	}
	if p, ok := m.partners[s.name]; ok {
		r.Partner = &p
		r.Fill = TierColor(VolumeTier(p.TradeVolume))
	}
	return r
}

// toView converts a client-space point to view-box units. The second return
// is false when the pointer is outside the container.
func (m *Map) toView(client r2.Point, box Container) (rel, view r2.Point, ok bool) {
	rel = r2.Point{X: client.X - box.Left, Y: client.Y - box.Top}
	if box.Width <= 0 || box.Height <= 0 {
		return rel, rel, true
	}
	if rel.X < 0 || rel.Y < 0 || rel.X > box.Width || rel.Y > box.Height {
		return rel, view, false
	}
	view = r2.Point{X: rel.X * m.atlas.width / box.Width, Y: rel.Y * m.atlas.height / box.Height}
	return rel, view, true
}

// HoverAt resolves a pointer position to a tooltip. Regions without a partner
// still produce a tooltip, with "N/A" volume; a partner's volume text is shown
// as sent, blank included.
func (m *Map) HoverAt(client r2.Point, box Container) (Tooltip, bool) {
	rel, view, ok := m.toView(client, box)
	if !ok {
		return Tooltip{}, false
	}
	s, hit := m.atlas.regionAt(view)
	if !hit {
		return Tooltip{}, false
	}
	tip := Tooltip{Country: s.name, Volume: "N/A", X: rel.X, Y: rel.Y}
	if p, ok := m.partners[s.name]; ok {
		tip.Volume = p.TradeVolume
	}
	return tip, true
}

// Click invokes fn with the canonical country under the pointer and reports
// whether a region was hit.
func (m *Map) Click(client r2.Point, box Container, fn func(country string)) bool {
	name, ok := m.CountryAt(client, box)
	if ok && fn != nil {
		fn(name)
	}
	return ok
}

// CountryAt returns the canonical country under the pointer.
func (m *Map) CountryAt(client r2.Point, box Container) (string, bool) {
	_, view, ok := m.toView(client, box)
	if !ok {
		return "", false
	}
	s, hit := m.atlas.regionAt(view)
	if !hit {
		return "", false
	}
	return s.name, true
}

// RenderSVG draws the regions and a color legend.
func (m *Map) RenderSVG() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`, num(m.atlas.width), num(m.atlas.height))
	for _, r := range m.Regions() {
		vol := "N/A"
		if r.Partner != nil && r.Partner.TradeVolume != "" {
			vol = r.Partner.TradeVolume
		}
		fmt.Fprintf(&b,
			`<path d="M%s %s H %s V %s H %s Z" fill="%s" stroke="%s" stroke-width="0.5" data-country="%s"><title>%s: %s</title></path>`,
			num(r.Box[0]), num(r.Box[1]), num(r.Box[2]), num(r.Box[3]), num(r.Box[0]),
			r.Fill, strokeColor, html.EscapeString(r.Name), html.EscapeString(r.Name), html.EscapeString(vol))
	}

	legend := []struct{ label, color string }{
		{"High", HighColor},
		{"Medium", MediumColor},
		{"Low", LowColor},
		{"No data", NoDataColor},
	}
	y := m.atlas.height - 20
	for i, l := range legend {
		x := 20 + float64(i)*90
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="12" height="12" fill="%s"/>`, num(x), num(y), l.color)
		fmt.Fprintf(&b, `<text x="%s" y="%s" font-size="11" fill="#94a3b8">%s</text>`, num(x+16), num(y+10), l.label)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
