// Package geomap projects trade partners onto a small stylized world map.
//
// Only the regions listed in regions.yaml can be drawn. Partners in any other
// country stay off the map and are reported through Unmapped so the tabular
// partner list can still show them.
package geomap

import (
	_ "embed"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

type atlasFile struct {
	ViewBox struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"view_box"`
	Aliases map[string]string `yaml:"aliases"`
	Regions []struct {
		Name string     `yaml:"name"`
		Box  [4]float64 `yaml:"box"`
	} `yaml:"regions"`
}

type shape struct {
	name string
	box  r2.Rect
}

// Atlas is the fixed set of drawable regions plus the country alias table.
type Atlas struct {
	width   float64
	height  float64
	aliases map[string]string
	shapes  []shape
}

// ParseAtlas decodes an atlas definition.
func ParseAtlas(data []byte) (*Atlas, error) {
	var f atlasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "geomap: parse atlas")
	}
	if f.ViewBox.Width <= 0 || f.ViewBox.Height <= 0 {
		return nil, eris.New("geomap: atlas view box must be positive")
	}

	a := &Atlas{
		width:   f.ViewBox.Width,
		height:  f.ViewBox.Height,
		aliases: f.Aliases,
	}
	for _, r := range f.Regions {
		box := r2.Rect{
			X: r1.Interval{Lo: r.Box[0], Hi: r.Box[2]},
			Y: r1.Interval{Lo: r.Box[1], Hi: r.Box[3]},
		}
		if box.IsEmpty() {
			return nil, eris.Errorf("geomap: region %q has an empty box", r.Name)
		}
		a.shapes = append(a.shapes, shape{name: r.Name, box: box})
	}
	return a, nil
}

var defaultAtlas = mustParseAtlas(regionsYAML)

func mustParseAtlas(data []byte) *Atlas {
	a, err := ParseAtlas(data)
	if err != nil {
		panic(err)
	}
	return a
}

// DefaultAtlas returns the embedded world map.
func DefaultAtlas() *Atlas { return defaultAtlas }

// Canonical resolves a country name through the alias table. Unknown names
// pass through trimmed.
func (a *Atlas) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if c, ok := a.aliases[name]; ok {
		return c
	}
	return name
}

// Canonical resolves name against the embedded atlas.
func Canonical(name string) string { return defaultAtlas.Canonical(name) }

// Supported reports whether a canonical name has a region shape.
func (a *Atlas) Supported(canonical string) bool {
	for _, s := range a.shapes {
		if s.name == canonical {
			return true
		}
	}
	return false
}

// regionAt returns the first region containing p (view-box units).
func (a *Atlas) regionAt(p r2.Point) (shape, bool) {
	for _, s := range a.shapes {
		if s.box.ContainsPoint(p) {
			return s, true
		}
	}
	return shape{}, false
}
