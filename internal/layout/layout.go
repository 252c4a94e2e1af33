// Package layout loads precomputed particle layouts: positions, pins and the
// links between them. YAML and XML documents are accepted.
package layout

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/softsim/internal/geom"
	"github.com/san-kum/softsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

type Point struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Mass   float64 `yaml:"mass,omitempty"`
	Pinned bool    `yaml:"pinned,omitempty"`
}

type Link struct {
	A int `yaml:"a"`
	B int `yaml:"b"`
}

type Layout struct {
	Points []Point `yaml:"points"`
	Links  []Link  `yaml:"links"`
}

// Load reads and validates a layout. Any failure wraps
// particle.ErrInvalidLayout.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", particle.ErrInvalidLayout, err)
	}

	var l *Layout
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		l, err = ParseYAML(data)
	case ".xml":
		l, err = ParseXML(data)
	default:
		err = fmt.Errorf("%w: unsupported layout format %q", particle.ErrInvalidLayout, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return l, nil
}

func ParseYAML(data []byte) (*Layout, error) {
	l := &Layout{}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("%w: %v", particle.ErrInvalidLayout, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

type xmlDocument struct {
	Points []struct {
		Pos    string  `xml:"pos,attr"`
		Pinned bool    `xml:"pinned,attr"`
		Mass   float64 `xml:"mass,attr"`
	} `xml:"Points>Point"`
	Constraints []struct {
		A int `xml:"pointAIndex,attr"`
		B int `xml:"pointBIndex,attr"`
	} `xml:"Constraints>Constraint"`
}

// ParseXML reads the <Points>/<Constraints> document format where each point
// carries a pos="x,y" attribute.
func ParseXML(data []byte) (*Layout, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", particle.ErrInvalidLayout, err)
	}

	l := &Layout{Points: make([]Point, 0, len(doc.Points)), Links: make([]Link, 0, len(doc.Constraints))}
	for i, p := range doc.Points {
		x, y, err := parsePair(p.Pos)
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %v", particle.ErrInvalidLayout, i, err)
		}
		l.Points = append(l.Points, Point{X: x, Y: y, Mass: p.Mass, Pinned: p.Pinned})
	}
	for _, c := range doc.Constraints {
		l.Links = append(l.Links, Link{A: c.A, B: c.B})
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

func parsePair(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("pos %q is not x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// Validate fills default masses and rejects layouts the solver cannot run.
func (l *Layout) Validate() error {
	if len(l.Points) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", particle.ErrInvalidLayout, len(l.Points))
	}
	for i := range l.Points {
		p := &l.Points[i]
		if !geom.IsFinite(r2.Vec{X: p.X, Y: p.Y}) {
			return fmt.Errorf("%w: point %d at (%g, %g) is not finite", particle.ErrInvalidLayout, i, p.X, p.Y)
		}
		if p.Mass == 0 {
			p.Mass = 1
		}
		if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
			return fmt.Errorf("%w: point %d has mass %g", particle.ErrInvalidLayout, i, p.Mass)
		}
	}
	n := len(l.Points)
	for i, lk := range l.Links {
		if lk.A < 0 || lk.A >= n || lk.B < 0 || lk.B >= n {
			return fmt.Errorf("%w: link %d (%d-%d) out of range [0,%d)", particle.ErrInvalidLayout, i, lk.A, lk.B, n)
		}
		if lk.A == lk.B {
			return fmt.Errorf("%w: link %d joins point %d to itself", particle.ErrInvalidLayout, i, lk.A)
		}
	}
	return nil
}
