// Package page models a single book page as seen by the flip engine: its
// density and the drawing state the controller writes every frame.
package page

import (
	"fmt"
	"strings"

	"github.com/go-drift/pageflip/pkg/geometry"
)

// Density controls how a page turns.
type Density int

const (
	// Soft pages fold along a clipped curve.
	Soft Density = iota
	// Hard pages hinge rigidly, like a cover.
	Hard
)

// String returns the lower-case density name.
func (d Density) String() string {
	switch d {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Density(%d)", int(d))
	}
}

// ParseDensity converts "soft" or "hard" (case-insensitive) to a Density.
// An empty string is Soft.
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "soft":
		return Soft, nil
	case "hard":
		return Hard, nil
	default:
		return Soft, fmt.Errorf("invalid page density %q", s)
	}
}

// Orientation is the side of the spread a page is drawn on.
type Orientation int

const (
	Left Orientation = iota
	Right
)

func (o Orientation) String() string {
	if o == Left {
		return "left"
	}
	return "right"
}

// State is the per-frame drawing state of a page.
type State struct {
	// Angle is the rotation of a soft page, in radians.
	Angle float64
	// Area is the clip polygon in page-relative coordinates.
	Area []geometry.Point
	// Position is the page origin in page-relative coordinates.
	Position geometry.Point
	// HardAngle is the hinge angle of a hard page, in degrees.
	HardAngle float64
	// HardDrawingAngle is the hinge angle actually drawn.
	HardDrawingAngle float64
}

// Page is one page of the book.
type Page struct {
	index          int
	name           string
	state          State
	orientation    Orientation
	density        Density
	drawingDensity Density
	temp           *Page
}

// New creates a page with the given index in the book and density.
func New(index int, density Density) *Page {
	return &Page{
		index:          index,
		density:        density,
		drawingDensity: density,
	}
}

// Index returns the position of the page in the book.
func (p *Page) Index() int { return p.index }

// Name returns an optional label used by diagnostics and drawers.
func (p *Page) Name() string { return p.name }

// SetName sets the page label.
func (p *Page) SetName(name string) { p.name = name }

// Density returns the density the page was created with.
func (p *Page) Density() Density { return p.density }

// SetDensity changes the page density, resetting the drawing density too.
func (p *Page) SetDensity(d Density) {
	p.density = d
	p.drawingDensity = d
}

// DrawingDensity returns the density used for the current flip. It can differ
// from Density while a landscape flip pairs a soft page with a hard one.
func (p *Page) DrawingDensity() Density { return p.drawingDensity }

// SetDrawingDensity overrides the density for the current flip.
func (p *Page) SetDrawingDensity(d Density) { p.drawingDensity = d }

// RestoreDrawingDensity resets the drawing density to the created density.
func (p *Page) RestoreDrawingDensity() { p.drawingDensity = p.density }

func (p *Page) SetPosition(pos geometry.Point) { p.state.Position = pos }

func (p *Page) SetAngle(angle float64) { p.state.Angle = angle }

// SetArea sets the clip polygon. The slice is retained.
func (p *Page) SetArea(area []geometry.Point) { p.state.Area = area }

// SetHardAngle sets both the hinge angle and the drawn hinge angle.
func (p *Page) SetHardAngle(angle float64) {
	p.state.HardAngle = angle
	p.state.HardDrawingAngle = angle
}

func (p *Page) SetHardDrawingAngle(angle float64) { p.state.HardDrawingAngle = angle }

func (p *Page) HardAngle() float64 { return p.state.HardAngle }

func (p *Page) SetOrientation(o Orientation) { p.orientation = o }

func (p *Page) Orientation() Orientation { return p.orientation }

// State returns a copy of the drawing state.
func (p *Page) State() State {
	s := p.state
	s.Area = append([]geometry.Point(nil), p.state.Area...)
	return s
}

// NewTemporaryCopy returns a fresh copy of the page used as the flipping
// page of a portrait forward flip, where the source page stays visible
// underneath. The copy replaces any previous one.
func (p *Page) NewTemporaryCopy() *Page {
	p.temp = &Page{
		index:          p.index,
		name:           p.name,
		density:        p.density,
		drawingDensity: p.drawingDensity,
		orientation:    p.orientation,
	}
	return p.temp
}

// TemporaryCopy returns the current temporary copy, or nil.
func (p *Page) TemporaryCopy() *Page { return p.temp }

// HideTemporaryCopy drops the temporary copy.
func (p *Page) HideTemporaryCopy() { p.temp = nil }

func (p *Page) String() string {
	if p == nil {
		return "<nil page>"
	}
	if p.name != "" {
		return fmt.Sprintf("page %d (%s, %s)", p.index, p.name, p.density)
	}
	return fmt.Sprintf("page %d (%s)", p.index, p.density)
}
