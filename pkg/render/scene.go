package render

import (
	"math"
	"time"

	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/page"
)

// hardPerspective is how much of the page height the outer edge of a hard
// page shrinks by at a right angle, split between top and bottom.
const hardPerspective = 0.1

// Drawer paints a Scene. Implementations must not retain the scene.
type Drawer interface {
	Draw(s *Scene) error
}

// DrawerFunc adapts a function to Drawer.
type DrawerFunc func(s *Scene) error

func (f DrawerFunc) Draw(s *Scene) error { return f(s) }

// PageView is one page as it appears in a frame, in global coordinates.
type PageView struct {
	Index   int
	Name    string
	Density page.Density
	Side    page.Orientation

	// Origin is where the top-left corner of the page content is drawn.
	Origin geometry.Point
	// Angle rotates the content around Origin, in radians.
	Angle float64
	// HardAngle is the hinge angle of a hard page, in degrees.
	HardAngle float64

	// Outline is the visible polygon of the page.
	Outline []geometry.Point
}

// Shadow is the fold shadow of the current frame.
type Shadow struct {
	// Pos is where the shadow starts on the fold line.
	Pos       geometry.Point
	Angle     float64
	Width     float64
	Opacity   float64
	Progress  float64
	Direction flip.Direction
}

// Strip returns the band the shadow covers: length along the fold line in
// each direction from Pos, and Width towards the revealed page.
func (s Shadow) Strip(length float64) []geometry.Point {
	ux, uy := math.Cos(s.Angle), math.Sin(s.Angle)
	nx, ny := uy, -ux
	if s.Direction == flip.Back {
		nx, ny = -nx, -ny
	}
	a := geometry.Pt(s.Pos.X-ux*length, s.Pos.Y-uy*length)
	b := geometry.Pt(s.Pos.X+ux*length, s.Pos.Y+uy*length)
	return []geometry.Point{
		a,
		b,
		geometry.Pt(b.X+nx*s.Width, b.Y+ny*s.Width),
		geometry.Pt(a.X+nx*s.Width, a.Y+ny*s.Width),
	}
}

// Scene is everything a Drawer needs for one frame. Pages are drawn in the
// order Left, Right, Bottom, Flipping; nil pages are skipped.
type Scene struct {
	Time        time.Time
	Rect        geometry.PageRect
	Orientation flip.Orientation
	Direction   flip.Direction

	Left     *PageView
	Right    *PageView
	Bottom   *PageView
	Flipping *PageView

	// PageRect is the outline of the flipping page, or nil between flips.
	PageRect *geometry.RectPoints
	Shadow   *Shadow

	// Visible is the part of the book that may be painted. Portrait layouts
	// hide the left half.
	Visible geometry.Rect
}

// Pages returns the non-nil page views in drawing order.
func (s *Scene) Pages() []*PageView {
	var out []*PageView
	for _, v := range []*PageView{s.Left, s.Right, s.Bottom, s.Flipping} {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Scene builds the scene of the current state without advancing the
// animation.
func (r *Render) Scene(now time.Time) *Scene {
	rect := r.rect
	s := &Scene{
		Time:        now,
		Rect:        rect,
		Orientation: r.orientation,
		Direction:   r.direction,
		Visible:     rect.Rect(),
	}
	if r.orientation == flip.Portrait {
		s.Visible = geometry.RectFromLTWH(rect.Left+rect.PageWidth, rect.Top, rect.PageWidth, rect.Height)
	}

	if r.orientation == flip.Landscape && r.left != nil {
		s.Left = r.slotView(r.left, page.Left)
	}
	if r.right != nil {
		s.Right = r.slotView(r.right, page.Right)
	}
	if r.bottom != nil {
		s.Bottom = r.movingView(r.bottom, false)
	}
	if r.flipping != nil {
		s.Flipping = r.movingView(r.flipping, true)
	}
	if r.pageRect != nil {
		pr := r.ConvertRectToGlobal(*r.pageRect, r.direction)
		s.PageRect = &pr
	}
	if r.shadow != nil {
		sh := *r.shadow
		sh.Pos = r.ConvertToGlobal(sh.Pos, sh.Direction)
		s.Shadow = &sh
	}
	return s
}

// slotView draws p flat on one side of the spine.
func (r *Render) slotView(p *page.Page, side page.Orientation) *PageView {
	rect := r.rect
	x := rect.Left
	if side == page.Right {
		x += rect.PageWidth
	}
	origin := geometry.Pt(x, rect.Top)
	v := &PageView{
		Index:   p.Index(),
		Name:    p.Name(),
		Density: p.Density(),
		Side:    side,
		Origin:  origin,
		Outline: geometry.RectFromLTWH(x, rect.Top, rect.PageWidth, rect.Height).Corners(),
	}
	return v
}

// movingView draws a page taking part in the flip from its drawing state.
func (r *Render) movingView(p *page.Page, flipping bool) *PageView {
	st := p.State()
	v := &PageView{
		Index:     p.Index(),
		Name:      p.Name(),
		Density:   p.DrawingDensity(),
		Side:      p.Orientation(),
		Origin:    r.ConvertToGlobal(st.Position, r.direction),
		Angle:     st.Angle,
		HardAngle: st.HardDrawingAngle,
	}
	if v.Density == page.Hard {
		v.Outline = r.hingeOutline(v.Side, st.HardDrawingAngle, flipping)
		return v
	}
	v.Outline = make([]geometry.Point, len(st.Area))
	for i, pt := range st.Area {
		v.Outline[i] = r.ConvertToGlobal(pt, r.direction)
	}
	return v
}

// hingeOutline returns the quad of a hard page rotated angle degrees about
// the spine. The flipping page swings away from the side it starts on; other
// pages open towards their own side.
func (r *Render) hingeOutline(side page.Orientation, angle float64, flipping bool) []geometry.Point {
	rect := r.rect
	spine := rect.Left + rect.PageWidth
	rad := angle * math.Pi / 180
	reach := rect.PageWidth * math.Cos(rad)

	var outer float64
	switch {
	case flipping && r.direction == flip.Forward:
		outer = spine - reach
	case flipping:
		outer = spine + reach
	case side == page.Left:
		outer = spine - reach
	default:
		outer = spine + reach
	}
	inset := rect.Height * hardPerspective / 2 * math.Abs(math.Sin(rad))
	return []geometry.Point{
		geometry.Pt(spine, rect.Top),
		geometry.Pt(outer, rect.Top+inset),
		geometry.Pt(outer, rect.Top+rect.Height-inset),
		geometry.Pt(spine, rect.Top+rect.Height),
	}
}
