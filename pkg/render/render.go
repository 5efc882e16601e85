// Package render lays out the open book and keeps the drawing state of every
// frame. It does not paint anything itself: each Frame builds a Scene in
// window coordinates and hands it to a Drawer, so the same flip can be
// rasterised, exported or inspected in tests.
package render

import (
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/page"
)

// Render is a headless flip.Renderer.
//
// Render is not safe for concurrent use; it is driven from one render loop.
type Render struct {
	opts   Options
	drawer Drawer

	blockWidth  float64
	blockHeight float64
	rect        geometry.PageRect
	orientation flip.Orientation
	direction   flip.Direction

	left     *page.Page
	right    *page.Page
	bottom   *page.Page
	flipping *page.Page
	pageRect *geometry.RectPoints
	shadow   *Shadow

	player        animation.Player
	onOrientation func(flip.Orientation)
}

var _ flip.Renderer = (*Render)(nil)

// New returns a Render for a block of blockWidth by blockHeight. d may be
// nil, in which case Frame only advances the animation.
func New(opts Options, blockWidth, blockHeight float64, d Drawer) (*Render, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &Render{opts: opts, drawer: d}
	r.player.Curve = opts.Curve
	r.blockWidth, r.blockHeight = blockWidth, blockHeight
	r.orientation = r.calculateBoundsRect()
	return r, nil
}

func (r *Render) Options() Options { return r.opts }

// SetDrawer replaces the drawer used by Frame.
func (r *Render) SetDrawer(d Drawer) { r.drawer = d }

// OnOrientation registers fn to be called when Resize switches between
// landscape and portrait.
func (r *Render) OnOrientation(fn func(flip.Orientation)) { r.onOrientation = fn }

// BlockSize returns the size of the area the book is laid out in.
func (r *Render) BlockSize() (width, height float64) {
	return r.blockWidth, r.blockHeight
}

// Resize lays the book out in a new block and returns the resulting
// orientation.
func (r *Render) Resize(blockWidth, blockHeight float64) flip.Orientation {
	r.blockWidth, r.blockHeight = blockWidth, blockHeight
	return r.Update()
}

// Update recomputes the book bounds and reports an orientation change.
func (r *Render) Update() flip.Orientation {
	o := r.calculateBoundsRect()
	if o != r.orientation {
		r.orientation = o
		flip.Logger().Info("orientation changed", "orientation", o)
		if r.onOrientation != nil {
			r.onOrientation(o)
		}
	}
	return o
}

// calculateBoundsRect centres the book in the block and decides whether it
// fits as a spread.
func (r *Render) calculateBoundsRect() flip.Orientation {
	o := flip.Landscape
	mid := geometry.Pt(r.blockWidth/2, r.blockHeight/2)
	ratio := r.opts.Width / r.opts.Height

	pw, ph := r.opts.Width, r.opts.Height
	left := mid.X - pw

	if r.opts.Size == Stretch {
		if r.blockWidth < r.opts.MinWidth*2 && r.opts.UsePortrait {
			o = flip.Portrait
		}
		pw = r.blockWidth / 2
		if o == flip.Portrait {
			pw = r.blockWidth
		}
		if r.opts.MaxWidth > 0 && pw > r.opts.MaxWidth {
			pw = r.opts.MaxWidth
		}
		ph = pw / ratio
		if ph > r.blockHeight {
			ph = r.blockHeight
			pw = ph * ratio
		}
		left = mid.X - pw
		if o == flip.Portrait {
			left = mid.X - pw/2 - pw
		}
	} else if r.blockWidth < pw*2 && r.opts.UsePortrait {
		o = flip.Portrait
		left = mid.X - pw/2 - pw
	}

	r.rect = geometry.PageRect{
		Left:      left,
		Top:       mid.Y - ph/2,
		Width:     pw * 2,
		Height:    ph,
		PageWidth: pw,
	}
	return o
}

func (r *Render) Rect() geometry.PageRect { return r.rect }

func (r *Render) Orientation() flip.Orientation { return r.orientation }

func (r *Render) SetDirection(dir flip.Direction) { r.direction = dir }

func (r *Render) Direction() flip.Direction { return r.direction }

// ConvertToBook maps a window point into book coordinates.
func (r *Render) ConvertToBook(pos geometry.Point) geometry.Point {
	return geometry.Pt(pos.X-r.rect.Left, pos.Y-r.rect.Top)
}

// ConvertToPage maps a window point into the coordinates of the page turned
// in direction dir. Backward flips mirror the x axis about the spine.
func (r *Render) ConvertToPage(pos geometry.Point, dir flip.Direction) geometry.Point {
	x := pos.X - r.rect.Left - r.rect.Width/2
	if dir == flip.Back {
		x = r.rect.Width/2 - pos.X + r.rect.Left
	}
	return geometry.Pt(x, pos.Y-r.rect.Top)
}

// ConvertToGlobal is the inverse of ConvertToPage.
func (r *Render) ConvertToGlobal(pos geometry.Point, dir flip.Direction) geometry.Point {
	x := pos.X + r.rect.Left + r.rect.Width/2
	if dir == flip.Back {
		x = r.rect.Width/2 - pos.X + r.rect.Left
	}
	return geometry.Pt(x, pos.Y+r.rect.Top)
}

// ConvertRectToGlobal maps every corner of rp with ConvertToGlobal.
func (r *Render) ConvertRectToGlobal(rp geometry.RectPoints, dir flip.Direction) geometry.RectPoints {
	return rp.Map(func(p geometry.Point) geometry.Point { return r.ConvertToGlobal(p, dir) })
}

func (r *Render) SetLeftPage(p *page.Page) {
	if p != nil {
		p.SetOrientation(page.Left)
	}
	r.left = p
}

func (r *Render) SetRightPage(p *page.Page) {
	if p != nil {
		p.SetOrientation(page.Right)
	}
	r.right = p
}

// SetBottomPage sets the page revealed under the fold. It sits on the side
// the flip moves away from.
func (r *Render) SetBottomPage(p *page.Page) {
	if p != nil {
		o := page.Right
		if r.direction == flip.Back {
			o = page.Left
		}
		p.SetOrientation(o)
	}
	r.bottom = p
}

// SetFlippingPage sets the page being turned. Its back side lands on the
// left in a forward landscape flip.
func (r *Render) SetFlippingPage(p *page.Page) {
	if p != nil {
		o := page.Right
		if r.direction == flip.Forward && r.orientation != flip.Portrait {
			o = page.Left
		}
		p.SetOrientation(o)
	}
	r.flipping = p
}

func (r *Render) LeftPage() *page.Page     { return r.left }
func (r *Render) RightPage() *page.Page    { return r.right }
func (r *Render) BottomPage() *page.Page   { return r.bottom }
func (r *Render) FlippingPage() *page.Page { return r.flipping }

// SetPageRect sets the outline of the flipping page, in page coordinates.
func (r *Render) SetPageRect(rp geometry.RectPoints) { r.pageRect = &rp }

// PageRect returns the outline of the flipping page, or nil between flips.
func (r *Render) PageRect() *geometry.RectPoints { return r.pageRect }

// SetShadowData sets the fold shadow for the frame. It does nothing when
// shadows are disabled. pos is in page coordinates and progress in [0, 100].
func (r *Render) SetShadowData(pos geometry.Point, angle, progress float64, dir flip.Direction) {
	if !r.opts.DrawShadow {
		return
	}
	r.shadow = &Shadow{
		Pos:       pos,
		Angle:     angle,
		Width:     r.rect.PageWidth * 3 / 4 * progress / 100,
		Opacity:   (100 - progress) * r.opts.MaxShadowOpacity / 100,
		Progress:  progress * 2,
		Direction: dir,
	}
}

// ClearShadow removes the shadow and the flipping page outline.
func (r *Render) ClearShadow() {
	r.shadow = nil
	r.pageRect = nil
}

// Shadow returns the shadow of the current frame, in page coordinates.
func (r *Render) Shadow() (Shadow, bool) {
	if r.shadow == nil {
		return Shadow{}, false
	}
	return *r.shadow, true
}

// StartAnimation plays frames over d from the current animation clock time.
func (r *Render) StartAnimation(frames []func(), d time.Duration, onEnd func()) {
	r.player.Start(frames, d, onEnd, animation.Now())
}

func (r *Render) FinishAnimation() { r.player.Finish() }

// Animating reports whether an animation is playing.
func (r *Render) Animating() bool { return r.player.Active() }

// Frame runs the animation frame due at now and draws the result. A drawer
// failure is reported and returned; the animation keeps its position.
func (r *Render) Frame(now time.Time) (err error) {
	defer flerrors.RecoverWithCallback("render.Render.Frame", func(v any) {
		err = &flerrors.PanicError{Op: "render.Render.Frame", Value: v}
	})

	r.player.Tick(now)
	if r.drawer == nil {
		return nil
	}
	if derr := r.drawer.Draw(r.Scene(now)); derr != nil {
		fe := flerrors.New("render.Render.Frame", flerrors.KindRender, derr)
		flerrors.Report(fe)
		return fe
	}
	return nil
}
