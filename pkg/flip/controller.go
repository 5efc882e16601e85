package flip

import (
	"fmt"
	"math"
	"time"

	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/page"
)

// Renderer receives the geometry of every frame and plays animations.
type Renderer interface {
	// Rect returns the bounds of the open book.
	Rect() geometry.PageRect
	Orientation() Orientation

	// ConvertToBook maps a global point into book coordinates.
	ConvertToBook(global geometry.Point) geometry.Point
	// ConvertToPage maps a global point into the coordinates of the page
	// turned in direction dir.
	ConvertToPage(global geometry.Point, dir Direction) geometry.Point

	SetDirection(dir Direction)
	SetPageRect(r geometry.RectPoints)
	SetBottomPage(p *page.Page)
	SetFlippingPage(p *page.Page)
	SetShadowData(pos geometry.Point, angle, progress float64, dir Direction)
	ClearShadow()

	// StartAnimation plays frames over d, then calls onEnd. A running
	// animation is finished first.
	StartAnimation(frames []func(), d time.Duration, onEnd func())
	// FinishAnimation jumps the running animation to its last frame and
	// calls its onEnd. It does nothing when no animation runs.
	FinishAnimation()
}

// PageCollection resolves the pages taking part in a flip.
type PageCollection interface {
	FlippingPage(dir Direction) (*page.Page, error)
	BottomPage(dir Direction) (*page.Page, error)
	// NextBy and PrevBy return the neighbour of p, or nil.
	NextBy(p *page.Page) *page.Page
	PrevBy(p *page.Page) *page.Page

	CurrentSpreadIndex() int
	SpreadIndexByPage(pageIndex int) (spread int, ok bool)
	// SetCurrentSpreadIndex moves to a spread without drawing it.
	SetCurrentSpreadIndex(spread int) error
}

// Host is the application the controller turns pages for.
type Host interface {
	CurrentPageIndex() int
	PageCount() int
	TurnToNextPage()
	TurnToPrevPage()
	// UpdateState is called on every state change.
	UpdateState(s State)
}

// Options tune the controller. Zero fields take the defaults below.
type Options struct {
	// FlippingTime is the duration of a full turn. Default 1s.
	FlippingTime time.Duration
	// DisableFlipByClick makes Flip ignore points outside the corner hot
	// zones.
	DisableFlipByClick bool
	// HotZoneDivisor sizes the corner hot zones as the page diagonal
	// divided by this value. Default 5.
	HotZoneDivisor float64
	// CornerFoldSize is how far, in pixels, a hovered corner folds in.
	// Default 50.
	CornerFoldSize float64
	// StartMarginDivisor places the start of a full turn at the book height
	// divided by this value from the edge. Default 10.
	StartMarginDivisor float64
	// MinFlatAngle and ClipMinSeparation are passed to every fold.
	MinFlatAngle      float64
	ClipMinSeparation float64
}

// Defaults.
const (
	DefaultFlippingTime       = time.Second
	DefaultHotZoneDivisor     = 5.0
	DefaultCornerFoldSize     = 50.0
	DefaultStartMarginDivisor = 10.0

	// fullPathPoints is the path length at which an animation takes the
	// whole FlippingTime. Shorter paths play proportionally faster.
	fullPathPoints = 1000
	// clickInset keeps FlipNext and FlipPrev points inside the book.
	clickInset = 10.0
)

func (o Options) withDefaults() Options {
	if o.FlippingTime <= 0 {
		o.FlippingTime = DefaultFlippingTime
	}
	if o.HotZoneDivisor <= 0 {
		o.HotZoneDivisor = DefaultHotZoneDivisor
	}
	if o.CornerFoldSize <= 0 {
		o.CornerFoldSize = DefaultCornerFoldSize
	}
	if o.StartMarginDivisor <= 0 {
		o.StartMarginDivisor = DefaultStartMarginDivisor
	}
	return o
}

// session is one gesture: a fold calculation and the pages it moves.
type session struct {
	calc     *Calculation
	flipping *page.Page
	bottom   *page.Page
	// neighbour had its drawing density forced to hard for this gesture.
	neighbour *page.Page
}

// Controller runs the page flip state machine. It is not safe for
// concurrent use; every call must come from the render loop.
type Controller struct {
	render Renderer
	pages  PageCollection
	host   Host
	opts   Options

	fsm       *Machine
	session   *session
	animating bool
}

// NewController returns a controller in the Read state.
func NewController(render Renderer, pages PageCollection, host Host, opts Options) *Controller {
	c := &Controller{
		render: render,
		pages:  pages,
		host:   host,
		opts:   opts.withDefaults(),
	}
	c.fsm = NewMachine(func(s State) {
		Logger().Debug("state changed", "state", s)
		host.UpdateState(s)
	})
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.fsm.State() }

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// Calculation returns the calculation of the active gesture, or nil.
func (c *Controller) Calculation() *Calculation {
	if c.session == nil {
		return nil
	}
	return c.session.calc
}

// Start prepares a gesture at global: it picks the direction and corner,
// fetches the pages and creates the calculation. It returns false when the
// book cannot turn that way; nothing is reassigned in that case.
func (c *Controller) Start(global geometry.Point) bool {
	prev := c.session
	c.drop()

	s, ok := c.newSession(global)
	if !ok {
		if prev != nil {
			c.settle()
		}
		return false
	}
	c.session = s
	c.render.SetDirection(s.calc.Direction())
	return true
}

func (c *Controller) newSession(global geometry.Point) (*session, bool) {
	const op = "flip.Controller.Start"

	bookPos := c.render.ConvertToBook(global)
	rect := c.render.Rect()

	dir := c.directionAt(bookPos, rect)
	corner := Top
	if bookPos.Y >= rect.Height/2 {
		corner = Bottom
	}

	if !c.canTurn(dir) {
		Logger().Debug("flip rejected at book boundary", "direction", dir,
			"page", c.host.CurrentPageIndex(), "count", c.host.PageCount())
		return nil, false
	}

	calc, err := NewCalculation(Params{
		Direction:         dir,
		Corner:            corner,
		PageWidth:         rect.PageWidth,
		PageHeight:        rect.Height,
		MinFlatAngle:      c.opts.MinFlatAngle,
		ClipMinSeparation: c.opts.ClipMinSeparation,
	})
	if err != nil {
		flerrors.Report(flerrors.New(op, flerrors.KindGeometry, err))
		return nil, false
	}

	flipping, err := c.pages.FlippingPage(dir)
	if err == nil && flipping == nil {
		err = fmt.Errorf("no flipping page for %s flip", dir)
	}
	if err != nil {
		flerrors.Report(flerrors.New(op, flerrors.KindStructural, err))
		return nil, false
	}
	bottom, err := c.pages.BottomPage(dir)
	if err == nil && bottom == nil {
		err = fmt.Errorf("no bottom page for %s flip", dir)
	}
	if err != nil {
		flerrors.Report(flerrors.New(op, flerrors.KindStructural, err))
		return nil, false
	}

	s := &session{calc: calc, flipping: flipping, bottom: bottom}
	if c.render.Orientation() == Landscape {
		c.matchDensity(s)
	}
	return s, true
}

// matchDensity draws the flipping page and the page on its other side as
// hard when their densities differ, so a soft page is never glued to a
// hard one.
func (c *Controller) matchDensity(s *session) {
	var other *page.Page
	if s.calc.Direction() == Back {
		other = c.pages.NextBy(s.flipping)
	} else {
		other = c.pages.PrevBy(s.flipping)
	}
	if other == nil || other.Density() == s.flipping.Density() {
		return
	}
	s.flipping.SetDrawingDensity(page.Hard)
	other.SetDrawingDensity(page.Hard)
	s.neighbour = other
}

// Fold moves the page under a dragging pointer.
func (c *Controller) Fold(global geometry.Point) {
	if !c.fsm.Can(EventFold) {
		return
	}
	if c.animating {
		c.render.FinishAnimation()
	}
	if c.session == nil && !c.Start(global) {
		return
	}
	c.fsm.Fire(EventFold)

	s := c.session
	c.apply(s, c.render.ConvertToPage(global, s.calc.Direction()))
}

// Flip turns the page at global with a full animation.
func (c *Controller) Flip(global geometry.Point) {
	if c.opts.DisableFlipByClick && !c.isPointOnCorners(global) {
		return
	}
	if c.session != nil {
		c.render.FinishAnimation()
	}
	if !c.Start(global) {
		return
	}
	c.fsm.Fire(EventFlip)

	s := c.session
	rect := c.render.Rect()
	margin := rect.Height / c.opts.StartMarginDivisor

	yStart, yDest := margin, 0.0
	if s.calc.Corner() == Bottom {
		yStart, yDest = rect.Height-margin, rect.Height
	}
	from := geometry.Pt(rect.PageWidth-margin, yStart)
	s.calc.Calc(from)
	c.animateTo(s, from, geometry.Pt(-rect.PageWidth, yDest), true, true)
}

// FlipNext turns to the next page from the given corner.
func (c *Controller) FlipNext(corner Corner) {
	rect := c.render.Rect()
	c.Flip(geometry.Pt(rect.Left+2*rect.PageWidth-clickInset, c.clickY(rect, corner)))
}

// FlipPrev turns to the previous page from the given corner.
func (c *Controller) FlipPrev(corner Corner) {
	rect := c.render.Rect()
	c.Flip(geometry.Pt(rect.Left+clickInset, c.clickY(rect, corner)))
}

func (c *Controller) clickY(rect geometry.PageRect, corner Corner) float64 {
	if corner == Bottom {
		return rect.Top + rect.Height - 2
	}
	return rect.Top + 1
}

// FlipToPage turns to the spread holding pageIndex with a single animated
// turn. Pages in between are skipped.
func (c *Controller) FlipToPage(pageIndex int, corner Corner) {
	const op = "flip.Controller.FlipToPage"

	current := c.pages.CurrentSpreadIndex()
	next, ok := c.pages.SpreadIndexByPage(pageIndex)
	if !ok {
		flerrors.Report(&flerrors.FlipError{
			Op:   op,
			Kind: flerrors.KindStructural,
			Page: pageIndex,
			Err:  fmt.Errorf("page not in any spread"),
		})
		return
	}

	switch {
	case next > current:
		if err := c.pages.SetCurrentSpreadIndex(next - 1); err != nil {
			flerrors.Report(&flerrors.FlipError{Op: op, Kind: flerrors.KindStructural, Page: pageIndex, Err: err})
			return
		}
		c.FlipNext(corner)
	case next < current:
		if err := c.pages.SetCurrentSpreadIndex(next + 1); err != nil {
			flerrors.Report(&flerrors.FlipError{Op: op, Kind: flerrors.KindStructural, Page: pageIndex, Err: err})
			return
		}
		c.FlipPrev(corner)
	}
}

// StopMove ends a drag. The page completes the turn when the pointer is
// past the spine and falls back otherwise.
func (c *Controller) StopMove() {
	s := c.session
	if s == nil {
		return
	}
	f, ok := s.calc.Fold()
	if !ok {
		c.settle()
		return
	}

	rect := c.render.Rect()
	pos := f.Position()
	y := 0.0
	if s.calc.Corner() == Bottom {
		y = rect.Height
	}

	if pos.X <= 0 {
		c.animateTo(s, pos, geometry.Pt(-rect.PageWidth, y), true, true)
	} else {
		c.animateTo(s, pos, geometry.Pt(rect.PageWidth, y), false, true)
	}
}

// ShowCorner previews a fold while a hovering pointer is over one of the
// corner hot zones, and lets the page fall back once it leaves.
func (c *Controller) ShowCorner(global geometry.Point) {
	state := c.fsm.State()
	if state != Read && state != FoldCorner {
		return
	}
	onCorner := c.isPointOnCorners(global)

	switch {
	case state == FoldCorner && onCorner:
		if s := c.session; s != nil {
			c.apply(s, c.render.ConvertToPage(global, s.calc.Direction()))
		}

	case state == FoldCorner:
		c.fsm.Fire(EventCornerLeave)
		c.render.FinishAnimation()
		c.StopMove()

	case onCorner && c.session == nil:
		if !c.Start(global) {
			return
		}
		c.fsm.Fire(EventCornerEnter)

		s := c.session
		rect := c.render.Rect()
		pw, fold := rect.PageWidth, c.opts.CornerFoldSize

		yStart, yDest := 1.0, fold
		if s.calc.Corner() == Bottom {
			yStart, yDest = rect.Height-1, rect.Height-fold
		}
		from := geometry.Pt(pw-1, yStart)
		s.calc.Calc(from)
		c.animateTo(s, from, geometry.Pt(pw-fold, yDest), false, false)
	}
}

// apply computes the fold at pos and pushes it to the pages and renderer.
// Stale samples from a finished gesture are dropped.
func (c *Controller) apply(s *session, pos geometry.Point) {
	if c.session != s || !s.calc.Calc(pos) {
		return
	}
	f, _ := s.calc.Fold()
	progress := f.Progress()

	s.bottom.SetArea(f.BottomClipArea())
	s.bottom.SetPosition(f.BottomPagePosition())
	s.bottom.SetAngle(0)
	s.bottom.SetHardAngle(0)

	s.flipping.SetArea(f.FlippingClipArea())
	s.flipping.SetPosition(f.ActiveCorner())
	s.flipping.SetAngle(f.Angle())
	s.flipping.SetHardAngle(f.HardAngle())

	c.render.SetPageRect(f.Rect())
	c.render.SetBottomPage(s.bottom)
	c.render.SetFlippingPage(s.flipping)

	start := f.ShadowStart()
	angle, ok := f.ShadowAngle()
	if start != nil && ok {
		c.render.SetShadowData(*start, angle, progress, f.Direction())
	}
}

// animateTo plays the straight path from start to dest. When the animation
// ends the page index advances if turned is set, and the gesture is closed
// if reset is set.
func (c *Controller) animateTo(s *session, start, dest geometry.Point, turned, reset bool) {
	points := geometry.DiscretizedPath(start, dest)
	frames := make([]func(), len(points))
	for i, p := range points {
		frames[i] = func() { c.apply(s, p) }
	}

	c.render.StartAnimation(frames, c.animationDuration(len(points)), func() {
		c.animating = false
		if c.session != s {
			return
		}
		if turned {
			if s.calc.Direction() == Back {
				c.host.TurnToPrevPage()
			} else {
				c.host.TurnToNextPage()
			}
		}
		if reset {
			c.settle()
		}
	})
	c.animating = true
}

func (c *Controller) animationDuration(points int) time.Duration {
	if points >= fullPathPoints {
		return c.opts.FlippingTime
	}
	return time.Duration(float64(c.opts.FlippingTime) * float64(points) / fullPathPoints)
}

// settle closes the gesture and returns to Read.
func (c *Controller) settle() {
	c.render.SetBottomPage(nil)
	c.render.SetFlippingPage(nil)
	c.render.ClearShadow()
	c.drop()
	c.fsm.Fire(EventSettle)
}

// drop forgets the active session and undoes its density overrides.
func (c *Controller) drop() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	if s.neighbour != nil {
		s.flipping.RestoreDrawingDensity()
		s.neighbour.RestoreDrawingDensity()
	}
}

func (c *Controller) directionAt(bookPos geometry.Point, rect geometry.PageRect) Direction {
	if c.render.Orientation() == Portrait {
		if bookPos.X-rect.PageWidth <= rect.Width/5 {
			return Back
		}
	} else if bookPos.X < rect.Width/2 {
		return Back
	}
	return Forward
}

func (c *Controller) canTurn(dir Direction) bool {
	if dir == Forward {
		return c.host.CurrentPageIndex() < c.host.PageCount()-1
	}
	return c.host.CurrentPageIndex() >= 1
}

// isPointOnCorners reports whether global lies in one of the four square
// hot zones at the corners of the book.
func (c *Controller) isPointOnCorners(global geometry.Point) bool {
	rect := c.render.Rect()
	zone := math.Hypot(rect.PageWidth, rect.Height) / c.opts.HotZoneDivisor
	p := c.render.ConvertToBook(global)

	inside := p.X > 0 && p.Y > 0 && p.X < rect.Width && p.Y < rect.Height
	nearX := p.X < zone || p.X > rect.Width-zone
	nearY := p.Y < zone || p.Y > rect.Height-zone
	return inside && nearX && nearY
}
