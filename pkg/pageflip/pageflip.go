// Package pageflip assembles a complete book: settings, layout, page
// collection, flip controller and input handling.
//
// A PageFlip is driven from a single goroutine. Input arrives through
// HandlePointer (or the StartUserTouch, UserMove and UserStop entry points)
// and time advances through Frame, either called directly or from an
// animation.Ticker registered with Start.
//
//	app, err := pageflip.New(settings, 800, 600, drawer)
//	if err != nil {
//		return err
//	}
//	app.On(pageflip.EventFlip, func(e pageflip.Event) {
//		fmt.Println("page", e.Data)
//	})
//	if err := app.Load(book.PagesFromNames(names)); err != nil {
//		return err
//	}
package pageflip

import (
	"fmt"
	"io"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	"github.com/go-drift/pageflip/pkg/book"
	"github.com/go-drift/pageflip/pkg/config"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/gestures"
	"github.com/go-drift/pageflip/pkg/page"
	"github.com/go-drift/pageflip/pkg/render"
)

// DefaultMoveThreshold is how far a pressed pointer travels before the
// press becomes a drag.
const DefaultMoveThreshold = 5.0

// PageFlip is a book application. It implements flip.Host and
// gestures.Target.
type PageFlip struct {
	settings config.Settings

	render *render.Render
	pages  *book.Collection
	ctrl   *flip.Controller
	input  *gestures.Recognizer

	events map[EventName][]Handler

	touchPos  geometry.Point
	userTouch bool
	userMove  bool

	ticker *animation.Ticker
}

var (
	_ flip.Host       = (*PageFlip)(nil)
	_ gestures.Target = (*PageFlip)(nil)
)

// New lays out a book for a block of blockWidth by blockHeight. Pages are
// added with Load. d receives every frame and may be nil.
func New(settings config.Settings, blockWidth, blockHeight float64, d render.Drawer) (*PageFlip, error) {
	if err := settings.Normalize(); err != nil {
		return nil, err
	}
	opts, err := settings.RenderOptions()
	if err != nil {
		return nil, err
	}
	r, err := render.New(opts, blockWidth, blockHeight, d)
	if err != nil {
		return nil, err
	}

	a := &PageFlip{settings: settings, render: r}
	a.input = gestures.NewRecognizer(a, settings.GestureOptions())
	r.OnOrientation(a.UpdateOrientation)
	return a, nil
}

// Load replaces the pages, opens settings.StartPage and fires EventInit.
func (a *PageFlip) Load(pages []*page.Page) error {
	if err := a.setPages(pages, a.settings.StartPage); err != nil {
		return err
	}
	flip.Logger().Info("book loaded", "pages", len(pages), "page", a.CurrentPageIndex(), "mode", a.render.Orientation())
	a.trigger(EventInit, a.info())
	return nil
}

// LoadFromHTML reads pages from markup with book.PagesFromHTML and loads
// them.
func (a *PageFlip) LoadFromHTML(r io.Reader) error {
	pages, err := book.PagesFromHTML(r)
	if err != nil {
		return err
	}
	return a.Load(pages)
}

// UpdatePages replaces the pages while keeping the current page open, then
// fires EventUpdate.
func (a *PageFlip) UpdatePages(pages []*page.Page) error {
	// A running turn lands on the old pages first.
	a.render.FinishAnimation()
	current := a.CurrentPageIndex()
	if current >= len(pages) {
		current = len(pages) - 1
	}
	if err := a.setPages(pages, current); err != nil {
		return err
	}
	a.trigger(EventUpdate, a.info())
	return nil
}

// UpdateFromHTML is UpdatePages for pages read from markup.
func (a *PageFlip) UpdateFromHTML(r io.Reader) error {
	pages, err := book.PagesFromHTML(r)
	if err != nil {
		return err
	}
	return a.UpdatePages(pages)
}

func (a *PageFlip) setPages(pages []*page.Page, show int) error {
	if len(pages) == 0 {
		return fmt.Errorf("load pages: %w", book.ErrNoPages)
	}

	a.render.FinishAnimation()
	a.render.ClearShadow()
	a.render.SetBottomPage(nil)
	a.render.SetFlippingPage(nil)
	a.userTouch, a.userMove = false, false

	a.pages = book.New(a.render, pages, a.settings.ShowCover)
	a.pages.OnPageIndex(a.UpdatePageIndex)
	a.ctrl = flip.NewController(a.render, a.pages, a, a.settings.FlipOptions())
	a.pages.Show(show)
	return nil
}

func (a *PageFlip) info() BookInfo {
	return BookInfo{Page: a.CurrentPageIndex(), Mode: a.render.Orientation()}
}

func (a *PageFlip) loaded() bool { return a.pages != nil }

// Settings returns the normalized settings.
func (a *PageFlip) Settings() config.Settings { return a.settings }

// Render returns the layout and frame renderer.
func (a *PageFlip) Render() *render.Render { return a.render }

// Pages returns the page collection, or nil before Load.
func (a *PageFlip) Pages() *book.Collection { return a.pages }

// Controller returns the flip controller, or nil before Load.
func (a *PageFlip) Controller() *flip.Controller { return a.ctrl }

// Orientation returns the current layout.
func (a *PageFlip) Orientation() flip.Orientation { return a.render.Orientation() }

// Rect returns the bounds of the open book.
func (a *PageFlip) Rect() geometry.PageRect { return a.render.Rect() }

// State returns the controller state. It is flip.Read before Load.
func (a *PageFlip) State() flip.State {
	if a.ctrl == nil {
		return flip.Read
	}
	return a.ctrl.State()
}

// CurrentPageIndex returns the first page of the open spread.
func (a *PageFlip) CurrentPageIndex() int {
	if !a.loaded() {
		return 0
	}
	return a.pages.CurrentPageIndex()
}

// PageCount returns the number of pages.
func (a *PageFlip) PageCount() int {
	if !a.loaded() {
		return 0
	}
	return a.pages.PageCount()
}

// TurnToNextPage opens the next spread without animation.
func (a *PageFlip) TurnToNextPage() {
	if a.loaded() {
		a.pages.ShowNext()
	}
}

// TurnToPrevPage opens the previous spread without animation.
func (a *PageFlip) TurnToPrevPage() {
	if a.loaded() {
		a.pages.ShowPrev()
	}
}

// TurnToPage opens the spread holding pageIndex without animation.
func (a *PageFlip) TurnToPage(pageIndex int) {
	if a.loaded() {
		a.pages.Show(pageIndex)
	}
}

// FlipNext turns to the next spread with an animation from corner.
func (a *PageFlip) FlipNext(corner flip.Corner) {
	if a.loaded() {
		a.ctrl.FlipNext(corner)
	}
}

// FlipPrev turns to the previous spread with an animation from corner.
func (a *PageFlip) FlipPrev(corner flip.Corner) {
	if a.loaded() {
		a.ctrl.FlipPrev(corner)
	}
}

// Flip turns to the spread holding pageIndex with a single animation.
func (a *PageFlip) Flip(pageIndex int, corner flip.Corner) {
	if a.loaded() {
		a.ctrl.FlipToPage(pageIndex, corner)
	}
}

// UpdateState fires EventChangeState.
func (a *PageFlip) UpdateState(s flip.State) {
	a.trigger(EventChangeState, s)
}

// UpdatePageIndex fires EventFlip.
func (a *PageFlip) UpdatePageIndex(pageIndex int) {
	a.trigger(EventFlip, pageIndex)
}

// UpdateOrientation regroups the pages for o and fires
// EventChangeOrientation.
func (a *PageFlip) UpdateOrientation(o flip.Orientation) {
	if a.loaded() {
		a.pages.Redraw()
	}
	a.trigger(EventChangeOrientation, o)
}

// Resize lays the book out in a new block. The open spread is shown again
// in the resulting layout.
func (a *PageFlip) Resize(blockWidth, blockHeight float64) {
	before := a.render.Orientation()
	if a.render.Resize(blockWidth, blockHeight) == before && a.loaded() {
		// Orientation changes redraw through UpdateOrientation.
		a.pages.Redraw()
	}
}

// Update recomputes the layout for the current block.
func (a *PageFlip) Update() {
	w, h := a.render.BlockSize()
	a.Resize(w, h)
}

// StartUserTouch records a press at pos.
func (a *PageFlip) StartUserTouch(pos geometry.Point) {
	a.touchPos = pos
	a.userTouch = true
	a.userMove = false
}

// UserMove handles pointer motion. Without a press a mouse previews the
// corner under it; with a press, motion beyond the move threshold folds
// the page.
func (a *PageFlip) UserMove(pos geometry.Point, touch bool) {
	if !a.loaded() {
		return
	}
	if !a.userTouch {
		if !touch && a.settings.ShowPageCorners {
			a.ctrl.ShowCorner(pos)
		}
		return
	}
	if geometry.Distance(&pos, &a.touchPos) > a.moveThreshold() {
		a.userMove = true
		a.ctrl.Fold(pos)
	}
}

// UserStop handles a release at pos. A release without motion turns the
// page; a release after a drag finishes or reverts it. A swipe has already
// turned the page and only ends the press.
func (a *PageFlip) UserStop(pos geometry.Point, swipe bool) {
	if !a.userTouch {
		return
	}
	a.userTouch = false
	if swipe || !a.loaded() {
		return
	}
	if a.userMove {
		a.ctrl.StopMove()
	} else {
		a.ctrl.Flip(pos)
	}
}

func (a *PageFlip) moveThreshold() float64 {
	if t := a.settings.Tuning.MoveThreshold; t > 0 {
		return t
	}
	return DefaultMoveThreshold
}

// HandlePointer feeds a pointer event through the gesture recognizer.
func (a *PageFlip) HandlePointer(ev gestures.PointerEvent) {
	if a.loaded() {
		a.input.HandlePointer(ev)
	}
}

// Frame advances input timers and the animation to now and draws the
// book.
func (a *PageFlip) Frame(now time.Time) error {
	a.input.Tick(now)
	return a.render.Frame(now)
}

// Start registers a ticker on s that calls Frame on every step. A nil s
// means animation.DefaultScheduler.
func (a *PageFlip) Start(s *animation.Scheduler) {
	if a.ticker != nil {
		return
	}
	if s == nil {
		s = animation.DefaultScheduler
	}
	// Frame errors are already reported to the error handler.
	a.ticker = s.NewTicker(func(time.Duration) { _ = a.Frame(animation.Now()) })
	a.ticker.Start()
}

// Stop removes the ticker registered by Start.
func (a *PageFlip) Stop() {
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
}

// Busy reports whether an animation is playing or a press is being
// tracked.
func (a *PageFlip) Busy() bool {
	return a.render.Animating() || a.input.Active()
}
