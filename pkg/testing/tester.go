package testing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	"github.com/go-drift/pageflip/pkg/config"
	"github.com/go-drift/pageflip/pkg/gestures"
	"github.com/go-drift/pageflip/pkg/page"
	"github.com/go-drift/pageflip/pkg/pageflip"
	"github.com/go-drift/pageflip/pkg/render"
)

const (
	// DefaultTestWidth is the default width of the block the book is laid
	// out in.
	DefaultTestWidth = 800
	// DefaultTestHeight is the default height of that block.
	DefaultTestHeight = 600
	// FrameDuration is how far PumpAndSettle advances the clock per frame.
	FrameDuration = 16 * time.Millisecond
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: book did not settle")

// BookTester runs a PageFlip app without a display. It uses a fake clock,
// records every application event and keeps the scene of the last frame.
type BookTester struct {
	app       *pageflip.PageFlip
	clock     *FakeClock
	prevClock animation.Clock

	scene  *render.Scene
	frames int
	events []pageflip.Event

	kind     gestures.PointerKind
	pointers map[int64]*pointerState
}

// NewBookTester lays out pages in a DefaultTestWidth by DefaultTestHeight
// block and loads them. The fake clock is installed before loading so every
// animation runs on fake time. Call Cleanup when done, or use
// NewBookTesterWithT instead.
func NewBookTester(settings config.Settings, pages []*page.Page) (*BookTester, error) {
	clk := NewFakeClock()
	t := &BookTester{
		clock:    clk,
		pointers: make(map[int64]*pointerState),
	}
	t.prevClock = animation.SetClock(clk)

	app, err := pageflip.New(settings, DefaultTestWidth, DefaultTestHeight, render.DrawerFunc(t.capture))
	if err != nil {
		t.Cleanup()
		return nil, err
	}
	t.app = app
	for _, name := range []pageflip.EventName{
		pageflip.EventFlip,
		pageflip.EventChangeState,
		pageflip.EventChangeOrientation,
		pageflip.EventInit,
		pageflip.EventUpdate,
	} {
		app.On(name, func(e pageflip.Event) { t.events = append(t.events, e) })
	}
	if err := app.Load(pages); err != nil {
		t.Cleanup()
		return nil, err
	}
	return t, nil
}

// NewBookTesterWithT creates a tester that fails tb on setup errors and
// cleans up via tb.Cleanup(). This is the recommended constructor for tests.
func NewBookTesterWithT(tb testing.TB, settings config.Settings, pages []*page.Page) *BookTester {
	tb.Helper()
	tester, err := NewBookTester(settings, pages)
	if err != nil {
		tb.Fatalf("NewBookTester: %v", err)
	}
	tb.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the animation clock. Must be called if not using
// NewBookTesterWithT.
func (t *BookTester) Cleanup() {
	if t.app != nil {
		t.app.Stop()
	}
	animation.SetClock(t.prevClock)
}

func (t *BookTester) capture(s *render.Scene) error {
	t.scene = s
	t.frames++
	return nil
}

// App returns the application under test.
func (t *BookTester) App() *pageflip.PageFlip { return t.app }

// Clock returns the fake clock for advancing time in tests.
func (t *BookTester) Clock() *FakeClock { return t.clock }

// Scene returns the scene of the last frame, or nil before the first Pump.
func (t *BookTester) Scene() *render.Scene { return t.scene }

// Frames returns the number of frames drawn.
func (t *BookTester) Frames() int { return t.frames }

// Events returns the recorded application events in order.
func (t *BookTester) Events() []pageflip.Event { return t.events }

// EventNames returns the recorded events as "name:data" strings, which
// makes them easy to compare in tests.
func (t *BookTester) EventNames() []string {
	out := make([]string, len(t.events))
	for i, e := range t.events {
		out[i] = fmt.Sprintf("%s:%v", e.Name, e.Data)
	}
	return out
}

// ClearEvents forgets the recorded events.
func (t *BookTester) ClearEvents() { t.events = nil }

// Resize lays the book out in a new block.
func (t *BookTester) Resize(width, height float64) {
	t.app.Resize(width, height)
}

// Pump runs a single frame at the current fake time: input timers, the due
// animation frame and drawing.
func (t *BookTester) Pump() error {
	return t.app.Frame(t.clock.Now())
}

// PumpFor pumps frames for d, advancing the clock by FrameDuration before
// each one.
func (t *BookTester) PumpFor(d time.Duration) error {
	for elapsed := time.Duration(0); elapsed < d; elapsed += FrameDuration {
		t.clock.Advance(FrameDuration)
		if err := t.Pump(); err != nil {
			return err
		}
	}
	return nil
}

// PumpAndSettle runs frames until no animation plays and no pointer is
// down, or the timeout is reached. Each frame advances the fake clock by
// FrameDuration. Returns ErrSettleTimeout if the book does not settle
// within timeout.
func (t *BookTester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.app.Busy() {
			return nil
		}
		t.clock.Advance(FrameDuration)
		elapsed += FrameDuration
	}
	return ErrSettleTimeout
}
