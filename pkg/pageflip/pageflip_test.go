package pageflip

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	"github.com/go-drift/pageflip/pkg/book"
	"github.com/go-drift/pageflip/pkg/config"
	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/gestures"
	"github.com/go-drift/pageflip/pkg/render"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

// testBook is an 800x600 block holding 300x400 pages: a landscape book at
// x 100..700, y 100..500 with the spine at x 400.
type testBook struct {
	app    *PageFlip
	clock  *stepClock
	events []string
}

func newTestBook(t *testing.T, pages int, edit func(*config.Settings)) *testBook {
	t.Helper()
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	prev := animation.SetClock(clk)
	t.Cleanup(func() { animation.SetClock(prev) })

	s := config.Default()
	s.Width, s.Height = 300, 400
	if edit != nil {
		edit(&s)
	}
	app, err := New(s, 800, 600, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tb := &testBook{app: app, clock: clk}
	for _, name := range []EventName{EventFlip, EventChangeState, EventChangeOrientation, EventInit, EventUpdate} {
		app.On(name, func(e Event) {
			tb.events = append(tb.events, fmt.Sprintf("%s:%v", e.Name, e.Data))
		})
	}
	if err := app.Load(book.PagesFromNames(pageNames(pages))); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tb
}

func pageNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	return names
}

// settle runs a frame well past any animation.
func (tb *testBook) settle(t *testing.T) {
	t.Helper()
	if err := tb.app.Frame(tb.clock.advance(5 * time.Second)); err != nil {
		t.Fatalf("Frame: %v", err)
	}
}

func (tb *testBook) assertEvents(t *testing.T, want ...string) {
	t.Helper()
	if !reflect.DeepEqual(tb.events, want) {
		t.Errorf("events = %q\nwant     %q", tb.events, want)
	}
	tb.events = nil
}

func TestLoadFiresInit(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.assertEvents(t, "flip:0", "init:{0 landscape}")

	if got := tb.app.Rect(); got != (geometry.PageRect{Left: 100, Top: 100, Width: 600, Height: 400, PageWidth: 300}) {
		t.Errorf("Rect() = %+v", got)
	}
	r := tb.app.Render()
	if r.LeftPage().Name() != "p0" || r.RightPage().Name() != "p1" {
		t.Errorf("spread = %v / %v", r.LeftPage(), r.RightPage())
	}
}

func TestLoadStartPage(t *testing.T) {
	tb := newTestBook(t, 6, func(s *config.Settings) { s.StartPage = 3 })
	tb.assertEvents(t, "flip:2", "init:{2 landscape}")
}

func TestLoadRejectsEmptyBook(t *testing.T) {
	s := config.Default()
	s.Width, s.Height = 300, 400
	app, err := New(s, 800, 600, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Load(nil); !errors.Is(err, book.ErrNoPages) {
		t.Errorf("Load(nil) = %v, want ErrNoPages", err)
	}
	if app.State() != flip.Read || app.PageCount() != 0 {
		t.Error("empty app not at rest")
	}
	app.FlipNext(flip.Top)
	app.UserMove(geometry.Pt(690, 110), false)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	if _, err := New(config.Default(), 800, 600, nil); err == nil {
		t.Error("New accepted settings without a page size")
	}
}

func TestLoadFromHTML(t *testing.T) {
	tb := newTestBook(t, 2, nil)
	tb.events = nil
	markup := `<div class="page" data-density="hard">a</div><div class="page">b</div><div class="page">c</div>`
	if err := tb.app.UpdateFromHTML(strings.NewReader(markup)); err != nil {
		t.Fatal(err)
	}
	tb.assertEvents(t, "flip:0", "update:{0 landscape}")
	if tb.app.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", tb.app.PageCount())
	}
}

func TestFlipNextAnimates(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil

	tb.app.FlipNext(flip.Top)
	if tb.app.State() != flip.Flipping || !tb.app.Busy() {
		t.Fatalf("state = %v, want flipping", tb.app.State())
	}
	if err := tb.app.Frame(tb.clock.advance(100 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if tb.app.Render().FlippingPage() == nil {
		t.Error("no flipping page mid animation")
	}

	tb.settle(t)
	tb.assertEvents(t, "changeState:flipping", "flip:2", "changeState:read")
	if tb.app.CurrentPageIndex() != 2 || tb.app.Busy() {
		t.Errorf("page = %d busy = %v", tb.app.CurrentPageIndex(), tb.app.Busy())
	}
}

func TestFlipToPage(t *testing.T) {
	tb := newTestBook(t, 8, nil)
	tb.events = nil

	tb.app.Flip(6, flip.Bottom)
	tb.settle(t)
	tb.assertEvents(t, "changeState:flipping", "flip:6", "changeState:read")

	tb.app.Flip(1, flip.Top)
	tb.settle(t)
	tb.assertEvents(t, "changeState:flipping", "flip:0", "changeState:read")
}

func TestTurnWithoutAnimation(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil

	tb.app.TurnToNextPage()
	tb.app.TurnToPage(5)
	tb.app.TurnToPrevPage()
	tb.app.TurnToPage(42)
	tb.assertEvents(t, "flip:2", "flip:4", "flip:2")
}

func TestClickFlips(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil

	pos := geometry.Pt(650, 150)
	tb.app.StartUserTouch(pos)
	tb.app.UserStop(pos, false)
	tb.settle(t)
	tb.assertEvents(t, "changeState:flipping", "flip:2", "changeState:read")
}

func TestDragPastSpineTurns(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil

	tb.app.StartUserTouch(geometry.Pt(680, 130))
	tb.app.UserMove(geometry.Pt(682, 131), true)
	if tb.app.State() != flip.Read {
		t.Fatalf("fold started below the move threshold")
	}
	tb.app.UserMove(geometry.Pt(670, 130), true)
	tb.app.UserMove(geometry.Pt(350, 130), true)
	if tb.app.State() != flip.UserFold {
		t.Fatalf("state = %v, want user_fold", tb.app.State())
	}
	tb.app.UserStop(geometry.Pt(350, 130), false)
	tb.settle(t)
	tb.assertEvents(t, "changeState:user_fold", "flip:2", "changeState:read")
}

func TestMoveThresholdTuning(t *testing.T) {
	tb := newTestBook(t, 6, func(s *config.Settings) { s.Tuning.MoveThreshold = 50 })
	tb.app.StartUserTouch(geometry.Pt(680, 130))
	tb.app.UserMove(geometry.Pt(660, 130), true)
	if tb.app.State() != flip.Read {
		t.Errorf("state = %v, want read", tb.app.State())
	}
}

func TestHoverShowsCorner(t *testing.T) {
	tests := []struct {
		name    string
		corners bool
		want    flip.State
	}{
		{"enabled", true, flip.FoldCorner},
		{"disabled", false, flip.Read},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBook(t, 6, func(s *config.Settings) { s.ShowPageCorners = tt.corners })
			tb.app.UserMove(geometry.Pt(690, 110), false)
			if tb.app.State() != tt.want {
				t.Errorf("state = %v, want %v", tb.app.State(), tt.want)
			}
		})
	}
}

func TestSwipeTurnsPage(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil
	t0 := tb.clock.now

	tb.app.HandlePointer(gestures.PointerEvent{PointerID: 1, Kind: gestures.PointerKindTouch, Phase: gestures.PointerPhaseDown, Position: geometry.Pt(650, 150), Time: t0})
	tb.app.HandlePointer(gestures.PointerEvent{PointerID: 1, Kind: gestures.PointerKindTouch, Phase: gestures.PointerPhaseUp, Position: geometry.Pt(550, 150), Time: t0.Add(100 * time.Millisecond)})
	if tb.app.State() != flip.Flipping {
		t.Fatalf("state = %v, want flipping", tb.app.State())
	}
	tb.settle(t)
	if tb.app.CurrentPageIndex() != 2 {
		t.Errorf("page = %d, want 2", tb.app.CurrentPageIndex())
	}
}

func TestResizeChangesOrientation(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil

	tb.app.Resize(500, 600)
	tb.assertEvents(t, "flip:0", "changeOrientation:portrait")
	if tb.app.Orientation() != flip.Portrait || tb.app.Render().LeftPage() != nil {
		t.Errorf("portrait layout not applied")
	}

	tb.app.Resize(520, 600)
	tb.assertEvents(t, "flip:0")

	tb.app.Update()
	tb.assertEvents(t, "flip:0")
}

func TestUpdatePagesKeepsPage(t *testing.T) {
	tb := newTestBook(t, 8, nil)
	tb.app.TurnToPage(5)
	tb.events = nil

	if err := tb.app.UpdatePages(book.PagesFromNames(pageNames(4))); err != nil {
		t.Fatal(err)
	}
	tb.assertEvents(t, "flip:2", "update:{2 landscape}")
}

func TestUpdatePagesFinishesTurn(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.app.FlipNext(flip.Top)
	tb.events = nil

	if err := tb.app.UpdatePages(book.PagesFromNames(pageNames(6))); err != nil {
		t.Fatal(err)
	}
	if tb.app.Render().Animating() || tb.app.State() != flip.Read {
		t.Errorf("turn not finished: state %v", tb.app.State())
	}
	if tb.app.CurrentPageIndex() != 2 {
		t.Errorf("page = %d, want 2", tb.app.CurrentPageIndex())
	}
}

func TestOffRemovesHandlers(t *testing.T) {
	tb := newTestBook(t, 6, nil)
	tb.events = nil
	tb.app.Off(EventFlip)
	tb.app.TurnToNextPage()
	tb.assertEvents(t)
}

func TestPanickingHandlerIsReported(t *testing.T) {
	h := &flerrors.Recorder{}
	prev := flerrors.SetHandler(h)
	t.Cleanup(func() { flerrors.SetHandler(prev) })

	tb := newTestBook(t, 6, nil)
	tb.events = nil
	tb.app.Off(EventFlip)
	tb.app.On(EventFlip, func(Event) { panic("boom") })
	tb.app.On(EventFlip, func(e Event) { tb.events = append(tb.events, "after") })

	tb.app.TurnToNextPage()
	tb.assertEvents(t, "after")
	if len(h.Panics()) != 1 {
		t.Errorf("panics = %d, want 1", len(h.Panics()))
	}
}

func TestStartStepsFrames(t *testing.T) {
	frames := 0
	s := config.Default()
	s.Width, s.Height = 300, 400
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	prev := animation.SetClock(clk)
	t.Cleanup(func() { animation.SetClock(prev) })

	app, err := New(s, 800, 600, render.DrawerFunc(func(*render.Scene) error {
		frames++
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Load(book.PagesFromNames(pageNames(4))); err != nil {
		t.Fatal(err)
	}

	sched := animation.NewScheduler()
	app.Start(sched)
	app.Start(sched)
	if sched.Active() != 1 {
		t.Fatalf("active tickers = %d, want 1", sched.Active())
	}
	sched.Step()
	clk.advance(16 * time.Millisecond)
	sched.Step()
	app.Stop()
	sched.Step()
	if frames != 2 {
		t.Errorf("frames = %d, want 2", frames)
	}
}
