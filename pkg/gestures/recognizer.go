package gestures

import (
	"math"
	"time"

	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
)

// Defaults.
const (
	DefaultSwipeDistance = 30.0
	DefaultSwipeTimeout  = 250 * time.Millisecond
	// DefaultScrollSlop is how far a touch must move sideways before it
	// folds the page when scroll support is on.
	DefaultScrollSlop = 10.0
)

// Target receives the recognised input. It is implemented by the page flip
// application.
type Target interface {
	StartUserTouch(pos geometry.Point)
	UserMove(pos geometry.Point, touch bool)
	UserStop(pos geometry.Point, swipe bool)
	FlipNext(corner flip.Corner)
	FlipPrev(corner flip.Corner)
	State() flip.State
	Rect() geometry.PageRect
}

// Options tune a Recognizer. Zero fields take the defaults.
type Options struct {
	// SwipeDistance is the horizontal travel that makes a quick touch a
	// swipe. Vertical travel must stay under twice this value.
	SwipeDistance float64
	// SwipeTimeout is the longest a swipe may take. A touch held longer
	// starts a fold instead.
	SwipeTimeout time.Duration
	// ScrollSupport leaves small sideways touch moves to the host while the
	// book is at rest, so the page can scroll.
	ScrollSupport bool
	ScrollSlop    float64
}

func (o Options) withDefaults() Options {
	if o.SwipeDistance <= 0 {
		o.SwipeDistance = DefaultSwipeDistance
	}
	if o.SwipeTimeout <= 0 {
		o.SwipeTimeout = DefaultSwipeTimeout
	}
	if o.ScrollSlop <= 0 {
		o.ScrollSlop = DefaultScrollSlop
	}
	return o
}

// touchPoint is where and when a touch began, kept for swipe detection.
type touchPoint struct {
	pos  geometry.Point
	time time.Time
}

// Recognizer follows a single pointer and forwards it to a Target. Mouse
// presses start a touch at once; touch presses wait for SwipeTimeout so a
// quick swipe can turn the page without folding it.
//
// A Recognizer is not safe for concurrent use.
type Recognizer struct {
	target Target
	opts   Options

	pointer int64       // pointer being tracked
	active  bool        // true while a pointer is down
	touch   *touchPoint // pending touch, nil for mouse input
	started bool        // true once StartUserTouch was sent for touch
}

// NewRecognizer returns a recognizer forwarding to t.
func NewRecognizer(t Target, opts Options) *Recognizer {
	return &Recognizer{target: t, opts: opts.withDefaults()}
}

// Active reports whether a pointer is down.
func (r *Recognizer) Active() bool { return r.active }

// HandlePointer processes one event. Events from a second pointer while one
// is down are ignored.
func (r *Recognizer) HandlePointer(ev PointerEvent) {
	if r.active && ev.PointerID != r.pointer {
		flip.Logger().Debug("pointer ignored", "pointer", ev.PointerID, "active", r.pointer, "phase", ev.Phase)
		return
	}
	if ev.Kind == PointerKindTouch {
		r.handleTouch(ev)
		return
	}

	switch ev.Phase {
	case PointerPhaseDown:
		r.active, r.pointer = true, ev.PointerID
		r.target.StartUserTouch(ev.Position)
	case PointerPhaseMove:
		r.target.UserMove(ev.Position, false)
	case PointerPhaseUp, PointerPhaseCancel:
		if !r.active {
			return
		}
		r.active = false
		r.target.UserStop(ev.Position, false)
	}
}

func (r *Recognizer) handleTouch(ev PointerEvent) {
	switch ev.Phase {
	case PointerPhaseDown:
		r.active, r.pointer = true, ev.PointerID
		r.touch = &touchPoint{pos: ev.Position, time: ev.Time}
		r.started = false
	case PointerPhaseMove:
		if !r.active {
			return
		}
		r.Tick(ev.Time)
		if !r.opts.ScrollSupport {
			r.target.UserMove(ev.Position, true)
			return
		}
		if math.Abs(r.touch.pos.X-ev.Position.X) > r.opts.ScrollSlop || r.target.State() != flip.Read {
			r.target.UserMove(ev.Position, true)
		}
	case PointerPhaseUp:
		if !r.active {
			return
		}
		r.Tick(ev.Time)
		swipe := r.swipe(ev)
		r.reset()
		r.target.UserStop(ev.Position, swipe)
	case PointerPhaseCancel:
		if !r.active {
			return
		}
		r.reset()
		r.target.UserStop(ev.Position, false)
	}
}

// swipe turns the page if ev ends a quick horizontal stroke and reports
// whether it did.
func (r *Recognizer) swipe(ev PointerEvent) bool {
	tp := r.touch
	dx := ev.Position.X - tp.pos.X
	dy := math.Abs(ev.Position.Y - tp.pos.Y)
	if math.Abs(dx) <= r.opts.SwipeDistance || dy >= r.opts.SwipeDistance*2 || ev.Time.Sub(tp.time) >= r.opts.SwipeTimeout {
		return false
	}

	corner := flip.Bottom
	if tp.pos.Y < r.target.Rect().Height/2 {
		corner = flip.Top
	}
	if dx > 0 {
		r.target.FlipPrev(corner)
	} else {
		r.target.FlipNext(corner)
	}
	return true
}

func (r *Recognizer) reset() {
	r.active = false
	r.touch = nil
	r.started = false
}

// Tick starts a held touch once SwipeTimeout has passed. The render loop
// calls it every frame so a still finger starts a fold without moving.
func (r *Recognizer) Tick(now time.Time) {
	if r.touch == nil || r.started || now.Sub(r.touch.time) < r.opts.SwipeTimeout {
		return
	}
	r.started = true
	r.target.StartUserTouch(r.touch.pos)
}
