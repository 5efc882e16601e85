package testing

import (
	"fmt"
	"time"

	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/gestures"
)

// pointerState tracks a pointer that is down.
type pointerState struct {
	kind     gestures.PointerKind
	position geometry.Point
}

// nextPointerID is incremented for each new pointer to avoid collisions.
var nextPointerID int64

func allocPointerID() int64 {
	nextPointerID++
	return nextPointerID
}

// SetPointerKind selects mouse or touch input for the gesture helpers.
// The default is mouse.
func (t *BookTester) SetPointerKind(k gestures.PointerKind) { t.kind = k }

// holdTime is how long a touch must rest before it takes hold of a page.
func (t *BookTester) holdTime() time.Duration {
	if d := t.app.Settings().GestureOptions().SwipeTimeout; d > 0 {
		return d
	}
	return gestures.DefaultSwipeTimeout
}

// TapAt presses and releases at pos without moving. A mouse click turns
// the page; a touch this short is ignored, as on a touch screen.
func (t *BookTester) TapAt(pos geometry.Point) error {
	id := allocPointerID()
	if err := t.SendPointerDown(pos, id); err != nil {
		return err
	}
	return t.SendPointerUp(pos, id)
}

// HoverAt moves a mouse without pressing it.
func (t *BookTester) HoverAt(pos geometry.Point) error {
	return t.sendPointer(gestures.PointerEvent{
		PointerID: allocPointerID(),
		Kind:      gestures.PointerKindMouse,
		Phase:     gestures.PointerPhaseMove,
		Position:  pos,
		Time:      t.clock.Now(),
	})
}

// DragFrom presses at start, moves by delta in steps frames, then releases.
// A touch is held long enough to take hold of the page first. A frame is
// pumped after every move.
func (t *BookTester) DragFrom(start, delta geometry.Point, steps int) error {
	if steps < 1 {
		steps = 1
	}
	id := allocPointerID()
	if err := t.SendPointerDown(start, id); err != nil {
		return err
	}
	if t.kind == gestures.PointerKindTouch {
		t.clock.Advance(t.holdTime())
		if err := t.Pump(); err != nil {
			return err
		}
	}

	end := start.Add(delta)
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		pos := geometry.Pt(start.X+delta.X*frac, start.Y+delta.Y*frac)
		t.clock.Advance(FrameDuration)
		if err := t.SendPointerMove(pos, id); err != nil {
			return err
		}
		if err := t.Pump(); err != nil {
			return err
		}
	}
	return t.SendPointerUp(end, id)
}

// Swipe performs a quick touch stroke from start by delta, finishing well
// inside the swipe timeout.
func (t *BookTester) Swipe(start, delta geometry.Point) error {
	prev := t.kind
	t.kind = gestures.PointerKindTouch
	defer func() { t.kind = prev }()

	id := allocPointerID()
	if err := t.SendPointerDown(start, id); err != nil {
		return err
	}
	t.clock.Advance(t.holdTime() / 5)
	end := start.Add(delta)
	if err := t.SendPointerMove(end, id); err != nil {
		return err
	}
	t.clock.Advance(t.holdTime() / 5)
	return t.SendPointerUp(end, id)
}

// SendPointerDown sends a pointer-down event at pos with the given pointer ID.
func (t *BookTester) SendPointerDown(pos geometry.Point, pointerID int64) error {
	return t.sendPointer(gestures.PointerEvent{
		PointerID: pointerID,
		Kind:      t.kind,
		Phase:     gestures.PointerPhaseDown,
		Position:  pos,
		Time:      t.clock.Now(),
	})
}

// SendPointerMove sends a pointer-move event at pos with the given pointer ID.
func (t *BookTester) SendPointerMove(pos geometry.Point, pointerID int64) error {
	return t.sendPointer(gestures.PointerEvent{
		PointerID: pointerID,
		Kind:      t.kind,
		Phase:     gestures.PointerPhaseMove,
		Position:  pos,
		Time:      t.clock.Now(),
	})
}

// SendPointerUp sends a pointer-up event at pos with the given pointer ID.
func (t *BookTester) SendPointerUp(pos geometry.Point, pointerID int64) error {
	return t.sendPointer(gestures.PointerEvent{
		PointerID: pointerID,
		Kind:      t.kind,
		Phase:     gestures.PointerPhaseUp,
		Position:  pos,
		Time:      t.clock.Now(),
	})
}

// SendPointerCancel sends a pointer-cancel event for the given pointer ID at
// its last position.
func (t *BookTester) SendPointerCancel(pointerID int64) error {
	state := t.pointers[pointerID]
	if state == nil {
		return fmt.Errorf("pointer %d is not down", pointerID)
	}
	return t.sendPointer(gestures.PointerEvent{
		PointerID: pointerID,
		Kind:      state.kind,
		Phase:     gestures.PointerPhaseCancel,
		Position:  state.position,
		Time:      t.clock.Now(),
	})
}

func (t *BookTester) sendPointer(event gestures.PointerEvent) error {
	switch event.Phase {
	case gestures.PointerPhaseDown:
		if _, ok := t.pointers[event.PointerID]; ok {
			return fmt.Errorf("pointer %d is already down", event.PointerID)
		}
		t.pointers[event.PointerID] = &pointerState{kind: event.Kind, position: event.Position}

	case gestures.PointerPhaseMove:
		if state := t.pointers[event.PointerID]; state != nil {
			event.Kind = state.kind
			state.position = event.Position
		}

	case gestures.PointerPhaseUp, gestures.PointerPhaseCancel:
		state := t.pointers[event.PointerID]
		if state == nil {
			return fmt.Errorf("pointer %d is not down", event.PointerID)
		}
		event.Kind = state.kind
		delete(t.pointers, event.PointerID)
	}

	t.app.HandlePointer(event)
	return nil
}
