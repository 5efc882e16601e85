package pageflip

import (
	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
)

// EventName identifies an application event.
type EventName string

// Events fired by PageFlip. The Data of each event is noted alongside.
const (
	// EventFlip fires when a spread is shown. Data is the index of its
	// first page.
	EventFlip EventName = "flip"
	// EventChangeState fires on every controller state change. Data is a
	// flip.State.
	EventChangeState EventName = "changeState"
	// EventChangeOrientation fires when the book switches between one and
	// two pages. Data is a flip.Orientation.
	EventChangeOrientation EventName = "changeOrientation"
	// EventInit fires once the first set of pages is loaded. Data is a
	// BookInfo.
	EventInit EventName = "init"
	// EventUpdate fires after the pages are replaced. Data is a BookInfo.
	EventUpdate EventName = "update"
)

// BookInfo is the payload of EventInit and EventUpdate.
type BookInfo struct {
	Page int
	Mode flip.Orientation
}

// Event is delivered to handlers registered with On.
type Event struct {
	Name EventName
	Data any
	App  *PageFlip
}

// Handler receives application events.
type Handler func(Event)

// On registers h for events named name. Handlers run in registration order.
func (a *PageFlip) On(name EventName, h Handler) *PageFlip {
	if a.events == nil {
		a.events = make(map[EventName][]Handler)
	}
	a.events[name] = append(a.events[name], h)
	return a
}

// Off removes every handler registered for name.
func (a *PageFlip) Off(name EventName) {
	delete(a.events, name)
}

// trigger delivers an event. A panicking handler is reported and the
// remaining handlers still run.
func (a *PageFlip) trigger(name EventName, data any) {
	ev := Event{Name: name, Data: data, App: a}
	for _, h := range a.events[name] {
		func() {
			defer flerrors.Recover("pageflip.PageFlip.trigger")
			h(ev)
		}()
	}
}
