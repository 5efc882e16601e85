package flip

import "fmt"

// State is the externally observable phase of an interaction.
type State int

const (
	// Read is the resting state: no gesture is in progress.
	Read State = iota
	// UserFold means the user is dragging a page.
	UserFold
	// FoldCorner means the pointer hovers a corner hot zone and the corner
	// is folded in as a preview.
	FoldCorner
	// Flipping means a full page turn animation is playing.
	Flipping
)

func (s State) String() string {
	switch s {
	case Read:
		return "read"
	case UserFold:
		return "user_fold"
	case FoldCorner:
		return "fold_corner"
	case Flipping:
		return "flipping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event drives a State transition.
type Event int

const (
	// EventCornerEnter fires when the pointer hovers a corner hot zone.
	EventCornerEnter Event = iota
	// EventCornerLeave fires when the hovering pointer leaves the hot zones.
	EventCornerLeave
	// EventFold fires on every drag sample.
	EventFold
	// EventFlip fires when a full turn animation starts.
	EventFlip
	// EventSettle fires when a gesture is over and the book is at rest.
	EventSettle
)

func (e Event) String() string {
	switch e {
	case EventCornerEnter:
		return "corner_enter"
	case EventCornerLeave:
		return "corner_leave"
	case EventFold:
		return "fold"
	case EventFlip:
		return "flip"
	case EventSettle:
		return "settle"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

type transitionKey struct {
	from  State
	event Event
}

// transitions lists every allowed (state, event) pair. Pairs that are
// missing are rejected by Machine.Fire.
var transitions = map[transitionKey]State{
	{Read, EventCornerEnter}:       FoldCorner,
	{FoldCorner, EventCornerEnter}: FoldCorner,

	{Read, EventCornerLeave}:       Read,
	{FoldCorner, EventCornerLeave}: Read,

	{Read, EventFold}:       UserFold,
	{FoldCorner, EventFold}: UserFold,
	{UserFold, EventFold}:   UserFold,

	{Read, EventFlip}:       Flipping,
	{UserFold, EventFlip}:   Flipping,
	{FoldCorner, EventFlip}: Flipping,
	{Flipping, EventFlip}:   Flipping,

	{Read, EventSettle}:       Read,
	{UserFold, EventSettle}:   Read,
	{FoldCorner, EventSettle}: Read,
	{Flipping, EventSettle}:   Read,
}

// Next returns the state reached from s on e. ok is false when the
// transition is not allowed.
func Next(s State, e Event) (next State, ok bool) {
	next, ok = transitions[transitionKey{s, e}]
	return next, ok
}

// Machine holds the current State and applies transitions from the table.
type Machine struct {
	state    State
	onChange func(State)
}

// NewMachine returns a machine in Read. onChange, if non-nil, is called
// after every transition that changes the state.
func NewMachine(onChange func(State)) *Machine {
	return &Machine{state: Read, onChange: onChange}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Can reports whether e is allowed in the current state.
func (m *Machine) Can(e Event) bool {
	_, ok := Next(m.state, e)
	return ok
}

// Fire applies e. It returns false and leaves the state untouched when the
// transition is not allowed.
func (m *Machine) Fire(e Event) bool {
	next, ok := Next(m.state, e)
	if !ok {
		Logger().Debug("transition rejected", "state", m.state, "event", e)
		return false
	}
	if next != m.state {
		m.state = next
		if m.onChange != nil {
			m.onChange(next)
		}
	}
	return true
}
