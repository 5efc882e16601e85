package flip

import "testing"

func TestTransitionTable(t *testing.T) {
	states := []State{Read, UserFold, FoldCorner, Flipping}
	events := []Event{EventCornerEnter, EventCornerLeave, EventFold, EventFlip, EventSettle}

	type want struct {
		next State
		ok   bool
	}
	expected := map[State]map[Event]want{
		Read: {
			EventCornerEnter: {FoldCorner, true},
			EventCornerLeave: {Read, true},
			EventFold:        {UserFold, true},
			EventFlip:        {Flipping, true},
			EventSettle:      {Read, true},
		},
		UserFold: {
			EventCornerEnter: {UserFold, false},
			EventCornerLeave: {UserFold, false},
			EventFold:        {UserFold, true},
			EventFlip:        {Flipping, true},
			EventSettle:      {Read, true},
		},
		FoldCorner: {
			EventCornerEnter: {FoldCorner, true},
			EventCornerLeave: {Read, true},
			EventFold:        {UserFold, true},
			EventFlip:        {Flipping, true},
			EventSettle:      {Read, true},
		},
		Flipping: {
			EventCornerEnter: {Flipping, false},
			EventCornerLeave: {Flipping, false},
			EventFold:        {Flipping, false},
			EventFlip:        {Flipping, true},
			EventSettle:      {Read, true},
		},
	}

	for _, s := range states {
		for _, e := range events {
			w := expected[s][e]
			m := &Machine{state: s}
			if m.Can(e) != w.ok {
				t.Errorf("Can(%v) in %v = %v, want %v", e, s, m.Can(e), w.ok)
			}
			ok := m.Fire(e)
			if ok != w.ok {
				t.Errorf("%v --%v--> allowed = %v, want %v", s, e, ok, w.ok)
			}
			if m.State() != w.next {
				t.Errorf("%v --%v--> %v, want %v", s, e, m.State(), w.next)
			}
		}
	}
}

func TestMachineOnChange(t *testing.T) {
	var changes []State
	m := NewMachine(func(s State) { changes = append(changes, s) })

	m.Fire(EventCornerEnter)
	m.Fire(EventCornerEnter)
	m.Fire(EventFold)
	m.Fire(EventCornerLeave) // rejected
	m.Fire(EventFlip)
	m.Fire(EventSettle)

	want := []State{FoldCorner, UserFold, Flipping, Read}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Read:       "read",
		UserFold:   "user_fold",
		FoldCorner: "fold_corner",
		Flipping:   "flipping",
		State(9):   "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
