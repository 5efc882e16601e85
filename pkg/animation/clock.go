package animation

import (
	"sync/atomic"
	"time"
)

// Clock tells the Player and the Scheduler what time it is. Frames are
// chosen from clock time only, so a fake clock makes a whole flip
// reproducible.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// clockBox lets the clock be swapped while a render loop reads it.
type clockBox struct{ Clock }

var current atomic.Pointer[clockBox]

func init() { current.Store(&clockBox{systemClock{}}) }

// SetClock installs c and returns the clock it replaces. A nil c restores
// system time.
func SetClock(c Clock) Clock {
	if c == nil {
		c = systemClock{}
	}
	return current.Swap(&clockBox{c}).Clock
}

// Now reads the installed clock.
func Now() time.Time { return current.Load().Now() }
