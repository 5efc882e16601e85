// Package animation plays page flip animations.
//
// An animation is a list of frame callbacks spread evenly over a duration.
// A [Player] holds at most one of them; starting another finishes the
// current one first. Nothing here runs on its own: a render loop calls
// [Player.Tick] with the current time, usually from a [Ticker] stepped once
// per frame by [StepTickers].
package animation

import (
	"sync"
	"time"
)

// Scheduler owns a set of tickers and steps them together.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[*Ticker]struct{}
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tickers: make(map[*Ticker]struct{})}
}

// DefaultScheduler is stepped by StepTickers.
var DefaultScheduler = NewScheduler()

// Step calls every active ticker once with its elapsed time.
func (s *Scheduler) Step() {
	s.mu.Lock()
	if len(s.tickers) == 0 {
		s.mu.Unlock()
		return
	}
	// Callbacks may start or stop tickers.
	tickers := make([]*Ticker, 0, len(s.tickers))
	for t := range s.tickers {
		tickers = append(tickers, t)
	}
	s.mu.Unlock()

	now := Now()
	for _, t := range tickers {
		if t.IsActive() && t.callback != nil {
			t.callback(now.Sub(t.start))
		}
	}
}

// Active returns the number of running tickers.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// StepTickers advances all tickers of DefaultScheduler.
// This should be called once per frame by the render loop.
func StepTickers() { DefaultScheduler.Step() }

// HasActiveTickers returns true if any tickers of DefaultScheduler run.
func HasActiveTickers() bool { return DefaultScheduler.Active() > 0 }

// Ticker calls a callback on each step of its scheduler while active.
// The callback receives the time elapsed since Start.
type Ticker struct {
	scheduler *Scheduler
	callback  func(elapsed time.Duration)
	isActive  bool
	start     time.Time
}

// NewTicker creates a ticker on DefaultScheduler.
func NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return DefaultScheduler.NewTicker(callback)
}

// NewTicker creates a ticker on s.
func (s *Scheduler) NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{scheduler: s, callback: callback}
}

// Start activates the ticker.
func (t *Ticker) Start() {
	if t.isActive {
		return
	}
	t.isActive = true
	t.start = Now()
	t.scheduler.mu.Lock()
	t.scheduler.tickers[t] = struct{}{}
	t.scheduler.mu.Unlock()
}

// Stop deactivates the ticker.
func (t *Ticker) Stop() {
	if !t.isActive {
		return
	}
	t.isActive = false
	t.scheduler.mu.Lock()
	delete(t.scheduler.tickers, t)
	t.scheduler.mu.Unlock()
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	return t.isActive
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	if !t.isActive {
		return 0
	}
	return Now().Sub(t.start)
}
