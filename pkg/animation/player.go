package animation

import (
	"math"
	"time"
)

// process is one running animation.
type process struct {
	frames        []func()
	duration      time.Duration
	frameDuration time.Duration
	onEnd         func()
	startedAt     time.Time
}

// Player plays at most one frame animation at a time.
//
// The zero value is ready to use. A Player is driven from a single render
// loop and is not safe for concurrent use.
type Player struct {
	// Curve eases frame selection. Nil means linear.
	Curve Curve

	current *process
}

// Start begins playing frames over d from now. A running animation is
// finished first, so its last frame and onEnd run before any frame of the
// new one. An empty frame list completes at once.
func (p *Player) Start(frames []func(), d time.Duration, onEnd func(), now time.Time) {
	p.Finish()

	if len(frames) == 0 {
		if onEnd != nil {
			onEnd()
		}
		return
	}
	p.current = &process{
		frames:        frames,
		duration:      d,
		frameDuration: d / time.Duration(len(frames)),
		onEnd:         onEnd,
		startedAt:     now,
	}
}

// Tick runs the frame due at now. Once the duration has passed the
// animation ends and its onEnd runs.
func (p *Player) Tick(now time.Time) {
	a := p.current
	if a == nil {
		return
	}
	if i := p.frameIndex(a, now); i < len(a.frames) {
		a.frames[i]()
		return
	}
	p.current = nil
	if a.onEnd != nil {
		a.onEnd()
	}
}

// Finish jumps to the last frame and runs onEnd. It does nothing when no
// animation is running, so calling it twice is safe.
func (p *Player) Finish() {
	a := p.current
	if a == nil {
		return
	}
	p.current = nil
	a.frames[len(a.frames)-1]()
	if a.onEnd != nil {
		a.onEnd()
	}
}

// Active reports whether an animation is running.
func (p *Player) Active() bool { return p.current != nil }

// Progress returns the linear progress of the running animation at now,
// clamped to [0, 1]. It is 0 when nothing runs.
func (p *Player) Progress(now time.Time) float64 {
	a := p.current
	if a == nil || a.duration <= 0 {
		return 0
	}
	return clampUnit(float64(now.Sub(a.startedAt)) / float64(a.duration))
}

func (p *Player) frameIndex(a *process, now time.Time) int {
	if a.frameDuration <= 0 {
		return len(a.frames)
	}
	elapsed := now.Sub(a.startedAt)
	if elapsed < 0 {
		return 0
	}
	if p.Curve == nil {
		return int(math.Round(float64(elapsed) / float64(a.frameDuration)))
	}
	if elapsed >= a.duration {
		return len(a.frames)
	}
	t := p.Curve(float64(elapsed) / float64(a.duration))
	return int(math.Round(clampUnit(t) * float64(len(a.frames)-1)))
}
