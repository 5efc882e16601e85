package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	"github.com/go-drift/pageflip/pkg/book"
	"github.com/go-drift/pageflip/pkg/config"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/gestures"
	"github.com/go-drift/pageflip/pkg/page"
	"github.com/go-drift/pageflip/pkg/pageflip"
	"github.com/go-drift/pageflip/pkg/render"
)

const (
	defaultBlockWidth  = 800
	defaultBlockHeight = 600
	defaultPageWidth   = 300
	defaultPageHeight  = 400
	defaultPageCount   = 8
	defaultFPS         = 60

	// settleLimit bounds how long an action may keep the book busy.
	settleLimit = 30 * time.Second
	dragSteps   = 10
)

// errUnsettled is returned when an action is still animating after
// settleLimit of virtual time.
var errUnsettled = errors.New("book did not settle")

// bookFlags are the flags shared by every command that opens a book.
type bookFlags struct {
	pagesFile   string
	count       int
	blockWidth  float64
	blockHeight float64
	pageWidth   float64
	pageHeight  float64
	fps         int
	actions     []string
}

func defaultBookFlags() bookFlags {
	return bookFlags{
		count:       defaultPageCount,
		blockWidth:  defaultBlockWidth,
		blockHeight: defaultBlockHeight,
		fps:         defaultFPS,
	}
}

const bookFlagsUsage = `Flags:
  --pages FILE        Read pages from an HTML file (elements with class "page")
  --count N           Number of generated pages without --pages (default: 8)
  --width W           Width of the block the book is laid out in (default: 800)
  --height H          Height of that block (default: 600)
  --page-width W      Page width when no pageflip.yaml is found (default: 300)
  --page-height H     Page height when no pageflip.yaml is found (default: 400)
  --fps N             Frames per second of virtual time (default: 60)

Actions:
  next[:bottom]       Animate a turn to the next page from the top or bottom corner
  prev[:bottom]       Animate a turn to the previous page
  flip:N[:bottom]     Animate a turn to the spread holding page N
  turn:N              Show page N without animation
  tap:X,Y             Click at X,Y
  hover:X,Y           Move the mouse to X,Y
  drag:X,Y,DX,DY      Drag the mouse from X,Y by DX,DY
  swipe:X,Y,DX,DY     Swipe a finger from X,Y by DX,DY
  resize:W,H          Lay the book out in a W by H block
  wait:MS             Let MS milliseconds pass`

// parseBookFlags parses the shared flags. Arguments that are not flags are
// collected as actions. extra is offered every flag first and reports
// whether it consumed it; it may be nil.
func parseBookFlags(args []string, extra func(flag string, value func() (string, error)) (bool, error)) (bookFlags, error) {
	f := defaultBookFlags()
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}
		if extra != nil && strings.HasPrefix(arg, "--") {
			ok, err := extra(arg, value)
			if err != nil {
				return f, err
			}
			if ok {
				continue
			}
		}

		var err error
		switch arg {
		case "--pages":
			f.pagesFile, err = value()
		case "--count":
			f.count, err = intFlag(arg, value)
			if err == nil && f.count < 1 {
				err = fmt.Errorf("--count must be at least 1")
			}
		case "--width":
			f.blockWidth, err = floatFlag(arg, value)
		case "--height":
			f.blockHeight, err = floatFlag(arg, value)
		case "--page-width":
			f.pageWidth, err = floatFlag(arg, value)
		case "--page-height":
			f.pageHeight, err = floatFlag(arg, value)
		case "--fps":
			f.fps, err = intFlag(arg, value)
			if err == nil && f.fps < 1 {
				err = fmt.Errorf("--fps must be at least 1")
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return f, fmt.Errorf("unknown flag: %s", arg)
			}
			f.actions = append(f.actions, arg)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func intFlag(name string, value func() (string, error)) (int, error) {
	s, err := value()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func floatFlag(name string, value func() (string, error)) (float64, error) {
	s, err := value()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

// settings reads pageflip.yaml from the config directory. Without one the
// page size comes from the flags.
func (f bookFlags) settings(configDir string) (config.Settings, error) {
	s, found, err := config.LoadOptional(configDir)
	if err != nil {
		return config.Settings{}, err
	}
	if f.pageWidth > 0 {
		s.Width = f.pageWidth
	} else if !found {
		s.Width = defaultPageWidth
	}
	if f.pageHeight > 0 {
		s.Height = f.pageHeight
	} else if !found {
		s.Height = defaultPageHeight
	}
	if err := s.Normalize(); err != nil {
		return config.Settings{}, err
	}
	return s, nil
}

func (f bookFlags) pages() ([]*page.Page, error) {
	if f.pagesFile == "" {
		names := make([]string, f.count)
		for i := range names {
			names[i] = fmt.Sprintf("page %d", i+1)
		}
		return book.PagesFromNames(names), nil
	}
	file, err := os.Open(f.pagesFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return book.PagesFromHTML(file)
}

// virtualClock is the animation clock of a session. Time only moves when
// the session steps.
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// session plays a book on virtual time, one scheduler step per frame.
type session struct {
	app       *pageflip.PageFlip
	clock     *virtualClock
	prevClock animation.Clock
	sched     *animation.Scheduler
	frame     time.Duration
	start     time.Time
	out       io.Writer

	drawErr error
	pointer int64
}

// openSession lays the book out, loads its pages and draws the first
// frame. Events are printed to out when it is not nil. Call close when done.
func openSession(f bookFlags, configDir string, d render.Drawer, out io.Writer) (*session, error) {
	settings, err := f.settings(configDir)
	if err != nil {
		return nil, err
	}
	pages, err := f.pages()
	if err != nil {
		return nil, err
	}

	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &session{
		clock: &virtualClock{now: start},
		sched: animation.NewScheduler(),
		frame: time.Second / time.Duration(f.fps),
		start: start,
		out:   out,
	}
	s.prevClock = animation.SetClock(s.clock)

	drawer := render.DrawerFunc(func(sc *render.Scene) error {
		err := d.Draw(sc)
		if err != nil && s.drawErr == nil {
			s.drawErr = err
		}
		return err
	})
	app, err := pageflip.New(settings, f.blockWidth, f.blockHeight, drawer)
	if err != nil {
		s.close()
		return nil, err
	}
	s.app = app
	if out != nil {
		for _, name := range []pageflip.EventName{
			pageflip.EventInit,
			pageflip.EventUpdate,
			pageflip.EventFlip,
			pageflip.EventChangeState,
			pageflip.EventChangeOrientation,
		} {
			app.On(name, s.printEvent)
		}
	}
	if err := app.Load(pages); err != nil {
		s.close()
		return nil, err
	}
	app.Start(s.sched)
	if err := s.step(); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	if s.app != nil {
		s.app.Stop()
	}
	animation.SetClock(s.prevClock)
}

func (s *session) printEvent(e pageflip.Event) {
	at := s.clock.Now().Sub(s.start).Milliseconds()
	switch data := e.Data.(type) {
	case pageflip.BookInfo:
		fmt.Fprintf(s.out, "%6dms %-17s page=%d mode=%s\n", at, e.Name, data.Page, data.Mode)
	default:
		fmt.Fprintf(s.out, "%6dms %-17s %v\n", at, e.Name, data)
	}
}

// step advances virtual time by one frame and steps the scheduler. It
// returns the first error any drawer call produced.
func (s *session) step() error {
	s.clock.advance(s.frame)
	s.sched.Step()
	return s.drawErr
}

// wait steps frames until d of virtual time has passed.
func (s *session) wait(d time.Duration) error {
	for elapsed := time.Duration(0); elapsed < d; elapsed += s.frame {
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

// settle steps frames until the book is idle.
func (s *session) settle() error {
	for elapsed := time.Duration(0); s.app.Busy(); elapsed += s.frame {
		if elapsed >= settleLimit {
			return errUnsettled
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) pointerEvent(id int64, kind gestures.PointerKind, phase gestures.PointerPhase, pos geometry.Point) {
	s.app.HandlePointer(gestures.PointerEvent{
		PointerID: id,
		Kind:      kind,
		Phase:     phase,
		Position:  pos,
		Time:      s.clock.Now(),
	})
}

func (s *session) nextPointer() int64 {
	s.pointer++
	return s.pointer
}

// run performs actions in order, letting the book settle after each.
func (s *session) run(actions []action) error {
	for _, a := range actions {
		if err := s.perform(a); err != nil {
			return fmt.Errorf("%s: %w", a.raw, err)
		}
		if a.kind == actionWait {
			continue
		}
		if err := s.settle(); err != nil {
			return fmt.Errorf("%s: %w", a.raw, err)
		}
	}
	return nil
}

func (s *session) perform(a action) error {
	app := s.app
	switch a.kind {
	case actionNext:
		app.FlipNext(a.corner)
	case actionPrev:
		app.FlipPrev(a.corner)
	case actionFlip:
		if a.page >= app.PageCount() {
			return fmt.Errorf("page %d out of range [0, %d)", a.page, app.PageCount())
		}
		app.Flip(a.page, a.corner)
	case actionTurn:
		if a.page >= app.PageCount() {
			return fmt.Errorf("page %d out of range [0, %d)", a.page, app.PageCount())
		}
		app.TurnToPage(a.page)
	case actionTap:
		id := s.nextPointer()
		s.pointerEvent(id, gestures.PointerKindMouse, gestures.PointerPhaseDown, a.pos)
		s.pointerEvent(id, gestures.PointerKindMouse, gestures.PointerPhaseUp, a.pos)
	case actionHover:
		s.pointerEvent(s.nextPointer(), gestures.PointerKindMouse, gestures.PointerPhaseMove, a.pos)
		return s.step()
	case actionDrag:
		id := s.nextPointer()
		s.pointerEvent(id, gestures.PointerKindMouse, gestures.PointerPhaseDown, a.pos)
		for i := 1; i <= dragSteps; i++ {
			frac := float64(i) / dragSteps
			pos := geometry.Pt(a.pos.X+a.delta.X*frac, a.pos.Y+a.delta.Y*frac)
			s.clock.advance(s.frame)
			s.pointerEvent(id, gestures.PointerKindMouse, gestures.PointerPhaseMove, pos)
			s.sched.Step()
		}
		s.pointerEvent(id, gestures.PointerKindMouse, gestures.PointerPhaseUp, a.pos.Add(a.delta))
	case actionSwipe:
		id := s.nextPointer()
		end := a.pos.Add(a.delta)
		s.pointerEvent(id, gestures.PointerKindTouch, gestures.PointerPhaseDown, a.pos)
		s.clock.advance(s.frame)
		s.pointerEvent(id, gestures.PointerKindTouch, gestures.PointerPhaseMove, end)
		s.clock.advance(s.frame)
		s.pointerEvent(id, gestures.PointerKindTouch, gestures.PointerPhaseUp, end)
	case actionResize:
		app.Resize(a.delta.X, a.delta.Y)
	case actionWait:
		return s.wait(a.wait)
	}
	return s.drawErr
}

type actionKind int

const (
	actionNext actionKind = iota
	actionPrev
	actionFlip
	actionTurn
	actionTap
	actionHover
	actionDrag
	actionSwipe
	actionResize
	actionWait
)

// action is one parsed step of a script such as "flip:4:bottom" or
// "drag:680,130,-400,0".
type action struct {
	raw    string
	kind   actionKind
	corner flip.Corner
	page   int
	pos    geometry.Point
	// delta holds the drag or swipe offset, or the size for resize.
	delta geometry.Point
	wait  time.Duration
}

func parseActions(raw []string) ([]action, error) {
	actions := make([]action, 0, len(raw))
	for _, r := range raw {
		a, err := parseAction(r)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseAction(raw string) (action, error) {
	a := action{raw: raw, corner: flip.Top}
	name, rest, _ := strings.Cut(raw, ":")
	parts := strings.Split(rest, ":")
	if rest == "" {
		parts = nil
	}

	corner := func(parts []string) error {
		switch {
		case len(parts) == 0:
			return nil
		case len(parts) == 1 && parts[0] == "top":
			a.corner = flip.Top
			return nil
		case len(parts) == 1 && parts[0] == "bottom":
			a.corner = flip.Bottom
			return nil
		}
		return fmt.Errorf("invalid action %q: expected corner top or bottom", raw)
	}

	var err error
	switch name {
	case "next", "prev":
		a.kind = actionNext
		if name == "prev" {
			a.kind = actionPrev
		}
		err = corner(parts)
	case "flip", "turn":
		a.kind = actionFlip
		if name == "turn" {
			a.kind = actionTurn
		}
		if len(parts) == 0 || (name == "turn" && len(parts) > 1) {
			return a, fmt.Errorf("invalid action %q: expected a page index", raw)
		}
		a.page, err = strconv.Atoi(parts[0])
		if err != nil || a.page < 0 {
			return a, fmt.Errorf("invalid action %q: bad page index", raw)
		}
		err = corner(parts[1:])
	case "tap", "hover":
		a.kind = actionTap
		if name == "hover" {
			a.kind = actionHover
		}
		var v []float64
		if v, err = numbers(raw, rest, 2); err == nil {
			a.pos = geometry.Pt(v[0], v[1])
		}
	case "drag", "swipe":
		a.kind = actionDrag
		if name == "swipe" {
			a.kind = actionSwipe
		}
		var v []float64
		if v, err = numbers(raw, rest, 4); err == nil {
			a.pos = geometry.Pt(v[0], v[1])
			a.delta = geometry.Pt(v[2], v[3])
		}
	case "resize":
		a.kind = actionResize
		var v []float64
		if v, err = numbers(raw, rest, 2); err == nil {
			if !(v[0] > 0) || !(v[1] > 0) {
				return a, fmt.Errorf("invalid action %q: size must be positive", raw)
			}
			a.delta = geometry.Pt(v[0], v[1])
		}
	case "wait":
		a.kind = actionWait
		var ms int
		ms, err = strconv.Atoi(rest)
		if err != nil || ms < 0 {
			return a, fmt.Errorf("invalid action %q: expected milliseconds", raw)
		}
		a.wait = time.Duration(ms) * time.Millisecond
	default:
		return a, fmt.Errorf("unknown action %q", raw)
	}
	return a, err
}

func numbers(raw, list string, n int) ([]float64, error) {
	fields := strings.Split(list, ",")
	if list == "" || len(fields) != n {
		return nil, fmt.Errorf("invalid action %q: expected %d numbers", raw, n)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid action %q: %w", raw, err)
		}
		out[i] = v
	}
	return out, nil
}
