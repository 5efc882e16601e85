package render

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-drift/pageflip/pkg/animation"
	flerrors "github.com/go-drift/pageflip/pkg/errors"
	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/page"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func useHandler(t *testing.T) *flerrors.Recorder {
	t.Helper()
	h := &flerrors.Recorder{}
	prev := flerrors.SetHandler(h)
	t.Cleanup(func() { flerrors.SetHandler(prev) })
	return h
}

func useClock(t *testing.T) *fixedClock {
	t.Helper()
	c := &fixedClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	prev := animation.SetClock(c)
	t.Cleanup(func() { animation.SetClock(prev) })
	return c
}

func fixedOptions() Options {
	return Options{Size: Fixed, Width: 300, Height: 400, UsePortrait: true, DrawShadow: true, MaxShadowOpacity: 0.5}
}

func mustNew(t *testing.T, opts Options, w, h float64, d Drawer) *Render {
	t.Helper()
	r, err := New(opts, w, h, d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestBoundsRect(t *testing.T) {
	stretch := Options{Size: Stretch, Width: 300, Height: 400, MinWidth: 100, MaxWidth: 2000, UsePortrait: true}
	noPortrait := fixedOptions()
	noPortrait.UsePortrait = false

	tests := []struct {
		name   string
		opts   Options
		w, h   float64
		want   geometry.PageRect
		orient flip.Orientation
	}{
		{"fixed landscape", fixedOptions(), 800, 600,
			geometry.PageRect{Left: 100, Top: 100, Width: 600, Height: 400, PageWidth: 300}, flip.Landscape},
		{"fixed portrait", fixedOptions(), 500, 600,
			geometry.PageRect{Left: -200, Top: 100, Width: 600, Height: 400, PageWidth: 300}, flip.Portrait},
		{"fixed narrow without portrait", noPortrait, 500, 600,
			geometry.PageRect{Left: -50, Top: 100, Width: 600, Height: 400, PageWidth: 300}, flip.Landscape},
		{"stretch limited by height", stretch, 1000, 600,
			geometry.PageRect{Left: 50, Top: 0, Width: 900, Height: 600, PageWidth: 450}, flip.Landscape},
		{"stretch portrait", stretch, 150, 600,
			geometry.PageRect{Left: -150, Top: 200, Width: 300, Height: 200, PageWidth: 150}, flip.Portrait},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNew(t, tt.opts, tt.w, tt.h, nil)
			got := r.Rect()
			if math.Abs(got.Left-tt.want.Left) > 1e-9 || math.Abs(got.Top-tt.want.Top) > 1e-9 ||
				math.Abs(got.Width-tt.want.Width) > 1e-9 || math.Abs(got.Height-tt.want.Height) > 1e-9 ||
				math.Abs(got.PageWidth-tt.want.PageWidth) > 1e-9 {
				t.Errorf("Rect() = %+v, want %+v", got, tt.want)
			}
			if r.Orientation() != tt.orient {
				t.Errorf("Orientation() = %v, want %v", r.Orientation(), tt.orient)
			}
		})
	}
}

func TestStretchCapsPageWidth(t *testing.T) {
	opts := Options{Size: Stretch, Width: 300, Height: 400, MinWidth: 100, MaxWidth: 200}
	r := mustNew(t, opts, 2000, 2000, nil)
	if pw := r.Rect().PageWidth; pw != 200 {
		t.Errorf("PageWidth = %v, want 200", pw)
	}
}

func TestNewValidates(t *testing.T) {
	tests := []Options{
		{Width: 0, Height: 400},
		{Width: 300, Height: math.NaN()},
		{Width: 300, Height: 400, MaxShadowOpacity: 2},
		{Size: Stretch, Width: 300, Height: 400, MinWidth: 500, MaxWidth: 100},
	}
	for _, opts := range tests {
		_, err := New(opts, 800, 600, nil)
		var ve *flerrors.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("New(%+v) err = %v, want ValidationError", opts, err)
		}
	}
}

func TestParseSizeMode(t *testing.T) {
	if m, err := ParseSizeMode("Stretch"); err != nil || m != Stretch {
		t.Errorf("ParseSizeMode(Stretch) = %v, %v", m, err)
	}
	if m, err := ParseSizeMode(""); err != nil || m != Fixed {
		t.Errorf("ParseSizeMode(\"\") = %v, %v", m, err)
	}
	if _, err := ParseSizeMode("huge"); err == nil {
		t.Error("ParseSizeMode(huge) succeeded")
	}
}

func TestResizeReportsOrientation(t *testing.T) {
	r := mustNew(t, fixedOptions(), 800, 600, nil)
	var got []flip.Orientation
	r.OnOrientation(func(o flip.Orientation) { got = append(got, o) })

	r.Resize(900, 600)
	r.Resize(500, 600)
	r.Resize(400, 600)
	r.Resize(800, 600)

	want := []flip.Orientation{flip.Portrait, flip.Landscape}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("orientation changes = %v, want %v", got, want)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	r := mustNew(t, fixedOptions(), 800, 600, nil)
	points := []geometry.Point{{X: 0, Y: 0}, {X: 123.5, Y: 77}, {X: 700, Y: 500}, {X: -40, Y: 900}}
	for _, dir := range []flip.Direction{flip.Forward, flip.Back} {
		for _, p := range points {
			back := r.ConvertToGlobal(r.ConvertToPage(p, dir), dir)
			if !back.ApproxEqual(p, 1e-9) {
				t.Errorf("%v: round trip of %v = %v", dir, p, back)
			}
		}
	}
}

func TestConvertToPage(t *testing.T) {
	r := mustNew(t, fixedOptions(), 800, 600, nil)
	// The spine is at x=400 and the top edge at y=100.
	if got := r.ConvertToPage(geometry.Pt(650, 150), flip.Forward); got != geometry.Pt(250, 50) {
		t.Errorf("forward = %v, want (250, 50)", got)
	}
	if got := r.ConvertToPage(geometry.Pt(150, 150), flip.Back); got != geometry.Pt(250, 50) {
		t.Errorf("back = %v, want (250, 50)", got)
	}
	if got := r.ConvertToBook(geometry.Pt(150, 150)); got != geometry.Pt(50, 50) {
		t.Errorf("book = %v, want (50, 50)", got)
	}
}

func TestSlotOrientation(t *testing.T) {
	tests := []struct {
		name     string
		orient   float64 // block width; 800 is landscape, 500 portrait
		dir      flip.Direction
		bottom   page.Orientation
		flipping page.Orientation
	}{
		{"landscape forward", 800, flip.Forward, page.Right, page.Left},
		{"landscape back", 800, flip.Back, page.Left, page.Right},
		{"portrait forward", 500, flip.Forward, page.Right, page.Right},
		{"portrait back", 500, flip.Back, page.Left, page.Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustNew(t, fixedOptions(), tt.orient, 600, nil)
			r.SetDirection(tt.dir)
			b, f := page.New(0, page.Soft), page.New(1, page.Soft)
			r.SetBottomPage(b)
			r.SetFlippingPage(f)
			if b.Orientation() != tt.bottom {
				t.Errorf("bottom = %v, want %v", b.Orientation(), tt.bottom)
			}
			if f.Orientation() != tt.flipping {
				t.Errorf("flipping = %v, want %v", f.Orientation(), tt.flipping)
			}
		})
	}

	r := mustNew(t, fixedOptions(), 800, 600, nil)
	l, rt := page.New(0, page.Soft), page.New(1, page.Soft)
	l.SetOrientation(page.Right)
	r.SetLeftPage(l)
	r.SetRightPage(rt)
	if l.Orientation() != page.Left || rt.Orientation() != page.Right {
		t.Errorf("left/right = %v/%v", l.Orientation(), rt.Orientation())
	}
	r.SetLeftPage(nil)
	if r.LeftPage() != nil {
		t.Error("nil left page not stored")
	}
}

func TestShadowData(t *testing.T) {
	r := mustNew(t, fixedOptions(), 800, 600, nil)
	r.SetShadowData(geometry.Pt(10, 0), 1, 40, flip.Forward)
	s, ok := r.Shadow()
	if !ok {
		t.Fatal("no shadow")
	}
	if math.Abs(s.Width-90) > 1e-9 || math.Abs(s.Opacity-0.3) > 1e-9 || s.Progress != 80 {
		t.Errorf("shadow = %+v", s)
	}
	r.SetPageRect(geometry.RectPoints{})
	r.ClearShadow()
	if _, ok := r.Shadow(); ok || r.PageRect() != nil {
		t.Error("ClearShadow left state behind")
	}

	opts := fixedOptions()
	opts.DrawShadow = false
	r = mustNew(t, opts, 800, 600, nil)
	r.SetShadowData(geometry.Pt(10, 0), 1, 40, flip.Forward)
	if _, ok := r.Shadow(); ok {
		t.Error("shadow set while disabled")
	}
}

func TestShadowStrip(t *testing.T) {
	fwd := Shadow{Pos: geometry.Pt(100, 0), Angle: math.Pi / 2, Width: 10, Direction: flip.Forward}
	strip := fwd.Strip(50)
	// A vertical fold: the band lies on the +x side going forward.
	if !strip[2].ApproxEqual(geometry.Pt(110, 50), 1e-9) {
		t.Errorf("forward strip = %v", strip)
	}
	back := fwd
	back.Direction = flip.Back
	strip = back.Strip(50)
	if !strip[2].ApproxEqual(geometry.Pt(90, 50), 1e-9) {
		t.Errorf("back strip = %v", strip)
	}
}

func TestFrameDrawsScene(t *testing.T) {
	clock := useClock(t)
	var scenes []*Scene
	d := DrawerFunc(func(s *Scene) error {
		scenes = append(scenes, s)
		return nil
	})
	r := mustNew(t, fixedOptions(), 800, 600, d)
	left, right := page.New(0, page.Soft), page.New(1, page.Soft)
	r.SetLeftPage(left)
	r.SetRightPage(right)

	var ran []int
	frames := []func(){func() { ran = append(ran, 0) }, func() { ran = append(ran, 1) }}
	ended := false
	r.StartAnimation(frames, 20*time.Millisecond, func() { ended = true })
	if !r.Animating() {
		t.Fatal("animation not running")
	}

	if err := r.Frame(clock.now.Add(10 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := r.Frame(clock.now.Add(30 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if len(ran) != 1 || ran[0] != 1 || !ended {
		t.Errorf("ran = %v ended = %v", ran, ended)
	}
	if len(scenes) != 2 {
		t.Fatalf("drew %d scenes", len(scenes))
	}
	s := scenes[0]
	if s.Left == nil || s.Right == nil || s.Bottom != nil || s.Flipping != nil {
		t.Fatalf("pages = %v", s.Pages())
	}
	if s.Right.Outline[0] != geometry.Pt(400, 100) {
		t.Errorf("right page outline = %v", s.Right.Outline)
	}
	if s.Visible != s.Rect.Rect() {
		t.Errorf("landscape visible = %v", s.Visible)
	}
}

func TestSceneMovingPages(t *testing.T) {
	r := mustNew(t, fixedOptions(), 500, 600, nil)
	r.SetDirection(flip.Forward)

	soft := page.New(1, page.Soft)
	soft.SetArea([]geometry.Point{{X: 0, Y: 0}, {X: 300, Y: 0}})
	soft.SetPosition(geometry.Pt(0, 0))
	r.SetFlippingPage(soft)

	hard := page.New(2, page.Hard)
	hard.SetHardAngle(0)
	r.SetBottomPage(hard)
	r.SetLeftPage(page.New(0, page.Soft))

	s := r.Scene(time.Time{})
	if s.Left != nil {
		t.Error("portrait scene drew the left page")
	}
	// Portrait book: left -200, spine at 100.
	if want := geometry.RectFromLTWH(100, 100, 300, 400); s.Visible != want {
		t.Errorf("visible = %v, want %v", s.Visible, want)
	}
	if s.Flipping.Outline[1] != geometry.Pt(400, 100) {
		t.Errorf("flipping outline = %v", s.Flipping.Outline)
	}
	if s.Flipping.Origin != geometry.Pt(100, 100) {
		t.Errorf("flipping origin = %v", s.Flipping.Origin)
	}
	quad := s.Bottom.Outline
	if len(quad) != 4 || quad[0] != geometry.Pt(100, 100) || !quad[1].ApproxEqual(geometry.Pt(400, 100), 1e-9) {
		t.Errorf("flat hard bottom page = %v", quad)
	}
}

func TestHingeOutline(t *testing.T) {
	r := mustNew(t, fixedOptions(), 800, 600, nil)
	tests := []struct {
		dir   flip.Direction
		angle float64
		outer float64
	}{
		{flip.Forward, 180, 700},
		{flip.Forward, 90, 400},
		{flip.Forward, 0, 100},
		{flip.Back, -180, 100},
		{flip.Back, 0, 700},
	}
	for _, tt := range tests {
		r.SetDirection(tt.dir)
		quad := r.hingeOutline(page.Left, tt.angle, true)
		if math.Abs(quad[1].X-tt.outer) > 1e-9 {
			t.Errorf("%v at %v: outer edge x = %v, want %v", tt.dir, tt.angle, quad[1].X, tt.outer)
		}
	}
	quad := r.hingeOutline(page.Left, 90, true)
	if quad[1].Y <= quad[0].Y {
		t.Error("upright hard page must be drawn in perspective")
	}
}

func TestFrameReportsDrawerError(t *testing.T) {
	h := useHandler(t)
	boom := errors.New("disk full")
	r := mustNew(t, fixedOptions(), 800, 600, DrawerFunc(func(*Scene) error { return boom }))

	err := r.Frame(time.Now())
	var fe *flerrors.FlipError
	if !errors.As(err, &fe) || fe.Kind != flerrors.KindRender || !errors.Is(err, boom) {
		t.Fatalf("Frame err = %v", err)
	}
	if len(h.Errors()) != 1 {
		t.Errorf("reported %d errors", len(h.Errors()))
	}
}

func TestFrameRecoversDrawerPanic(t *testing.T) {
	h := useHandler(t)
	r := mustNew(t, fixedOptions(), 800, 600, DrawerFunc(func(*Scene) error { panic("bad scene") }))

	err := r.Frame(time.Now())
	var pe *flerrors.PanicError
	if !errors.As(err, &pe) || pe.Value != "bad scene" {
		t.Fatalf("Frame err = %v", err)
	}
	if len(h.Panics()) != 1 {
		t.Errorf("reported %d panics", len(h.Panics()))
	}
}
