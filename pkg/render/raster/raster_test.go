package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/page"
	"github.com/go-drift/pageflip/pkg/render"
)

func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool {
		if x > y {
			return x-y <= 2
		}
		return y-x <= 2
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func spread() *render.Scene {
	rect := geometry.PageRect{Left: 10, Top: 10, Width: 80, Height: 60, PageWidth: 40}
	return &render.Scene{
		Rect:    rect,
		Visible: rect.Rect(),
		Left: &render.PageView{
			Index:   0,
			Outline: geometry.RectFromLTWH(10, 10, 40, 60).Corners(),
		},
		Right: &render.PageView{
			Index:   1,
			Outline: geometry.RectFromLTWH(50, 10, 40, 60).Corners(),
		},
	}
}

func TestPaintPages(t *testing.T) {
	img := Paint(spread(), 100, 80, render.DefaultPalette)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"background", 2, 2, render.DefaultPalette.Background},
		{"left page", 30, 40, render.DefaultPalette.Pages[0]},
		{"right page", 70, 40, render.DefaultPalette.Pages[1]},
		{"below book", 50, 75, render.DefaultPalette.Background},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); !near(got, tt.want) {
			t.Errorf("%s at (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPaintHardPage(t *testing.T) {
	s := spread()
	s.Right.Density = page.Hard
	img := Paint(s, 100, 80, render.DefaultPalette)
	if got := img.RGBAAt(70, 40); !near(got, render.DefaultPalette.Hard) {
		t.Errorf("hard page = %v, want %v", got, render.DefaultPalette.Hard)
	}
}

func TestPaintClipsToVisible(t *testing.T) {
	s := spread()
	s.Orientation = flip.Portrait
	s.Visible = geometry.RectFromLTWH(50, 10, 40, 60)
	img := Paint(s, 100, 80, render.DefaultPalette)
	if got := img.RGBAAt(30, 40); !near(got, render.DefaultPalette.Background) {
		t.Errorf("hidden half = %v, want background", got)
	}
	if got := img.RGBAAt(70, 40); !near(got, render.DefaultPalette.Pages[1]) {
		t.Errorf("visible half = %v", got)
	}
}

func TestPaintShadowDarkens(t *testing.T) {
	s := spread()
	// A vertical fold at x=60 shading towards +x.
	s.Shadow = &render.Shadow{Pos: geometry.Pt(60, 10), Angle: 1.5707963267948966, Width: 20, Opacity: 0.5, Direction: flip.Forward}
	img := Paint(s, 100, 80, render.DefaultPalette)

	shaded := img.RGBAAt(70, 40)
	plain := img.RGBAAt(55, 40)
	if shaded.R >= plain.R {
		t.Errorf("shadow did not darken: shaded %v, plain %v", shaded, plain)
	}
}

func TestPaintDegenerate(t *testing.T) {
	s := spread()
	s.Right.Outline = s.Right.Outline[:2]
	img := Paint(s, 100, 80, render.DefaultPalette)
	if got := img.RGBAAt(70, 40); !near(got, render.DefaultPalette.Background) {
		t.Errorf("two-point outline painted %v", got)
	}
	if empty := Paint(s, 0, 0, render.DefaultPalette); !empty.Bounds().Empty() {
		t.Errorf("zero size image bounds = %v", empty.Bounds())
	}
}

func TestDrawerFrames(t *testing.T) {
	d := NewDrawer(100, 80)
	var seen int
	d.OnFrame = func(img *image.RGBA, s *render.Scene) error {
		seen++
		return nil
	}
	for range 3 {
		if err := d.Draw(spread()); err != nil {
			t.Fatal(err)
		}
	}
	if d.Frames() != 3 || seen != 3 || d.Last() == nil {
		t.Errorf("frames = %d seen = %d last = %v", d.Frames(), seen, d.Last() != nil)
	}

	boom := errors.New("sink closed")
	d.OnFrame = func(*image.RGBA, *render.Scene) error { return boom }
	if err := d.Draw(spread()); !errors.Is(err, boom) {
		t.Errorf("Draw err = %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	img := Paint(spread(), 100, 80, render.DefaultPalette)
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v", got.Bounds())
	}
}

func TestPNGSequence(t *testing.T) {
	dir := t.TempDir()
	d := NewDrawer(20, 20)
	d.OnFrame = PNGSequence(dir)
	for range 2 {
		if err := d.Draw(spread()); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"frame-0000.png", "frame-0001.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
