// Package raster paints render scenes into RGBA images.
//
// Pages are flat colour polygons; the package draws the flip geometry, not
// page content.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/render"
	"golang.org/x/image/vector"
)

// Paint draws s into a new width by height image.
func Paint(s *render.Scene, width, height int, pal render.Palette) *image.RGBA {
	bounds := image.Rect(0, 0, width, height)
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.NewUniform(pal.Background), image.Point{}, draw.Src)
	if width <= 0 || height <= 0 {
		return dst
	}

	layer := image.NewRGBA(bounds)
	z := vector.NewRasterizer(width, height)
	z.DrawOp = draw.Over

	for _, v := range s.Pages() {
		fill(z, layer, v.Outline, pal.PageColor(v))
	}
	if s.Shadow != nil && s.Shadow.Opacity > 0 && s.Shadow.Width > 0 {
		c := pal.Shadow
		c.A = uint8(math.Round(float64(c.A) * clamp01(s.Shadow.Opacity)))
		fill(z, layer, s.Shadow.Strip(s.Rect.Height), premultiply(c))
	}

	visible := pixelRect(s.Visible).Intersect(bounds)
	draw.Draw(dst, visible, layer, visible.Min, draw.Over)
	return dst
}

// fill rasterises the polygon poly onto dst. Polygons with fewer than three
// points cover nothing.
func fill(z *vector.Rasterizer, dst draw.Image, poly []geometry.Point, c color.RGBA) {
	if len(poly) < 3 {
		return
	}
	size := z.Size()
	z.Reset(size.X, size.Y)
	z.DrawOp = draw.Over
	z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
	for _, p := range poly[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// premultiply scales the colour channels by alpha, as color.RGBA requires.
func premultiply(c color.RGBA) color.RGBA {
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 0xff),
		G: uint8(uint32(c.G) * a / 0xff),
		B: uint8(uint32(c.B) * a / 0xff),
		A: c.A,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

// Drawer is a render.Drawer producing one image per frame.
type Drawer struct {
	Width   int
	Height  int
	Palette render.Palette
	// OnFrame receives every painted frame. It may be nil.
	OnFrame func(img *image.RGBA, s *render.Scene) error

	last   *image.RGBA
	frames int
}

var _ render.Drawer = (*Drawer)(nil)

// NewDrawer returns a Drawer with the default palette.
func NewDrawer(width, height int) *Drawer {
	return &Drawer{Width: width, Height: height, Palette: render.DefaultPalette}
}

func (d *Drawer) Draw(s *render.Scene) error {
	img := Paint(s, d.Width, d.Height, d.Palette)
	d.last = img
	d.frames++
	if d.OnFrame != nil {
		return d.OnFrame(img, s)
	}
	return nil
}

// Last returns the most recent frame, or nil before the first Draw.
func (d *Drawer) Last() *image.RGBA { return d.last }

// Frames returns the number of frames drawn.
func (d *Drawer) Frames() int { return d.frames }

// EncodePNG writes img as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// WritePNG writes img to path.
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return EncodePNG(f, img)
}

// PNGSequence returns an OnFrame hook that writes frames to dir as
// frame-0000.png, frame-0001.png and so on.
func PNGSequence(dir string) func(img *image.RGBA, s *render.Scene) error {
	n := 0
	return func(img *image.RGBA, _ *render.Scene) error {
		path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", n))
		n++
		return WritePNG(path, img)
	}
}
