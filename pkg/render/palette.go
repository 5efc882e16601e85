package render

import (
	"image/color"

	"github.com/go-drift/pageflip/pkg/page"
)

// Palette holds the colours drawers use for a scene.
type Palette struct {
	Background color.RGBA
	// Pages are cycled by page index so neighbouring pages differ.
	Pages  []color.RGBA
	Hard   color.RGBA
	Shadow color.RGBA
	Label  color.RGBA
}

// DefaultPalette is a light paper palette on a dark desk.
var DefaultPalette = Palette{
	Background: color.RGBA{R: 0x3c, G: 0x3f, B: 0x41, A: 0xff},
	Pages: []color.RGBA{
		{R: 0xfa, G: 0xf6, B: 0xee, A: 0xff},
		{R: 0xe8, G: 0xdf, B: 0xcc, A: 0xff},
	},
	Hard:   color.RGBA{R: 0x8b, G: 0x5a, B: 0x2b, A: 0xff},
	Shadow: color.RGBA{A: 0xff},
	Label:  color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff},
}

// PageColor returns the fill colour of v.
func (p Palette) PageColor(v *PageView) color.RGBA {
	if v.Density == page.Hard || len(p.Pages) == 0 {
		return p.Hard
	}
	i := v.Index % len(p.Pages)
	if i < 0 {
		i += len(p.Pages)
	}
	return p.Pages[i]
}
