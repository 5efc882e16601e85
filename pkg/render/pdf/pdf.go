// Package pdf exports flip animations as PDF flipbooks, one PDF page per
// drawn frame.
package pdf

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/go-drift/pageflip/pkg/geometry"
	"github.com/go-drift/pageflip/pkg/render"
)

// Options describe the exported document.
type Options struct {
	Title   string
	Author  string
	Creator string
	// Labels prints each page's name or index on the flat pages.
	Labels bool
	// CreationDate is stamped into the document. Zero leaves it unset so
	// fpdf uses the current time.
	CreationDate time.Time
}

// Exporter is a render.Drawer that appends every scene as a PDF page sized
// to the render block.
type Exporter struct {
	doc     *fpdf.Fpdf
	palette render.Palette
	opts    Options
	pages   int
}

var _ render.Drawer = (*Exporter)(nil)

// New returns an exporter whose pages are width by height points.
func New(width, height float64, opts Options) *Exporter {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetTitle(opts.Title, true)
	doc.SetAuthor(opts.Author, true)
	creator := opts.Creator
	if creator == "" {
		creator = "pageflip"
	}
	doc.SetCreator(creator, true)
	if !opts.CreationDate.IsZero() {
		doc.SetCreationDate(opts.CreationDate)
		doc.SetModificationDate(opts.CreationDate)
	}
	doc.SetFont("Helvetica", "", 10)
	return &Exporter{doc: doc, palette: render.DefaultPalette, opts: opts}
}

// SetPalette changes the colours used for pages drawn after the call.
func (e *Exporter) SetPalette(p render.Palette) { e.palette = p }

// Pages returns the number of frames exported so far.
func (e *Exporter) Pages() int { return e.pages }

// Draw appends s as a new page.
func (e *Exporter) Draw(s *render.Scene) error {
	d := e.doc
	if d.Err() {
		return d.Error()
	}
	d.AddPage()
	e.pages++

	w, h := d.GetPageSize()
	bg := e.palette.Background
	d.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	d.Rect(0, 0, w, h, "F")

	v := s.Visible
	d.ClipRect(v.Left, v.Top, v.Width, v.Height, false)
	for _, pv := range s.Pages() {
		e.fillPolygon(pv.Outline, e.palette.PageColor(pv))
	}
	if e.opts.Labels {
		e.label(s.Left)
		e.label(s.Right)
	}
	if sh := s.Shadow; sh != nil && sh.Opacity > 0 && sh.Width > 0 {
		d.SetAlpha(sh.Opacity, "Normal")
		e.fillPolygon(sh.Strip(s.Rect.Height), e.palette.Shadow)
		d.SetAlpha(1, "Normal")
	}
	d.ClipEnd()

	if d.Err() {
		return fmt.Errorf("pdf page %d: %w", e.pages, d.Error())
	}
	return nil
}

func (e *Exporter) fillPolygon(poly []geometry.Point, c color.Color) {
	if len(poly) < 3 {
		return
	}
	r, g, b, _ := c.RGBA()
	e.doc.SetFillColor(int(r>>8), int(g>>8), int(b>>8))
	pts := make([]fpdf.PointType, len(poly))
	for i, p := range poly {
		pts[i] = fpdf.PointType{X: p.X, Y: p.Y}
	}
	e.doc.Polygon(pts, "F")
}

func (e *Exporter) label(v *render.PageView) {
	if v == nil {
		return
	}
	text := v.Name
	if text == "" {
		text = strconv.Itoa(v.Index + 1)
	}
	c := e.palette.Label
	e.doc.SetTextColor(int(c.R), int(c.G), int(c.B))
	e.doc.Text(v.Origin.X+8, v.Origin.Y+16, text)
}

// Output writes the document to w and closes it.
func (e *Exporter) Output(w io.Writer) error {
	return e.doc.Output(w)
}

// Save writes the document to path, creating the directory if needed.
func (e *Exporter) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return e.doc.OutputFileAndClose(path)
}
