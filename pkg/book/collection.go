// Package book groups pages into spreads and tracks which spread is open.
package book

import (
	"errors"
	"fmt"

	"github.com/go-drift/pageflip/pkg/flip"
	"github.com/go-drift/pageflip/pkg/page"
)

// ErrOutOfRange is returned when a page or spread index does not exist.
var ErrOutOfRange = errors.New("index out of range")

// Renderer shows the pages of the open spread.
type Renderer interface {
	Orientation() flip.Orientation
	SetLeftPage(p *page.Page)
	SetRightPage(p *page.Page)
}

// Spread is the list of page indices shown together: two in landscape,
// one in portrait or for a lone cover.
type Spread []int

// Collection holds the pages of a book and the open spread. It implements
// flip.PageCollection.
type Collection struct {
	render    Renderer
	pages     []*page.Page
	showCover bool

	landscape []Spread
	portrait  []Spread

	currentPage   int
	currentSpread int

	onPageIndex func(int)
}

var _ flip.PageCollection = (*Collection)(nil)

// New builds the spreads for pages. With showCover the first page is a
// hard cover shown alone. A trailing page without a partner is made hard
// too.
func New(render Renderer, pages []*page.Page, showCover bool) *Collection {
	c := &Collection{
		render:    render,
		pages:     pages,
		showCover: showCover,
	}
	c.createSpreads()
	return c
}

// OnPageIndex registers fn to be called whenever a spread is shown, with
// the index of its first page.
func (c *Collection) OnPageIndex(fn func(int)) { c.onPageIndex = fn }

func (c *Collection) createSpreads() {
	c.landscape = c.landscape[:0]
	c.portrait = c.portrait[:0]

	for i := range c.pages {
		c.portrait = append(c.portrait, Spread{i})
	}
	if len(c.pages) == 0 {
		return
	}

	start := 0
	if c.showCover {
		c.pages[0].SetDensity(page.Hard)
		c.landscape = append(c.landscape, Spread{0})
		start = 1
	}
	for i := start; i < len(c.pages); i += 2 {
		if i < len(c.pages)-1 {
			c.landscape = append(c.landscape, Spread{i, i + 1})
			continue
		}
		c.landscape = append(c.landscape, Spread{i})
		c.pages[i].SetDensity(page.Hard)
	}
}

// Spreads returns the spreads for the current orientation.
func (c *Collection) Spreads() []Spread {
	if c.render.Orientation() == flip.Landscape {
		return c.landscape
	}
	return c.portrait
}

// SpreadIndexByPage returns the spread holding pageIndex.
func (c *Collection) SpreadIndexByPage(pageIndex int) (int, bool) {
	for i, s := range c.Spreads() {
		for _, p := range s {
			if p == pageIndex {
				return i, true
			}
		}
	}
	return 0, false
}

// PageCount returns the number of pages.
func (c *Collection) PageCount() int { return len(c.pages) }

// Pages returns the page list. It must not be modified.
func (c *Collection) Pages() []*page.Page { return c.pages }

// Page returns the page at index.
func (c *Collection) Page(index int) (*page.Page, error) {
	if index < 0 || index >= len(c.pages) {
		return nil, fmt.Errorf("page %d: %w", index, ErrOutOfRange)
	}
	return c.pages[index], nil
}

func (c *Collection) indexOf(p *page.Page) int {
	for i, q := range c.pages {
		if q == p {
			return i
		}
	}
	return -1
}

// NextBy returns the page after p, or nil.
func (c *Collection) NextBy(p *page.Page) *page.Page {
	i := c.indexOf(p)
	if i < 0 || i >= len(c.pages)-1 {
		return nil
	}
	return c.pages[i+1]
}

// PrevBy returns the page before p, or nil.
func (c *Collection) PrevBy(p *page.Page) *page.Page {
	if i := c.indexOf(p); i > 0 {
		return c.pages[i-1]
	}
	return nil
}

// neighbourSpread returns the spread a flip in dir turns to.
func (c *Collection) neighbourSpread(dir flip.Direction) (Spread, error) {
	i := c.currentSpread + 1
	if dir == flip.Back {
		i = c.currentSpread - 1
	}
	spreads := c.Spreads()
	if i < 0 || i >= len(spreads) {
		return nil, fmt.Errorf("spread %d: %w", i, ErrOutOfRange)
	}
	return spreads[i], nil
}

// FlippingPage returns the page that turns over in a flip in dir. In
// portrait mode a forward flip turns a copy of the current page so the
// original stays in place.
func (c *Collection) FlippingPage(dir flip.Direction) (*page.Page, error) {
	if c.render.Orientation() == flip.Portrait {
		if dir == flip.Forward {
			p, err := c.Page(c.currentSpread)
			if err != nil {
				return nil, err
			}
			return p.NewTemporaryCopy(), nil
		}
		return c.Page(c.currentSpread - 1)
	}

	s, err := c.neighbourSpread(dir)
	if err != nil {
		return nil, err
	}
	if len(s) == 1 || dir == flip.Forward {
		return c.pages[s[0]], nil
	}
	return c.pages[s[1]], nil
}

// BottomPage returns the page revealed under the flipping page.
func (c *Collection) BottomPage(dir flip.Direction) (*page.Page, error) {
	if c.render.Orientation() == flip.Portrait {
		if dir == flip.Forward {
			return c.Page(c.currentSpread + 1)
		}
		return c.Page(c.currentSpread - 1)
	}

	s, err := c.neighbourSpread(dir)
	if err != nil {
		return nil, err
	}
	if len(s) == 1 {
		return c.pages[s[0]], nil
	}
	if dir == flip.Forward {
		return c.pages[s[1]], nil
	}
	return c.pages[s[0]], nil
}

// ShowNext opens the next spread, if any.
func (c *Collection) ShowNext() {
	if c.currentSpread < len(c.Spreads())-1 {
		c.currentSpread++
		c.showSpread()
	}
}

// ShowPrev opens the previous spread, if any.
func (c *Collection) ShowPrev() {
	if c.currentSpread > 0 {
		c.currentSpread--
		c.showSpread()
	}
}

// CurrentPageIndex returns the first page of the open spread.
func (c *Collection) CurrentPageIndex() int { return c.currentPage }

// CurrentSpreadIndex returns the index of the open spread.
func (c *Collection) CurrentSpreadIndex() int { return c.currentSpread }

// SetCurrentSpreadIndex moves to spread i without showing it.
func (c *Collection) SetCurrentSpreadIndex(i int) error {
	if i < 0 || i >= len(c.Spreads()) {
		return fmt.Errorf("spread %d: %w", i, ErrOutOfRange)
	}
	c.currentSpread = i
	return nil
}

// Show opens the spread holding pageIndex. Indices outside the book are
// ignored.
func (c *Collection) Show(pageIndex int) {
	if pageIndex < 0 || pageIndex >= len(c.pages) {
		return
	}
	if i, ok := c.SpreadIndexByPage(pageIndex); ok {
		c.currentSpread = i
		c.showSpread()
	}
}

// Redraw shows the spread of the current page again, for example after
// the orientation changed and the spreads were regrouped.
func (c *Collection) Redraw() { c.Show(c.currentPage) }

func (c *Collection) showSpread() {
	spreads := c.Spreads()
	if c.currentSpread >= len(spreads) {
		return
	}
	s := spreads[c.currentSpread]

	switch {
	case len(s) == 2:
		c.render.SetLeftPage(c.pages[s[0]])
		c.render.SetRightPage(c.pages[s[1]])
	case c.render.Orientation() == flip.Landscape && s[0] == len(c.pages)-1:
		// The back cover lies on the left.
		c.render.SetLeftPage(c.pages[s[0]])
		c.render.SetRightPage(nil)
	default:
		c.render.SetLeftPage(nil)
		c.render.SetRightPage(c.pages[s[0]])
	}

	c.currentPage = s[0]
	if c.onPageIndex != nil {
		c.onPageIndex(c.currentPage)
	}
}
