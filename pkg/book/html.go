package book

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-drift/pageflip/pkg/page"
	"golang.org/x/net/html"
)

// PageClass is the class that marks an element as a book page.
const PageClass = "page"

// ErrNoPages is returned when a page source yields no pages.
var ErrNoPages = errors.New("no pages found")

// PagesFromHTML reads page descriptors from markup. Every element whose
// class list contains PageClass becomes a page, in document order:
//
//	<div class="page" data-density="hard" id="cover">...</div>
//
// data-density is "soft" (the default) or "hard". The page name is taken
// from data-name, then id.
func PagesFromHTML(r io.Reader) ([]*page.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}

	var pages []*page.Page
	var walkErr error
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, PageClass) {
			density, err := page.ParseDensity(attr(n, "data-density"))
			if err != nil {
				walkErr = fmt.Errorf("page %d: %w", len(pages), err)
				return
			}
			p := page.New(len(pages), density)
			name := attr(n, "data-name")
			if name == "" {
				name = attr(n, "id")
			}
			p.SetName(name)
			pages = append(pages, p)
			// Pages do not nest.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if walkErr != nil {
		return nil, walkErr
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

// PagesFromNames returns one soft page per name, such as a list of image
// files.
func PagesFromNames(names []string) []*page.Page {
	pages := make([]*page.Page, len(names))
	for i, name := range names {
		pages[i] = page.New(i, page.Soft)
		pages[i].SetName(name)
	}
	return pages
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
