package flip

import "fmt"

// Direction is the way a page turns.
type Direction int

const (
	// Forward turns toward the end of the book.
	Forward Direction = iota
	// Back turns toward the start of the book.
	Back
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Back:
		return "back"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Corner is the horizontal half of the page the fold pivots from.
type Corner int

const (
	Top Corner = iota
	Bottom
)

func (c Corner) String() string {
	switch c {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Corner(%d)", int(c))
	}
}

// Orientation is the book layout: two pages side by side or a single page.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

func (o Orientation) String() string {
	switch o {
	case Landscape:
		return "landscape"
	case Portrait:
		return "portrait"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}
