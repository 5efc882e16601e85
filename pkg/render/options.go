package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-drift/pageflip/pkg/animation"
	flerrors "github.com/go-drift/pageflip/pkg/errors"
)

// SizeMode selects how the book is sized inside its block.
type SizeMode int

const (
	// Fixed keeps the configured page size and centres the book.
	Fixed SizeMode = iota
	// Stretch scales the pages to fill the block within the min/max bounds.
	Stretch
)

func (m SizeMode) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Stretch:
		return "stretch"
	default:
		return fmt.Sprintf("SizeMode(%d)", int(m))
	}
}

// ParseSizeMode converts "fixed" or "stretch" to a SizeMode. An empty string
// is Fixed.
func ParseSizeMode(s string) (SizeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return Fixed, nil
	case "stretch":
		return Stretch, nil
	default:
		return Fixed, &flerrors.ValidationError{Field: "size", Value: s, Reason: "must be fixed or stretch"}
	}
}

// Options configure a Render.
type Options struct {
	Size SizeMode
	// Width and Height are the page size. In stretch mode only their ratio
	// is used.
	Width  float64
	Height float64

	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64

	// UsePortrait allows a single-page layout when the block is too narrow
	// for two pages.
	UsePortrait bool
	// DrawShadow enables the fold shadow.
	DrawShadow bool
	// MaxShadowOpacity is the shadow opacity at the start of a turn, in [0, 1].
	MaxShadowOpacity float64

	// Curve eases frame selection. Nil plays frames linearly.
	Curve animation.Curve
}

func (o Options) validate() error {
	positive := func(field string, v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return &flerrors.ValidationError{Field: field, Value: v, Reason: "must be a positive number"}
		}
		return nil
	}
	if err := positive("width", o.Width); err != nil {
		return err
	}
	if err := positive("height", o.Height); err != nil {
		return err
	}
	if o.MaxShadowOpacity < 0 || o.MaxShadowOpacity > 1 {
		return &flerrors.ValidationError{Field: "maxShadowOpacity", Value: o.MaxShadowOpacity, Reason: "must be within [0, 1]"}
	}
	if o.Size == Stretch {
		if o.MaxWidth > 0 && o.MaxWidth < o.MinWidth {
			return &flerrors.ValidationError{Field: "maxWidth", Value: o.MaxWidth, Reason: "must not be below minWidth"}
		}
	}
	return nil
}
