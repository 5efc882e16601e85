package flip

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-drift/pageflip/pkg/geometry"
)

const (
	// DefaultMinFlatAngle is the smallest remaining angle to flat, in
	// radians, for which a fold is still computed.
	DefaultMinFlatAngle = 0.003
	// DefaultClipMinSeparation is the minimum distance between the side and
	// top intersections for the side point to enter the bottom clip area.
	DefaultClipMinSeparation = 10.0

	// cornerTolerance is how close, in pixels, the pulled corner may come to
	// the far top corner before the fold is rejected.
	cornerTolerance = 1.0
	// boundsMargin expands the page rectangle used to accept intersections.
	boundsMargin = 1.0
)

// FoldErrorKind classifies why a fold could not be computed.
type FoldErrorKind int

const (
	// FoldInvalidPage means the page dimensions are not positive and finite.
	FoldInvalidPage FoldErrorKind = iota
	// FoldNonFiniteAngle means the rotation angle came out NaN or infinite.
	FoldNonFiniteAngle
	// FoldAngleTooFlat means the page is within MinFlatAngle of lying flat.
	FoldAngleTooFlat
	// FoldCornerTooClose means the pulled corner sits on the far top corner.
	FoldCornerTooClose
	// FoldCollinear means a page edge coincides with a book border.
	FoldCollinear
)

func (k FoldErrorKind) String() string {
	switch k {
	case FoldInvalidPage:
		return "invalid page"
	case FoldNonFiniteAngle:
		return "non-finite angle"
	case FoldAngleTooFlat:
		return "angle too flat"
	case FoldCornerTooClose:
		return "corner too close"
	case FoldCollinear:
		return "collinear"
	default:
		return fmt.Sprintf("FoldErrorKind(%d)", int(k))
	}
}

// FoldError reports a degenerate fold. It never escapes the controller; a
// failed fold only means the frame keeps its previous geometry.
type FoldError struct {
	Kind FoldErrorKind
	Pos  geometry.Point
	Err  error
}

func (e *FoldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fold at (%.2f, %.2f): %s: %v", e.Pos.X, e.Pos.Y, e.Kind, e.Err)
	}
	return fmt.Sprintf("fold at (%.2f, %.2f): %s", e.Pos.X, e.Pos.Y, e.Kind)
}

func (e *FoldError) Unwrap() error {
	return e.Err
}

// IsFoldError reports whether err is a *FoldError of the given kind.
func IsFoldError(err error, kind FoldErrorKind) bool {
	var fe *FoldError
	return errors.As(err, &fe) && fe.Kind == kind
}

// Params fixes everything about a fold except the pointer position. It is
// constant for the lifetime of one gesture.
type Params struct {
	Direction  Direction
	Corner     Corner
	PageWidth  float64
	PageHeight float64

	// MinFlatAngle overrides DefaultMinFlatAngle when positive.
	MinFlatAngle float64
	// ClipMinSeparation overrides DefaultClipMinSeparation when positive.
	ClipMinSeparation float64
}

func (p Params) validate() error {
	if !(p.PageWidth > 0) || !(p.PageHeight > 0) || math.IsInf(p.PageWidth, 0) || math.IsInf(p.PageHeight, 0) {
		return &FoldError{
			Kind: FoldInvalidPage,
			Err:  fmt.Errorf("page size %vx%v", p.PageWidth, p.PageHeight),
		}
	}
	return nil
}

func (p Params) minFlatAngle() float64 {
	if p.MinFlatAngle > 0 {
		return p.MinFlatAngle
	}
	return DefaultMinFlatAngle
}

func (p Params) clipMinSeparation() float64 {
	if p.ClipMinSeparation > 0 {
		return p.ClipMinSeparation
	}
	return DefaultClipMinSeparation
}

// Fold is the immutable geometry of a page folded at one pointer position.
// All points are in page-relative coordinates: x runs from the spine (0)
// to the outer edge (PageWidth) of the page being turned.
type Fold struct {
	params   Params
	angle    float64
	rect     geometry.RectPoints
	position geometry.Point

	// Intersections of the folded page with the top, outer side and bottom
	// borders of the book. Each is nil when the fold does not cross it.
	top    *geometry.Point
	side   *geometry.Point
	bottom *geometry.Point
}

// ComputeFold computes the fold for a pointer at pos. It returns a
// *FoldError when the position is degenerate.
func ComputeFold(p Params, pos geometry.Point) (Fold, error) {
	if err := p.validate(); err != nil {
		return Fold{}, err
	}

	f := Fold{params: p}
	result, err := f.placeAndLimit(pos)
	if err != nil {
		return Fold{}, err
	}

	if math.Abs(result.X-p.PageWidth) <= cornerTolerance && math.Abs(result.Y) <= cornerTolerance {
		return Fold{}, &FoldError{Kind: FoldCornerTooClose, Pos: pos}
	}
	f.position = result

	if err := f.intersect(); err != nil {
		return Fold{}, &FoldError{Kind: FoldCollinear, Pos: pos, Err: err}
	}
	return f, nil
}

// placeAndLimit computes the angle and rotated rectangle for pos, then pulls
// pos back onto the arcs a real sheet of paper can reach.
func (f *Fold) placeAndLimit(pos geometry.Point) (geometry.Point, error) {
	if err := f.place(pos); err != nil {
		return pos, err
	}

	w, h := f.params.PageWidth, f.params.PageHeight
	spineCorner := geometry.Pt(0, 0)
	oppositeCorner := geometry.Pt(0, h)
	if f.params.Corner == Bottom {
		spineCorner, oppositeCorner = oppositeCorner, spineCorner
	}

	// The corner being pulled is attached to the spine by the top (or bottom)
	// edge, so it can never be further than one page width from it.
	result := pos
	if limited, ok := geometry.LimitPointToCircle(spineCorner, w, result); ok {
		result = limited
		if err := f.place(result); err != nil {
			return pos, err
		}
	}

	farCorner, nearCorner := f.rect.BottomRight, f.rect.TopLeft
	if f.params.Corner == Bottom {
		farCorner, nearCorner = f.rect.TopRight, f.rect.BottomLeft
	}

	// Once the far corner swings past the spine, the diagonal becomes the
	// limiting edge.
	if farCorner.X <= 0 {
		diagonal := math.Hypot(w, h)
		if limited, ok := geometry.LimitPointToCircle(oppositeCorner, diagonal, nearCorner); ok {
			result = limited
			if err := f.place(result); err != nil {
				return pos, err
			}
		}
	}
	return result, nil
}

func (f *Fold) place(pos geometry.Point) error {
	angle, err := f.angleAt(pos)
	if err != nil {
		return err
	}
	f.angle = angle
	f.rect = f.rectAt(pos)
	return nil
}

func (f *Fold) angleAt(pos geometry.Point) (float64, error) {
	left := f.params.PageWidth - pos.X + 1
	top := pos.Y
	if f.params.Corner == Bottom {
		top = f.params.PageHeight - pos.Y
	}

	angle := 2 * math.Acos(left/math.Sqrt(top*top+left*left))
	if top < 0 {
		angle = -angle
	}

	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0, &FoldError{Kind: FoldNonFiniteAngle, Pos: pos}
	}
	if da := math.Pi - angle; da >= 0 && da < f.params.minFlatAngle() {
		return 0, &FoldError{Kind: FoldAngleTooFlat, Pos: pos}
	}

	if f.params.Corner == Bottom {
		angle = -angle
	}
	return angle, nil
}

func (f *Fold) rectAt(pos geometry.Point) geometry.RectPoints {
	w, h := f.params.PageWidth, f.params.PageHeight
	top, bottom := 0.0, h
	if f.params.Corner == Bottom {
		top, bottom = -h, 0
	}
	rotate := func(p geometry.Point) geometry.Point {
		return geometry.RotatePoint(p, pos, f.angle)
	}
	return geometry.RectPoints{
		TopLeft:     rotate(geometry.Pt(0, top)),
		TopRight:    rotate(geometry.Pt(w, top)),
		BottomLeft:  rotate(geometry.Pt(0, bottom)),
		BottomRight: rotate(geometry.Pt(w, bottom)),
	}
}

func (f *Fold) intersect() error {
	w, h := f.params.PageWidth, f.params.PageHeight
	bounds := geometry.RectFromLTWH(0, 0, w, h).Inflate(boundsMargin)

	topBorder := geometry.Seg(geometry.Pt(0, 0), geometry.Pt(w, 0))
	sideBorder := geometry.Seg(geometry.Pt(w, 0), geometry.Pt(w, h))
	bottomBorder := geometry.Seg(geometry.Pt(0, h), geometry.Pt(w, h))

	pos := f.position
	topEdge := geometry.Seg(pos, f.rect.TopRight)
	sideEdge := geometry.Seg(pos, f.rect.BottomLeft)
	if f.params.Corner == Bottom {
		topEdge = geometry.Seg(f.rect.TopLeft, f.rect.TopRight)
		sideEdge = geometry.Seg(pos, f.rect.TopLeft)
	}
	bottomEdge := geometry.Seg(f.rect.BottomLeft, f.rect.BottomRight)

	var err error
	if f.top, err = geometry.SegmentIntersectionInRect(bounds, topEdge, topBorder); err != nil {
		return err
	}
	if f.side, err = geometry.SegmentIntersectionInRect(bounds, sideEdge, sideBorder); err != nil {
		return err
	}
	if f.bottom, err = geometry.SegmentIntersectionInRect(bounds, bottomEdge, bottomBorder); err != nil {
		return err
	}
	return nil
}

// Params returns the parameters the fold was computed with.
func (f Fold) Params() Params { return f.params }

// Direction returns the flip direction.
func (f Fold) Direction() Direction { return f.params.Direction }

// Corner returns the active corner.
func (f Fold) Corner() Corner { return f.params.Corner }

// Angle returns the page rotation in radians. The sign follows the flip
// direction.
func (f Fold) Angle() float64 {
	if f.params.Direction == Forward {
		return -f.angle
	}
	return f.angle
}

// Rect returns the four corners of the rotated page.
func (f Fold) Rect() geometry.RectPoints { return f.rect }

// Position returns the pointer position after limiting.
func (f Fold) Position() geometry.Point { return f.position }

// TopIntersection returns where the fold crosses the top border, or nil.
func (f Fold) TopIntersection() *geometry.Point { return f.top }

// SideIntersection returns where the fold crosses the outer side, or nil.
func (f Fold) SideIntersection() *geometry.Point { return f.side }

// BottomIntersection returns where the fold crosses the bottom border, or nil.
func (f Fold) BottomIntersection() *geometry.Point { return f.bottom }

// ActiveCorner returns the rotated corner the flipping page is drawn from.
func (f Fold) ActiveCorner() geometry.Point {
	if f.params.Direction == Forward {
		return f.rect.TopLeft
	}
	return f.rect.TopRight
}

// BottomPagePosition returns the origin of the page revealed underneath.
func (f Fold) BottomPagePosition() geometry.Point {
	if f.params.Direction == Back {
		return geometry.Pt(f.params.PageWidth, 0)
	}
	return geometry.Pt(0, 0)
}

// Progress returns how far the page has turned, from 0 at the outer edge
// (x = PageWidth) to 100 when the corner reaches the far side
// (x = -PageWidth).
func (f Fold) Progress() float64 {
	return math.Abs((f.position.X - f.params.PageWidth) / (2 * f.params.PageWidth) * 100)
}

// FlippingClipArea returns the clip polygon of the turning page. Missing
// intersections are left out.
func (f Fold) FlippingClipArea() []geometry.Point {
	area := make([]geometry.Point, 0, 5)
	area = append(area, f.rect.TopLeft)
	area = appendPoint(area, f.top)

	closeAlongSpine := f.side == nil
	if !closeAlongSpine {
		area = append(area, *f.side)
	}
	area = appendPoint(area, f.bottom)

	if closeAlongSpine || f.params.Corner == Bottom {
		area = append(area, f.rect.BottomLeft)
	}
	return area
}

// BottomClipArea returns the clip polygon of the page revealed underneath.
// Missing intersections are left out.
func (f Fold) BottomClipArea() []geometry.Point {
	w, h := f.params.PageWidth, f.params.PageHeight
	area := make([]geometry.Point, 0, 6)
	area = appendPoint(area, f.top)

	if f.params.Corner == Top {
		area = append(area, geometry.Pt(w, 0))
	} else {
		if f.top != nil {
			area = append(area, geometry.Pt(w, 0))
		}
		area = append(area, geometry.Pt(w, h))
	}

	if f.side != nil {
		if geometry.Distance(f.side, f.top) >= f.params.clipMinSeparation() {
			area = append(area, *f.side)
		}
	} else if f.params.Corner == Top {
		area = append(area, geometry.Pt(w, h))
	}

	area = appendPoint(area, f.bottom)
	area = appendPoint(area, f.top)
	return area
}

// ShadowStart returns where the fold shadow begins, or nil if the fold has
// no usable border intersection.
func (f Fold) ShadowStart() *geometry.Point {
	if f.params.Corner == Bottom && f.side != nil {
		return f.side
	}
	return f.top
}

// ShadowSegment returns the fold line the shadow is drawn along. ok is false
// when either end is missing.
func (f Fold) ShadowSegment() (seg geometry.Segment, ok bool) {
	first := f.ShadowStart()
	second := f.bottom
	if f.side != nil && first != f.side {
		second = f.side
	}
	if first == nil || second == nil {
		return geometry.Segment{}, false
	}
	return geometry.Seg(*first, *second), true
}

// ShadowAngle returns the angle between the fold line and the top edge of
// the page, mirrored for backward flips. ok is false when there is no fold
// line.
func (f Fold) ShadowAngle() (angle float64, ok bool) {
	seg, ok := f.ShadowSegment()
	if !ok {
		return 0, false
	}
	angle = geometry.AngleBetweenLines(seg, geometry.Seg(geometry.Pt(0, 0), geometry.Pt(f.params.PageWidth, 0)))
	if math.IsNaN(angle) {
		return 0, false
	}
	if f.params.Direction == Back {
		angle = math.Pi - angle
	}
	return angle, true
}

// ShadowLength returns the length of the fold line, or 0 without one.
func (f Fold) ShadowLength() float64 {
	seg, ok := f.ShadowSegment()
	if !ok {
		return 0
	}
	return seg.Length()
}

// HardAngle returns the hinge angle, in degrees, of a hard page at the
// fold's progress: 180 before the turn starts down to 0 when it completes.
// Backward flips negate it.
func (f Fold) HardAngle() float64 {
	angle := 90 * (200 - f.Progress()*2) / 100
	if f.params.Direction == Back {
		return -angle
	}
	return angle
}

func appendPoint(area []geometry.Point, p *geometry.Point) []geometry.Point {
	if p == nil {
		return area
	}
	return append(area, *p)
}
