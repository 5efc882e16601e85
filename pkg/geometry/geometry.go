// Package geometry provides the 2D primitives used by the page-flip engine:
// points, segments, rectangles and the line/circle math that turns a pointer
// position into a folded page.
//
// Optional points are represented as *Point. A nil *Point means "no point"
// and propagates through the intersection helpers as "no intersection".
package geometry

import "math"

// Point is a coordinate in one of the book's coordinate spaces (window,
// book-relative or page-relative). The space is implied by the caller.
type Point struct {
	X float64
	Y float64
}

// Pt is a convenience constructor for Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector sum p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ApproxEqual reports whether p and q are equal within tol on both axes.
func (p Point) ApproxEqual(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Ref returns a pointer to a copy of p, for use where an optional point is
// expected.
func (p Point) Ref() *Point {
	return &p
}

// Segment is an ordered pair of points. It is treated as an infinite line by
// LineIntersection and as a finite segment everywhere else.
type Segment [2]Point

// Seg is a convenience constructor for Segment.
func Seg(a, b Point) Segment {
	return Segment{a, b}
}

// Length returns the distance between the segment's endpoints.
func (s Segment) Length() float64 {
	return s[0].DistanceTo(s[1])
}

// Rect is an axis-aligned rectangle described by its top-left corner and size.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// RectFromLTWH constructs a Rect from left, top, width and height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{Left: left, Top: top, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.Left + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Corners returns the corners clockwise from the top-left.
func (r Rect) Corners() []Point {
	return []Point{
		Pt(r.Left, r.Top),
		Pt(r.Right(), r.Top),
		Pt(r.Right(), r.Bottom()),
		Pt(r.Left, r.Bottom()),
	}
}

// Inflate returns r grown by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{Left: r.Left - d, Top: r.Top - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// PageRect is the on-screen rectangle occupied by the whole open book. The
// book is always two pages wide; PageWidth is the width of a single page.
type PageRect struct {
	Left      float64
	Top       float64
	Width     float64
	Height    float64
	PageWidth float64
}

// Rect returns the bounds without the page width.
func (r PageRect) Rect() Rect {
	return Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

// RectPoints holds the four corners of the rotated flipping page.
type RectPoints struct {
	TopLeft     Point
	TopRight    Point
	BottomLeft  Point
	BottomRight Point
}

// Points returns the corners in drawing order (clockwise from top-left).
func (r RectPoints) Points() []Point {
	return []Point{r.TopLeft, r.TopRight, r.BottomRight, r.BottomLeft}
}

// Map applies fn to each corner.
func (r RectPoints) Map(fn func(Point) Point) RectPoints {
	return RectPoints{
		TopLeft:     fn(r.TopLeft),
		TopRight:    fn(r.TopRight),
		BottomLeft:  fn(r.BottomLeft),
		BottomRight: fn(r.BottomRight),
	}
}
