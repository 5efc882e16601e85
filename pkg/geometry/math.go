package geometry

import (
	"errors"
	"math"
)

// collinearTolerance is the largest difference between the intercept
// determinants of two parallel lines for which they are considered the same
// line.
const collinearTolerance = 0.1

// ErrCollinear is returned by LineIntersection when both lines are parallel
// and coincide, so no single intersection point exists.
var ErrCollinear = errors.New("geometry: segments collinear")

// Distance returns the Euclidean distance between a and b. If either point is
// nil the result is +Inf, so any "closer than" comparison fails.
func Distance(a, b *Point) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}
	return a.DistanceTo(*b)
}

// AngleBetweenLines returns the angle in radians between two lines, computed
// from the dot product of their normal vectors.
//
// Rounding can push the cosine ratio slightly outside [-1, 1], in which case
// the result is NaN. Callers that need a guaranteed finite angle clamp the
// ratio themselves.
func AngleBetweenLines(l1, l2 Segment) float64 {
	a1 := l1[0].Y - l1[1].Y
	a2 := l2[0].Y - l2[1].Y
	b1 := l1[1].X - l1[0].X
	b2 := l2[1].X - l2[0].X

	return math.Acos((a1*a2 + b1*b2) / (math.Sqrt(a1*a1+b1*b1) * math.Sqrt(a2*a2+b2*b2)))
}

// RotatePoint rotates p by angle around the origin and then translates the
// result by origin. The sign of the y term is flipped relative to the usual
// math convention because y grows downward on screen.
func RotatePoint(p, origin Point, angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{
		X: p.X*cos + p.Y*sin + origin.X,
		Y: p.Y*cos - p.X*sin + origin.Y,
	}
}

// LimitPointToCircle keeps p within radius of center. A point already inside
// the circle is returned unchanged with limited=false; otherwise the result is
// the point where the ray from center through p crosses the circle.
func LimitPointToCircle(center Point, radius float64, p Point) (result Point, limited bool) {
	d := center.DistanceTo(p)
	if d <= radius {
		return p, false
	}
	k := radius / d
	return Point{
		X: center.X + (p.X-center.X)*k,
		Y: center.Y + (p.Y-center.Y)*k,
	}, true
}

// LineIntersection intersects the infinite lines through one and two.
//
// It returns (nil, nil) when the lines are parallel and distinct, and
// ErrCollinear when they are parallel and coincide within tolerance.
func LineIntersection(one, two Segment) (*Point, error) {
	a1 := one[0].Y - one[1].Y
	a2 := two[0].Y - two[1].Y

	b1 := one[1].X - one[0].X
	b2 := two[1].X - two[0].X

	c1 := one[0].X*one[1].Y - one[1].X*one[0].Y
	c2 := two[0].X*two[1].Y - two[1].X*two[0].Y

	det1 := a1*c2 - a2*c1
	det2 := b1*c2 - b2*c1

	denom := a1*b2 - a2*b1
	p := Point{
		X: -((c1*b2 - c2*b1) / denom),
		Y: -((a1*c2 - a2*c1) / denom),
	}
	if p.IsFinite() {
		return &p, nil
	}
	if math.Abs(det1-det2) < collinearTolerance {
		return nil, ErrCollinear
	}
	return nil, nil
}

// PointInRect returns p if it lies inside rect and nil otherwise.
func PointInRect(rect Rect, p *Point) *Point {
	if p == nil || !rect.Contains(*p) {
		return nil
	}
	return p
}

// SegmentIntersectionInRect intersects one and two as lines and discards the
// result if it falls outside rect.
func SegmentIntersectionInRect(rect Rect, one, two Segment) (*Point, error) {
	p, err := LineIntersection(one, two)
	if err != nil {
		return nil, err
	}
	return PointInRect(rect, p), nil
}
