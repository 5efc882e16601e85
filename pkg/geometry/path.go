package geometry

import "math"

// DiscretizedPath returns the points on the straight line from p1 to p2 at
// unit resolution along the dominant axis. The first element is exactly p1,
// the last exactly p2, and the length is ceil(max(|dx|, |dy|)) + 1.
//
// The animation player uses one frame per point, so the duration of a flip
// scales with the distance it travels.
func DiscretizedPath(p1, p2 Point) []Point {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps <= 0 {
		return []Point{p1}
	}

	path := make([]Point, steps+1)
	path[0] = p1
	for i := 1; i < steps; i++ {
		t := float64(i) / float64(steps)
		path[i] = Point{X: p1.X + dx*t, Y: p1.Y + dy*t}
	}
	path[steps] = p2
	return path
}
