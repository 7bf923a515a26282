package detection

import "math"

// ArcLength returns the length of the polyline through pts. When closed is
// true the segment from the last point back to the first is included.
func ArcLength(pts []Point, closed bool) float64 {
	if len(pts) < 2 {
		return 0
	}

	var length float64
	for i := 1; i < len(pts); i++ {
		length += distance(pts[i-1], pts[i])
	}
	if closed {
		length += distance(pts[len(pts)-1], pts[0])
	}
	return length
}

// ContourArea returns the area enclosed by a closed contour (shoelace
// formula). The result is non-negative regardless of traversal direction.
func ContourArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}

	var twice int
	for i := range pts {
		j := (i + 1) % len(pts)
		twice += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(float64(twice)) / 2
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm. Points closer than epsilon to the simplified outline are
// dropped.
//
// The curve is first split at two mutually distant points, each half is
// simplified independently, and finally any vertex lying within epsilon of
// the line through its two neighbours is removed.
func ApproxPolygon(c []Point, epsilon float64) Polygon {
	n := len(c)
	if n <= 2 {
		return append(Polygon(nil), c...)
	}

	a := farthestFrom(c, 0)
	b := farthestFrom(c, a)
	a = farthestFrom(c, b)
	if a == b {
		// Every point coincides
		return Polygon{c[0]}
	}
	if a > b {
		a, b = b, a
	}

	keep := make([]bool, n)
	keep[a] = true
	keep[b] = true
	douglasPeucker(c, a, b, epsilon, keep)
	douglasPeucker(c, b, a+n, epsilon, keep)

	poly := make(Polygon, 0, 8)
	for i, p := range c {
		if keep[i] {
			poly = append(poly, p)
		}
	}
	return dropCollinear(poly, epsilon)
}

// farthestFrom returns the index of the point farthest from c[from]. Ties go
// to the lowest index.
func farthestFrom(c []Point, from int) int {
	best, bestDist := from, -1
	for i, p := range c {
		dx, dy := p.X-c[from].X, p.Y-c[from].Y
		if d := dx*dx + dy*dy; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// douglasPeucker marks in keep the points of c[first..last] (indices taken
// modulo len(c)) that must survive simplification. The end points are
// assumed to be kept already.
func douglasPeucker(c []Point, first, last int, epsilon float64, keep []bool) {
	n := len(c)
	type span struct{ first, last int }
	stack := []span{{first, last}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		start, end := c[s.first%n], c[s.last%n]
		maxDist, maxIdx := -1.0, -1
		for i := s.first + 1; i < s.last; i++ {
			if d := lineDistance(c[i%n], start, end); d > maxDist {
				maxDist, maxIdx = d, i
			}
		}

		if maxDist > epsilon {
			keep[maxIdx%n] = true
			stack = append(stack, span{maxIdx, s.last}, span{s.first, maxIdx})
		}
	}
}

// dropCollinear removes vertices that lie within epsilon of the line through
// their neighbours until none remain or only a triangle is left.
func dropCollinear(poly Polygon, epsilon float64) Polygon {
	for changed := true; changed && len(poly) > 3; {
		changed = false
		for i := 0; i < len(poly) && len(poly) > 3; i++ {
			n := len(poly)
			prev := poly[(i-1+n)%n]
			next := poly[(i+1)%n]
			if lineDistance(poly[i], prev, next) <= epsilon {
				poly = append(poly[:i], poly[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return poly
}

// lineDistance returns the perpendicular distance from p to the line through
// a and b, or the distance to a when a and b coincide.
func lineDistance(p, a, b Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return distance(p, a)
	}
	return math.Abs(dx*float64(p.Y-a.Y)-dy*float64(p.X-a.X)) / length
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
