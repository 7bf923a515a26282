package detection

import (
	"image"
	"sort"
)

// neighbourhood lists the 8 neighbours of a pixel in counter-clockwise order
// (as seen on screen, Y growing downward), starting east.
var neighbourhood = [8]Point{
	{X: 1, Y: 0},   // E
	{X: 1, Y: -1},  // NE
	{X: 0, Y: -1},  // N
	{X: -1, Y: -1}, // NW
	{X: -1, Y: 0},  // W
	{X: -1, Y: 1},  // SW
	{X: 0, Y: 1},   // S
	{X: 1, Y: 1},   // SE
}

const (
	dirEast = 0
	dirWest = 4
)

// FindCandidates extracts every closed contour from a binary edge map and
// returns at most MaxCandidates of them, ordered by enclosed area (largest
// first). Contours with equal area keep their discovery order.
//
// Retrieval is flat: outer borders and hole borders are returned alike and
// nesting is ignored. A nil edge map yields no candidates.
func FindCandidates(edges *image.Gray) []Contour {
	if edges == nil {
		return nil
	}
	return rankContours(traceContours(edges), MaxCandidates)
}

// rankedContour pairs a contour with its enclosed area for sorting.
type rankedContour struct {
	contour Contour
	area    float64
}

// rankContours sorts contours by area descending (stable) and keeps the
// first limit entries.
func rankContours(contours []Contour, limit int) []Contour {
	ranked := make([]rankedContour, len(contours))
	for i, c := range contours {
		ranked[i] = rankedContour{contour: c, area: ContourArea(c)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].area > ranked[j].area
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := make([]Contour, len(ranked))
	for i, r := range ranked {
		result[i] = r.contour
	}
	return result
}

// traceContours finds all borders in a binary image using the Suzuki-Abe
// border following algorithm.
//
// Non-zero pixels are foreground. The image is copied into a label grid with
// a one-pixel zero frame so that neighbour lookups never leave the grid.
// Each border is traced counter-clockwise from its first pixel in raster
// order; traced pixels are relabelled so that the raster scan does not start
// the same border twice. Contours are returned in discovery order with their
// runs compressed (see compressChain).
func traceContours(edges *image.Gray) []Contour {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	stride := width + 2

	labels := make([]int32, stride*(height+2))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.Pix[edges.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)] != 0 {
				labels[(y+1)*stride+x+1] = 1
			}
		}
	}

	t := &borderTracer{labels: labels, stride: stride}
	for d, p := range neighbourhood {
		t.offsets[d] = p.Y*stride + p.X
	}

	contours := make([]Contour, 0)
	nbd := int32(1)

	for y := 1; y <= height; y++ {
		for x := 1; x <= width; x++ {
			i := y*stride + x
			v := labels[i]
			if v == 0 {
				continue
			}

			var from int
			switch {
			case v == 1 && labels[i-1] == 0:
				// Outer border: entered from the background on the left
				from = dirWest
			case v >= 1 && labels[i+1] == 0:
				// Hole border: background on the right
				from = dirEast
			default:
				continue
			}

			nbd++
			contours = append(contours, compressChain(t.follow(i, from, nbd)))
		}
	}

	return contours
}

// borderTracer holds the label grid shared by successive border traces.
type borderTracer struct {
	labels  []int32
	stride  int
	offsets [8]int
}

// point converts a grid index back to image coordinates.
func (t *borderTracer) point(i int) Point {
	return Point{X: i%t.stride - 1, Y: i/t.stride - 1}
}

// direction returns the neighbourhood index d such that from + offsets[d] == to.
func (t *borderTracer) direction(from, to int) int {
	delta := to - from
	for d, off := range t.offsets {
		if off == delta {
			return d
		}
	}
	return dirEast
}

// follow traces one border starting at grid index start. from is the
// direction of the background neighbour the border was entered from.
func (t *borderTracer) follow(start, from int, nbd int32) Contour {
	labels := t.labels
	contour := Contour{t.point(start)}

	// Look clockwise from the entry neighbour for the first foreground pixel
	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) % 8
		if labels[start+t.offsets[d]] != 0 {
			first = start + t.offsets[d]
			break
		}
	}
	if first < 0 {
		// Isolated pixel
		labels[start] = -nbd
		return contour
	}

	prev, cur := first, start
	for {
		// Look counter-clockwise around cur, starting just after prev
		back := t.direction(cur, prev)
		eastIsBackground := false
		next := prev
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			q := cur + t.offsets[d]
			if labels[q] != 0 {
				next = q
				break
			}
			if d == dirEast {
				eastIsBackground = true
			}
		}

		if eastIsBackground {
			labels[cur] = -nbd
		} else if labels[cur] == 1 {
			labels[cur] = nbd
		}

		if next == start && cur == first {
			return contour
		}

		prev, cur = cur, next
		contour = append(contour, t.point(cur))
	}
}

// compressChain drops every point that continues the previous step in the
// same direction, leaving only the end points of horizontal, vertical and
// diagonal runs.
func compressChain(c Contour) Contour {
	n := len(c)
	if n < 3 {
		return c
	}

	out := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		prev := c[(i-1+n)%n]
		next := c[(i+1)%n]
		in := Point{X: c[i].X - prev.X, Y: c[i].Y - prev.Y}
		outStep := Point{X: next.X - c[i].X, Y: next.Y - c[i].Y}
		if in != outStep {
			out = append(out, c[i])
		}
	}
	if len(out) == 0 {
		return c
	}
	return out
}
