package detection

import (
	"image"
	"image/color"
)

// tan(22.5°) and tan(67.5°), the sector boundaries used to quantise the
// gradient direction during non-maximum suppression.
const (
	tan22 = 0.41421356237309503
	tan67 = 2.414213562373095
)

// Edge map pixel states during hysteresis.
const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// DetectEdges computes a binary edge map from a grayscale image using the
// Canny detector with thresholds CannyLowThreshold and CannyHighThreshold.
//
// Edge pixels are 255, all others 0. The returned image has its origin at
// (0,0). A nil gray yields nil.
func DetectEdges(gray *image.Gray) *image.Gray {
	if gray == nil {
		return nil
	}
	return canny(gray, CannyLowThreshold, CannyHighThreshold)
}

// canny runs Canny edge detection on an already smoothed image.
//
// # Algorithm
//
//  1. Gradients: 3x3 Sobel operators with replicated borders.
//     magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: the gradient direction is quantised into
//     horizontal, vertical or one of two diagonals, and a pixel survives
//     only if its magnitude exceeds low and is a local maximum across the
//     edge.
//
//  3. Hysteresis: survivors above high are strong edges; survivors between
//     low and high are kept only when 8-connected to a strong edge through
//     other survivors.
//
//  4. Gap bridging: suppression can drop the single pixel where a slanted
//     outline turns a corner. See bridgeGaps.
func canny(gray *image.Gray, low, high int) *image.Gray {
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	n := width * height
	gradX, gradY, magnitude := sobel(gray)

	// Magnitude outside the image counts as zero.
	mag := func(x, y int) int {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	state := make([]uint8, n)
	stack := make([]int, 0, 1024)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if m <= low {
				continue
			}

			gx, gy := gradX[i], gradY[i]
			ax, ay := float64(abs(gx)), float64(abs(gy))

			var isMax bool
			switch {
			case ay < ax*tan22:
				isMax = m > mag(x-1, y) && m >= mag(x+1, y)
			case ay > ax*tan67:
				isMax = m > mag(x, y-1) && m >= mag(x, y+1)
			default:
				s := 1
				if (gx < 0) != (gy < 0) {
					s = -1
				}
				isMax = m > mag(x-s, y-1) && m > mag(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = edgeStrong
				stack = append(stack, i)
			} else {
				state[i] = edgeWeak
			}
		}
	}

	// Grow strong chains into connected weak pixels
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if state[j] == edgeWeak {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	bridgeGaps(state, magnitude, width, height, low)

	result := image.NewGray(image.Rect(0, 0, width, height))
	for i, s := range state {
		if s == edgeStrong {
			result.SetGray(i%width, i/width, color.Gray{Y: 255})
		}
	}
	return result
}

// sobel returns the 3x3 Sobel derivatives of gray and their L1 magnitude,
// row-major over a zero-origin grid. Borders are replicated.
func sobel(gray *image.Gray) (gradX, gradY, magnitude []int) {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	n := width * height

	at := func(x, y int) int {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return int(gray.Pix[gray.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)])
	}

	gradX = make([]int, n)
	gradY = make([]int, n)
	magnitude = make([]int, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*width + x
			gradX[i] = gx
			gradY[i] = gy
			magnitude[i] = abs(gx) + abs(gy)
		}
	}
	return gradX, gradY, magnitude
}

// bridgeGaps joins chain ends that stop one pixel short of another edge.
//
// An end is a strong pixel with exactly one strong neighbour r. When a strong
// pixel q lies at chessboard distance 2 from the end and is not adjacent to
// r, the gap pixel between the two with the largest gradient magnitude above
// low is promoted. Ends are collected before any pixel is promoted, so a
// bridge never grows from another bridge.
func bridgeGaps(state []uint8, magnitude []int, width, height, low int) {
	on := func(x, y int) bool {
		return x >= 0 && x < width && y >= 0 && y < height && state[y*width+x] == edgeStrong
	}

	type chainEnd struct{ x, y, rx, ry int }
	var ends []chainEnd
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !on(x, y) {
				continue
			}
			count, rx, ry := 0, 0, 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && on(x+dx, y+dy) {
						count++
						rx, ry = x+dx, y+dy
					}
				}
			}
			if count == 1 {
				ends = append(ends, chainEnd{x, y, rx, ry})
			}
		}
	}

	var bridges []int
	for _, e := range ends {
		best, bestMag := -1, low
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				qx, qy := e.x+dx, e.y+dy
				if max(abs(dx), abs(dy)) != 2 || !on(qx, qy) {
					continue
				}
				if max(abs(qx-e.rx), abs(qy-e.ry)) <= 1 {
					continue
				}
				for cy := -1; cy <= 1; cy++ {
					for cx := -1; cx <= 1; cx++ {
						gx, gy := e.x+cx, e.y+cy
						if (cx == 0 && cy == 0) || gx < 0 || gx >= width || gy < 0 || gy >= height {
							continue
						}
						if on(gx, gy) || max(abs(gx-qx), abs(gy-qy)) != 1 {
							continue
						}
						if m := magnitude[gy*width+gx]; m > bestMag {
							best, bestMag = gy*width+gx, m
						}
					}
				}
			}
		}
		if best >= 0 {
			bridges = append(bridges, best)
		}
	}

	for _, i := range bridges {
		state[i] = edgeStrong
	}
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
