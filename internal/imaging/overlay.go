package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a hex color string like "#00FF00", "00ff00" or "#0f0".
func ParseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: want #RGB or #RRGGBB", hex)
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawPolygon returns a copy of img with the closed polygon through pts
// outlined in c. Points are relative to the image's top-left pixel; the
// result always has its origin at (0,0). Thickness below 1 is treated as 1.
// Parts of the outline falling outside the image are clipped.
func DrawPolygon(img image.Image, pts []image.Point, c color.Color, thickness int) *image.NRGBA {
	dst := imaging.Clone(img)
	if len(pts) == 0 {
		return dst
	}
	if thickness < 1 {
		thickness = 1
	}

	brush := color.NRGBAModel.Convert(c).(color.NRGBA)
	for i := range pts {
		drawLine(dst, pts[i], pts[(i+1)%len(pts)], brush, thickness)
	}
	return dst
}

// drawLine stamps a thickness x thickness square at every point of the
// Bresenham line from a to b.
func drawLine(dst *image.NRGBA, a, b image.Point, c color.NRGBA, thickness int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}

	half := (thickness - 1) / 2
	bounds := dst.Bounds()
	stamp := func(x, y int) {
		for py := y - half; py < y-half+thickness; py++ {
			for px := x - half; px < x-half+thickness; px++ {
				if image.Pt(px, py).In(bounds) {
					dst.SetNRGBA(px, py, c)
				}
			}
		}
	}

	x, y := a.X, a.Y
	err := dx + dy
	for {
		stamp(x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
