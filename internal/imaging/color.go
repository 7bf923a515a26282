package imaging

import (
	"image"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorFrequency represents a color and how much of an image it covers.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Share of pixels, 0-100
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// DominantColors returns up to count of the most common colors in img,
// most common first. Ties are ordered by hex value so the result is stable.
//
// # Color Quantization
//
// Each 8-bit component is rounded down to a multiple of 16 before counting,
// so colors within 16 units of each other per component are grouped. Fully
// transparent pixels are skipped.
//
// A plate crop typically yields its background color first and its
// character color second.
func DominantColors(img image.Image, count int) []ColorFrequency {
	if count <= 0 {
		return nil
	}

	bounds := img.Bounds()
	counts := make(map[RGBColor]int)
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			r, g, b := c.RGB255()
			counts[RGBColor{R: r / 16 * 16, G: g / 16 * 16, B: b / 16 * 16}]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for rgb, n := range counts {
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		h, s, l := c.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        rgb,
			HSL: HSLColor{
				H: int(math.Round(h)) % 360,
				S: int(math.Round(s * 100)),
				L: int(math.Round(l * 100)),
			},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
