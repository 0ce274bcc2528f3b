package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// NRGBA returns the color as an opaque color.NRGBA.
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// HueRange is an inclusive box in HSV space.
//
// Hue is in degrees [0,360); saturation and value are in [0,1]. A range whose
// MinHue is greater than its MaxHue wraps through 0 (e.g. 340..20 for red).
type HueRange struct {
	MinHue float64 `yaml:"min_hue" json:"min_hue"`
	MaxHue float64 `yaml:"max_hue" json:"max_hue"`
	MinSat float64 `yaml:"min_sat" json:"min_sat"`
	MaxSat float64 `yaml:"max_sat" json:"max_sat"`
	MinVal float64 `yaml:"min_val" json:"min_val"`
	MaxVal float64 `yaml:"max_val" json:"max_val"`
}

// Contains reports whether the HSV triple lies inside the range.
func (r HueRange) Contains(h, s, v float64) bool {
	if s < r.MinSat || s > r.MaxSat || v < r.MinVal || v > r.MaxVal {
		return false
	}
	if r.MinHue <= r.MaxHue {
		return h >= r.MinHue && h <= r.MaxHue
	}
	return h >= r.MinHue || h <= r.MaxHue
}

// Validate checks the range limits.
func (r HueRange) Validate() error {
	if r.MinHue < 0 || r.MinHue >= 360 || r.MaxHue < 0 || r.MaxHue >= 360 {
		return fmt.Errorf("hue range %.0f..%.0f outside [0,360)", r.MinHue, r.MaxHue)
	}
	if r.MinSat < 0 || r.MaxSat > 1 || r.MinSat > r.MaxSat {
		return fmt.Errorf("saturation range %.2f..%.2f outside [0,1]", r.MinSat, r.MaxSat)
	}
	if r.MinVal < 0 || r.MaxVal > 1 || r.MinVal > r.MaxVal {
		return fmt.Errorf("value range %.2f..%.2f outside [0,1]", r.MinVal, r.MaxVal)
	}
	return nil
}

// HSV converts an 8-bit RGB triple to hue in degrees and saturation/value in
// [0,1].
func HSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	return c.Hsv()
}

// MatchesAny reports whether the RGB triple falls in at least one range.
func MatchesAny(ranges []HueRange, r, g, b uint8) bool {
	h, s, v := HSV(r, g, b)
	for _, hr := range ranges {
		if hr.Contains(h, s, v) {
			return true
		}
	}
	return false
}

// ColorMask marks every pixel of img whose color falls in one of ranges.
// img must have its origin at (0,0).
func ColorMask(img *image.NRGBA, ranges []HueRange) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if MatchesAny(ranges, row[x*4], row[x*4+1], row[x*4+2]) {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// ParseHexColor parses "#RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of sampled pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequently occurring colors.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// DominantColors extracts the count most common colors from img, considering
// only pixels for which include returns true (nil includes every pixel).
//
// # Color Quantization
//
// To group similar colors, pixels are bucketed by each component divided by
// 16. The color reported for a bucket is the mean of the pixels that fell in
// it, so a flat background is reported exactly. Ties are broken by hex string
// so the result is deterministic.
func DominantColors(img image.Image, count int, area image.Rectangle, include func(x, y int) bool) *DominantColorsResult {
	type bucket struct {
		n, r, g, b int
	}

	area = area.Intersect(img.Bounds())
	buckets := make(map[[3]uint8]*bucket)
	total := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if include != nil && !include(x, y) {
				continue
			}
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := int(r>>8), int(g>>8), int(b>>8)
			key := [3]uint8{uint8(r8 / 16), uint8(g8 / 16), uint8(b8 / 16)}
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.n++
			bk.r += r8
			bk.g += g8
			bk.b += b8
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(buckets))
	for _, bk := range buckets {
		rgb := RGBColor{
			R: uint8((bk.r + bk.n/2) / bk.n),
			G: uint8((bk.g + bk.n/2) / bk.n),
			B: uint8((bk.b + bk.n/2) / bk.n),
		}
		c := colorful.Color{R: float64(rgb.R) / 255.0, G: float64(rgb.G) / 255.0, B: float64(rgb.B) / 255.0}
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(bk.n) / float64(total) * 100,
			RGB:        rgb,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}
	return &DominantColorsResult{Colors: colors}
}
