package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// PixelSet is an explicit list of pixel coordinates in full-image space.
type PixelSet []image.Point

// Component is one 8-connected group of matching pixels.
type Component struct {
	// Pixels are the component's pixels. Pixel sets of distinct components
	// from the same extraction never share a point.
	Pixels PixelSet `json:"-"`

	// Bounds is the bounding rectangle of Pixels.
	Bounds Region `json:"bounds"`
}

// ColorPredicate reports whether an 8-bit RGB color belongs to the overlay.
type ColorPredicate func(r, g, b uint8) bool

// HueMatcher returns a predicate matching any of the HSV ranges.
func HueMatcher(ranges []imaging.HueRange) ColorPredicate {
	return func(r, g, b uint8) bool {
		return imaging.MatchesAny(ranges, r, g, b)
	}
}

// ExtractComponents groups the pixels of img inside band that satisfy match
// into 8-connected components.
//
// Parameters:
//   - img: Source image.
//   - band: Area to scan, in img coordinates. It is clipped to img bounds.
//   - match: Color predicate applied to every pixel of the band.
//   - minPixels: Components with fewer pixels are discarded as noise.
//
// # Algorithm
//
// The band is scanned row-major. Every matching pixel not yet visited seeds
// an iterative flood fill over an explicit work-list; a visited bitmap sized
// to the band ensures each pixel is expanded once, so total work is bounded
// by the band area whatever the component shapes. Before filtering, the
// returned pixel sets partition the matching pixels exactly.
//
// Components are returned ordered by bounding box (top-to-bottom, then
// left-to-right).
func ExtractComponents(img image.Image, band image.Rectangle, match ColorPredicate, minPixels int) []Component {
	band = band.Intersect(img.Bounds())
	if band.Empty() {
		return nil
	}

	crop, err := imaging.Crop(img, band)
	if err != nil {
		return nil
	}
	m := imaging.NewMask(band.Dx(), band.Dy())
	for y := 0; y < band.Dy(); y++ {
		row := crop.Pix[y*crop.Stride:]
		for x := 0; x < band.Dx(); x++ {
			if match(row[x*4], row[x*4+1], row[x*4+2]) {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}

	var out []Component
	for _, blob := range imaging.Label(m, m.Bounds(), true) {
		if blob.Count < minPixels {
			continue
		}
		pixels := make(PixelSet, len(blob.Pixels))
		for i, p := range blob.Pixels {
			pixels[i] = p.Add(band.Min)
		}
		out = append(out, Component{
			Pixels: pixels,
			Bounds: RegionFromRect(blob.Bounds.Add(band.Min)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Bounds.less(out[j].Bounds) })
	return out
}
