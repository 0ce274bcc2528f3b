package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts r from img as a new *image.NRGBA with its origin at (0,0).
func Crop(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, r), nil
}

// Pad grows r by pad pixels on every side and clips it to bounds.
func Pad(r image.Rectangle, pad int, bounds image.Rectangle) image.Rectangle {
	return r.Inset(-pad).Intersect(bounds)
}

// BottomBand returns the rectangle covering the bottom fraction of bounds.
// The band starts at row int(height*(1-fraction)); fraction is clamped to
// [0,1].
func BottomBand(bounds image.Rectangle, fraction float64) image.Rectangle {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	top := bounds.Min.Y + int(float64(bounds.Dy())*(1-fraction))
	return image.Rect(bounds.Min.X, top, bounds.Max.X, bounds.Max.Y)
}

// Upscale enlarges img by an integer factor using Lanczos resampling.
// Factors below 2 return a plain copy.
func Upscale(img image.Image, factor int) *image.NRGBA {
	if factor < 2 {
		return imaging.Clone(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.Lanczos)
}

// Binarize converts img to black text on a white background.
//
// The image is thresholded at its Otsu level; whichever class covers fewer
// pixels is taken to be the text and painted black.
func Binarize(img image.Image) *image.Gray {
	g := Gray(imaging.Grayscale(img))
	m := ThresholdOtsu(g)
	set := m.Count()
	textIsSet := set*2 <= len(m.Pix)

	out := image.NewGray(g.Bounds())
	for i, v := range m.Pix {
		text := (v != 0) == textIsSet
		if !text {
			out.Pix[i] = 255
		}
	}
	return out
}
