package inpaint

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Fill returns a copy of img with the masked pixels overwritten.
//
// With a "#rrggbb" FillColor every masked pixel gets that color. With "auto"
// (or empty) each box is filled with the dominant color of the unmasked ring
// of Config.RingWidth pixels around it; masked pixels outside every box use
// the ring around the mask's bounding box.
func (r *Reconstructor) Fill(img image.Image, mask *imaging.Mask, boxes []image.Rectangle) (*image.NRGBA, error) {
	out := imaging.ToNRGBA(img)
	if out.Bounds().Dx() != mask.Width || out.Bounds().Dy() != mask.Height {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			ErrReconstruction, mask.Width, mask.Height, out.Bounds().Dx(), out.Bounds().Dy())
	}
	if mask.Empty() {
		return out, nil
	}

	if r.cfg.FillColor != "" && !strings.EqualFold(r.cfg.FillColor, FillAuto) {
		c, err := imaging.ParseHexColor(r.cfg.FillColor)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReconstruction, err)
		}
		fillMasked(out, mask, mask.Bounds(), c, nil)
		return out, nil
	}

	ring := r.cfg.RingWidth
	if ring < 1 {
		ring = 4
	}
	filled := make([]bool, len(mask.Pix))
	for _, box := range boxes {
		c, err := r.ringColor(out, mask, box, ring)
		if err != nil {
			return nil, err
		}
		fillMasked(out, mask, box, c, filled)
	}

	// Masked pixels not covered by any box.
	for i, v := range mask.Pix {
		if v != 0 && !filled[i] {
			bbox := mask.BoundingBox()
			c, err := r.ringColor(out, mask, bbox, ring)
			if err != nil {
				return nil, err
			}
			fillMasked(out, mask, bbox, c, filled)
			break
		}
	}
	return out, nil
}

// ringColor returns the dominant color of the unmasked pixels within ring
// pixels of box.
func (r *Reconstructor) ringColor(img *image.NRGBA, mask *imaging.Mask, box image.Rectangle, ring int) (color.NRGBA, error) {
	area := imaging.Pad(box, ring, img.Bounds())
	result := imaging.DominantColors(img, 1, area, func(x, y int) bool {
		return !mask.At(x, y)
	})
	if len(result.Colors) == 0 {
		return color.NRGBA{}, fmt.Errorf("%w: no unmasked pixels around %v", ErrReconstruction, box)
	}
	return result.Colors[0].RGB.NRGBA(), nil
}

func fillMasked(img *image.NRGBA, mask *imaging.Mask, r image.Rectangle, c color.NRGBA, filled []bool) {
	r = r.Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := y*mask.Width + x
			if mask.Pix[i] == 0 || (filled != nil && filled[i]) {
				continue
			}
			img.SetNRGBA(x, y, c)
			if filled != nil {
				filled[i] = true
			}
		}
	}
}
