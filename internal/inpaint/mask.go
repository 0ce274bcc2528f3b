package inpaint

import (
	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// MaskFromRegions marks every region grown by padding pixels, clipped to the
// width×height image.
func MaskFromRegions(width, height int, regions []detection.Region, padding int) *imaging.Mask {
	m := imaging.NewMask(width, height)
	for _, r := range regions {
		m.FillRect(r.Pad(padding, m.Bounds()).Rect())
	}
	return m
}

// MaskFromComponents marks exactly the pixels of each component. With
// fillHoles, background enclosed by a component inside its bounding box
// (the counters of letters such as "e" or "o") is marked as well.
func MaskFromComponents(width, height int, components []detection.Component, fillHoles bool) *imaging.Mask {
	m := imaging.NewMask(width, height)
	for _, c := range components {
		if !fillHoles {
			for _, p := range c.Pixels {
				m.Set(p.X, p.Y)
			}
			continue
		}

		box := c.Bounds.Rect()
		local := imaging.NewMask(box.Dx(), box.Dy())
		for _, p := range c.Pixels {
			local.Set(p.X-box.Min.X, p.Y-box.Min.Y)
		}
		filled := imaging.FillHoles(local)
		for y := 0; y < filled.Height; y++ {
			for x := 0; x < filled.Width; x++ {
				if filled.At(x, y) {
					m.Set(x+box.Min.X, y+box.Min.Y)
				}
			}
		}
	}
	return m
}
