package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Band is the bottom strip of an image that detectors search.
type Band struct {
	// Rect is the band in full-image coordinates.
	Rect image.Rectangle

	// Image is the band's pixels with origin (0,0).
	Image *image.NRGBA

	// Gray is the BT.601 luminance of Image.
	Gray *image.Gray
}

// NewBand extracts the bottom fraction of img.
//
// fraction must be in (0, 1]. The band starts at row int(height*(1-fraction)),
// so a 100 row image with fraction 0.3 yields rows 70..99.
func NewBand(img image.Image, fraction float64) (*Band, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("band fraction %.3f outside (0,1]", fraction)
	}
	rect := imaging.BottomBand(img.Bounds(), fraction)
	if rect.Empty() {
		return nil, fmt.Errorf("band of %.3f is empty for a %dx%d image",
			fraction, img.Bounds().Dx(), img.Bounds().Dy())
	}

	crop, err := imaging.Crop(img, rect)
	if err != nil {
		return nil, err
	}
	return &Band{
		Rect:  rect,
		Image: crop,
		Gray:  imaging.Gray(crop),
	}, nil
}

// Width returns the band width in pixels.
func (b *Band) Width() int { return b.Rect.Dx() }

// Height returns the band height in pixels.
func (b *Band) Height() int { return b.Rect.Dy() }

// toImage converts a band-local rectangle to a full-image region.
func (b *Band) toImage(r image.Rectangle) Region {
	return RegionFromRect(r.Add(b.Rect.Min)).Clamp(b.Rect)
}
