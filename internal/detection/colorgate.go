package detection

import (
	"context"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// ColorGateParams tunes the color-gate detector.
type ColorGateParams struct {
	// Ranges are the HSV boxes of the overlay color; a pixel matching any
	// range is a candidate.
	Ranges []imaging.HueRange `yaml:"ranges" json:"ranges"`

	Close imaging.Kernel `yaml:"close" json:"close"`
	Open  imaging.Kernel `yaml:"open" json:"open"`

	// MinColorRatio is the fraction of matched pixels a candidate box must
	// exceed. It rejects large boxes that only incidentally touch the color.
	MinColorRatio float64 `yaml:"min_color_ratio" json:"min_color_ratio"`

	Filter ContourFilter `yaml:"filter" json:"filter"`
}

// ColorGateDetector matches the overlay's known color in HSV space.
//
// # Algorithm
//
//  1. Convert each band pixel to HSV and keep those inside any range
//  2. Close then open with the configured kernels to join glyphs and drop
//     isolated matches
//  3. Take external contours that pass the contour filter
//  4. Keep only boxes whose raw (pre-morphology) matched pixel ratio exceeds
//     MinColorRatio
type ColorGateDetector struct {
	Params ColorGateParams
}

// Name returns "color-gate".
func (d *ColorGateDetector) Name() string { return DetectorColorGate }

// Detect implements Detector.
func (d *ColorGateDetector) Detect(ctx context.Context, band *Band) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := imaging.ColorMask(band.Image, d.Params.Ranges)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned := imaging.Open(imaging.Close(matched, d.Params.Close), d.Params.Open)

	var out []Region
	for _, r := range boxes(cleaned, band, d.Params.Filter) {
		local := r.Rect().Sub(band.Rect.Min)
		ratio := float64(matched.CountIn(local)) / float64(r.Area())
		if ratio > d.Params.MinColorRatio {
			out = append(out, r)
		}
	}
	return out, nil
}
