package detection

import (
	"context"
	"fmt"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Binarisation modes of the threshold detector.
const (
	ModeOtsu     = "otsu"
	ModeFixed    = "fixed"
	ModeAdaptive = "adaptive"
)

// ThresholdParams tunes the threshold detector.
type ThresholdParams struct {
	// Modes selects the binarisations to run; their foregrounds are unioned.
	Modes []string `yaml:"modes" json:"modes"`

	// FixedLevel is the gray level used by ModeFixed.
	FixedLevel uint8 `yaml:"fixed_level" json:"fixed_level"`

	// AdaptiveBlock is the neighbourhood size used by ModeAdaptive.
	AdaptiveBlock int `yaml:"adaptive_block" json:"adaptive_block"`

	// AdaptiveC is subtracted from the neighbourhood mean.
	AdaptiveC float64 `yaml:"adaptive_c" json:"adaptive_c"`

	Close  imaging.Kernel `yaml:"close" json:"close"`
	Filter ContourFilter  `yaml:"filter" json:"filter"`
}

// ThresholdDetector binarises the band's luminance and keeps text-shaped
// contours.
//
// # Algorithm
//
//  1. Binarise with every configured mode. Each result is flipped when its
//     foreground covers more than half the band, so light-on-dark and
//     dark-on-light text are both found.
//  2. Union the foregrounds and close with the configured kernel.
//  3. Keep external contours that pass the contour filter.
type ThresholdDetector struct {
	Params ThresholdParams
}

// Name returns "threshold".
func (d *ThresholdDetector) Name() string { return DetectorThreshold }

// Detect implements Detector.
func (d *ThresholdDetector) Detect(ctx context.Context, band *Band) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fg := imaging.NewMask(band.Width(), band.Height())
	for _, mode := range d.Params.Modes {
		var m *imaging.Mask
		switch mode {
		case ModeOtsu:
			m = imaging.ThresholdOtsu(band.Gray)
		case ModeFixed:
			m = imaging.ThresholdFixed(band.Gray, d.Params.FixedLevel)
		case ModeAdaptive:
			m = imaging.ThresholdAdaptive(band.Gray, d.Params.AdaptiveBlock, d.Params.AdaptiveC)
		default:
			return nil, fmt.Errorf("unknown threshold mode: %s", mode)
		}
		fg.Or(minority(m))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	closed := imaging.Close(fg, d.Params.Close)
	return boxes(closed, band, d.Params.Filter), nil
}
