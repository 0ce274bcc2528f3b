package detection

import (
	"context"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// EdgeDensityParams tunes the edge-density detector.
type EdgeDensityParams struct {
	Low        int            `yaml:"low" json:"low"`
	High       int            `yaml:"high" json:"high"`
	Dilate     imaging.Kernel `yaml:"dilate" json:"dilate"`
	Iterations int            `yaml:"iterations" json:"iterations"`
	Filter     ContourFilter  `yaml:"filter" json:"filter"`
}

// EdgeDensityDetector finds clusters of Canny edges. Dilation bridges the
// gaps between character strokes so a word becomes one contour.
type EdgeDensityDetector struct {
	Params EdgeDensityParams
}

// Name returns "edge-density".
func (d *EdgeDensityDetector) Name() string { return DetectorEdgeDensity }

// Detect implements Detector.
func (d *EdgeDensityDetector) Detect(ctx context.Context, band *Band) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	edges := imaging.Canny(band.Gray, d.Params.Low, d.Params.High)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dilated := imaging.DilateN(edges, d.Params.Dilate, d.Params.Iterations)
	return boxes(dilated, band, d.Params.Filter), nil
}
