package detection

import (
	"context"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// LocalContrastParams tunes the local-contrast detector.
type LocalContrastParams struct {
	Window       int            `yaml:"window" json:"window"`
	StdThreshold float64        `yaml:"std_threshold" json:"std_threshold"`
	Close        imaging.Kernel `yaml:"close" json:"close"`
	Filter       ContourFilter  `yaml:"filter" json:"filter"`
}

// LocalContrastDetector marks pixels whose neighbourhood has a high standard
// deviation. Glyph strokes produce sharp local variance even when the text
// color is close to the background's average brightness.
type LocalContrastDetector struct {
	Params LocalContrastParams
}

// Name returns "local-contrast".
func (d *LocalContrastDetector) Name() string { return DetectorLocalContrast }

// Detect implements Detector.
func (d *LocalContrastDetector) Detect(ctx context.Context, band *Band) ([]Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	std := imaging.LocalStdDev(band.Gray, d.Params.Window)
	m := imaging.ThresholdValues(std, d.Params.StdThreshold)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	closed := imaging.Close(m, d.Params.Close)
	return boxes(closed, band, d.Params.Filter), nil
}
