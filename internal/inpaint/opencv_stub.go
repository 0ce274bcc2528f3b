//go:build !opencv

package inpaint

import (
	"context"
	"image"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// OpenCV is a placeholder for binaries built without the "opencv" build tag.
// Every call fails with ErrOpenCVNotEnabled, so a configured fallback runs.
type OpenCV struct {
	Method string
	Radius int
}

// Name returns the method name.
func (o *OpenCV) Name() string { return o.Method }

// Inpaint returns ErrOpenCVNotEnabled.
func (o *OpenCV) Inpaint(ctx context.Context, img *image.NRGBA, mask *imaging.Mask) (*image.NRGBA, error) {
	return nil, ErrOpenCVNotEnabled
}
