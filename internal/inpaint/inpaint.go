package inpaint

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Inpainter names accepted by New.
const (
	NameFastMarch = "fast-march"
	NameDiffusion = "diffusion"

	// OpenCV inpainters; usable only in binaries built with the "opencv"
	// tag.
	NameTelea        = "telea"
	NameNavierStokes = "navier-stokes"
)

// Names lists the registered inpainters.
var Names = []string{NameFastMarch, NameDiffusion, NameTelea, NameNavierStokes}

var (
	// ErrReconstruction is returned when no reconstruction could be produced.
	ErrReconstruction = errors.New("reconstruction failed")

	// ErrNoKnownPixels is returned when the mask leaves nothing to sample.
	ErrNoKnownPixels = errors.New("mask covers every pixel")

	// ErrOpenCVNotEnabled is returned by the OpenCV inpainters when the
	// binary was built without the "opencv" build tag.
	ErrOpenCVNotEnabled = errors.New("opencv support not compiled in (build with -tags opencv)")
)

// Inpainter fills the set pixels of mask from the unset ones.
//
// img must have its origin at (0,0) and the same size as mask. The input is
// not modified; a new image is returned.
type Inpainter interface {
	Name() string
	Inpaint(ctx context.Context, img *image.NRGBA, mask *imaging.Mask) (*image.NRGBA, error)
}

// New creates the named inpainter. radius is the sampling neighbourhood of
// fast-march and the OpenCV inpainters; diffusion uses it to seed.
func New(name string, radius int) (Inpainter, error) {
	switch name {
	case NameFastMarch:
		return &FastMarch{Radius: radius}, nil
	case NameDiffusion:
		return &Diffusion{SeedRadius: radius}, nil
	case NameTelea, NameNavierStokes:
		return &OpenCV{Method: name, Radius: radius}, nil
	default:
		return nil, fmt.Errorf("unknown inpainter: %s", name)
	}
}

func checkInputs(img *image.NRGBA, mask *imaging.Mask) error {
	b := img.Bounds()
	if b.Min != (image.Point{}) {
		return fmt.Errorf("image origin must be (0,0), got %v", b.Min)
	}
	if b.Dx() != mask.Width || b.Dy() != mask.Height {
		return fmt.Errorf("mask %dx%d does not match image %dx%d", mask.Width, mask.Height, b.Dx(), b.Dy())
	}
	if mask.Count() == len(mask.Pix) {
		return ErrNoKnownPixels
	}
	return nil
}

// neighbours8 are the offsets of the 8-connected neighbourhood.
var neighbours8 = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
