//go:build opencv

package inpaint

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// OpenCV runs cv::inpaint with the Telea or Navier-Stokes method.
type OpenCV struct {
	// Method is NameTelea or NameNavierStokes.
	Method string

	// Radius is the neighbourhood considered around each inpainted pixel.
	Radius int
}

// Name returns the method name.
func (o *OpenCV) Name() string { return o.Method }

// Inpaint fills the masked pixels with gocv.Inpaint. Alpha is taken from the
// input; OpenCV only sees the BGR channels.
func (o *OpenCV) Inpaint(ctx context.Context, img *image.NRGBA, mask *imaging.Mask) (*image.NRGBA, error) {
	if err := checkInputs(img, mask); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var method gocv.InpaintMethods
	switch o.Method {
	case NameTelea:
		method = gocv.Telea
	case NameNavierStokes:
		method = gocv.NS
	default:
		return nil, fmt.Errorf("unknown opencv inpaint method: %s", o.Method)
	}
	radius := o.Radius
	if radius < 1 {
		radius = 3
	}

	w, h := mask.Width, mask.Height
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, nrgbaToBGR(img))
	if err != nil {
		return nil, fmt.Errorf("image to mat: %w", err)
	}
	defer src.Close()

	maskBytes := make([]byte, len(mask.Pix))
	for i, v := range mask.Pix {
		if v != 0 {
			maskBytes[i] = 255
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, maskBytes)
	if err != nil {
		return nil, fmt.Errorf("mask to mat: %w", err)
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Inpaint(src, m, &dst, float32(radius), method)
	if dst.Empty() || dst.Rows() != h || dst.Cols() != w {
		return nil, fmt.Errorf("%s returned an empty result", o.Method)
	}

	return bgrToNRGBA(dst.ToBytes(), img), nil
}

// nrgbaToBGR packs the colour channels of img in OpenCV's BGR order.
func nrgbaToBGR(img *image.NRGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i+2], row[i+1], row[i])
		}
	}
	return out
}

// bgrToNRGBA unpacks BGR bytes into a copy of like, keeping its alpha.
func bgrToNRGBA(bgr []byte, like *image.NRGBA) *image.NRGBA {
	out := imaging.ToNRGBA(like)
	w := out.Bounds().Dx()
	for y := 0; y < out.Bounds().Dy(); y++ {
		for x := 0; x < w; x++ {
			s := (y*w + x) * 3
			d := y*out.Stride + x*4
			out.Pix[d] = bgr[s+2]
			out.Pix[d+1] = bgr[s+1]
			out.Pix[d+2] = bgr[s]
		}
	}
	return out
}
