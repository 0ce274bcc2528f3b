//go:build opencv

package imaging

import (
	"image"

	"gocv.io/x/gocv"
)

// morphEx runs op through cv::morphologyEx. OpenCV anchors even kernels
// off-centre without reflecting them, so only odd sizes are handled here.
func morphEx(m *Mask, k Kernel, op morphOp) (*Mask, bool) {
	if k.Width < 1 || k.Height < 1 || k.Width%2 == 0 || k.Height%2 == 0 {
		return nil, false
	}
	if m.Width == 0 || m.Height == 0 {
		return nil, false
	}

	var t gocv.MorphType
	switch op {
	case morphDilate:
		t = gocv.MorphDilate
	case morphClose:
		t = gocv.MorphClose
	case morphOpen:
		t = gocv.MorphOpen
	default:
		return nil, false
	}

	src, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC1, m.Pix)
	if err != nil {
		return nil, false
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k.Width, Y: k.Height})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MorphologyEx(src, &dst, t, kernel)

	data := dst.ToBytes()
	if len(data) != len(m.Pix) {
		return nil, false
	}
	out := NewMask(m.Width, m.Height)
	for i, v := range data {
		if v != 0 {
			out.Pix[i] = 1
		}
	}
	return out, true
}
