package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// BlurWithin applies a 3x3 box blur to dst, writing results only inside the
// given boxes. Pixels outside every box are left untouched.
//
// Each box is blurred from a crop that includes a one pixel margin of context
// so the box edges are averaged with their real neighbours. Boxes are
// processed in order, so an overlapping later box sees earlier results.
// dst must have its origin at (0,0).
func BlurWithin(dst *image.NRGBA, boxes []image.Rectangle) {
	bounds := dst.Bounds()
	for _, box := range boxes {
		box = box.Intersect(bounds)
		if box.Empty() {
			continue
		}
		context := Pad(box, 1, bounds)

		// bild convolves from the origin, so hand it an origin-0 copy.
		src := image.NewRGBA(image.Rect(0, 0, context.Dx(), context.Dy()))
		for y := 0; y < context.Dy(); y++ {
			for x := 0; x < context.Dx(); x++ {
				si := (context.Min.Y+y)*dst.Stride + (context.Min.X+x)*4
				di := y*src.Stride + x*4
				copy(src.Pix[di:di+4], dst.Pix[si:si+4])
			}
		}
		blurred := blur.Box(src, 1)

		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				bi := (y-context.Min.Y)*blurred.Stride + (x-context.Min.X)*4
				di := y*dst.Stride + x*4
				dst.Pix[di] = blurred.Pix[bi]
				dst.Pix[di+1] = blurred.Pix[bi+1]
				dst.Pix[di+2] = blurred.Pix[bi+2]
			}
		}
	}
}
