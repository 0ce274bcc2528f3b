package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// AnnotationBox is one outlined rectangle on a preview image.
type AnnotationBox struct {
	Rect  image.Rectangle
	Label string
}

// Annotate returns a copy of img with each box outlined in c and its label
// drawn just above the box (or inside it when there is no room above).
//
// The copy has origin (0,0); box coordinates are in img's coordinate space.
func Annotate(img image.Image, boxes []AnnotationBox, c color.NRGBA) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for _, b := range boxes {
		r := b.Rect.Sub(bounds.Min).Intersect(result.Bounds())
		if r.Empty() {
			continue
		}
		outline(result, r, c)
		if b.Label != "" {
			drawLabel(result, r, b.Label, c)
		}
	}
	return result
}

// outline draws the one pixel border of r.
func outline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel renders text in the 7x13 basic font on a dark background.
func drawLabel(img *image.NRGBA, r image.Rectangle, text string, c color.NRGBA) {
	face := basicfont.Face7x13
	height := face.Metrics().Height.Ceil()
	width := font.MeasureString(face, text).Ceil()

	top := r.Min.Y - height - 1
	if top < 0 {
		top = r.Min.Y + 1
	}
	bg := image.Rect(r.Min.X, top, r.Min.X+width+2, top+height).Intersect(img.Bounds())
	draw.Draw(img, bg, &image.Uniform{color.NRGBA{0, 0, 0, 180}}, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{c},
		Face: face,
		Dot:  fixed.P(r.Min.X+1, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// EncodePNGBase64 encodes img as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
