package inpaint

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// FastMarch fills the mask from its boundary inwards.
//
// # Algorithm
//
//  1. The front is every masked pixel with an unmasked 8-neighbour.
//  2. Each front pixel becomes the average of the known pixels within
//     Radius (Chebyshev distance), weighted by 1/d².
//  3. The front's pixels become known and the next front is their masked
//     8-neighbours. Repeat until no masked pixel remains.
//
// A whole front is computed before any of it is committed, so the result does
// not depend on scan order.
type FastMarch struct {
	// Radius is the sampling neighbourhood. Values below 1 use 3.
	Radius int
}

// Name returns "fast-march".
func (f *FastMarch) Name() string { return NameFastMarch }

// Inpaint implements Inpainter.
func (f *FastMarch) Inpaint(ctx context.Context, img *image.NRGBA, mask *imaging.Mask) (*image.NRGBA, error) {
	if err := checkInputs(img, mask); err != nil {
		return nil, err
	}
	radius := f.Radius
	if radius < 1 {
		radius = 3
	}

	w, h := mask.Width, mask.Height
	out := imaging.ToNRGBA(img)
	known := make([]bool, w*h)
	queued := make([]bool, w*h)
	for i, v := range mask.Pix {
		known[i] = v == 0
	}

	var front []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if known[y*w+x] {
				continue
			}
			for _, d := range neighbours8 {
				nx, ny := x+d.X, y+d.Y
				if nx >= 0 && ny >= 0 && nx < w && ny < h && known[ny*w+nx] {
					front = append(front, image.Pt(x, y))
					queued[y*w+x] = true
					break
				}
			}
		}
	}

	values := make([][4]uint8, 0, len(front))
	for len(front) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values = values[:0]
		for _, p := range front {
			values = append(values, weightedAverage(out, known, w, h, p, radius))
		}
		var next []image.Point
		for i, p := range front {
			o := p.Y*out.Stride + p.X*4
			copy(out.Pix[o:o+4], values[i][:])
			known[p.Y*w+p.X] = true
		}
		for _, p := range front {
			for _, d := range neighbours8 {
				nx, ny := p.X+d.X, p.Y+d.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				i := ny*w + nx
				if known[i] || queued[i] {
					continue
				}
				queued[i] = true
				next = append(next, image.Pt(nx, ny))
			}
		}
		front = next
	}
	return out, nil
}

func weightedAverage(img *image.NRGBA, known []bool, w, h int, p image.Point, radius int) [4]uint8 {
	var sum [4]float64
	var total float64
	for dy := -radius; dy <= radius; dy++ {
		y := p.Y + dy
		if y < 0 || y >= h {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := p.X + dx
			if x < 0 || x >= w || !known[y*w+x] {
				continue
			}
			weight := 1 / float64(dx*dx+dy*dy)
			o := y*img.Stride + x*4
			for c := 0; c < 4; c++ {
				sum[c] += weight * float64(img.Pix[o+c])
			}
			total += weight
		}
	}

	var v [4]uint8
	if total == 0 {
		return v
	}
	for c := 0; c < 4; c++ {
		v[c] = uint8(math.Round(math.Min(255, sum[c]/total)))
	}
	return v
}
