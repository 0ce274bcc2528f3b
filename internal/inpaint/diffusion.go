package inpaint

import (
	"context"
	"image"
	"math"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Diffusion fills the mask with a smooth continuation of its surroundings.
//
// The masked area is seeded with FastMarch and then relaxed with
// Gauss-Seidel sweeps: each masked pixel becomes the mean of its in-bounds
// 4-neighbours. Sweeps stop after Iterations or once no sample moves by more
// than Tolerance.
type Diffusion struct {
	// Iterations bounds the number of sweeps. Values below 1 use 500.
	Iterations int

	// Tolerance is the convergence threshold in 8-bit units. Values <= 0
	// use 0.01.
	Tolerance float64

	// SeedRadius is passed to the seeding FastMarch.
	SeedRadius int
}

// Name returns "diffusion".
func (d *Diffusion) Name() string { return NameDiffusion }

// Inpaint implements Inpainter.
func (d *Diffusion) Inpaint(ctx context.Context, img *image.NRGBA, mask *imaging.Mask) (*image.NRGBA, error) {
	seed, err := (&FastMarch{Radius: d.SeedRadius}).Inpaint(ctx, img, mask)
	if err != nil {
		return nil, err
	}

	iterations := d.Iterations
	if iterations < 1 {
		iterations = 500
	}
	tolerance := d.Tolerance
	if tolerance <= 0 {
		tolerance = 0.01
	}

	w, h := mask.Width, mask.Height
	buf := make([]float64, len(seed.Pix))
	for i, v := range seed.Pix {
		buf[i] = float64(v)
	}
	stride := seed.Stride

	var unknown []image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*w+x] != 0 {
				unknown = append(unknown, image.Pt(x, y))
			}
		}
	}

	for it := 0; it < iterations; it++ {
		if it%16 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		maxDelta := 0.0
		for _, p := range unknown {
			var sum [4]float64
			n := 0
			for _, q := range [4]image.Point{{p.X - 1, p.Y}, {p.X + 1, p.Y}, {p.X, p.Y - 1}, {p.X, p.Y + 1}} {
				if q.X < 0 || q.Y < 0 || q.X >= w || q.Y >= h {
					continue
				}
				o := q.Y*stride + q.X*4
				for c := 0; c < 4; c++ {
					sum[c] += buf[o+c]
				}
				n++
			}
			o := p.Y*stride + p.X*4
			for c := 0; c < 4; c++ {
				v := sum[c] / float64(n)
				if delta := math.Abs(v - buf[o+c]); delta > maxDelta {
					maxDelta = delta
				}
				buf[o+c] = v
			}
		}
		if maxDelta < tolerance {
			break
		}
	}

	for _, p := range unknown {
		o := p.Y*stride + p.X*4
		for c := 0; c < 4; c++ {
			seed.Pix[o+c] = uint8(math.Round(math.Max(0, math.Min(255, buf[o+c]))))
		}
	}
	return seed, nil
}
