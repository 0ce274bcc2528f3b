package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
)

// Gray converts img to an 8-bit grayscale plane with its origin at (0,0),
// using ITU-R BT.601 luminance weights (0.299*R + 0.587*G + 0.114*B).
func Gray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width*4]
			for x := 0; x < width; x++ {
				out.Pix[y*out.Stride+x] = luma(row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return out
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			out.Pix[y*out.Stride+x] = luma(uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return out
}

func luma(r, g, b uint8) uint8 {
	return uint8(float64(r)*0.299 + float64(g)*0.587 + float64(b)*0.114 + 0.5)
}

// OtsuLevel returns the global threshold that maximises between-class
// variance of the histogram of g.
func OtsuLevel(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			hist[g.Pix[y*g.Stride+x]]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, best float64
	var wB int
	level := 0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// ThresholdOtsu binarises g at its Otsu level: pixels strictly above the
// level are set.
func ThresholdOtsu(g *image.Gray) *Mask {
	level := OtsuLevel(g)
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if g.Pix[y*g.Stride+x] > level {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// ThresholdFixed sets every pixel whose gray value is at least level.
// Values within one step of level may land on either side.
func ThresholdFixed(g *image.Gray, level uint8) *Mask {
	return MaskFromGray(segment.Threshold(g, level))
}

// ThresholdAdaptive sets every pixel brighter than its Gaussian-weighted
// neighbourhood mean minus c. block is the neighbourhood side length and is
// forced odd.
func ThresholdAdaptive(g *image.Gray, block int, c float64) *Mask {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	mean := blur.Gaussian(g, float64(block/2))

	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := float64(g.Pix[y*g.Stride+x])
			local := float64(mean.Pix[y*mean.Stride+x*4])
			if v > local-c {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// LocalStdDev returns the standard deviation of g over a window×window
// neighbourhood centred on every pixel. The window is clipped at the border.
func LocalStdDev(g *image.Gray, window int) [][]float64 {
	b := g.Bounds()
	width, height := b.Dx(), b.Dy()
	half := window / 2

	// Summed-area tables of values and squared values, one row/col larger.
	sum := make([]float64, (width+1)*(height+1))
	sq := make([]float64, (width+1)*(height+1))
	stride := width + 1
	for y := 0; y < height; y++ {
		var rowSum, rowSq float64
		for x := 0; x < width; x++ {
			v := float64(g.Pix[y*g.Stride+x])
			rowSum += v
			rowSq += v * v
			sum[(y+1)*stride+x+1] = sum[y*stride+x+1] + rowSum
			sq[(y+1)*stride+x+1] = sq[y*stride+x+1] + rowSq
		}
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		y0 := clamp(y-half, 0, height-1)
		y1 := clamp(y+half, 0, height-1) + 1
		for x := 0; x < width; x++ {
			x0 := clamp(x-half, 0, width-1)
			x1 := clamp(x+half, 0, width-1) + 1
			n := float64((x1 - x0) * (y1 - y0))
			s := sum[y1*stride+x1] - sum[y0*stride+x1] - sum[y1*stride+x0] + sum[y0*stride+x0]
			s2 := sq[y1*stride+x1] - sq[y0*stride+x1] - sq[y1*stride+x0] + sq[y0*stride+x0]
			mean := s / n
			variance := s2/n - mean*mean
			if variance < 0 {
				variance = 0
			}
			out[y][x] = math.Sqrt(variance)
		}
	}
	return out
}

// ThresholdValues sets every pixel whose value in plane exceeds level.
func ThresholdValues(plane [][]float64, level float64) *Mask {
	height := len(plane)
	width := 0
	if height > 0 {
		width = len(plane[0])
	}
	m := NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if plane[y][x] > level {
				m.Pix[y*width+x] = 1
			}
		}
	}
	return m
}
