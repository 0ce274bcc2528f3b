package imaging

import (
	"fmt"
	"image"
	"math"
)

// DiffResult summarizes how two equally sized images differ.
type DiffResult struct {
	ChangedPixels int `json:"changed_pixels"`
	TotalPixels   int `json:"total_pixels"`

	// Changed is the bounding box of the changed pixels in the first
	// image's coordinates. It is empty when the images are identical.
	Changed image.Rectangle `json:"-"`

	// MaxChannelDiff is the largest absolute difference of any R, G, B or A
	// sample.
	MaxChannelDiff int `json:"max_channel_diff"`

	// Similarity is 1 - ChangedPixels/TotalPixels, rounded to 3 decimals.
	Similarity float64 `json:"similarity"`
}

// Diff compares a and b pixel by pixel. A pixel is changed when any of its
// 8-bit NRGBA samples differ.
func Diff(a, b image.Image) (*DiffResult, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return nil, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	na, nb := ToNRGBA(a), ToNRGBA(b)
	result := &DiffResult{TotalPixels: ab.Dx() * ab.Dy()}

	for y := 0; y < ab.Dy(); y++ {
		ra := na.Pix[y*na.Stride : y*na.Stride+ab.Dx()*4]
		rb := nb.Pix[y*nb.Stride : y*nb.Stride+ab.Dx()*4]
		for x := 0; x < ab.Dx(); x++ {
			changed := false
			for i := x * 4; i < x*4+4; i++ {
				d := absDiff(ra[i], rb[i])
				if d > 0 {
					changed = true
				}
				if d > result.MaxChannelDiff {
					result.MaxChannelDiff = d
				}
			}
			if !changed {
				continue
			}
			result.ChangedPixels++
			p := image.Pt(x, y).Add(ab.Min)
			result.Changed = result.Changed.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
		}
	}

	if result.TotalPixels > 0 {
		similarity := 1 - float64(result.ChangedPixels)/float64(result.TotalPixels)
		result.Similarity = math.Round(similarity*1000) / 1000
	}
	return result, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
