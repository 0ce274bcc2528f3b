package imaging

import "fmt"

// Kernel is a rectangular structuring element of Width×Height pixels anchored
// at (Width/2, Height/2). Dilation uses the reflected element, so Open and
// Close do not shift shapes even for even-sized kernels.
type Kernel struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Validate reports whether the kernel has a positive size.
func (k Kernel) Validate() error {
	if k.Width < 1 || k.Height < 1 {
		return fmt.Errorf("invalid kernel %dx%d: both sides must be >= 1", k.Width, k.Height)
	}
	return nil
}

// Dilate sets every pixel whose kernel neighbourhood contains a set pixel.
// Pixels outside the mask are treated as unset.
func Dilate(m *Mask, k Kernel) *Mask {
	if out, ok := morphEx(m, k, morphDilate); ok {
		return out
	}
	return morph(m, k, true)
}

// Erode keeps only pixels whose whole kernel neighbourhood is set.
// Pixels outside the mask do not count against the neighbourhood.
func Erode(m *Mask, k Kernel) *Mask {
	return morph(m, k, false)
}

// Close is a dilation followed by an erosion; it bridges gaps narrower than
// the kernel.
func Close(m *Mask, k Kernel) *Mask {
	if out, ok := morphEx(m, k, morphClose); ok {
		return out
	}
	return morph(morph(m, k, true), k, false)
}

// Open is an erosion followed by a dilation; it removes specks smaller than
// the kernel.
func Open(m *Mask, k Kernel) *Mask {
	if out, ok := morphEx(m, k, morphOpen); ok {
		return out
	}
	return morph(morph(m, k, false), k, true)
}

type morphOp int

const (
	morphDilate morphOp = iota
	morphClose
	morphOpen
)

// DilateN applies Dilate iterations times.
func DilateN(m *Mask, k Kernel, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = Dilate(out, k)
	}
	if out == m {
		return m.Clone()
	}
	return out
}

// morph runs a separable rectangular max (dilate) or min (erode) filter.
func morph(m *Mask, k Kernel, dilate bool) *Mask {
	if k.Width < 1 {
		k.Width = 1
	}
	if k.Height < 1 {
		k.Height = 1
	}
	w, h := m.Width, m.Height

	// Horizontal pass.
	tmp := NewMask(w, h)
	before, after := window(k.Width, dilate)
	for y := 0; y < h; y++ {
		row := m.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			tmp.Pix[y*w+x] = reduce(row, x-before, x+after+1, dilate)
		}
	}

	// Vertical pass.
	out := NewMask(w, h)
	before, after = window(k.Height, dilate)
	for x := 0; x < w; x++ {
		col := make([]uint8, h)
		for y := 0; y < h; y++ {
			col[y] = tmp.Pix[y*w+x]
		}
		for y := 0; y < h; y++ {
			out.Pix[y*w+x] = reduce(col, y-before, y+after+1, dilate)
		}
	}
	return out
}

// window returns how many pixels before and after the current one a kernel
// side of the given size covers.
func window(size int, dilate bool) (before, after int) {
	anchor := size / 2
	if dilate {
		return size - 1 - anchor, anchor
	}
	return anchor, size - 1 - anchor
}

// reduce returns 1 if any (dilate) or every (erode) in-range element of
// line[from:to] is set.
func reduce(line []uint8, from, to int, dilate bool) uint8 {
	if from < 0 {
		from = 0
	}
	if to > len(line) {
		to = len(line)
	}
	for i := from; i < to; i++ {
		if dilate && line[i] != 0 {
			return 1
		}
		if !dilate && line[i] == 0 {
			return 0
		}
	}
	if dilate {
		return 0
	}
	return 1
}
