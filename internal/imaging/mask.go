package imaging

import "image"

// Mask is a binary raster with its origin at (0,0).
//
// Pix holds one byte per pixel in row-major order; any non-zero value is set.
type Mask struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewMask returns an empty mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Pix:    make([]uint8, width*height),
		Width:  width,
		Height: height,
	}
}

// Bounds returns the mask rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At reports whether (x, y) is set. Out of range coordinates are unset.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y). Out of range coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = 1
}

// Clear unmarks (x, y).
func (m *Mask) Clear(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = 0
}

// FillRect marks every pixel of r that lies inside the mask.
func (m *Mask) FillRect(r image.Rectangle) {
	r = r.Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = 1
		}
	}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// CountIn returns the number of set pixels inside r.
func (m *Mask) CountIn(r image.Rectangle) int {
	r = r.Intersect(m.Bounds())
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.Pix[y*m.Width+x] != 0 {
				n++
			}
		}
	}
	return n
}

// Empty reports whether no pixel is set.
func (m *Mask) Empty() bool {
	for _, v := range m.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{Pix: make([]uint8, len(m.Pix)), Width: m.Width, Height: m.Height}
	copy(out.Pix, m.Pix)
	return out
}

// Or sets every pixel of m that is set in other. Both masks must have the
// same size; mismatched masks are combined over their intersection.
func (m *Mask) Or(other *Mask) {
	w := minInt(m.Width, other.Width)
	h := minInt(m.Height, other.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if other.Pix[y*other.Width+x] != 0 {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
}

// Invert returns a mask with every pixel flipped.
func (m *Mask) Invert() *Mask {
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		if v == 0 {
			out.Pix[i] = 1
		}
	}
	return out
}

// BoundingBox returns the smallest rectangle containing every set pixel, or
// the empty rectangle when the mask is empty.
func (m *Mask) BoundingBox() image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] == 0 {
				continue
			}
			minX = minInt(minX, x)
			minY = minInt(minY, y)
			maxX = maxInt(maxX, x)
			maxY = maxInt(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Gray renders the mask as a black/white image, useful for debugging dumps.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(m.Bounds())
	for i, v := range m.Pix {
		if v != 0 {
			g.Pix[i] = 255
		}
	}
	return g
}

// MaskFromGray marks every pixel of g brighter than zero.
func MaskFromGray(g *image.Gray) *Mask {
	b := g.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if g.Pix[y*g.Stride+x] != 0 {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
