package imaging

import "image"

// Blob is one 8-connected group of set mask pixels.
type Blob struct {
	// Bounds is the bounding box of the blob (Max exclusive).
	Bounds image.Rectangle

	// Count is the number of pixels in the blob.
	Count int

	// Pixels lists the blob's coordinates in visiting order. It is nil when
	// the blob was produced by a caller that did not ask for pixels.
	Pixels []image.Point
}

// Label groups the set pixels of m inside area into 8-connected blobs.
//
// The scan is row-major; every unvisited set pixel seeds an iterative
// flood fill driven by an explicit work-list, and a visited bitmap sized to
// area guarantees each pixel is expanded at most once. Blobs are returned in
// the order their seed pixel was found. When keepPixels is false only
// Bounds and Count are filled in.
func Label(m *Mask, area image.Rectangle, keepPixels bool) []Blob {
	area = area.Intersect(m.Bounds())
	if area.Empty() {
		return nil
	}
	aw := area.Dx()
	visited := make([]bool, aw*area.Dy())
	idx := func(p image.Point) int {
		return (p.Y-area.Min.Y)*aw + (p.X - area.Min.X)
	}

	var blobs []Blob
	var stack []image.Point

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			seed := image.Pt(x, y)
			if visited[idx(seed)] || !m.At(x, y) {
				continue
			}

			blob := Blob{Bounds: image.Rectangle{Min: seed, Max: seed.Add(image.Pt(1, 1))}}
			visited[idx(seed)] = true
			stack = append(stack[:0], seed)

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				blob.Count++
				if keepPixels {
					blob.Pixels = append(blob.Pixels, p)
				}
				blob.Bounds = blob.Bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						n := image.Pt(p.X+dx, p.Y+dy)
						if !n.In(area) || visited[idx(n)] || !m.At(n.X, n.Y) {
							continue
						}
						visited[idx(n)] = true
						stack = append(stack, n)
					}
				}
			}
			blobs = append(blobs, blob)
		}
	}
	return blobs
}

// FillHoles returns a copy of m in which every unset region that cannot reach
// the mask border through 4-connected unset pixels is set.
func FillHoles(m *Mask) *Mask {
	w, h := m.Width, m.Height
	outside := make([]bool, w*h)
	var stack []image.Point

	push := func(x, y int) {
		if x < 0 || y < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if outside[i] || m.Pix[i] != 0 {
			return
		}
		outside[i] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	out := NewMask(w, h)
	for i := range out.Pix {
		if !outside[i] {
			out.Pix[i] = 1
		}
	}
	return out
}

// Contour describes an external contour: the outer boundary of a blob with
// its holes filled.
type Contour struct {
	// Bounds is the bounding rectangle of the contour (Max exclusive).
	Bounds image.Rectangle

	// Area is the number of pixels enclosed by the contour, holes included.
	Area int
}

// ExternalContours returns the external contours of m, one per outermost
// 8-connected blob. Blobs nested inside another blob's hole are absorbed by
// the enclosing contour.
func ExternalContours(m *Mask) []Contour {
	filled := FillHoles(m)
	blobs := Label(filled, filled.Bounds(), false)
	contours := make([]Contour, 0, len(blobs))
	for _, b := range blobs {
		contours = append(contours, Contour{Bounds: b.Bounds, Area: b.Count})
	}
	return contours
}
