package detection

import (
	"fmt"
	"image"
)

// Region is an axis-aligned rectangle in image pixel coordinates.
//
// (X, Y) is the top-left corner (inclusive); the rectangle covers Width
// columns and Height rows.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts an image.Rectangle (Max exclusive) to a Region.
func RegionFromRect(r image.Rectangle) Region {
	r = r.Canon()
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the region as an image.Rectangle (Max exclusive).
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Area returns Width × Height.
func (r Region) Area() int {
	return r.Width * r.Height
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether the two regions share at least one pixel.
// Regions that merely touch along an edge do not overlap.
func (r Region) Overlaps(o Region) bool {
	return r.X < o.X+o.Width && r.X+r.Width > o.X &&
		r.Y < o.Y+o.Height && r.Y+r.Height > o.Y
}

// Union returns the smallest region containing both.
func (r Region) Union(o Region) Region {
	return RegionFromRect(r.Rect().Union(o.Rect()))
}

// Clamp clips the region to bounds.
func (r Region) Clamp(bounds image.Rectangle) Region {
	return RegionFromRect(r.Rect().Intersect(bounds))
}

// Pad grows the region by pad pixels on every side, clipped to bounds.
func (r Region) Pad(pad int, bounds image.Rectangle) Region {
	return RegionFromRect(r.Rect().Inset(-pad).Intersect(bounds))
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// less orders regions top-to-bottom, then left-to-right, then by size.
func (r Region) less(o Region) bool {
	if r.Y != o.Y {
		return r.Y < o.Y
	}
	if r.X != o.X {
		return r.X < o.X
	}
	if r.Height != o.Height {
		return r.Height < o.Height
	}
	return r.Width < o.Width
}
