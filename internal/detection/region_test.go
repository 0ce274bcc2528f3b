package detection

import (
	"image"
	"testing"
)

func TestRegion_Overlaps(t *testing.T) {
	a := Region{X: 10, Y: 10, Width: 10, Height: 10}

	tests := []struct {
		name string
		b    Region
		want bool
	}{
		{"identical", a, true},
		{"partial overlap", Region{X: 15, Y: 15, Width: 10, Height: 10}, true},
		{"contained", Region{X: 12, Y: 12, Width: 2, Height: 2}, true},
		{"touching right edge", Region{X: 20, Y: 10, Width: 5, Height: 5}, false},
		{"touching bottom edge", Region{X: 10, Y: 20, Width: 5, Height: 5}, false},
		{"disjoint", Region{X: 50, Y: 50, Width: 5, Height: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps: got %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %v", tt.b)
			}
		})
	}
}

func TestRegion_Union(t *testing.T) {
	a := Region{X: 0, Y: 0, Width: 10, Height: 10}
	b := Region{X: 5, Y: 8, Width: 10, Height: 10}

	want := Region{X: 0, Y: 0, Width: 15, Height: 18}
	if got := a.Union(b); got != want {
		t.Errorf("Union: got %v, want %v", got, want)
	}
}

func TestRegion_ClampAndPad(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)

	tests := []struct {
		name string
		got  Region
		want Region
	}{
		{"clamp inside", Region{X: 10, Y: 10, Width: 5, Height: 5}.Clamp(bounds), Region{X: 10, Y: 10, Width: 5, Height: 5}},
		{"clamp overflow", Region{X: 90, Y: 40, Width: 20, Height: 20}.Clamp(bounds), Region{X: 90, Y: 40, Width: 10, Height: 10}},
		{"clamp negative", Region{X: -5, Y: -5, Width: 10, Height: 10}.Clamp(bounds), Region{X: 0, Y: 0, Width: 5, Height: 5}},
		{"pad interior", Region{X: 10, Y: 10, Width: 5, Height: 5}.Pad(2, bounds), Region{X: 8, Y: 8, Width: 9, Height: 9}},
		{"pad at corner", Region{X: 0, Y: 45, Width: 5, Height: 5}.Pad(3, bounds), Region{X: 0, Y: 42, Width: 8, Height: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
			if !tt.got.Rect().In(bounds) {
				t.Errorf("%v escapes bounds", tt.got)
			}
		})
	}
}

func TestRegionFromRect(t *testing.T) {
	r := RegionFromRect(image.Rect(30, 20, 10, 5))
	want := Region{X: 10, Y: 5, Width: 20, Height: 15}
	if r != want {
		t.Errorf("got %v, want %v", r, want)
	}
	if r.Rect() != image.Rect(10, 5, 30, 20) {
		t.Errorf("Rect round trip: got %v", r.Rect())
	}
	if r.Area() != 300 {
		t.Errorf("Area: got %d, want 300", r.Area())
	}
}
