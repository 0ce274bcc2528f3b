package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createGray builds a gray plane filled with bg and a fg rectangle.
func createGray(width, height int, bg, fg uint8, r image.Rectangle) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := bg
			if image.Pt(x, y).In(r) {
				v = fg
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g
}

func TestGray(t *testing.T) {
	img := createPatternImage(10, 10)
	g := Gray(img)

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"red", 0, 0, 76},
		{"green", 9, 0, 150},
		{"blue", 0, 9, 29},
		{"white", 9, 9, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.GrayAt(tt.x, tt.y).Y; got != tt.want {
				t.Errorf("Gray(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestGray_NRGBAMatchesGeneric(t *testing.T) {
	src := createPatternImage(16, 16)
	fromRGBA := Gray(src)
	fromNRGBA := Gray(ToNRGBA(src))

	if string(fromRGBA.Pix) != string(fromNRGBA.Pix) {
		t.Error("NRGBA fast path disagrees with generic conversion")
	}
}

func TestOtsuLevel(t *testing.T) {
	g := createGray(40, 40, 40, 200, image.Rect(10, 10, 30, 30))

	level := OtsuLevel(g)
	if level < 40 || level >= 200 {
		t.Errorf("Otsu level %d should separate 40 from 200", level)
	}

	m := ThresholdOtsu(g)
	if got := m.Count(); got != 20*20 {
		t.Errorf("foreground count: got %d, want %d", got, 400)
	}
}

func TestOtsuLevel_Uniform(t *testing.T) {
	g := createGray(10, 10, 128, 128, image.Rectangle{})
	m := ThresholdOtsu(g)
	if m.Count() != 0 {
		t.Errorf("uniform image should have no foreground, got %d", m.Count())
	}
}

func TestThresholdFixed(t *testing.T) {
	g := createGray(20, 20, 50, 220, image.Rect(5, 5, 10, 10))

	m := ThresholdFixed(g, 127)
	if got := m.Count(); got != 25 {
		t.Errorf("Count: got %d, want 25", got)
	}
	if !m.At(7, 7) || m.At(0, 0) {
		t.Error("wrong pixels selected")
	}
}

func TestThresholdAdaptive(t *testing.T) {
	// Bright stroke on a dark ramp: a global threshold would fail, a local
	// one should still isolate the stroke.
	g := image.NewGray(image.Rect(0, 0, 60, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(x * 2)})
		}
	}
	for y := 8; y < 12; y++ {
		for x := 0; x < 60; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(x*2 + 60)})
		}
	}

	m := ThresholdAdaptive(g, 11, 2)
	if !m.At(30, 10) {
		t.Error("stroke pixel should be above its local mean")
	}
	// Just below the stroke the local mean is pulled up by the stroke.
	if m.At(30, 13) {
		t.Error("background next to the stroke should be below mean-C")
	}
}

func TestLocalStdDev(t *testing.T) {
	flat := createGray(20, 20, 100, 100, image.Rectangle{})
	std := LocalStdDev(flat, 5)
	for y := range std {
		for x := range std[y] {
			if std[y][x] != 0 {
				t.Fatalf("flat image std at (%d,%d) = %f, want 0", x, y, std[y][x])
			}
		}
	}

	// Checkerboard of 0/200 has std 100 wherever the window holds an even split.
	checker := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				checker.SetGray(x, y, color.Gray{Y: 200})
			}
		}
	}
	std = LocalStdDev(checker, 5)
	if math.Abs(std[10][10]-100) > 5 {
		t.Errorf("checkerboard std: got %.2f, want ~100", std[10][10])
	}

	m := ThresholdValues(std, 20)
	if m.Width != 20 || m.Height != 20 || !m.At(10, 10) {
		t.Error("ThresholdValues should select high-variance pixels")
	}
}
