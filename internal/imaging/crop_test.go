package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name       string
		r          image.Rectangle
		wantW      int
		wantH      int
		wantErr    bool
		wantCorner color.NRGBA
	}{
		{"top-left quadrant", image.Rect(0, 0, 50, 50), 50, 50, false, color.NRGBA{255, 0, 0, 255}},
		{"bottom-right quadrant", image.Rect(50, 50, 100, 100), 50, 50, false, color.NRGBA{255, 255, 255, 255}},
		{"thin strip", image.Rect(0, 90, 100, 100), 100, 10, false, color.NRGBA{0, 0, 255, 255}},
		{"outside bounds", image.Rect(50, 50, 150, 100), 0, 0, true, color.NRGBA{}},
		{"empty", image.Rect(10, 10, 10, 20), 0, 0, true, color.NRGBA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Crop(img, tt.r)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Crop failed: %v", err)
			}
			if out.Bounds() != image.Rect(0, 0, tt.wantW, tt.wantH) {
				t.Errorf("bounds: got %v, want %dx%d at origin", out.Bounds(), tt.wantW, tt.wantH)
			}
			if c := out.NRGBAAt(0, 0); c != tt.wantCorner {
				t.Errorf("corner: got %v, want %v", c, tt.wantCorner)
			}
		})
	}
}

func TestPad(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	tests := []struct {
		name string
		r    image.Rectangle
		pad  int
		want image.Rectangle
	}{
		{"interior", image.Rect(10, 10, 20, 20), 2, image.Rect(8, 8, 22, 22)},
		{"clipped at origin", image.Rect(0, 1, 5, 5), 3, image.Rect(0, 0, 8, 8)},
		{"clipped at far edge", image.Rect(95, 95, 100, 100), 3, image.Rect(92, 92, 100, 100)},
		{"zero padding", image.Rect(10, 10, 20, 20), 0, image.Rect(10, 10, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pad(tt.r, tt.pad, bounds); got != tt.want {
				t.Errorf("Pad: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBottomBand(t *testing.T) {
	tests := []struct {
		name     string
		bounds   image.Rectangle
		fraction float64
		want     image.Rectangle
	}{
		{"bottom 20%", image.Rect(0, 0, 200, 100), 0.2, image.Rect(0, 80, 200, 100)},
		{"bottom 30%", image.Rect(0, 0, 200, 100), 0.3, image.Rect(0, 70, 200, 100)},
		{"whole image", image.Rect(0, 0, 200, 100), 1, image.Rect(0, 0, 200, 100)},
		{"clamped above one", image.Rect(0, 0, 200, 100), 2, image.Rect(0, 0, 200, 100)},
		{"offset origin", image.Rect(10, 10, 110, 110), 0.5, image.Rect(10, 60, 110, 110)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BottomBand(tt.bounds, tt.fraction); got != tt.want {
				t.Errorf("BottomBand: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpscale(t *testing.T) {
	img := createPatternImage(20, 10)

	tests := []struct {
		factor int
		wantW  int
		wantH  int
	}{
		{1, 20, 10},
		{2, 40, 20},
		{3, 60, 30},
	}

	for _, tt := range tests {
		out := Upscale(img, tt.factor)
		if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
			t.Errorf("Upscale(%d): got %v, want %dx%d", tt.factor, out.Bounds(), tt.wantW, tt.wantH)
		}
	}
}

func TestBinarize_TextIsBlack(t *testing.T) {
	tests := []struct {
		name   string
		bg, fg color.Color
	}{
		{"dark text on light", color.White, color.Black},
		{"light text on dark", color.RGBA{30, 60, 200, 255}, color.White},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 40, 20))
			for y := 0; y < 20; y++ {
				for x := 0; x < 40; x++ {
					img.Set(x, y, tt.bg)
				}
			}
			// A small "glyph" covering well under half the area.
			for y := 5; y < 15; y++ {
				for x := 10; x < 14; x++ {
					img.Set(x, y, tt.fg)
				}
			}

			out := Binarize(img)
			if v := out.GrayAt(12, 10).Y; v != 0 {
				t.Errorf("glyph pixel: got %d, want 0", v)
			}
			if v := out.GrayAt(1, 1).Y; v != 255 {
				t.Errorf("background pixel: got %d, want 255", v)
			}
		})
	}
}
