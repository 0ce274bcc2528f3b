package detection

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// createTestImage creates a uniformly colored image.
func createTestImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// overlayRect is where the synthetic overlay text sits in a 200x100 image.
var overlayRect = image.Rect(70, 83, 130, 94)

// createOverlayImage draws a blue box with white vertical strokes inside the
// bottom band of a gray 200x100 image, plus a blue box well above the band.
func createOverlayImage() *image.NRGBA {
	blue := color.NRGBA{30, 60, 200, 255}
	img := createTestImage(200, 100, color.NRGBA{128, 128, 128, 255})
	fillRect(img, overlayRect, blue)
	for x := overlayRect.Min.X + 5; x < overlayRect.Max.X; x += 5 {
		fillRect(img, image.Rect(x, 85, x+1, 92), color.NRGBA{255, 255, 255, 255})
	}
	fillRect(img, image.Rect(70, 20, 130, 31), blue)
	return img
}

// createContrastImage draws a bright box on a dark 200x100 image.
func createContrastImage(fg, bg uint8) *image.NRGBA {
	img := createTestImage(200, 100, color.NRGBA{bg, bg, bg, 255})
	fillRect(img, overlayRect, color.NRGBA{fg, fg, fg, 255})
	return img
}

func mustBand(t *testing.T, img image.Image) *Band {
	t.Helper()
	band, err := NewBand(img, 0.3)
	if err != nil {
		t.Fatalf("NewBand failed: %v", err)
	}
	return band
}

func blueRanges() []imaging.HueRange {
	return []imaging.HueRange{{MinHue: 200, MaxHue: 260, MinSat: 0.196, MaxSat: 1, MinVal: 0.196, MaxVal: 1}}
}

func TestNewDetector(t *testing.T) {
	for _, name := range DetectorNames {
		t.Run(name, func(t *testing.T) {
			d, err := NewDetector(name, Params{})
			if err != nil {
				t.Fatalf("NewDetector(%q) failed: %v", name, err)
			}
			if d.Name() != name {
				t.Errorf("Name: got %q, want %q", d.Name(), name)
			}
		})
	}

	if _, err := NewDetector("sobel", Params{}); err == nil {
		t.Error("expected error for unknown detector")
	}
}

func TestContourFilter_Accept(t *testing.T) {
	f := ContourFilter{
		MinWidth:      30,
		MaxWidthFrac:  0.8,
		MinHeight:     8,
		MaxHeightFrac: 0.5,
		MinArea:       200,
		MinAspect:     1,
		MaxAspect:     15,
		MinDensity:    0.1,
	}

	tests := []struct {
		name string
		c    imaging.Contour
		want bool
	}{
		{"text line", imaging.Contour{Bounds: image.Rect(0, 0, 60, 11), Area: 600}, true},
		{"too narrow", imaging.Contour{Bounds: image.Rect(0, 0, 30, 11), Area: 330}, false},
		{"too short", imaging.Contour{Bounds: image.Rect(0, 0, 60, 8), Area: 480}, false},
		{"too wide for band", imaging.Contour{Bounds: image.Rect(0, 0, 160, 11), Area: 1760}, false},
		{"too tall for band", imaging.Contour{Bounds: image.Rect(0, 0, 60, 15), Area: 900}, false},
		{"too small", imaging.Contour{Bounds: image.Rect(0, 0, 40, 9), Area: 200}, false},
		{"too elongated", imaging.Contour{Bounds: image.Rect(0, 0, 150, 9), Area: 1350}, false},
		{"too sparse", imaging.Contour{Bounds: image.Rect(0, 0, 60, 11), Area: 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Accept(tt.c, 200, 30); got != tt.want {
				t.Errorf("Accept(%v): got %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestContourFilter_Validate(t *testing.T) {
	if err := (ContourFilter{MinWidth: 10, MaxWidthFrac: 0.5}).Validate(); err != nil {
		t.Errorf("valid filter rejected: %v", err)
	}
	bad := []ContourFilter{
		{MinWidth: -1},
		{MaxWidthFrac: 1.5},
		{MinAspect: 5, MaxAspect: 2},
	}
	for _, f := range bad {
		if err := f.Validate(); err == nil {
			t.Errorf("expected error for %+v", f)
		}
	}
}

func TestColorGateDetector(t *testing.T) {
	params := ColorGateParams{
		Ranges:        blueRanges(),
		Close:         imaging.Kernel{Width: 3, Height: 1},
		Open:          imaging.Kernel{Width: 2, Height: 2},
		MinColorRatio: 0.3,
		Filter: ContourFilter{
			MinWidth:      20,
			MaxWidthFrac:  0.6,
			MinHeight:     8,
			MaxHeightFrac: 0.4,
			MinArea:       150,
		},
	}
	band := mustBand(t, createOverlayImage())

	t.Run("finds overlay in band", func(t *testing.T) {
		d := &ColorGateDetector{Params: params}
		got, err := d.Detect(context.Background(), band)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		want := RegionFromRect(overlayRect)
		if len(got) != 1 || got[0] != want {
			t.Errorf("got %v, want [%v]", got, want)
		}
	})

	t.Run("color ratio gate", func(t *testing.T) {
		strict := params
		strict.MinColorRatio = 0.95
		d := &ColorGateDetector{Params: strict}
		got, err := d.Detect(context.Background(), band)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected box with stroked interior to fail a 0.95 ratio, got %v", got)
		}
	})
}

func TestThresholdDetector(t *testing.T) {
	params := ThresholdParams{
		Modes:         []string{ModeOtsu, ModeFixed},
		FixedLevel:    127,
		AdaptiveBlock: 11,
		AdaptiveC:     2,
		Close:         imaging.Kernel{Width: 5, Height: 2},
		Filter: ContourFilter{
			MinWidth:      30,
			MaxWidthFrac:  0.8,
			MinHeight:     8,
			MaxHeightFrac: 0.5,
			MinArea:       200,
			MinAspect:     1,
			MaxAspect:     15,
			MinDensity:    0.1,
		},
	}
	band := mustBand(t, createContrastImage(150, 40))

	t.Run("otsu and fixed", func(t *testing.T) {
		d := &ThresholdDetector{Params: params}
		got, err := d.Detect(context.Background(), band)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		want := RegionFromRect(overlayRect)
		if len(got) != 1 || got[0] != want {
			t.Errorf("got %v, want [%v]", got, want)
		}
	})

	t.Run("dark text on light background", func(t *testing.T) {
		d := &ThresholdDetector{Params: params}
		got, err := d.Detect(context.Background(), mustBand(t, createContrastImage(40, 150)))
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		want := RegionFromRect(overlayRect)
		if len(got) != 1 || got[0] != want {
			t.Errorf("got %v, want [%v]", got, want)
		}
	})

	t.Run("with adaptive", func(t *testing.T) {
		all := params
		all.Modes = []string{ModeOtsu, ModeFixed, ModeAdaptive}
		d := &ThresholdDetector{Params: all}
		got, err := d.Detect(context.Background(), band)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if len(got) == 0 || !got[0].Overlaps(RegionFromRect(overlayRect)) {
			t.Errorf("expected a region over the overlay, got %v", got)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		bad := params
		bad.Modes = []string{"triangle"}
		d := &ThresholdDetector{Params: bad}
		if _, err := d.Detect(context.Background(), band); err == nil {
			t.Error("expected error for unknown mode")
		}
	})
}

func TestLocalContrastDetector(t *testing.T) {
	d := &LocalContrastDetector{Params: LocalContrastParams{
		Window:       5,
		StdThreshold: 20,
		Close:        imaging.Kernel{Width: 10, Height: 3},
		Filter:       ContourFilter{MinWidth: 50, MinHeight: 10, MaxWidthFrac: 0.8},
	}}

	got, err := d.Detect(context.Background(), mustBand(t, createContrastImage(150, 40)))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 region, got %v", got)
	}
	if !overlayRect.In(got[0].Rect()) {
		t.Errorf("region %v does not cover overlay %v", got[0], overlayRect)
	}
	if !got[0].Rect().In(overlayRect.Inset(-3)) {
		t.Errorf("region %v extends too far beyond overlay %v", got[0], overlayRect)
	}
}

func TestEdgeDensityDetector(t *testing.T) {
	d := &EdgeDensityDetector{Params: EdgeDensityParams{
		Low:        50,
		High:       150,
		Dilate:     imaging.Kernel{Width: 3, Height: 1},
		Iterations: 2,
		Filter:     ContourFilter{MinWidth: 40, MinHeight: 8, MaxWidthFrac: 0.9},
	}}

	got, err := d.Detect(context.Background(), mustBand(t, createContrastImage(255, 0)))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one region")
	}
	if !got[0].Overlaps(RegionFromRect(overlayRect)) {
		t.Errorf("region %v does not overlap overlay %v", got[0], overlayRect)
	}
	if !got[0].Rect().In(mustBand(t, createContrastImage(255, 0)).Rect) {
		t.Errorf("region %v escapes the band", got[0])
	}
}

func TestDetectors_UniformBand(t *testing.T) {
	params := Params{
		Threshold: ThresholdParams{
			Modes: []string{ModeOtsu, ModeFixed, ModeAdaptive}, FixedLevel: 127,
			AdaptiveBlock: 11, AdaptiveC: 2,
			Close: imaging.Kernel{Width: 5, Height: 2},
		},
		LocalContrast: LocalContrastParams{Window: 5, StdThreshold: 20, Close: imaging.Kernel{Width: 10, Height: 3}},
		EdgeDensity:   EdgeDensityParams{Low: 50, High: 150, Dilate: imaging.Kernel{Width: 3, Height: 1}, Iterations: 2},
		ColorGate: ColorGateParams{
			Ranges: blueRanges(),
			Close:  imaging.Kernel{Width: 3, Height: 1},
			Open:   imaging.Kernel{Width: 2, Height: 2},
		},
	}
	band := mustBand(t, createTestImage(200, 100, color.NRGBA{128, 128, 128, 255}))

	for _, name := range DetectorNames {
		t.Run(name, func(t *testing.T) {
			d, err := NewDetector(name, params)
			if err != nil {
				t.Fatalf("NewDetector failed: %v", err)
			}
			got, err := d.Detect(context.Background(), band)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no regions on a uniform band, got %v", got)
			}
		})
	}
}

func TestDetectors_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	band := mustBand(t, createOverlayImage())

	for _, name := range DetectorNames {
		d, _ := NewDetector(name, Params{})
		if _, err := d.Detect(ctx, band); err == nil {
			t.Errorf("%s: expected error for canceled context", name)
		}
	}
}
