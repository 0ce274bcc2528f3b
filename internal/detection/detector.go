package detection

import (
	"context"
	"fmt"
	"sort"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Detector names accepted by NewDetector.
const (
	DetectorThreshold     = "threshold"
	DetectorLocalContrast = "local-contrast"
	DetectorEdgeDensity   = "edge-density"
	DetectorColorGate     = "color-gate"
)

// DetectorNames lists every registered detector in a stable order.
var DetectorNames = []string{
	DetectorThreshold,
	DetectorLocalContrast,
	DetectorEdgeDensity,
	DetectorColorGate,
}

// Detector proposes candidate rectangles inside a band.
//
// Implementations are pure: they read the band and return regions in
// full-image coordinates. An empty result is not an error.
type Detector interface {
	Name() string
	Detect(ctx context.Context, band *Band) ([]Region, error)
}

// Params holds the tuning of every detector.
type Params struct {
	Threshold     ThresholdParams     `yaml:"threshold" json:"threshold"`
	LocalContrast LocalContrastParams `yaml:"local_contrast" json:"local_contrast"`
	EdgeDensity   EdgeDensityParams   `yaml:"edge_density" json:"edge_density"`
	ColorGate     ColorGateParams     `yaml:"color_gate" json:"color_gate"`
}

// NewDetector creates the named detector.
func NewDetector(name string, p Params) (Detector, error) {
	switch name {
	case DetectorThreshold:
		return &ThresholdDetector{Params: p.Threshold}, nil
	case DetectorLocalContrast:
		return &LocalContrastDetector{Params: p.LocalContrast}, nil
	case DetectorEdgeDensity:
		return &EdgeDensityDetector{Params: p.EdgeDensity}, nil
	case DetectorColorGate:
		return &ColorGateDetector{Params: p.ColorGate}, nil
	default:
		return nil, fmt.Errorf("unknown detector: %s", name)
	}
}

// ContourFilter describes the box shape expected of a short line of text.
//
// Bounds are exclusive, matching how they were tuned: a box passes when
// width > MinWidth, height > MinHeight, area > MinArea, and so on. Width and
// height fractions are relative to the band; a zero fraction, aspect or
// density disables that check.
type ContourFilter struct {
	MinWidth      int     `yaml:"min_width" json:"min_width"`
	MaxWidthFrac  float64 `yaml:"max_width_frac" json:"max_width_frac"`
	MinHeight     int     `yaml:"min_height" json:"min_height"`
	MaxHeightFrac float64 `yaml:"max_height_frac" json:"max_height_frac"`
	MinArea       int     `yaml:"min_area" json:"min_area"`
	MinAspect     float64 `yaml:"min_aspect" json:"min_aspect"`
	MaxAspect     float64 `yaml:"max_aspect" json:"max_aspect"`
	MinDensity    float64 `yaml:"min_density" json:"min_density"`
}

// Accept reports whether a contour passes the filter inside a band of the
// given size.
func (f ContourFilter) Accept(c imaging.Contour, bandWidth, bandHeight int) bool {
	w, h := c.Bounds.Dx(), c.Bounds.Dy()
	if w <= f.MinWidth || h <= f.MinHeight {
		return false
	}
	if f.MaxWidthFrac > 0 && float64(w) >= f.MaxWidthFrac*float64(bandWidth) {
		return false
	}
	if f.MaxHeightFrac > 0 && float64(h) >= f.MaxHeightFrac*float64(bandHeight) {
		return false
	}
	if c.Area <= f.MinArea {
		return false
	}
	aspect := float64(w) / float64(h)
	if f.MinAspect > 0 && aspect <= f.MinAspect {
		return false
	}
	if f.MaxAspect > 0 && aspect >= f.MaxAspect {
		return false
	}
	if f.MinDensity > 0 && float64(c.Area)/float64(w*h) <= f.MinDensity {
		return false
	}
	return true
}

// Validate checks that the filter is internally consistent.
func (f ContourFilter) Validate() error {
	if f.MinWidth < 0 || f.MinHeight < 0 || f.MinArea < 0 {
		return fmt.Errorf("contour filter minimums must be >= 0")
	}
	if f.MaxWidthFrac < 0 || f.MaxWidthFrac > 1 || f.MaxHeightFrac < 0 || f.MaxHeightFrac > 1 {
		return fmt.Errorf("contour filter fractions must be in [0,1]")
	}
	if f.MaxAspect > 0 && f.MinAspect >= f.MaxAspect {
		return fmt.Errorf("contour filter aspect range %.2f..%.2f is empty", f.MinAspect, f.MaxAspect)
	}
	return nil
}

// boxes extracts the external contours of m, keeps those accepted by the
// filter and returns them in full-image coordinates.
func boxes(m *imaging.Mask, band *Band, f ContourFilter) []Region {
	var out []Region
	for _, c := range imaging.ExternalContours(m) {
		if f.Accept(c, band.Width(), band.Height()) {
			out = append(out, band.toImage(c.Bounds))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// minority returns m, or its inverse when more than half of the pixels are
// set. Overlay text never covers most of the band, so the smaller class is
// taken to be the foreground.
func minority(m *imaging.Mask) *imaging.Mask {
	if m.Count()*2 > len(m.Pix) {
		return m.Invert()
	}
	return m
}
