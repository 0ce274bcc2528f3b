// Package config holds the tuning of a watermark removal run.
//
// A DetectionConfig is built from the preset of the selected strategy, then
// overlaid with an optional YAML file and finally with environment
// variables. It is read-only once a run starts.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/inpaint"
	"github.com/ironsheep/watermark-cleaner/internal/ocr"
)

// Strategy names.
const (
	StrategyHeuristicContour   = "heuristic-contour"
	StrategyMultiSignalContour = "multi-signal-contour"
	StrategyColorFloodFillOCR  = "color-flood-fill-ocr"
)

// Strategies lists the strategy names in a stable order.
var Strategies = []string{
	StrategyHeuristicContour,
	StrategyMultiSignalContour,
	StrategyColorFloodFillOCR,
}

// DefaultPrefix is prepended to output file names.
const DefaultPrefix = "cleaned_"

// DetectionConfig is the complete tuning of one run.
type DetectionConfig struct {
	Strategy string `yaml:"strategy" json:"strategy"`

	// BandFraction is the bottom fraction of the image searched for the
	// overlay, in (0,1].
	BandFraction float64 `yaml:"band_fraction" json:"band_fraction"`

	Heuristic   HeuristicConfig   `yaml:"heuristic" json:"heuristic"`
	MultiSignal MultiSignalConfig `yaml:"multi_signal" json:"multi_signal"`

	// Detectors tunes every rectangle detector.
	Detectors detection.Params `yaml:"detectors" json:"detectors"`

	FloodFill      FloodFillConfig `yaml:"flood_fill" json:"flood_fill"`
	OCR            ocr.Config      `yaml:"ocr" json:"ocr"`
	Reconstruction inpaint.Config  `yaml:"reconstruction" json:"reconstruction"`
	Batch          BatchConfig     `yaml:"batch" json:"batch"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// HeuristicConfig selects the single detector of heuristic-contour.
type HeuristicConfig struct {
	Detector string `yaml:"detector" json:"detector"`
}

// MultiSignalConfig selects the detectors run together by
// multi-signal-contour.
type MultiSignalConfig struct {
	Detectors []string `yaml:"detectors" json:"detectors"`
}

// FloodFillConfig tunes the pixel path of color-flood-fill-ocr.
type FloodFillConfig struct {
	// Ranges is the overlay color predicate.
	Ranges []imaging.HueRange `yaml:"ranges" json:"ranges"`

	// MinPixels discards smaller components as noise.
	MinPixels int `yaml:"min_pixels" json:"min_pixels"`

	// FillHoles also erases background enclosed by a component.
	FillHoles bool `yaml:"fill_holes" json:"fill_holes"`
}

// BatchConfig tunes directory processing.
type BatchConfig struct {
	Workers     int           `yaml:"workers" json:"workers"`
	Prefix      string        `yaml:"prefix" json:"prefix"`
	ItemTimeout time.Duration `yaml:"item_timeout" json:"item_timeout"`
	Manifest    string        `yaml:"manifest" json:"manifest"`
}

// BlueRanges are the HSV ranges of the blue overlay text: a tight core range
// and a wider one for anti-aliased glyph edges.
func BlueRanges() []imaging.HueRange {
	return []imaging.HueRange{
		{MinHue: 200, MaxHue: 260, MinSat: 0.196, MaxSat: 1, MinVal: 0.196, MaxVal: 1},
		{MinHue: 180, MaxHue: 280, MinSat: 0.157, MaxSat: 1, MinVal: 0.157, MaxVal: 1},
	}
}

// Default returns the preset of multi-signal-contour.
func Default() DetectionConfig {
	return Preset(StrategyMultiSignalContour)
}

// Preset returns the tuned configuration of a strategy. Unknown names get
// the shared base with Strategy set, which Validate rejects.
func Preset(strategy string) DetectionConfig {
	cfg := base()
	cfg.Strategy = strategy

	switch strategy {
	case StrategyHeuristicContour:
		cfg.BandFraction = 0.4
		cfg.Heuristic.Detector = detection.DetectorThreshold
		cfg.Detectors.Threshold = detection.ThresholdParams{
			Modes:         []string{detection.ModeOtsu},
			FixedLevel:    127,
			AdaptiveBlock: 11,
			AdaptiveC:     2,
			Close:         imaging.Kernel{Width: 10, Height: 3},
			Filter: detection.ContourFilter{
				MinWidth:     100,
				MaxWidthFrac: 0.8,
				MinHeight:    15,
			},
		}
		cfg.Reconstruction.Padding = 2
	case StrategyMultiSignalContour:
		cfg.BandFraction = 0.3
		cfg.Reconstruction.Padding = 3
		cfg.Reconstruction.SeamBlur = true
	case StrategyColorFloodFillOCR:
		cfg.BandFraction = 0.25
		cfg.Reconstruction.Padding = 1
		cfg.Reconstruction.FillColor = inpaint.FillAuto
	}
	return cfg
}

func base() DetectionConfig {
	return DetectionConfig{
		BandFraction: 0.3,
		Heuristic:    HeuristicConfig{Detector: detection.DetectorThreshold},
		MultiSignal: MultiSignalConfig{Detectors: []string{
			detection.DetectorThreshold,
			detection.DetectorLocalContrast,
			detection.DetectorEdgeDensity,
		}},
		Detectors: detection.Params{
			Threshold: detection.ThresholdParams{
				Modes:         []string{detection.ModeOtsu, detection.ModeFixed, detection.ModeAdaptive},
				FixedLevel:    127,
				AdaptiveBlock: 11,
				AdaptiveC:     2,
				Close:         imaging.Kernel{Width: 5, Height: 2},
				Filter: detection.ContourFilter{
					MinWidth:      30,
					MaxWidthFrac:  0.8,
					MinHeight:     8,
					MaxHeightFrac: 0.3,
					MinArea:       200,
					MinAspect:     1,
					MaxAspect:     15,
					MinDensity:    0.1,
				},
			},
			LocalContrast: detection.LocalContrastParams{
				Window:       5,
				StdThreshold: 20,
				Close:        imaging.Kernel{Width: 10, Height: 3},
				Filter: detection.ContourFilter{
					MinWidth:     50,
					MaxWidthFrac: 0.8,
					MinHeight:    10,
				},
			},
			EdgeDensity: detection.EdgeDensityParams{
				Low:        50,
				High:       150,
				Dilate:     imaging.Kernel{Width: 3, Height: 1},
				Iterations: 2,
				Filter: detection.ContourFilter{
					MinWidth:     40,
					MaxWidthFrac: 0.9,
					MinHeight:    8,
				},
			},
			ColorGate: detection.ColorGateParams{
				Ranges:        BlueRanges(),
				Close:         imaging.Kernel{Width: 3, Height: 1},
				Open:          imaging.Kernel{Width: 2, Height: 2},
				MinColorRatio: 0.3,
				Filter: detection.ContourFilter{
					MinWidth:      20,
					MaxWidthFrac:  0.6,
					MinHeight:     8,
					MaxHeightFrac: 0.4,
					MinArea:       150,
				},
			},
		},
		FloodFill: FloodFillConfig{
			Ranges:    BlueRanges(),
			MinPixels: 50,
			FillHoles: true,
		},
		OCR:            ocr.DefaultConfig(),
		Reconstruction: inpaint.DefaultConfig(),
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
			Prefix:  DefaultPrefix,
		},
		LogLevel: "info",
	}
}

// IsRectangleStrategy reports whether the strategy works on merged
// rectangles rather than pixel components.
func (c DetectionConfig) IsRectangleStrategy() bool {
	return c.Strategy == StrategyHeuristicContour || c.Strategy == StrategyMultiSignalContour
}

// ActiveDetectors returns the rectangle detectors the strategy runs.
func (c DetectionConfig) ActiveDetectors() []string {
	switch c.Strategy {
	case StrategyHeuristicContour:
		return []string{c.Heuristic.Detector}
	case StrategyMultiSignalContour:
		return c.MultiSignal.Detectors
	default:
		return nil
	}
}

// Validate rejects out-of-range or unknown settings.
func (c DetectionConfig) Validate() error {
	if !contains(Strategies, c.Strategy) {
		return fmt.Errorf("unknown strategy: %q", c.Strategy)
	}
	if c.BandFraction <= 0 || c.BandFraction > 1 {
		return fmt.Errorf("band_fraction must be in (0,1], got %v", c.BandFraction)
	}

	if c.IsRectangleStrategy() {
		active := c.ActiveDetectors()
		if len(active) == 0 {
			return fmt.Errorf("strategy %s has no detectors", c.Strategy)
		}
		for _, name := range active {
			if !contains(detection.DetectorNames, name) {
				return fmt.Errorf("unknown detector: %q", name)
			}
			if err := validateDetector(name, c.Detectors); err != nil {
				return fmt.Errorf("detector %s: %w", name, err)
			}
		}
	} else {
		if len(c.FloodFill.Ranges) == 0 {
			return fmt.Errorf("flood_fill.ranges must not be empty")
		}
		if err := validateRanges(c.FloodFill.Ranges); err != nil {
			return fmt.Errorf("flood_fill: %w", err)
		}
		if c.FloodFill.MinPixels < 1 {
			return fmt.Errorf("flood_fill.min_pixels must be >= 1, got %d", c.FloodFill.MinPixels)
		}
	}

	if err := c.OCR.Validate(); err != nil {
		return err
	}
	if err := c.Reconstruction.Validate(); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be >= 1, got %d", c.Batch.Workers)
	}
	if c.Batch.ItemTimeout < 0 {
		return fmt.Errorf("batch.item_timeout must be >= 0, got %s", c.Batch.ItemTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

func validateDetector(name string, p detection.Params) error {
	switch name {
	case detection.DetectorThreshold:
		t := p.Threshold
		if len(t.Modes) == 0 {
			return fmt.Errorf("no threshold modes")
		}
		for _, m := range t.Modes {
			switch m {
			case detection.ModeOtsu, detection.ModeFixed:
			case detection.ModeAdaptive:
				if t.AdaptiveBlock < 3 || t.AdaptiveBlock%2 == 0 {
					return fmt.Errorf("adaptive_block must be odd and >= 3, got %d", t.AdaptiveBlock)
				}
			default:
				return fmt.Errorf("unknown threshold mode: %q", m)
			}
		}
		if err := t.Close.Validate(); err != nil {
			return err
		}
		return t.Filter.Validate()
	case detection.DetectorLocalContrast:
		lc := p.LocalContrast
		if lc.Window < 2 {
			return fmt.Errorf("window must be >= 2, got %d", lc.Window)
		}
		if err := lc.Close.Validate(); err != nil {
			return err
		}
		return lc.Filter.Validate()
	case detection.DetectorEdgeDensity:
		ed := p.EdgeDensity
		if ed.Low < 0 || ed.High < ed.Low {
			return fmt.Errorf("canny thresholds %d/%d invalid", ed.Low, ed.High)
		}
		if ed.Iterations < 0 {
			return fmt.Errorf("iterations must be >= 0, got %d", ed.Iterations)
		}
		if err := ed.Dilate.Validate(); err != nil {
			return err
		}
		return ed.Filter.Validate()
	case detection.DetectorColorGate:
		cg := p.ColorGate
		if len(cg.Ranges) == 0 {
			return fmt.Errorf("no color ranges")
		}
		if err := validateRanges(cg.Ranges); err != nil {
			return err
		}
		if cg.MinColorRatio < 0 || cg.MinColorRatio >= 1 {
			return fmt.Errorf("min_color_ratio must be in [0,1), got %v", cg.MinColorRatio)
		}
		if err := cg.Close.Validate(); err != nil {
			return err
		}
		if err := cg.Open.Validate(); err != nil {
			return err
		}
		return cg.Filter.Validate()
	}
	return nil
}

func validateRanges(ranges []imaging.HueRange) error {
	for _, r := range ranges {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
