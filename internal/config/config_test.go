package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/inpaint"
)

func TestPresets_Valid(t *testing.T) {
	for _, s := range Strategies {
		t.Run(s, func(t *testing.T) {
			cfg := Preset(s)
			if cfg.Strategy != s {
				t.Errorf("Strategy: got %q, want %q", cfg.Strategy, s)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset invalid: %v", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default invalid: %v", err)
	}
	if Default().Strategy != StrategyMultiSignalContour {
		t.Errorf("default strategy: got %q", Default().Strategy)
	}
}

func TestPresets_Tuning(t *testing.T) {
	h := Preset(StrategyHeuristicContour)
	if h.BandFraction != 0.4 {
		t.Errorf("heuristic band: got %v, want 0.4", h.BandFraction)
	}
	if got := h.ActiveDetectors(); len(got) != 1 || got[0] != detection.DetectorThreshold {
		t.Errorf("heuristic detectors: got %v", got)
	}
	if k := h.Detectors.Threshold.Close; k.Width != 10 || k.Height != 3 {
		t.Errorf("heuristic close kernel: got %+v", k)
	}

	m := Preset(StrategyMultiSignalContour)
	if !m.Reconstruction.SeamBlur || m.Reconstruction.Padding != 3 {
		t.Errorf("multi-signal reconstruction: got %+v", m.Reconstruction)
	}
	if len(m.ActiveDetectors()) != 3 {
		t.Errorf("multi-signal detectors: got %v", m.ActiveDetectors())
	}

	c := Preset(StrategyColorFloodFillOCR)
	if c.IsRectangleStrategy() {
		t.Error("flood fill strategy is not a rectangle strategy")
	}
	if c.Reconstruction.FillColor != inpaint.FillAuto {
		t.Errorf("flood fill color: got %q", c.Reconstruction.FillColor)
	}
	if c.ActiveDetectors() != nil {
		t.Errorf("flood fill detectors: got %v", c.ActiveDetectors())
	}
}

func TestPresets_Independent(t *testing.T) {
	a := Default()
	a.MultiSignal.Detectors[0] = "changed"
	a.FloodFill.Ranges[0].MinHue = 1

	b := Default()
	if b.MultiSignal.Detectors[0] == "changed" || b.FloodFill.Ranges[0].MinHue == 1 {
		t.Error("presets share slices")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DetectionConfig)
		want   string
	}{
		{"unknown strategy", func(c *DetectionConfig) { c.Strategy = "magic" }, "unknown strategy"},
		{"zero band", func(c *DetectionConfig) { c.BandFraction = 0 }, "band_fraction"},
		{"band above one", func(c *DetectionConfig) { c.BandFraction = 1.2 }, "band_fraction"},
		{"no detectors", func(c *DetectionConfig) { c.MultiSignal.Detectors = nil }, "no detectors"},
		{"unknown detector", func(c *DetectionConfig) { c.MultiSignal.Detectors = []string{"hog"} }, "unknown detector"},
		{"unknown mode", func(c *DetectionConfig) { c.Detectors.Threshold.Modes = []string{"triangle"} }, "threshold mode"},
		{"even adaptive block", func(c *DetectionConfig) { c.Detectors.Threshold.AdaptiveBlock = 10 }, "adaptive_block"},
		{"zero kernel", func(c *DetectionConfig) { c.Detectors.LocalContrast.Close.Width = 0 }, "kernel"},
		{"canny order", func(c *DetectionConfig) { c.Detectors.EdgeDensity.Low = 200 }, "canny"},
		{"workers", func(c *DetectionConfig) { c.Batch.Workers = 0 }, "workers"},
		{"log level", func(c *DetectionConfig) { c.LogLevel = "chatty" }, "log_level"},
		{"padding", func(c *DetectionConfig) { c.Reconstruction.Padding = 9 }, "padding"},
		{"ocr letters", func(c *DetectionConfig) { c.OCR.MinLetters = 0 }, "min_letters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_FloodFill(t *testing.T) {
	cfg := Preset(StrategyColorFloodFillOCR)
	cfg.FloodFill.MinPixels = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for min_pixels 0")
	}

	cfg = Preset(StrategyColorFloodFillOCR)
	cfg.FloodFill.Ranges = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty ranges")
	}

	// Rectangle detector settings are not checked on the pixel path.
	cfg = Preset(StrategyColorFloodFillOCR)
	cfg.Detectors.Threshold.Modes = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_FileOverPreset(t *testing.T) {
	path := writeConfig(t, `
strategy: heuristic-contour
band_fraction: 0.35
detectors:
  threshold:
    close:
      width: 7
      height: 2
ocr:
  timeout: 2s
batch:
  prefix: clean-
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strategy != StrategyHeuristicContour {
		t.Errorf("Strategy: got %q", cfg.Strategy)
	}
	if cfg.BandFraction != 0.35 {
		t.Errorf("BandFraction: got %v", cfg.BandFraction)
	}
	if k := cfg.Detectors.Threshold.Close; k.Width != 7 || k.Height != 2 {
		t.Errorf("Close: got %+v", k)
	}
	// Untouched preset values survive.
	if cfg.Detectors.Threshold.Filter.MinWidth != 100 {
		t.Errorf("heuristic filter lost: %+v", cfg.Detectors.Threshold.Filter)
	}
	if cfg.OCR.Timeout != 2*time.Second {
		t.Errorf("OCR timeout: got %v", cfg.OCR.Timeout)
	}
	if cfg.Batch.Prefix != "clean-" {
		t.Errorf("Prefix: got %q", cfg.Batch.Prefix)
	}
}

func TestLoad_StrategyPrecedence(t *testing.T) {
	path := writeConfig(t, "strategy: heuristic-contour\n")

	cfg, err := Load(path, StrategyColorFloodFillOCR)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strategy != StrategyColorFloodFillOCR {
		t.Errorf("argument should win over file: got %q", cfg.Strategy)
	}
	if cfg.BandFraction != 0.25 {
		t.Errorf("expected flood fill preset band, got %v", cfg.BandFraction)
	}

	t.Setenv(EnvStrategy, StrategyMultiSignalContour)
	cfg, err = Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strategy != StrategyMultiSignalContour {
		t.Errorf("env should win over file: got %q", cfg.Strategy)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Strategy != StrategyMultiSignalContour {
		t.Errorf("Strategy: got %q", cfg.Strategy)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "band_fraction: [1, 2]\n"), ""); err == nil {
		t.Error("expected error for malformed file")
	}
	if _, err := Load(writeConfig(t, "band_fraction: 2\n"), ""); err == nil {
		t.Error("expected validation error")
	}
	if _, err := Load("", "magic"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBandFraction, "0.2")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvPrefix, "wm_")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvOCRLanguage, "deu")
	t.Setenv(EnvOCRTimeout, "250ms")
	t.Setenv(EnvTessdata, "/opt/tessdata")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.BandFraction != 0.2 || cfg.Batch.Workers != 3 || cfg.Batch.Prefix != "wm_" {
		t.Errorf("unexpected values: band %v workers %d prefix %q", cfg.BandFraction, cfg.Batch.Workers, cfg.Batch.Prefix)
	}
	if cfg.LogLevel != "debug" || cfg.OCR.Language != "deu" || cfg.OCR.Timeout != 250*time.Millisecond {
		t.Errorf("unexpected values: level %q lang %q timeout %v", cfg.LogLevel, cfg.OCR.Language, cfg.OCR.Timeout)
	}
	if cfg.OCR.TessdataPrefix != "/opt/tessdata" {
		t.Errorf("TessdataPrefix: got %q", cfg.OCR.TessdataPrefix)
	}
}

func TestApplyEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv(EnvWorkers, "many")
	t.Setenv(EnvBandFraction, "wide")
	t.Setenv(EnvOCRTimeout, "soon")

	cfg := Default()
	want := cfg
	cfg.ApplyEnv()

	if cfg.Batch.Workers != want.Batch.Workers || cfg.BandFraction != want.BandFraction || cfg.OCR.Timeout != want.OCR.Timeout {
		t.Error("unparsable values should be ignored")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Preset(StrategyHeuristicContour)
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := writeConfig(t, string(data))

	loaded, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Strategy != cfg.Strategy || loaded.Detectors.Threshold.Close != cfg.Detectors.Threshold.Close {
		t.Errorf("round trip changed config")
	}
}
