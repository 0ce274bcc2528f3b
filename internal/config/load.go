package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvStrategy     = "WATERMARK_STRATEGY"
	EnvBandFraction = "WATERMARK_BAND_FRACTION"
	EnvWorkers      = "WATERMARK_WORKERS"
	EnvPrefix       = "WATERMARK_PREFIX"
	EnvLogLevel     = "WATERMARK_LOG_LEVEL"
	EnvOCRLanguage  = "WATERMARK_OCR_LANGUAGE"
	EnvOCRTimeout   = "WATERMARK_OCR_TIMEOUT"
	EnvTessdata     = "TESSDATA_PREFIX"
)

// Load builds the configuration of a run.
//
// The strategy is taken from the strategy argument, else from
// WATERMARK_STRATEGY, else from the file, else the default. Its preset is
// then overlaid with the YAML file at path (when path is not empty) and with
// the remaining environment variables. The result is validated.
func Load(path, strategy string) (DetectionConfig, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return DetectionConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if strategy == "" {
		strategy = os.Getenv(EnvStrategy)
	}
	if strategy == "" && len(data) > 0 {
		var peek struct {
			Strategy string `yaml:"strategy"`
		}
		if err := yaml.Unmarshal(data, &peek); err != nil {
			return DetectionConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
		strategy = peek.Strategy
	}
	if strategy == "" {
		strategy = Default().Strategy
	}

	cfg := Preset(strategy)
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DetectionConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.Strategy = strategy
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return DetectionConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Unset or
// unparsable variables leave the field unchanged. WATERMARK_STRATEGY is not
// read here; it selects the preset in Load.
func (c *DetectionConfig) ApplyEnv() {
	c.BandFraction = getEnvAsFloat(EnvBandFraction, c.BandFraction)
	c.Batch.Workers = getEnvAsInt(EnvWorkers, c.Batch.Workers)
	c.Batch.Prefix = getEnv(EnvPrefix, c.Batch.Prefix)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.OCR.Language = getEnv(EnvOCRLanguage, c.OCR.Language)
	c.OCR.Timeout = getEnvAsDuration(EnvOCRTimeout, c.OCR.Timeout)
	c.OCR.TessdataPrefix = getEnv(EnvTessdata, c.OCR.TessdataPrefix)
}

// Marshal renders the configuration as YAML.
func (c DetectionConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
