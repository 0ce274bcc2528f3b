package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-cleaner/internal/config"
	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/inpaint"
	"github.com/ironsheep/watermark-cleaner/internal/ocr"
)

// Strategy names, re-exported from config.
const (
	HeuristicContour   = config.StrategyHeuristicContour
	MultiSignalContour = config.StrategyMultiSignalContour
	ColorFloodFillOCR  = config.StrategyColorFloodFillOCR
)

// Result is the outcome of one run.
type Result struct {
	// Image is the cleaned raster, origin (0,0). It is nil for Detect.
	Image *image.NRGBA `json:"-"`

	// Strategy is the strategy that produced the result.
	Strategy string `json:"strategy"`

	// Regions are the removed areas. Their union covers every reconstructed
	// pixel.
	Regions []detection.Region `json:"regions"`

	// Rejected are candidates the OCR gate turned down.
	Rejected []detection.Region `json:"rejected,omitempty"`

	// Verdicts holds the OCR outcome of every gated candidate, accepted and
	// rejected, in candidate order.
	Verdicts []ocr.Verdict `json:"verdicts,omitempty"`

	// Mask marks the exact pixels that were (or, for Detect, would be)
	// reconstructed.
	Mask *imaging.Mask `json:"-"`
}

// Option configures a run.
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	recognizer ocr.Recognizer
	inpaint    []inpaint.Option
}

// WithLogger sets the logger for the run and its components.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecognizer replaces the Tesseract recognizer used by the OCR gate.
func WithRecognizer(rec ocr.Recognizer) Option {
	return func(o *options) {
		o.recognizer = rec
	}
}

// WithInpainters replaces the inpainters named in the configuration.
func WithInpainters(primary, fallback inpaint.Inpainter) Option {
	return func(o *options) {
		o.inpaint = append(o.inpaint, inpaint.WithInpainters(primary, fallback))
	}
}

func newOptions(cfg config.DetectionConfig, opts []Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With().Str("component", "pipeline").Logger()
	if o.recognizer == nil {
		o.recognizer = ocr.NewTesseract(cfg.OCR.TessdataPrefix)
	}
	o.inpaint = append(o.inpaint, inpaint.WithLogger(o.logger))
	return o
}

// RemoveWatermark detects the overlay in img and returns a cleaned copy.
//
// img is never modified. When nothing is found the returned image is an
// unchanged copy and Regions is empty. Errors wrap ErrReconstruction when no
// reconstruction could be produced; configuration and cancellation errors
// are returned as is.
func RemoveWatermark(ctx context.Context, img image.Image, cfg config.DetectionConfig, opts ...Option) (*Result, error) {
	start := time.Now()
	o := newOptions(cfg, opts)

	src := imaging.ToNRGBA(img)
	p, err := locate(ctx, src, cfg, o)
	if err != nil {
		return nil, err
	}

	result := p.result(cfg.Strategy)
	if p.mask.Empty() {
		result.Image = src
		o.logger.Debug().Str("strategy", cfg.Strategy).Dur("duration", time.Since(start)).Msg("no overlay found")
		return result, nil
	}

	rec, err := inpaint.NewReconstructor(cfg.Reconstruction, o.inpaint...)
	if err != nil {
		return nil, err
	}

	var out *image.NRGBA
	if p.direct {
		out, err = rec.Fill(src, p.mask, p.boxes)
	} else {
		out, err = rec.Inpaint(ctx, src, p.mask)
		if err == nil && cfg.Reconstruction.SeamBlur {
			rec.SeamBlur(out, p.boxes)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct: %w", err)
	}

	result.Image = out
	o.logger.Debug().
		Str("strategy", cfg.Strategy).
		Int("regions", len(result.Regions)).
		Int("rejected", len(result.Rejected)).
		Int("masked", p.mask.Count()).
		Dur("duration", time.Since(start)).
		Msg("overlay removed")
	return result, nil
}

// Detect runs the strategy's detection and OCR gating without
// reconstructing. Result.Image is nil.
func Detect(ctx context.Context, img image.Image, cfg config.DetectionConfig, opts ...Option) (*Result, error) {
	o := newOptions(cfg, opts)
	p, err := locate(ctx, imaging.ToNRGBA(img), cfg, o)
	if err != nil {
		return nil, err
	}
	return p.result(cfg.Strategy), nil
}
