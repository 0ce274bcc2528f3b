package pipeline

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/watermark-cleaner/internal/config"
	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
	"github.com/ironsheep/watermark-cleaner/internal/inpaint"
	"github.com/ironsheep/watermark-cleaner/internal/ocr"
)

// plan is what a strategy decided to remove.
type plan struct {
	regions  []detection.Region
	rejected []detection.Region
	verdicts []ocr.Verdict

	mask  *imaging.Mask
	boxes []image.Rectangle

	// direct selects fill instead of inpainting.
	direct bool
}

func (p *plan) result(strategy string) *Result {
	return &Result{
		Strategy: strategy,
		Regions:  p.regions,
		Rejected: p.rejected,
		Verdicts: p.verdicts,
		Mask:     p.mask,
	}
}

// locate runs the configured strategy over src.
func locate(ctx context.Context, src *image.NRGBA, cfg config.DetectionConfig, o *options) (*plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case HeuristicContour, MultiSignalContour:
		return locateRectangles(ctx, src, cfg, o)
	case ColorFloodFillOCR:
		return locateComponents(ctx, src, cfg, o)
	default:
		return nil, fmt.Errorf("unknown strategy: %s", cfg.Strategy)
	}
}

// locateRectangles runs the active detectors concurrently over the band,
// merges their candidates and optionally gates them through OCR.
func locateRectangles(ctx context.Context, src *image.NRGBA, cfg config.DetectionConfig, o *options) (*plan, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	band, err := detection.NewBand(src, cfg.BandFraction)
	if err != nil {
		return nil, err
	}

	names := cfg.ActiveDetectors()
	detectors := make([]detection.Detector, len(names))
	for i, name := range names {
		d, err := detection.NewDetector(name, cfg.Detectors)
		if err != nil {
			return nil, err
		}
		detectors[i] = d
	}

	found := make([][]detection.Region, len(detectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range detectors {
		g.Go(func() error {
			regions, err := d.Detect(gctx, band)
			if err != nil {
				return fmt.Errorf("%s detector: %w", d.Name(), err)
			}
			found[i] = regions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []detection.Region
	for i, regions := range found {
		o.logger.Debug().Str("detector", names[i]).Int("candidates", len(regions)).Msg("detector finished")
		candidates = append(candidates, regions...)
	}
	merged := detection.Merge(candidates)

	p := &plan{}
	accepted := merged
	if cfg.OCR.GateRectangles {
		accepted = nil
		gate := ocr.NewGate(o.recognizer, cfg.OCR, ocr.WithLogger(o.logger))
		for _, r := range merged {
			v := gate.Validate(ctx, src, r)
			p.verdicts = append(p.verdicts, v)
			if v.Accepted {
				accepted = append(accepted, r)
			} else {
				p.rejected = append(p.rejected, r)
			}
		}
	}

	// Padding can make neighbouring regions overlap again, so the padded
	// list is merged before it is reported. Seam blur stays on the padded
	// boxes, which together cover exactly the mask.
	bounds := src.Bounds()
	padded := make([]detection.Region, 0, len(accepted))
	for _, r := range accepted {
		pr := r.Pad(cfg.Reconstruction.Padding, bounds)
		padded = append(padded, pr)
		p.boxes = append(p.boxes, pr.Rect())
	}
	p.regions = detection.Merge(padded)
	p.mask = inpaint.MaskFromRegions(w, h, accepted, cfg.Reconstruction.Padding)
	return p, nil
}

// locateComponents extracts overlay-colored components from the band and
// keeps those in which OCR reads letters.
func locateComponents(ctx context.Context, src *image.NRGBA, cfg config.DetectionConfig, o *options) (*plan, error) {
	bounds := src.Bounds()
	band := imaging.BottomBand(bounds, cfg.BandFraction)
	comps := detection.ExtractComponents(src, band, detection.HueMatcher(cfg.FloodFill.Ranges), cfg.FloodFill.MinPixels)
	o.logger.Debug().Int("components", len(comps)).Msg("components extracted")

	gate := ocr.NewGate(o.recognizer, cfg.OCR, ocr.WithLogger(o.logger))
	p := &plan{direct: true}
	var accepted []detection.Component
	for _, c := range comps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := gate.Validate(ctx, src, c.Bounds)
		p.verdicts = append(p.verdicts, v)
		if !v.Accepted {
			p.rejected = append(p.rejected, c.Bounds)
			continue
		}
		accepted = append(accepted, c)
		p.regions = append(p.regions, c.Bounds)
		p.boxes = append(p.boxes, c.Bounds.Rect())
	}

	p.mask = inpaint.MaskFromComponents(bounds.Dx(), bounds.Dy(), accepted, cfg.FloodFill.FillHoles)
	return p, nil
}
