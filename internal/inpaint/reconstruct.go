package inpaint

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// FillAuto selects the dominant surrounding color for direct fill.
const FillAuto = "auto"

// Config tunes reconstruction.
type Config struct {
	// Primary and Fallback name the inpainters to run. Fallback may be
	// empty.
	Primary  string `yaml:"primary" json:"primary"`
	Fallback string `yaml:"fallback" json:"fallback"`

	// Radius is the inpainting neighbourhood.
	Radius int `yaml:"radius" json:"radius"`

	// Padding grows each rectangle before it is masked.
	Padding int `yaml:"padding" json:"padding"`

	// SeamBlur applies a 3x3 box blur inside each reconstructed box.
	SeamBlur bool `yaml:"seam_blur" json:"seam_blur"`

	// FillColor is "#rrggbb" or "auto" for direct fill.
	FillColor string `yaml:"fill_color" json:"fill_color"`

	// RingWidth is the width of the band around a box sampled by auto fill.
	RingWidth int `yaml:"ring_width" json:"ring_width"`
}

// DefaultConfig returns diffusion with a fast-march fallback.
func DefaultConfig() Config {
	return Config{
		Primary:   NameDiffusion,
		Fallback:  NameFastMarch,
		Radius:    3,
		Padding:   3,
		FillColor: FillAuto,
		RingWidth: 4,
	}
}

// Validate checks the reconstruction settings.
func (c Config) Validate() error {
	if !knownInpainter(c.Primary) {
		return fmt.Errorf("unknown primary inpainter: %s", c.Primary)
	}
	if c.Fallback != "" && !knownInpainter(c.Fallback) {
		return fmt.Errorf("unknown fallback inpainter: %s", c.Fallback)
	}
	if c.Radius < 1 {
		return fmt.Errorf("inpaint radius must be >= 1, got %d", c.Radius)
	}
	if c.Padding < 0 || c.Padding > 3 {
		return fmt.Errorf("reconstruction padding must be in 0..3, got %d", c.Padding)
	}
	if c.RingWidth < 1 {
		return fmt.Errorf("ring width must be >= 1, got %d", c.RingWidth)
	}
	if c.FillColor != "" && !strings.EqualFold(c.FillColor, FillAuto) {
		if _, err := imaging.ParseHexColor(c.FillColor); err != nil {
			return err
		}
	}
	return nil
}

func knownInpainter(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Reconstructor rebuilds masked pixels.
type Reconstructor struct {
	cfg      Config
	primary  Inpainter
	fallback Inpainter
	logger   zerolog.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets the reconstructor's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconstructor) {
		r.logger = logger
	}
}

// WithInpainters replaces the inpainters named in Config. fallback may be
// nil.
func WithInpainters(primary, fallback Inpainter) Option {
	return func(r *Reconstructor) {
		r.primary = primary
		r.fallback = fallback
	}
}

// NewReconstructor creates a reconstructor from cfg.
func NewReconstructor(cfg Config, opts ...Option) (*Reconstructor, error) {
	r := &Reconstructor{cfg: cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "inpaint").Logger()

	if r.primary == nil {
		p, err := New(cfg.Primary, cfg.Radius)
		if err != nil {
			return nil, err
		}
		r.primary = p
		if cfg.Fallback != "" {
			f, err := New(cfg.Fallback, cfg.Radius)
			if err != nil {
				return nil, err
			}
			r.fallback = f
		}
	}
	return r, nil
}

// Inpaint returns a copy of img whose masked pixels are synthesized from the
// rest of the image.
//
// The primary inpainter runs first. If it fails the fallback runs once. When
// both fail the error wraps ErrReconstruction and both causes. An empty mask
// returns an unchanged copy.
func (r *Reconstructor) Inpaint(ctx context.Context, img image.Image, mask *imaging.Mask) (*image.NRGBA, error) {
	src := imaging.ToNRGBA(img)
	if src.Bounds().Dx() != mask.Width || src.Bounds().Dy() != mask.Height {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			ErrReconstruction, mask.Width, mask.Height, src.Bounds().Dx(), src.Bounds().Dy())
	}
	if mask.Empty() {
		return src, nil
	}

	out, primaryErr := r.run(ctx, r.primary, src, mask)
	if primaryErr == nil {
		return out, nil
	}
	r.logger.Warn().Err(primaryErr).Str("inpainter", r.primary.Name()).Msg("primary inpainter failed")

	if r.fallback == nil {
		return nil, fmt.Errorf("%w: %w", ErrReconstruction, primaryErr)
	}
	out, fallbackErr := r.run(ctx, r.fallback, src, mask)
	if fallbackErr == nil {
		r.logger.Debug().Str("inpainter", r.fallback.Name()).Msg("fallback inpainter succeeded")
		return out, nil
	}
	r.logger.Warn().Err(fallbackErr).Str("inpainter", r.fallback.Name()).Msg("fallback inpainter failed")
	return nil, fmt.Errorf("%w: %w", ErrReconstruction, errors.Join(primaryErr, fallbackErr))
}

// run calls p and copies only the masked pixels of its result over src.
func (r *Reconstructor) run(ctx context.Context, p Inpainter, src *image.NRGBA, mask *imaging.Mask) (out *image.NRGBA, err error) {
	defer func() {
		if v := recover(); v != nil {
			out, err = nil, fmt.Errorf("%s panicked: %v", p.Name(), v)
		}
	}()

	res, err := p.Inpaint(ctx, src, mask)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	if res == nil || res.Bounds().Dx() != mask.Width || res.Bounds().Dy() != mask.Height {
		return nil, fmt.Errorf("%s: result size does not match the mask", p.Name())
	}
	return composite(src, res, mask), nil
}

// composite returns a copy of base with the masked pixels taken from patch.
// Both images must be mask-sized; patch may have any origin.
func composite(base, patch *image.NRGBA, mask *imaging.Mask) *image.NRGBA {
	out := imaging.ToNRGBA(base)
	pb := patch.Bounds().Min
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.Pix[y*mask.Width+x] == 0 {
				continue
			}
			o := y*out.Stride + x*4
			po := patch.PixOffset(x+pb.X, y+pb.Y)
			copy(out.Pix[o:o+4], patch.Pix[po:po+4])
		}
	}
	return out
}

// SeamBlur smooths the transition at reconstructed boxes. Pixels outside the
// boxes are not modified. img must have its origin at (0,0).
func (r *Reconstructor) SeamBlur(img *image.NRGBA, boxes []image.Rectangle) {
	imaging.BlurWithin(img, boxes)
}
