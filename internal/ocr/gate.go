package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ironsheep/watermark-cleaner/internal/detection"
	"github.com/ironsheep/watermark-cleaner/internal/imaging"
)

// Letters is the default recognition whitelist.
const Letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Config tunes the OCR gate.
type Config struct {
	// Language is the Tesseract language code.
	Language string `yaml:"language" json:"language"`

	// Whitelist restricts recognized characters.
	Whitelist string `yaml:"whitelist" json:"whitelist"`

	// Mode is the page segmentation mode passed to the recognizer.
	Mode string `yaml:"mode" json:"mode"`

	// MinLetters is the number of letters a crop must contain to be accepted.
	MinLetters int `yaml:"min_letters" json:"min_letters"`

	// Padding is added around the region before cropping.
	Padding int `yaml:"padding" json:"padding"`

	// Upscale is the integer enlargement applied to the crop. Small overlay
	// glyphs are below the size Tesseract reads reliably.
	Upscale int `yaml:"upscale" json:"upscale"`

	// Timeout bounds each recognizer call. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// GateRectangles also runs the gate on rectangle strategies.
	GateRectangles bool `yaml:"gate_rectangles" json:"gate_rectangles"`

	// TessdataPrefix overrides the Tesseract data directory.
	TessdataPrefix string `yaml:"tessdata_prefix" json:"tessdata_prefix"`
}

// DefaultConfig returns the gate settings used by the OCR strategy.
func DefaultConfig() Config {
	return Config{
		Language:   "eng",
		Whitelist:  Letters,
		Mode:       ModeSingleLine,
		MinLetters: 1,
		Padding:    5,
		Upscale:    3,
		Timeout:    10 * time.Second,
	}
}

// Validate checks the gate settings.
func (c Config) Validate() error {
	if c.MinLetters < 1 {
		return fmt.Errorf("ocr min_letters must be >= 1, got %d", c.MinLetters)
	}
	if c.Padding < 0 {
		return fmt.Errorf("ocr padding must be >= 0, got %d", c.Padding)
	}
	if c.Upscale < 1 || c.Upscale > 8 {
		return fmt.Errorf("ocr upscale must be in 1..8, got %d", c.Upscale)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("ocr timeout must be >= 0, got %s", c.Timeout)
	}
	switch c.Mode {
	case ModeSingleLine, ModeSingleBlock, ModeAuto:
	default:
		return fmt.Errorf("unknown ocr mode: %s", c.Mode)
	}
	return nil
}

// Verdict is the outcome of validating one region.
type Verdict struct {
	Accepted bool   `json:"accepted"`
	Text     string `json:"text,omitempty"`
	Letters  int    `json:"letters"`
	Reason   string `json:"reason,omitempty"`
}

// Gate accepts a region only when OCR reads letters inside it.
type Gate struct {
	rec    Recognizer
	cfg    Config
	logger zerolog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(logger zerolog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a gate around rec. A nil rec rejects every region.
func NewGate(rec Recognizer, cfg Config, opts ...GateOption) *Gate {
	g := &Gate{
		rec:    rec,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With().Str("component", "ocr-gate").Logger()
	return g
}

// Validate runs OCR on region r of img.
//
// # Preparation
//
//  1. Pad r by Config.Padding and clip to the image
//  2. Enlarge the crop by Config.Upscale (Lanczos)
//  3. Binarize with Otsu, text black on white
//
// The recognized text is reduced to its letters; the region is accepted when
// at least Config.MinLetters remain. Every failure is a rejection.
func (g *Gate) Validate(ctx context.Context, img image.Image, r detection.Region) Verdict {
	v := g.validate(ctx, img, r)
	g.logger.Debug().
		Stringer("region", r).
		Bool("accepted", v.Accepted).
		Str("text", v.Text).
		Str("reason", v.Reason).
		Msg("ocr verdict")
	return v
}

func (g *Gate) validate(ctx context.Context, img image.Image, r detection.Region) Verdict {
	if g.rec == nil {
		return reject("no recognizer configured")
	}

	rect := imaging.Pad(r.Rect(), g.cfg.Padding, img.Bounds())
	if rect.Empty() {
		return reject("empty crop")
	}
	crop, err := imaging.Crop(img, rect)
	if err != nil {
		return reject(err.Error())
	}
	prepared := imaging.Binarize(imaging.Upscale(crop, g.cfg.Upscale))

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	text, err := g.recognize(ctx, prepared, Options{
		Language:  g.cfg.Language,
		Whitelist: g.cfg.Whitelist,
		Mode:      g.cfg.Mode,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return reject("ocr timed out")
		}
		return reject(err.Error())
	}

	text = strings.TrimSpace(text)
	letters := LettersOnly(text)
	n := utf8.RuneCountInString(letters)
	need := g.cfg.MinLetters
	if need < 1 {
		need = 1
	}
	if n < need {
		return Verdict{Text: text, Letters: n, Reason: fmt.Sprintf("%d letters, need %d", n, need)}
	}
	return Verdict{Accepted: true, Text: text, Letters: n}
}

// recognize calls the recognizer, converting panics to errors and returning
// as soon as ctx is done even if the recognizer does not.
func (g *Gate) recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("recognizer panic: %v", p)}
			}
		}()
		text, err := g.rec.Recognize(ctx, img, opts)
		done <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

// LettersOnly returns s with every rune that is not a letter removed.
func LettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

func reject(reason string) Verdict {
	return Verdict{Reason: reason}
}
