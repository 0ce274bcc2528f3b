//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text with the Tesseract engine.
//
// A new gosseract client is created per call; clients are not safe for
// concurrent use and the gate only runs a handful of calls per image.
type Tesseract struct {
	// TessdataPrefix overrides the tessdata directory. When empty the
	// TESSDATA_PREFIX environment variable is used, then the engine default.
	TessdataPrefix string
}

// NewTesseract creates a Tesseract recognizer.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{TessdataPrefix: tessdataPrefix}
}

// Recognize runs OCR on img.
//
// The image is handed to Tesseract as an in-memory PNG. The engine call
// cannot be interrupted, so on ctx cancellation Recognize returns ctx.Err()
// immediately and the engine finishes in the background.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		text, err := t.recognize(buf.Bytes(), opts)
		done <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

func (t *Tesseract) recognize(data []byte, opts Options) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if prefix := t.tessdataPrefix(); prefix != "" {
		if err := client.SetTessdataPrefix(prefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	language := opts.Language
	if language == "" {
		language = "eng"
	}
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	if err := client.SetPageSegMode(pageSegMode(opts.Mode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

func (t *Tesseract) tessdataPrefix() string {
	if t.TessdataPrefix != "" {
		return t.TessdataPrefix
	}
	return os.Getenv("TESSDATA_PREFIX")
}

func pageSegMode(mode string) gosseract.PageSegMode {
	switch mode {
	case ModeSingleBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case ModeAuto:
		return gosseract.PSM_AUTO
	default:
		return gosseract.PSM_SINGLE_LINE
	}
}

// GetInfo returns information about OCR availability.
func (t *Tesseract) GetInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available:    true,
		Version:      client.Version(),
		Backend:      "gosseract",
		TessdataPath: t.tessdataPrefix(),
	}
}
