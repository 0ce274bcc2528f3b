//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Tesseract is a placeholder recognizer for binaries built without the "ocr"
// build tag. Every call fails with ErrOCRNotEnabled.
type Tesseract struct {
	TessdataPrefix string
}

// NewTesseract creates a Tesseract recognizer.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{TessdataPrefix: tessdataPrefix}
}

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	return "", ErrOCRNotEnabled
}

// GetInfo reports that OCR is unavailable.
func (t *Tesseract) GetInfo() Info {
	return Info{
		Available: false,
		Error:     ErrOCRNotEnabled.Error(),
		Backend:   "none",
	}
}
