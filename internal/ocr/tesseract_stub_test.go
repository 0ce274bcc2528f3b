//go:build !ocr

package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
)

func TestTesseractStub(t *testing.T) {
	tess := NewTesseract("")

	_, err := tess.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)), Options{})
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}

	info := tess.GetInfo()
	if info.Available {
		t.Error("stub should report OCR unavailable")
	}
}
