package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrOCRNotEnabled is returned by Tesseract when the binary was built
// without the "ocr" build tag.
var ErrOCRNotEnabled = errors.New("ocr support not compiled in (build with -tags ocr)")

// Page segmentation modes understood by recognizers.
const (
	ModeSingleLine  = "single-line"
	ModeSingleBlock = "single-block"
	ModeAuto        = "auto"
)

// Recognizer reads text from an image.
//
// Implementations must honor ctx cancellation; the gate bounds every call
// with a timeout.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, opts Options) (string, error)
}

// Options controls a single recognition call.
type Options struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Whitelist restricts the characters the engine may return. Empty means
	// no restriction.
	Whitelist string

	// Mode is one of ModeSingleLine, ModeSingleBlock or ModeAuto.
	Mode string
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(ctx context.Context, img image.Image, opts Options) (string, error)

// Recognize calls f.
func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	return f(ctx, img, opts)
}

// Info describes the OCR backend compiled into the binary.
type Info struct {
	Available    bool   `json:"available"`
	Version      string `json:"version,omitempty"`
	Error        string `json:"error,omitempty"`
	Backend      string `json:"backend"`
	TessdataPath string `json:"tessdata_path,omitempty"`
}
