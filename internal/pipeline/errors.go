package pipeline

import (
	"errors"

	"github.com/ironsheep/watermark-cleaner/internal/inpaint"
)

var (
	// ErrDecode is returned when the input raster cannot be read.
	ErrDecode = errors.New("decode failed")

	// ErrReconstruction is returned when neither the primary nor the
	// fallback reconstruction produced an image.
	ErrReconstruction = inpaint.ErrReconstruction

	// ErrEncode is returned when the output raster cannot be written.
	ErrEncode = errors.New("encode failed")
)
