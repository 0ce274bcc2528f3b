// Package pipeline detects and removes a short line of colored overlay text
// near the bottom edge of an image.
//
// RemoveWatermark is the single entry point. It runs one of three named
// strategies over the bottom band of the image:
//
//   - heuristic-contour: one rectangle detector, merged candidates,
//     inpainting.
//   - multi-signal-contour: several rectangle detectors run concurrently,
//     their candidates merged, inpainting followed by a seam blur.
//   - color-flood-fill-ocr: 8-connected components of the overlay color,
//     each accepted only when OCR reads a letter in it, removed by direct
//     fill.
//
// Whatever the strategy, pixels outside the final mask are byte-identical
// between input and output, and the returned regions cover the mask.
package pipeline
