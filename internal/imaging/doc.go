// Package imaging provides the raster primitives used by the watermark pipeline.
//
// This package implements the low-level image operators that detection and
// reconstruction are built from: decoding and encoding, grayscale conversion,
// global/fixed/adaptive thresholding, local standard deviation, rectangular
// morphology, Canny edge detection, 8-connected labelling, external contour
// extraction and HSV color matching. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive
//
// Operators that return a new raster (Gray, Mask, *image.NRGBA) always return
// it with its origin at (0,0), even when the input image has a non-zero origin.
//
// # Masks
//
// Mask is the binary raster shared by every operator. Thresholds produce a
// Mask, morphology transforms one Mask into another, and Label/Contours turn a
// Mask into blobs with bounding boxes and pixel counts.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and never mutates its inputs unless its documentation says so
// (BlurWithin writes into its destination).
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during decoding and encoding
//   - Unsupported output formats
//   - Invalid parameters such as non-positive kernel sizes
package imaging
