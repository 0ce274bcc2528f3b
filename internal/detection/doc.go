// Package detection locates overlay text candidates in the bottom band of an
// image.
//
// This package implements the rectangle-producing detectors, the region
// merger and the pixel-level connected component extractor that the removal
// pipeline chooses between. It's designed for a single known overlay style:
// a short line of colored text rendered near the bottom edge of a photograph.
//
// # Detectors
//
// Every detector implements the Detector interface and is created by name
// through NewDetector:
//
//   - "threshold": global Otsu, fixed and/or local adaptive binarisation
//   - "local-contrast": high local standard deviation
//   - "edge-density": Canny edges dilated to bridge character strokes
//   - "color-gate": HSV hue ranges plus a matched-color ratio check
//
// # Algorithm Overview
//
// Each rectangle detector follows the same pipeline:
//
//  1. Band Extraction: restrict the search to the bottom fraction of the image
//  2. Binarisation: produce a Mask of candidate pixels
//  3. Morphology: close small gaps between glyphs (and open away specks)
//  4. Contours: take external contours and their bounding boxes
//  5. Filtering: keep boxes whose size, aspect ratio and fill density look
//     like a short line of text
//
// Candidates from several detectors are combined with Merge, which unions
// every group of transitively overlapping rectangles.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Regions are always reported in full-image coordinates, never relative to
// the band, and never extend past the image bounds.
//
// # Limitations
//
// The detectors are tuned heuristics, not a general text detector. Overlays
// outside the band, in a different color, or much larger than a line of text
// are not found.
package detection
