// Package ocr validates candidate overlay regions with optical character
// recognition.
//
// The pipeline only erases a flood-filled component when OCR reads at least
// one letter inside it. The Gate in this package crops the component's box,
// prepares the crop for recognition (padding, upscaling, binarization) and
// asks a Recognizer for a single line of text.
//
// # Recognizers
//
// Tesseract wraps the Tesseract OCR engine through gosseract/v2. Because
// gosseract needs cgo and the Tesseract headers, it is only compiled with
// the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag Tesseract.Recognize always returns ErrOCRNotEnabled. The
// gate treats that like any other recognizer failure and rejects the region,
// so a binary built without OCR never erases pixels on the OCR strategy.
//
// # Prerequisites
//
// When built with the tag, Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// TESSDATA_PREFIX, or Config.TessdataPrefix, points at a non-standard
// tessdata directory.
//
// # Fail-Closed Behavior
//
// Validate never returns an error. Recognizer errors, timeouts, panics and
// empty crops all produce a rejected Verdict carrying the reason.
package ocr
