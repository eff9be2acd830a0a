// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) to read the
// timestamp overlay burned into webcam frames. The engine is treated as an
// untrusted oracle: it returns whatever text it recognises and the caller
// decides whether that text is usable.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with cgo:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// A non-default data directory can be selected with TessdataPrefix. Without cgo
// NewTesseract returns ErrUnavailable.
//
// # Preprocessing
//
// Webcam overlays are small, anti-aliased and often light text on a dark bar.
// Preprocess upscales the region, converts it to grayscale, inverts it when
// the background is dark and binarises it, which is the shape of input
// Tesseract reads most reliably. It is pure Go and does not need cgo.
//
// # Page Segmentation
//
// Each crop holds exactly one line of text, so the engine runs in single-line
// page segmentation mode.
package ocr
