//go:build !cgo

package ocr

import (
	"context"
	"image"
)

// Tesseract is unavailable without cgo.
type Tesseract struct{}

// NewTesseract always fails without cgo.
func NewTesseract(Options) (*Tesseract, error) {
	return nil, ErrUnavailable
}

// Recognize always fails without cgo.
func (t *Tesseract) Recognize(context.Context, image.Image, string) (string, error) {
	return "", ErrUnavailable
}

// GetOCRInfo returns information about OCR availability.
func GetOCRInfo() OCRInfo {
	return OCRInfo{
		Available: false,
		Error:     ErrUnavailable.Error(),
		Backend:   "none",
	}
}
