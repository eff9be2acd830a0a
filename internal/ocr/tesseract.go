//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognises text with a native Tesseract engine.
//
// A fresh gosseract client is created per call, so one Tesseract may be shared
// by concurrently running camera pipelines.
type Tesseract struct {
	opts Options
}

// NewTesseract creates a Tesseract engine.
func NewTesseract(opts Options) (*Tesseract, error) {
	return &Tesseract{opts: opts.withDefaults()}, nil
}

// Recognize performs OCR on img and returns the recognised text verbatim.
//
// Parameters:
//   - ctx: checked before the engine starts; Tesseract itself cannot be interrupted.
//   - img: the cropped overlay region.
//   - language: Tesseract language code (e.g., "eng"). The corresponding
//     language data must be installed on the system.
//
// When preprocessing is enabled the region is run through Preprocess first.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if t.opts.Preprocess {
		img = Preprocess(img, t.opts.Scale)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// TesseractVersion returns the installed Tesseract version.
func TesseractVersion() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// GetOCRInfo returns information about OCR availability.
func GetOCRInfo() OCRInfo {
	return OCRInfo{
		Available: true,
		Version:   TesseractVersion(),
		Backend:   "gosseract",
	}
}
