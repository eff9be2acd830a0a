package ocr

import "errors"

// ErrUnavailable is returned when the binary was built without Tesseract support.
var ErrUnavailable = errors.New("tesseract OCR unavailable: built without cgo")

// Options configures a Tesseract engine.
type Options struct {
	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// Preprocess runs Preprocess on each region before recognition.
	Preprocess bool

	// Scale is the upscaling factor used by Preprocess. Zero means 2.
	Scale int
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 2
	}
	return o
}

// OCRInfo contains information about the OCR subsystem.
type OCRInfo struct {
	Available bool
	Version   string
	Error     string
	Backend   string
}
