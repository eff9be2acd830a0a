package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decode reads an image from r and normalises it to an 8-bit RGB grid.
//
// Whatever the source color model (YCbCr for JPEG, paletted for GIF, 16-bit PNG),
// the returned *image.NRGBA has its origin at (0,0) and one byte per channel, so
// the rest of the pipeline only ever sees one pixel layout.
//
// # Errors
//
//   - Returns error if r cannot be read
//   - Returns error if the bytes are not a PNG, JPEG, GIF, BMP or WebP image
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Clone(img), nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: empty body")
	}
	return Decode(bytes.NewReader(data))
}

// Load opens and decodes the image file at path.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// FrameInfo describes a decoded frame.
type FrameInfo struct {
	Width  int
	Height int
}

// Info returns the dimensions of img.
func Info(img image.Image) FrameInfo {
	b := img.Bounds()
	return FrameInfo{Width: b.Dx(), Height: b.Dy()}
}
