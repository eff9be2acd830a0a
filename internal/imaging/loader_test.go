package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBytes_PNG(t *testing.T) {
	data := encodePNG(t, createPatternImage(80, 60))

	img, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	info := Info(img)
	if info.Width != 80 || info.Height != 60 {
		t.Errorf("dimensions: got %dx%d, want 80x60", info.Width, info.Height)
	}
	if r, g, b := rgb8(img.At(5, 5)); r != 255 || g != 0 || b != 0 {
		t.Errorf("top-left color: got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
}

func TestDecodeBytes_JPEG(t *testing.T) {
	var buf bytes.Buffer
	src := createInMemoryImage(64, 32, color.RGBA{200, 200, 200, 255})
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	img, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 32) {
		t.Errorf("bounds: got %v, want (0,0)-(64,32)", img.Bounds())
	}
}

func TestDecodeBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("not an image")},
		{"html error page", []byte("<html><body>502 Bad Gateway</body></html>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBytes(tt.data); err == nil {
				t.Error("DecodeBytes should fail for invalid image data")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := os.WriteFile(path, encodePNG(t, createPatternImage(20, 20)), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if Info(img).Width != 20 {
		t.Errorf("Width: got %d, want 20", Info(img).Width)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}
