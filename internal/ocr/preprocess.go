package ocr

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultThreshold is the binarisation level applied after grayscale conversion.
const DefaultThreshold = 128

// darkBackground is the mean CIE L* below which a region is treated as light
// text on a dark bar and inverted.
const darkBackground = 0.5

// Preprocess prepares a cropped overlay for OCR: upscale by scale (values below 2
// leave the size unchanged), grayscale, invert if the background is dark, and
// threshold to black text on white.
func Preprocess(img image.Image, scale int) *image.Gray {
	if scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.Lanczos)
	}

	var gray image.Image = effect.Grayscale(img)
	if MeanLightness(gray) < darkBackground {
		gray = effect.Invert(gray)
	}

	return segment.Threshold(gray, DefaultThreshold)
}

// MeanLightness returns the average CIE L* of img on a 0..1 scale.
func MeanLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}

	// Lightness only depends on the gray level, so memoise per level.
	var cache [256]float64
	var known [256]bool

	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			level := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if !known[level] {
				c, _ := colorful.MakeColor(color.Gray{Y: level})
				l, _, _ := c.Lab()
				// Lab rounding can land just outside 0..1 at the extremes.
				cache[level], known[level] = math.Max(0, math.Min(1, l)), true
			}
			sum += cache[level]
		}
	}

	return sum / float64(b.Dx()*b.Dy())
}
