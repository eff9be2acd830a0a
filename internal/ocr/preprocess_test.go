package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createOverlay renders text the way webcams burn in their timestamp bar.
func createOverlay(text string, fg, bg color.Color) *image.RGBA {
	width := len(text)*7 + 20
	img := image.NewRGBA(image.Rect(0, 0, width, 20))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	drawText(img, 10, 14, text, fg)
	return img
}

func countBlack(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v == 0 {
			n++
		}
	}
	return n
}

func TestMeanLightness(t *testing.T) {
	tests := []struct {
		name    string
		c       color.Color
		min, max float64
	}{
		{"black", color.Black, 0, 0.01},
		{"white", color.White, 0.99, 1.01},
		{"mid gray", color.Gray{Y: 119}, 0.45, 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 10, 10))
			draw.Draw(img, img.Bounds(), image.NewUniform(tt.c), image.Point{}, draw.Src)

			got := MeanLightness(img)
			if got < tt.min || got > tt.max {
				t.Errorf("MeanLightness: got %.3f, want [%.2f, %.2f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestMeanLightness_InRange(t *testing.T) {
	for level := 0; level < 256; level++ {
		img := image.NewGray(image.Rect(0, 0, 2, 2))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: uint8(level)}), image.Point{}, draw.Src)

		if got := MeanLightness(img); got < 0 || got > 1 {
			t.Errorf("gray %d: got %g, want within [0, 1]", level, got)
		}
	}
	if got := MeanLightness(image.NewGray(image.Rect(0, 0, 3, 3))); got != 0 {
		t.Errorf("black: got %g, want exactly 0", got)
	}
}

func TestMeanLightness_Empty(t *testing.T) {
	if got := MeanLightness(image.NewRGBA(image.Rectangle{})); got != 0 {
		t.Errorf("MeanLightness of empty image: got %f, want 0", got)
	}
}

func TestPreprocess_Scale(t *testing.T) {
	src := createOverlay("01-06-2021", color.Black, color.White)

	for _, scale := range []int{0, 1, 2, 3} {
		got := Preprocess(src, scale)
		want := src.Bounds().Dx()
		if scale > 1 {
			want *= scale
		}
		if got.Bounds().Dx() != want {
			t.Errorf("scale %d: width got %d, want %d", scale, got.Bounds().Dx(), want)
		}
	}
}

func TestPreprocess_Binary(t *testing.T) {
	got := Preprocess(createOverlay("surf | x | 01-06-2021", color.Black, color.White), 2)

	for i, v := range got.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d: got %d, want 0 or 255", i, v)
		}
	}
}

// Dark-on-light and light-on-dark renderings of the same text must come out
// as black text on a mostly white background.
func TestPreprocess_NormalisesPolarity(t *testing.T) {
	text := "surf | x | 01-06-2021 14:05:33"
	darkOnLight := Preprocess(createOverlay(text, color.Black, color.White), 1)
	lightOnDark := Preprocess(createOverlay(text, color.White, color.Black), 1)

	total := len(darkOnLight.Pix)
	for name, img := range map[string]*image.Gray{"dark on light": darkOnLight, "light on dark": lightOnDark} {
		black := countBlack(img)
		if black == 0 {
			t.Errorf("%s: no text pixels survived", name)
		}
		if black > total/2 {
			t.Errorf("%s: background not white (%d of %d pixels black)", name, black, total)
		}
	}
}
