package detection

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"

	"github.com/deepsurf/framex/internal/imaging"
)

const (
	// edgeLevel is the Sobel magnitude above which a pixel counts as an edge.
	edgeLevel = 64

	// minRowDensity is the edge fraction a row needs to belong to a text band.
	minRowDensity = 0.02

	// maxRowGap is the number of quiet rows allowed inside one band.
	maxRowGap = 2

	// minBandHeight rejects single-row artefacts such as bar borders.
	minBandHeight = 5

	// padding is added around a detected band, clamped to the frame.
	padding = 2
)

// Overlay is a candidate timestamp overlay.
type Overlay struct {
	Region     imaging.CropRegion
	Confidence float64 // 0..1
}

// FindOverlay returns the most text-like horizontal band in img. The second
// result is false when no band qualifies.
func FindOverlay(img image.Image) (Overlay, bool) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Overlay{}, false
	}

	edges := edgeMap(img)

	density := make([]float64, height)
	for y := 0; y < height; y++ {
		n := 0
		for x := 0; x < width; x++ {
			if edges[y][x] {
				n++
			}
		}
		density[y] = float64(n) / float64(width)
	}

	var best Overlay
	found := false

	for _, b := range bands(density) {
		if b.y2-b.y1 < minBandHeight {
			continue
		}

		x1, x2, ok := columnExtent(edges, b.y1, b.y2)
		if !ok {
			continue
		}

		var sum float64
		for y := b.y1; y < b.y2; y++ {
			sum += density[y]
		}
		mean := sum / float64(b.y2-b.y1)

		score := horizontalScore(edges, x1, b.y1, x2, b.y2) * math.Min(1, mean/0.1)
		if !found || score > best.Confidence {
			best = Overlay{
				Region: imaging.CropRegion{
					XMin: max(x1-padding, 0),
					XMax: min(x2+padding, width),
					YMin: max(b.y1-padding, 0),
					YMax: min(b.y2+padding, height),
				},
				Confidence: math.Round(score*1000) / 1000,
			}
			found = true
		}
	}

	return best, found
}

// edgeMap thresholds the Sobel magnitude of img, indexed [y][x] from the
// top-left corner of its bounds.
func edgeMap(img image.Image) [][]bool {
	var sobel image.Image = effect.Sobel(effect.Grayscale(img))
	b := sobel.Bounds()

	edges := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		edges[y] = make([]bool, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(sobel.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			edges[y][x] = g.Y > edgeLevel
		}
	}
	return edges
}

type band struct{ y1, y2 int }

// bands groups rows above minRowDensity into runs, bridging gaps of up to
// maxRowGap quiet rows.
func bands(density []float64) []band {
	var out []band
	start, last := -1, -1

	for y, d := range density {
		if d < minRowDensity {
			continue
		}
		if start >= 0 && y-last-1 > maxRowGap {
			out = append(out, band{start, last + 1})
			start = -1
		}
		if start < 0 {
			start = y
		}
		last = y
	}
	if start >= 0 {
		out = append(out, band{start, last + 1})
	}
	return out
}

// columnExtent returns the first and one-past-last column holding an edge
// between rows y1 and y2.
func columnExtent(edges [][]bool, y1, y2 int) (int, int, bool) {
	x1, x2 := -1, -1
	for y := y1; y < y2; y++ {
		for x, e := range edges[y] {
			if !e {
				continue
			}
			if x1 < 0 || x < x1 {
				x1 = x
			}
			if x+1 > x2 {
				x2 = x + 1
			}
		}
	}
	return x1, x2, x1 >= 0
}

// horizontalScore is the share of horizontal edge runs among all runs in the
// window. Lines of text score higher than isolated vertical structures.
func horizontalScore(edges [][]bool, x1, y1, x2, y2 int) float64 {
	horizontal, vertical := 0, 0

	for y := y1; y < y2; y++ {
		inRun := false
		for x := x1; x < x2; x++ {
			if edges[y][x] && !inRun {
				horizontal++
			}
			inRun = edges[y][x]
		}
	}
	for x := x1; x < x2; x++ {
		inRun := false
		for y := y1; y < y2; y++ {
			if edges[y][x] && !inRun {
				vertical++
			}
			inRun = edges[y][x]
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}
