package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrRegionOutOfBounds is returned by Crop when the region does not fit the frame.
var ErrRegionOutOfBounds = errors.New("crop region outside frame bounds")

// CropRegion is a calibrated pixel rectangle inside a camera frame.
type CropRegion struct {
	XMin int `yaml:"x_min"` // Left edge (inclusive)
	XMax int `yaml:"x_max"` // Right edge (exclusive)
	YMin int `yaml:"y_min"` // Top edge (inclusive)
	YMax int `yaml:"y_max"` // Bottom edge (exclusive)
}

// Width returns the region width in pixels.
func (r CropRegion) Width() int { return r.XMax - r.XMin }

// Height returns the region height in pixels.
func (r CropRegion) Height() int { return r.YMax - r.YMin }

// Rect converts the region to an image.Rectangle relative to origin.
func (r CropRegion) Rect(origin image.Point) image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax, r.YMax).Add(origin)
}

// String formats the region as "(x_min,y_min)-(x_max,y_max)".
func (r CropRegion) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.XMin, r.YMin, r.XMax, r.YMax)
}

// Validate checks the region on its own, without a frame to compare against.
func (r CropRegion) Validate() error {
	if r.XMin < 0 || r.XMax < 0 || r.YMin < 0 || r.YMax < 0 {
		return fmt.Errorf("crop region %s has negative coordinates", r)
	}
	if r.XMin >= r.XMax || r.YMin >= r.YMax {
		return fmt.Errorf("invalid crop region %s: x_min must be < x_max, y_min must be < y_max", r)
	}
	return nil
}

// Fits reports whether the region lies entirely within bounds.
func (r CropRegion) Fits(bounds image.Rectangle) bool {
	return r.Rect(bounds.Min).In(bounds)
}

// Crop copies region out of img.
//
// The region is interpreted relative to img.Bounds().Min. A region that does not
// fit inside the frame is an error wrapping ErrRegionOutOfBounds. Nothing is
// clamped.
func Crop(img image.Image, region CropRegion) (*image.NRGBA, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if !region.Fits(bounds) {
		return nil, fmt.Errorf("%w: region %s, frame %dx%d",
			ErrRegionOutOfBounds, region, bounds.Dx(), bounds.Dy())
	}

	return imaging.Crop(img, region.Rect(bounds.Min)), nil
}
