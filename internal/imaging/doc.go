// Package imaging provides the pixel-level operations used by the capture pipeline.
//
// A webcam frame is decoded into an 8-bit RGB grid (*image.NRGBA), a calibrated
// region is cut out of it for OCR, and the calibration tooling draws a coordinate
// grid over a frame so crop regions can be picked by eye.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the top-left
// corner of the frame:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For a CropRegion, XMin/YMin are inclusive and XMax/YMax are exclusive
//
// # Ownership
//
// Frames are never cached. Every decode returns a fresh image that belongs to the
// caller, and Crop always copies pixels so the crop can outlive the frame.
//
// # Error Handling
//
// Functions return errors for:
//   - Invalid region specifications (negative values, XMin >= XMax or YMin >= YMax)
//   - Regions that do not fit inside the frame
//   - Bytes that are not a PNG, JPEG, GIF, BMP or WebP image
//   - Encoding errors during image output
package imaging
