// Package detection locates a camera's burnt-in timestamp overlay in a frame.
//
// Overlays are a single line of text on a plain bar, usually along the top or
// bottom edge. FindOverlay looks for the horizontal band with the most text-like
// edge structure and reports it as a crop region, so a new camera can be
// calibrated without reading pixel coordinates off a screenshot by hand.
//
// # Algorithm
//
//  1. Edge map: grayscale, Sobel, threshold.
//  2. Row profile: the fraction of edge pixels in each row.
//  3. Bands: runs of rows above the density floor, bridging small gaps
//     between strokes.
//  4. Scoring: mean density weighted by how horizontal the edge runs are.
//
// Coordinates follow CropRegion: inclusive minimum, exclusive maximum,
// relative to the frame's top-left corner.
package detection
