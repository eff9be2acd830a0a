package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/deepsurf/framex/internal/config"
	"github.com/deepsurf/framex/internal/detection"
	"github.com/deepsurf/framex/internal/extract"
	"github.com/deepsurf/framex/internal/fetch"
	"github.com/deepsurf/framex/internal/imaging"
	"github.com/deepsurf/framex/internal/ocr"
)

const calibrationGrid = 50

// calibrate captures one frame of a camera and writes what is needed to tune its
// crop region: the frame with a coordinate grid, the configured region outlined in
// green and a detected overlay in yellow, plus the cropped region as the OCR
// engine receives it. The recognised text and its parse result are printed.
func calibrate(cameraID, outDir, framePath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cam, ok := cfg.Camera(cameraID)
	if !ok {
		return fmt.Errorf("unknown camera %q", cameraID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout.Std()*2)
	defer cancel()

	var frame image.Image
	if framePath != "" {
		frame, err = imaging.Load(framePath)
	} else {
		frame, err = fetch.New(fetch.WithTimeout(cfg.FetchTimeout.Std())).Fetch(ctx, cam.URL)
	}
	if err != nil {
		return err
	}

	info := imaging.Info(frame)
	fmt.Printf("frame:  %dx%d\n", info.Width, info.Height)
	fmt.Printf("region: %s\n", cam.Crop)

	grid, err := imaging.GridOverlay(frame, calibrationGrid, true, "#FF000080")
	if err != nil {
		return err
	}
	imaging.OutlineRegion(grid, cam.Crop, color.RGBA{0, 255, 0, 255})

	if found, ok := detection.FindOverlay(frame); ok {
		imaging.OutlineRegion(grid, found.Region, color.RGBA{255, 255, 0, 255})
		fmt.Printf("found:  %s (confidence %.2f)\n", found.Region, found.Confidence)
	} else {
		fmt.Println("found:  no overlay detected")
	}

	gridPath := filepath.Join(outDir, cam.ID+"_grid.png")
	if err := imaging.SavePNG(grid, gridPath); err != nil {
		return err
	}
	fmt.Printf("grid:   %s\n", gridPath)

	region, err := imaging.Crop(frame, cam.Crop)
	if err != nil {
		return &config.Error{Kind: config.InvalidCropRegion, Field: "cameras[" + cam.ID + "].crop", Err: err}
	}

	var preview image.Image = region
	if cfg.OCR.Preprocess {
		preview = ocr.Preprocess(region, cfg.OCR.Scale)
	}
	cropPath := filepath.Join(outDir, cam.ID+"_crop.png")
	if err := imaging.SavePNG(preview, cropPath); err != nil {
		return err
	}
	fmt.Printf("crop:   %s\n", cropPath)

	extractor, err := newExtractor(cfg)
	if err != nil {
		return err
	}

	raw, err := extractor.Recognizer.Recognize(ctx, region, extractor.Language)
	if err != nil {
		return fmt.Errorf("OCR failed: %w", err)
	}
	fmt.Printf("text:   %q\n", raw)

	rec, err := extract.Parse(raw)
	if err != nil {
		fmt.Printf("parse:  %v\n", err)
		return nil
	}
	fmt.Printf("parse:  camera=%s timestamp=%s\n", rec.CameraID, rec.Timestamp)
	return nil
}
