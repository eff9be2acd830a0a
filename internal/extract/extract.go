// Package extract reads the camera id and capture time from a webcam's burnt-in
// timestamp overlay.
//
// An overlay reads "<camera id> | <anything> | <d-m-yyyy h:m:s>". Extract crops the
// overlay out of a frame, runs it through a Recognizer and parses the text
// into a Record.
package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/deepsurf/framex/internal/config"
	"github.com/deepsurf/framex/internal/imaging"
)

// TimestampLayout is the layout of Record.Timestamp (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// fieldSeparator splits the overlay into camera id, label and timestamp.
const fieldSeparator = "|"

// timestampPattern matches the third overlay field. At least one whitespace
// character must precede the date.
var timestampPattern = regexp.MustCompile(`^\s+(\d{1,2})-(\d{1,2})-(\d{4})\s+(\d{1,2}):(\d{1,2}):(\d{1,2})$`)

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, language string) (string, error)
}

// Record is a successfully parsed overlay. Both fields are always set.
type Record struct {
	CameraID  string
	Timestamp string
}

// Time parses Timestamp. The overlay carries no zone, so the result is in UTC.
func (r Record) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, r.Timestamp)
}

// Extractor crops and recognises timestamp overlays.
type Extractor struct {
	Recognizer Recognizer
	Language   string
}

// New returns an Extractor reading text in the given Tesseract language.
func New(r Recognizer, language string) *Extractor {
	return &Extractor{Recognizer: r, Language: language}
}

// Extract crops region out of frame, recognises it and parses the result.
//
// A region that does not fit the frame is a *config.Error of kind
// InvalidCropRegion. Recognition and parse problems are *ParseError.
// cameraHint names the configured camera in errors only; the returned
// CameraID always comes from the overlay text.
func (e *Extractor) Extract(ctx context.Context, frame image.Image, region imaging.CropRegion, cameraHint string) (Record, error) {
	crop, err := imaging.Crop(frame, region)
	if err != nil {
		return Record{}, &config.Error{
			Kind:  config.InvalidCropRegion,
			Field: "cameras[" + cameraHint + "].crop",
			Err:   err,
		}
	}

	raw, err := e.Recognizer.Recognize(ctx, crop, e.Language)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Record{}, ctxErr
		}
		return Record{}, &ParseError{Kind: OCRFailure, Camera: cameraHint, Err: err}
	}

	rec, err := Parse(raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Camera = cameraHint
		}
		return Record{}, err
	}
	return rec, nil
}

// Parse converts recognised overlay text into a Record.
func Parse(raw string) (Record, error) {
	text := strings.TrimSpace(strings.ToLower(raw))

	fields := strings.Split(text, fieldSeparator)
	if len(fields) != 3 {
		return Record{}, &ParseError{
			Kind: UnexpectedFormat,
			Raw:  raw,
			Err:  fmt.Errorf("expected 3 %q-separated fields, got %d", fieldSeparator, len(fields)),
		}
	}

	ts, err := parseTimestamp(fields[2])
	if err != nil {
		return Record{}, &ParseError{Kind: BadTimestamp, Raw: raw, Err: err}
	}

	id := stripSpace(fields[0])
	if err := checkCameraID(id); err != nil {
		return Record{}, &ParseError{Kind: UnexpectedFormat, Raw: raw, Err: err}
	}

	return Record{CameraID: id, Timestamp: ts.Format(TimestampLayout)}, nil
}

func parseTimestamp(field string) (time.Time, error) {
	m := timestampPattern.FindStringSubmatch(field)
	if m == nil {
		return time.Time{}, fmt.Errorf("%q does not match \" d-m-yyyy h:m:s\"", field)
	}

	n := make([]int, 6)
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}
	day, month, year, hour, minute, second := n[0], n[1], n[2], n[3], n[4], n[5]

	if year < 1 || month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%q is out of range", strings.TrimSpace(field))
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("%q is not a calendar date", strings.TrimSpace(field))
	}
	return t, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// checkCameraID rejects ids that are empty, unprintable, or could escape the
// output directory once used in a filename.
func checkCameraID(id string) error {
	for _, r := range id {
		if r == utf8.RuneError {
			return fmt.Errorf("camera id %q is not valid UTF-8", id)
		}
		if !unicode.IsPrint(r) {
			return fmt.Errorf("camera id %q contains a non-printable character", id)
		}
	}

	switch {
	case id == "":
		return errors.New("empty camera id")
	case id == "." || id == "..":
		return fmt.Errorf("camera id %q is not a valid file name", id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("camera id %q contains a path separator", id)
	}
	return nil
}
