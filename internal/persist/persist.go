// Package persist writes captured frames to disk under names derived from their
// overlay.
package persist

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/deepsurf/framex/internal/extract"
)

// DefaultQuality is the JPEG quality used when Persister.Quality is zero.
const DefaultQuality = 95

// WriteFailure is the only IOError kind: the frame could not be written.
const WriteFailure = "write failure"

// IOError reports a frame that could not be written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", WriteFailure, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Filename returns "{camera_id}_{timestamp}.jpg".
func Filename(rec extract.Record) string {
	return rec.CameraID + "_" + rec.Timestamp + ".jpg"
}

// Persister writes frames as JPEG files into Dir.
type Persister struct {
	Dir     string
	Quality int
}

// New returns a Persister writing to dir with the given JPEG quality.
func New(dir string, quality int) *Persister {
	return &Persister{Dir: dir, Quality: quality}
}

// Persist encodes frame as JPEG and stores it at Dir/Filename(rec), replacing
// any existing file. It returns the written path.
//
// The frame is written to a temporary file in Dir first and renamed into place,
// so a partially written JPEG never appears under the final name.
func (p *Persister) Persist(frame image.Image, rec extract.Record) (string, error) {
	path := filepath.Join(p.Dir, Filename(rec))

	quality := p.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	tmp, err := os.CreateTemp(p.Dir, ".framex-*.tmp")
	if err != nil {
		return "", &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, frame, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &IOError{Path: path, Err: fmt.Errorf("failed to encode JPEG: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &IOError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", &IOError{Path: path, Err: err}
	}

	return path, nil
}

// CheckDir verifies that dir exists, is a directory and accepts new files.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &IOError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Path: dir, Err: errors.New("not a directory")}
	}

	f, err := os.CreateTemp(dir, ".framex-check-*")
	if err != nil {
		return &IOError{Path: dir, Err: fmt.Errorf("directory not writable: %w", err)}
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
