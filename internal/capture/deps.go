package capture

import (
	"context"
	"image"
	"time"

	"github.com/deepsurf/framex/internal/extract"
	"github.com/deepsurf/framex/internal/imaging"
)

// Fetcher downloads one frame. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Extractor reads the overlay of a frame. *extract.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, frame image.Image, region imaging.CropRegion, cameraHint string) (extract.Record, error)
}

// Persister stores a frame under its record. *persist.Persister implements it.
type Persister interface {
	Persist(frame image.Image, rec extract.Record) (string, error)
}

// Gate decides whether capture happens at an instant. *sun.Calculator implements it.
type Gate interface {
	InDaylight(t time.Time) (bool, error)
}

// Clock supplies the current time and the pause between cycles.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// Deps are the collaborators of a Scheduler.
type Deps struct {
	Fetcher   Fetcher
	Extractor Extractor
	Persister Persister
	Gate      Gate  // required when Config.DaylightOnly is set
	Clock     Clock // nil means the system clock
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Sleep blocks for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
