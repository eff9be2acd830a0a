// Package capture runs the gate, fetch, extract and persist loop over all
// configured cameras.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepsurf/framex/internal/config"
	"github.com/deepsurf/framex/internal/extract"
	"github.com/deepsurf/framex/internal/log"
)

// ErrTooManyFailures stops Run when the failure limit is reached.
var ErrTooManyFailures = errors.New("too many consecutive failed cycles")

// State is the scheduler's position in its loop.
type State int

const (
	Idle State = iota
	Gating
	Capturing
	Sleeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Gating:
		return "gating"
	case Capturing:
		return "capturing"
	case Sleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stage names the pipeline step a camera result ended in.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
	StageDone    Stage = "done"
)

// Config is the scheduler's immutable configuration.
type Config struct {
	Cameras      []config.Camera
	Interval     time.Duration
	DaylightOnly bool
	Concurrent   bool

	// MaxConsecutiveFailures stops Run after this many cycles in a row in which
	// every camera failed. Zero runs forever.
	MaxConsecutiveFailures int
}

// ConfigFrom derives a scheduler Config from the process configuration.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Cameras:                c.Cameras,
		Interval:               c.IntervalDuration(),
		DaylightOnly:           c.DaylightOnly,
		Concurrent:             c.Concurrent,
		MaxConsecutiveFailures: c.MaxConsecutiveFailures,
	}
}

// Result is the outcome for one camera in one cycle.
type Result struct {
	CameraID string
	Path     string
	Record   extract.Record
	Err      error
	Stage    Stage
}

// OK reports whether the frame was persisted.
func (r Result) OK() bool { return r.Err == nil }

// CycleReport summarises one cycle.
type CycleReport struct {
	ID      string
	Started time.Time
	Skipped bool // outside the daylight window, or the gate failed
	GateErr error
	Results []Result
}

// Succeeded returns the number of cameras whose frame was persisted.
func (r CycleReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// AllFailed reports whether cameras were attempted and none succeeded.
func (r CycleReport) AllFailed() bool {
	return len(r.Results) > 0 && r.Succeeded() == 0
}

// Scheduler drives the capture loop.
type Scheduler struct {
	cfg  Config
	deps Deps

	mu       sync.Mutex
	state    State
	failures int
	fitted   map[string]bool // cameras whose crop region has fitted a frame
}

// New creates a Scheduler. The camera list is copied.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Fetcher == nil || deps.Extractor == nil || deps.Persister == nil {
		return nil, errors.New("capture: fetcher, extractor and persister are required")
	}
	if cfg.DaylightOnly && deps.Gate == nil {
		return nil, errors.New("capture: daylight gating enabled without a gate")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("capture: interval must be positive, got %s", cfg.Interval)
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}

	cams := make([]config.Camera, len(cfg.Cameras))
	copy(cams, cfg.Cameras)
	cfg.Cameras = cams

	return &Scheduler{cfg: cfg, deps: deps, fitted: make(map[string]bool)}, nil
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run loops until ctx is cancelled, returning nil. It returns early with
// ErrTooManyFailures when the failure limit trips, or with a *config.Error when
// a camera's crop region does not fit the first frame it delivers. Once a region
// has fitted a frame, a later misfit (the camera changed resolution) is an
// ordinary camera failure and the other cameras keep running.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.setState(Idle)

	log.Info("capture started",
		"cameras", len(s.cfg.Cameras),
		"interval", s.cfg.Interval,
		"daylight_only", s.cfg.DaylightOnly,
		"concurrent", s.cfg.Concurrent)

	for {
		report := s.RunCycle(ctx)
		if ctx.Err() != nil {
			log.Info("capture stopped")
			return nil
		}

		if err := s.checkRegions(report); err != nil {
			return err
		}
		if err := s.track(report); err != nil {
			return err
		}

		s.setState(Sleeping)
		if err := s.deps.Clock.Sleep(ctx, s.cfg.Interval); err != nil {
			log.Info("capture stopped")
			return nil
		}
	}
}

// checkRegions returns the first crop region error from a camera whose region
// has not yet fitted a frame, and marks cameras whose region did fit.
func (s *Scheduler) checkRegions(report CycleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range report.Results {
		var ce *config.Error
		switch {
		case errors.As(res.Err, &ce):
			if !s.fitted[res.CameraID] {
				return res.Err
			}
		case res.Stage != StageFetch:
			s.fitted[res.CameraID] = true
		}
	}
	return nil
}

// track updates the consecutive failure count.
func (s *Scheduler) track(report CycleReport) error {
	if report.Skipped {
		return nil
	}

	s.mu.Lock()
	if report.AllFailed() {
		s.failures++
	} else {
		s.failures = 0
	}
	failures := s.failures
	s.mu.Unlock()

	if limit := s.cfg.MaxConsecutiveFailures; limit > 0 && failures >= limit {
		log.Error("giving up", "cycle", report.ID, "consecutive_failures", failures)
		return fmt.Errorf("%w: %d", ErrTooManyFailures, failures)
	}
	return nil
}

// RunCycle performs one gate check and, in daylight, one capture per camera.
// Camera failures are recorded in the report and never abort the cycle.
func (s *Scheduler) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:      uuid.NewString(),
		Started: s.deps.Clock.Now(),
	}
	logger := log.With("cycle", report.ID)

	if s.cfg.DaylightOnly {
		s.setState(Gating)
		ok, err := s.deps.Gate.InDaylight(report.Started)
		if err != nil {
			logger.Warn("daylight check failed, skipping cycle", "error", err)
			report.Skipped, report.GateErr = true, err
			return report
		}
		if !ok {
			logger.Debug("outside daylight window, skipping cycle", "now", report.Started)
			report.Skipped = true
			return report
		}
	}

	s.setState(Capturing)
	report.Results = make([]Result, len(s.cfg.Cameras))

	if s.cfg.Concurrent {
		var wg sync.WaitGroup
		for i, cam := range s.cfg.Cameras {
			wg.Add(1)
			go func(i int, cam config.Camera) {
				defer wg.Done()
				report.Results[i] = s.capture(ctx, cam, logger)
			}(i, cam)
		}
		wg.Wait()
	} else {
		for i, cam := range s.cfg.Cameras {
			report.Results[i] = s.capture(ctx, cam, logger)
		}
	}

	logger.Info("cycle complete",
		"captured", report.Succeeded(),
		"failed", len(report.Results)-report.Succeeded())
	return report
}

// capture runs fetch, extract and persist for one camera.
func (s *Scheduler) capture(ctx context.Context, cam config.Camera, logger *slog.Logger) Result {
	res := Result{CameraID: cam.ID}
	logger = logger.With("camera", cam.ID)

	fail := func(stage Stage, err error) Result {
		res.Stage, res.Err = stage, err
		var ce *config.Error
		switch {
		case errors.As(err, &ce):
			logger.Error("crop region does not fit frame", "stage", stage, "error", err)
		case stage == StageExtract:
			logger.Info("could not extract text", "stage", stage, "error", err)
		default:
			logger.Warn("capture failed", "stage", stage, "error", err)
		}
		return res
	}

	frame, err := s.deps.Fetcher.Fetch(ctx, cam.URL)
	if err != nil {
		return fail(StageFetch, err)
	}

	rec, err := s.deps.Extractor.Extract(ctx, frame, cam.Crop, cam.ID)
	if err != nil {
		return fail(StageExtract, err)
	}
	res.Record = rec

	path, err := s.deps.Persister.Persist(frame, rec)
	if err != nil {
		return fail(StagePersist, err)
	}

	res.Path, res.Stage = path, StageDone
	logger.Info("frame saved", "path", path, "timestamp", rec.Timestamp)
	return res
}
