// Package sun decides whether an instant falls inside the daylight capture window.
//
// The window for a day runs from sunrise minus a margin to sunset plus a margin,
// both bounds inclusive. Sun times come from the go-sunrise ephemeris. The day an
// instant belongs to is the location's solar day, UTC shifted by longitude/15
// hours, so that a camera far from Greenwich gets the sunrise and sunset of its
// own local day rather than of the UTC date. Calculator caches the current day's
// window and recomputes it when the date rolls over.
package sun

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// DefaultMargin widens the window on both sides of sunrise and sunset.
const DefaultMargin = 20 * time.Minute

// ErrNoSunEvents is returned for days on which the sun does not rise or set at
// the location (polar day or polar night).
var ErrNoSunEvents = errors.New("no sunrise/sunset on this day at this location")

// Location is a point on the Earth's surface in decimal degrees.
type Location struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DefaultLocation is the Scheveningen beach webcams.
var DefaultLocation = Location{
	Latitude:  52.10550355970487,
	Longitude: 4.265012741088867,
}

// Validate checks that the coordinates are in range.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]", l.Longitude)
	}
	return nil
}

// Window is the daylight capture window for one day.
type Window struct {
	Sunrise time.Time
	Sunset  time.Time
	Margin  time.Duration
}

// Opens returns the first instant inside the window.
func (w Window) Opens() time.Time { return w.Sunrise.Add(-w.Margin) }

// Closes returns the last instant inside the window.
func (w Window) Closes() time.Time { return w.Sunset.Add(w.Margin) }

// Contains reports whether Sunrise-Margin <= t <= Sunset+Margin.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Opens()) && !t.After(w.Closes())
}

// SunTimes returns sunrise and sunset on the UTC calendar day of date.
func SunTimes(date time.Time, loc Location) (time.Time, time.Time, error) {
	d := date.UTC()
	rise, set := sunrise.SunriseSunset(loc.Latitude, loc.Longitude, d.Year(), d.Month(), d.Day())
	if rise.IsZero() || set.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s at (%.4f, %.4f)",
			ErrNoSunEvents, d.Format("2006-01-02"), loc.Latitude, loc.Longitude)
	}
	return rise.UTC(), set.UTC(), nil
}

// SolarDay returns t shifted to mean solar time at loc. Its calendar date is the
// local day t falls in.
func SolarDay(t time.Time, loc Location) time.Time {
	return t.UTC().Add(time.Duration(loc.Longitude / 15 * float64(time.Hour)))
}

// WindowFor computes the window for the solar day containing t.
func WindowFor(t time.Time, loc Location, margin time.Duration) (Window, error) {
	rise, set, err := SunTimes(SolarDay(t, loc), loc)
	if err != nil {
		return Window{}, err
	}
	return Window{Sunrise: rise, Sunset: set, Margin: margin}, nil
}

// InDaylight reports whether instant falls within the daylight window of its own
// solar day. It recomputes the sun times on every call; use Calculator when
// calling repeatedly.
func InDaylight(instant time.Time, loc Location, margin time.Duration) (bool, error) {
	w, err := WindowFor(instant, loc, margin)
	if err != nil {
		return false, err
	}
	return w.Contains(instant), nil
}

// Calculator answers InDaylight for a fixed location and margin, caching the
// window of the most recent day. It is safe for concurrent use.
type Calculator struct {
	loc    Location
	margin time.Duration

	mu     sync.Mutex
	day    string
	window Window
}

// NewCalculator creates a Calculator for loc with the given margin.
func NewCalculator(loc Location, margin time.Duration) *Calculator {
	return &Calculator{loc: loc, margin: margin}
}

// Window returns the window for the solar day of t, computing it if the cached
// window belongs to a different day.
func (c *Calculator) Window(t time.Time) (Window, error) {
	day := SolarDay(t, c.loc).Format("2006-01-02")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.day == day {
		return c.window, nil
	}

	w, err := WindowFor(t, c.loc, c.margin)
	if err != nil {
		return Window{}, err
	}
	c.day, c.window = day, w
	return w, nil
}

// InDaylight reports whether t falls inside the window of its day.
func (c *Calculator) InDaylight(t time.Time) (bool, error) {
	w, err := c.Window(t)
	if err != nil {
		return false, err
	}
	return w.Contains(t), nil
}
