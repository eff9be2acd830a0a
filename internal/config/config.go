// Package config loads the capture configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then an
// optional .env file and the process environment (FRAMEX_*). The result is
// validated once at startup and treated as immutable afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/deepsurf/framex/internal/imaging"
	"github.com/deepsurf/framex/internal/sun"
)

// Defaults
const (
	DefaultInterval     = 60 // seconds
	DefaultOutputDir    = "frames"
	DefaultJPEGQuality  = 95
	DefaultFetchTimeout = 15 * time.Second
	DefaultLanguage     = "eng"
	DefaultLogLevel     = "silent" // warnings and errors only
)

// Camera is one webcam to capture.
type Camera struct {
	ID   string             `yaml:"id"`
	URL  string             `yaml:"url"`
	Crop imaging.CropRegion `yaml:"crop"`
}

// OCR configures the text recognition engine.
type OCR struct {
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
	Preprocess     bool   `yaml:"preprocess"`
	Scale          int    `yaml:"scale"`
}

// Config is the full process configuration.
type Config struct {
	Interval               int          `yaml:"interval"` // seconds between cycles
	OutputDir              string       `yaml:"output_dir"`
	DaylightOnly           bool         `yaml:"daylight_only"`
	Location               sun.Location `yaml:"location"`
	DaylightMargin         Duration     `yaml:"daylight_margin"`
	FetchTimeout           Duration     `yaml:"fetch_timeout"`
	JPEGQuality            int          `yaml:"jpeg_quality"`
	Concurrent             bool         `yaml:"concurrent"`
	MaxConsecutiveFailures int          `yaml:"max_consecutive_failures"` // 0 disables
	LogLevel               string       `yaml:"log_level"`
	OCR                    OCR          `yaml:"ocr"`
	Cameras                []Camera     `yaml:"cameras"`
}

// DefaultCameras are the two Scheveningen beach cams.
func DefaultCameras() []Camera {
	return []Camera{
		{
			ID:   "surf",
			URL:  "http://www.scheveningenlive.nl/cam_1.jpg",
			Crop: imaging.CropRegion{XMin: 40, XMax: 850, YMin: 0, YMax: 25},
		},
		{
			ID:   "sports",
			URL:  "http://www.scheveningenlive.nl/sport.jpg",
			Crop: imaging.CropRegion{XMin: 30, XMax: 550, YMin: 0, YMax: 20},
		},
	}
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Interval:       DefaultInterval,
		OutputDir:      DefaultOutputDir,
		DaylightOnly:   true,
		Location:       sun.DefaultLocation,
		DaylightMargin: Duration(sun.DefaultMargin),
		FetchTimeout:   Duration(DefaultFetchTimeout),
		JPEGQuality:    DefaultJPEGQuality,
		LogLevel:       DefaultLogLevel,
		OCR: OCR{
			Language:   DefaultLanguage,
			Preprocess: true,
			Scale:      2,
		},
		Cameras: DefaultCameras(),
	}
}

// IntervalDuration returns Interval as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// Camera looks up a camera by id.
func (c *Config) Camera(id string) (Camera, bool) {
	for _, cam := range c.Cameras {
		if cam.ID == id {
			return cam, true
		}
	}
	return Camera{}, false
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty), the .env file at envFile (skipped when missing) and the process
// environment, then validates it.
func Load(path, envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the .env file named by FRAMEX_ENV_FILE (default ".env") and then
// calls Load with the YAML file named by FRAMEX_CONFIG, which may itself come
// from the .env file.
func FromEnv() (*Config, error) {
	if err := loadDotEnv(getEnv(EnvEnvFile, ".env")); err != nil {
		return nil, err
	}
	return Load(os.Getenv(EnvConfig), "")
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	// godotenv.Load never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := c.decode(f); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field and returns the first *Error found.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return invalid("interval", "must be a positive number of seconds, got %d", c.Interval)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return missing("output_dir")
	}
	if err := c.Location.Validate(); err != nil {
		return &Error{Kind: InvalidValue, Field: "location", Err: err}
	}
	if c.DaylightMargin < 0 {
		return invalid("daylight_margin", "must not be negative, got %s", time.Duration(c.DaylightMargin))
	}
	if c.FetchTimeout <= 0 {
		return invalid("fetch_timeout", "must be positive, got %s", time.Duration(c.FetchTimeout))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return invalid("jpeg_quality", "must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.MaxConsecutiveFailures < 0 {
		return invalid("max_consecutive_failures", "must not be negative, got %d", c.MaxConsecutiveFailures)
	}
	if !validLogLevel(c.LogLevel) {
		return invalid("log_level", "unknown level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.OCR.Language) == "" {
		return missing("ocr.language")
	}
	if c.OCR.Scale < 1 || c.OCR.Scale > 8 {
		return invalid("ocr.scale", "must be between 1 and 8, got %d", c.OCR.Scale)
	}
	if len(c.Cameras) == 0 {
		return missing("cameras")
	}

	seen := make(map[string]bool, len(c.Cameras))
	for i, cam := range c.Cameras {
		field := fmt.Sprintf("cameras[%d]", i)
		if err := cam.validate(field); err != nil {
			return err
		}
		if seen[cam.ID] {
			return invalid(field+".id", "duplicate camera id %q", cam.ID)
		}
		seen[cam.ID] = true
	}
	return nil
}

func (cam Camera) validate(field string) error {
	if cam.ID == "" {
		return missing(field + ".id")
	}
	if strings.ContainsAny(cam.ID, `/\`) || strings.TrimSpace(cam.ID) != cam.ID {
		return invalid(field+".id", "camera id %q must not contain path separators or surrounding spaces", cam.ID)
	}
	if cam.URL == "" {
		return missing(field + ".url")
	}
	u, err := url.Parse(cam.URL)
	if err != nil {
		return &Error{Kind: InvalidValue, Field: field + ".url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(field+".url", "scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return invalid(field+".url", "missing host in %q", cam.URL)
	}
	if err := cam.Crop.Validate(); err != nil {
		return &Error{Kind: InvalidCropRegion, Field: field + ".crop", Err: err}
	}
	return nil
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "silent", "loud":
		return true
	}
	return false
}
