package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deepsurf/framex/internal/imaging"
	"github.com/deepsurf/framex/internal/log"
	"github.com/deepsurf/framex/internal/sun"
)

const sampleYAML = `
interval: 30
output_dir: /data/frames
daylight_only: false
daylight_margin: 45m
fetch_timeout: 5s
jpeg_quality: 90
concurrent: true
max_consecutive_failures: 10
location:
  latitude: 52.37
  longitude: 4.89
ocr:
  language: nld
  tessdata_prefix: /usr/share/tessdata
  preprocess: false
  scale: 3
cameras:
  - id: pier
    url: https://example.com/pier.jpg
    crop: {x_min: 10, x_max: 400, y_min: 0, y_max: 30}
`

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}

	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval: got %d, want %d", cfg.Interval, DefaultInterval)
	}
	if !cfg.DaylightOnly {
		t.Error("DaylightOnly should default to true")
	}
	if cfg.DaylightMargin.Std() != 20*time.Minute {
		t.Errorf("DaylightMargin: got %s, want 20m", cfg.DaylightMargin.Std())
	}
	if cfg.Location != sun.DefaultLocation {
		t.Errorf("Location: got %+v", cfg.Location)
	}
	if cfg.LogLevel != "silent" {
		t.Errorf("LogLevel: got %q, want silent", cfg.LogLevel)
	}
	if got := log.ParseLevel(cfg.LogLevel); got != slog.LevelWarn {
		t.Errorf("default log level parses to %s, want WARN", got)
	}
	if len(cfg.Cameras) != 2 {
		t.Fatalf("Cameras: got %d, want 2", len(cfg.Cameras))
	}

	surf, ok := cfg.Camera("surf")
	if !ok {
		t.Fatal("default camera surf missing")
	}
	if surf.Crop != (imaging.CropRegion{XMin: 40, XMax: 850, YMin: 0, YMax: 25}) {
		t.Errorf("surf crop: got %s", surf.Crop)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Interval != 30 || cfg.OutputDir != "/data/frames" {
		t.Errorf("interval/output: got %d %q", cfg.Interval, cfg.OutputDir)
	}
	if cfg.DaylightOnly {
		t.Error("DaylightOnly: got true, want false")
	}
	if cfg.DaylightMargin.Std() != 45*time.Minute {
		t.Errorf("DaylightMargin: got %s, want 45m", cfg.DaylightMargin.Std())
	}
	if cfg.FetchTimeout.Std() != 5*time.Second {
		t.Errorf("FetchTimeout: got %s, want 5s", cfg.FetchTimeout.Std())
	}
	if cfg.IntervalDuration() != 30*time.Second {
		t.Errorf("IntervalDuration: got %s", cfg.IntervalDuration())
	}
	if !cfg.Concurrent || cfg.MaxConsecutiveFailures != 10 || cfg.JPEGQuality != 90 {
		t.Errorf("unexpected concurrency/breaker/quality: %+v", cfg)
	}
	if cfg.OCR.Language != "nld" || cfg.OCR.TessdataPrefix != "/usr/share/tessdata" || cfg.OCR.Preprocess || cfg.OCR.Scale != 3 {
		t.Errorf("OCR: got %+v", cfg.OCR)
	}
	if len(cfg.Cameras) != 1 {
		t.Fatalf("Cameras should replace the defaults, got %d", len(cfg.Cameras))
	}
	cam := cfg.Cameras[0]
	if cam.ID != "pier" || cam.Crop.XMax != 400 || cam.Crop.YMax != 30 {
		t.Errorf("camera: got %+v", cam)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse of empty document failed: %v", err)
	}
	if len(cfg.Cameras) != 2 {
		t.Errorf("empty document should keep default cameras, got %d", len(cfg.Cameras))
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("intervall: 30\n")); err == nil {
		t.Error("Parse should reject unknown fields")
	}
}

func TestParse_BadDuration(t *testing.T) {
	if _, err := Parse([]byte("daylight_margin: twenty\n")); err == nil {
		t.Error("Parse should reject an invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		kind   ErrorKind
	}{
		{"zero interval", func(c *Config) { c.Interval = 0 }, InvalidValue},
		{"negative interval", func(c *Config) { c.Interval = -5 }, InvalidValue},
		{"empty output", func(c *Config) { c.OutputDir = " " }, MissingValue},
		{"bad latitude", func(c *Config) { c.Location.Latitude = 100 }, InvalidValue},
		{"negative margin", func(c *Config) { c.DaylightMargin = Duration(-time.Minute) }, InvalidValue},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }, InvalidValue},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }, InvalidValue},
		{"negative breaker", func(c *Config) { c.MaxConsecutiveFailures = -1 }, InvalidValue},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }, InvalidValue},
		{"empty language", func(c *Config) { c.OCR.Language = "" }, MissingValue},
		{"scale zero", func(c *Config) { c.OCR.Scale = 0 }, InvalidValue},
		{"no cameras", func(c *Config) { c.Cameras = nil }, MissingValue},
		{"empty camera id", func(c *Config) { c.Cameras[0].ID = "" }, MissingValue},
		{"camera id with slash", func(c *Config) { c.Cameras[0].ID = "../etc" }, InvalidValue},
		{"duplicate camera id", func(c *Config) { c.Cameras[1].ID = c.Cameras[0].ID }, InvalidValue},
		{"missing url", func(c *Config) { c.Cameras[0].URL = "" }, MissingValue},
		{"ftp url", func(c *Config) { c.Cameras[0].URL = "ftp://example.com/cam.jpg" }, InvalidValue},
		{"url without host", func(c *Config) { c.Cameras[0].URL = "http:///cam.jpg" }, InvalidValue},
		{"inverted crop", func(c *Config) { c.Cameras[0].Crop.XMax = c.Cameras[0].Crop.XMin }, InvalidCropRegion},
		{"negative crop", func(c *Config) { c.Cameras[1].Crop.YMin = -1 }, InvalidCropRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("error: got %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framex.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv(EnvInterval, "120")
	t.Setenv(EnvOutputDir, "/override")
	t.Setenv(EnvDaylightOnly, "true")
	t.Setenv(EnvDaylightMargin, "10m")
	t.Setenv(EnvLatitude, "51.5")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Interval != 120 {
		t.Errorf("Interval: got %d, want 120", cfg.Interval)
	}
	if cfg.OutputDir != "/override" {
		t.Errorf("OutputDir: got %q, want /override", cfg.OutputDir)
	}
	if !cfg.DaylightOnly {
		t.Error("DaylightOnly: env should win over file")
	}
	if cfg.DaylightMargin.Std() != 10*time.Minute {
		t.Errorf("DaylightMargin: got %s, want 10m", cfg.DaylightMargin.Std())
	}
	if cfg.Location.Latitude != 51.5 || cfg.Location.Longitude != 4.89 {
		t.Errorf("Location: got %+v", cfg.Location)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("FRAMEX_OCR_LANGUAGE=deu\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	// Register cleanup for the variable godotenv is about to set.
	t.Setenv(EnvOCRLanguage, "")
	os.Unsetenv(EnvOCRLanguage)

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OCR.Language != "deu" {
		t.Errorf("OCR.Language: got %q, want deu", cfg.OCR.Language)
	}
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framex.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	envFile := filepath.Join(dir, "framex.env")
	if err := os.WriteFile(envFile, []byte("FRAMEX_CONFIG="+path+"\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	t.Setenv(EnvEnvFile, envFile)
	t.Setenv(EnvConfig, "")
	os.Unsetenv(EnvConfig)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if len(cfg.Cameras) != 1 || cfg.Cameras[0].ID != "pier" {
		t.Errorf("expected cameras from the file named in .env, got %+v", cfg.Cameras)
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load should ignore a missing .env: %v", err)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv(EnvInterval, "sixty")

	_, err := Load("", "")
	if !IsKind(err, InvalidValue) {
		t.Errorf("error: got %v, want InvalidValue", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("Load should fail for a missing config file")
	}
}

func TestError_Message(t *testing.T) {
	err := invalid("interval", "must be positive")
	want := "config: interval: invalid value: must be positive"
	if err.Error() != want {
		t.Errorf("Error: got %q, want %q", err.Error(), want)
	}
}
