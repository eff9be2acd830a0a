package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig         = "FRAMEX_CONFIG"
	EnvEnvFile        = "FRAMEX_ENV_FILE"
	EnvInterval       = "FRAMEX_INTERVAL"
	EnvOutputDir      = "FRAMEX_OUTPUT_DIR"
	EnvDaylightOnly   = "FRAMEX_DAYLIGHT_ONLY"
	EnvLatitude       = "FRAMEX_LATITUDE"
	EnvLongitude      = "FRAMEX_LONGITUDE"
	EnvDaylightMargin = "FRAMEX_DAYLIGHT_MARGIN"
	EnvFetchTimeout   = "FRAMEX_FETCH_TIMEOUT"
	EnvConcurrent     = "FRAMEX_CONCURRENT"
	EnvLogLevel       = "FRAMEX_LOG_LEVEL"
	EnvOCRLanguage    = "FRAMEX_OCR_LANGUAGE"
	EnvTessdataPrefix = "FRAMEX_TESSDATA_PREFIX"
)

// Duration is a time.Duration that reads "20m" style strings from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (c *Config) applyEnv() error {
	if v, ok, err := getEnvAsInt(EnvInterval); err != nil {
		return err
	} else if ok {
		c.Interval = v
	}
	if v := getEnv(EnvOutputDir, ""); v != "" {
		c.OutputDir = v
	}
	if v, ok, err := getEnvAsBool(EnvDaylightOnly); err != nil {
		return err
	} else if ok {
		c.DaylightOnly = v
	}
	if v, ok, err := getEnvAsFloat(EnvLatitude); err != nil {
		return err
	} else if ok {
		c.Location.Latitude = v
	}
	if v, ok, err := getEnvAsFloat(EnvLongitude); err != nil {
		return err
	} else if ok {
		c.Location.Longitude = v
	}
	if v, ok, err := getEnvAsDuration(EnvDaylightMargin); err != nil {
		return err
	} else if ok {
		c.DaylightMargin = Duration(v)
	}
	if v, ok, err := getEnvAsDuration(EnvFetchTimeout); err != nil {
		return err
	} else if ok {
		c.FetchTimeout = Duration(v)
	}
	if v, ok, err := getEnvAsBool(EnvConcurrent); err != nil {
		return err
	} else if ok {
		c.Concurrent = v
	}
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.OCR.Language = getEnv(EnvOCRLanguage, c.OCR.Language)
	c.OCR.TessdataPrefix = getEnv(EnvTessdataPrefix, c.OCR.TessdataPrefix)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string) (int, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, &Error{Kind: InvalidValue, Field: key, Err: err}
	}
	return n, true, nil
}

func getEnvAsFloat(key string) (float64, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, &Error{Kind: InvalidValue, Field: key, Err: err}
	}
	return f, true, nil
}

func getEnvAsBool(key string) (bool, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, &Error{Kind: InvalidValue, Field: key, Err: err}
	}
	return b, true, nil
}

func getEnvAsDuration(key string) (time.Duration, bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, &Error{Kind: InvalidValue, Field: key, Err: err}
	}
	return d, true, nil
}
