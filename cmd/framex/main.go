package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deepsurf/framex/internal/capture"
	"github.com/deepsurf/framex/internal/config"
	"github.com/deepsurf/framex/internal/extract"
	"github.com/deepsurf/framex/internal/fetch"
	"github.com/deepsurf/framex/internal/log"
	"github.com/deepsurf/framex/internal/ocr"
	"github.com/deepsurf/framex/internal/persist"
	"github.com/deepsurf/framex/internal/sun"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("framex %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			info := ocr.GetOCRInfo()
			if info.Available {
				fmt.Printf("  OCR:        %s (tesseract %s)\n", info.Backend, info.Version)
			} else {
				fmt.Printf("  OCR:        unavailable (%s)\n", info.Error)
			}
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "calibrate":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: framex calibrate <camera-id> [out-dir] [frame-file]")
				os.Exit(2)
			}
			args := os.Args[2:]
			if err := calibrate(args[0], argOr(args, 1, "."), argOr(args, 2, "")); err != nil {
				fmt.Fprintf(os.Stderr, "calibrate: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q, see framex --help\n", os.Args[1])
			os.Exit(2)
		}
	}

	if err := run(); err != nil {
		log.Error("framex stopped", "error", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("framex - capture webcam frames named by their burnt-in timestamp")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  framex                                       Run the capture loop")
	fmt.Println("  framex calibrate <camera-id> [out-dir] [frame-file]")
	fmt.Println("                                               Write a coordinate grid and the")
	fmt.Println("                                               OCR crop for one camera")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %-24s Path to the YAML configuration file\n", config.EnvConfig)
	fmt.Printf("  %-24s Path to a .env file (default .env)\n", config.EnvEnvFile)
	fmt.Printf("  %-24s Seconds between capture cycles\n", config.EnvInterval)
	fmt.Printf("  %-24s Directory frames are written to\n", config.EnvOutputDir)
	fmt.Printf("  %-24s Capture only between sunrise and sunset\n", config.EnvDaylightOnly)
	fmt.Printf("  %-24s Observer latitude\n", config.EnvLatitude)
	fmt.Printf("  %-24s Observer longitude\n", config.EnvLongitude)
	fmt.Printf("  %-24s Daylight window margin (e.g. 20m)\n", config.EnvDaylightMargin)
	fmt.Printf("  %-24s HTTP timeout per frame (e.g. 15s)\n", config.EnvFetchTimeout)
	fmt.Printf("  %-24s Capture cameras in parallel\n", config.EnvConcurrent)
	fmt.Printf("  %-24s debug, info, warn or error (default silent, same as warn)\n", config.EnvLogLevel)
	fmt.Printf("  %-24s text or json\n", "FRAMEX_LOG_FORMAT")
	fmt.Printf("  %-24s Tesseract language (default eng)\n", config.EnvOCRLanguage)
	fmt.Printf("  %-24s Directory holding *.traineddata\n", config.EnvTessdataPrefix)
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

// loadConfig reads configuration and initialises logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Init(config.DefaultLogLevel)
		return nil, err
	}
	log.Init(cfg.LogLevel)
	return cfg, nil
}

// newExtractor builds the OCR-backed extractor.
func newExtractor(cfg *config.Config) (*extract.Extractor, error) {
	engine, err := ocr.NewTesseract(ocr.Options{
		TessdataPrefix: cfg.OCR.TessdataPrefix,
		Preprocess:     cfg.OCR.Preprocess,
		Scale:          cfg.OCR.Scale,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start OCR engine: %w", err)
	}
	return extract.New(engine, cfg.OCR.Language), nil
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info("framex starting", "version", Version, "output_dir", cfg.OutputDir)

	if err := persist.CheckDir(cfg.OutputDir); err != nil {
		return err
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		return err
	}

	sched, err := capture.New(capture.ConfigFrom(cfg), capture.Deps{
		Fetcher:   fetch.New(fetch.WithTimeout(cfg.FetchTimeout.Std()), fetch.WithUserAgent("framex/"+Version)),
		Extractor: extractor,
		Persister: persist.New(cfg.OutputDir, cfg.JPEGQuality),
		Gate:      sun.NewCalculator(cfg.Location, cfg.DaylightMargin.Std()),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sched.Run(ctx)
}
