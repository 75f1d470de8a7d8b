// Package cmd implements the grib-getter CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnny111272/grib-getter/internal/app"
	"github.com/johnny111272/grib-getter/internal/config"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	OutputDir   string
	DBPath      string
	RateLimit   string
	Timeout     string
	MaxAttempts int
	Quiet       bool
	Debug       bool
}

// rootCmd is the base command. Running `grib-getter` with no subcommand
// prints help.
var rootCmd = &cobra.Command{
	Use:   "grib-getter",
	Short: "grib-getter — NOAA GFS GRIB subset downloader",
	Long: `grib-getter downloads regional GRIB subsets of NOAA GFS forecasts
through the NOMADS grib filter service.

It resolves the newest published forecast cycle, builds a filter URL for
your bounding box and variable preset, and walks back through older
cycles until one is available.

Quick start:
  grib-getter config init                        # create a config.json
  grib-getter fetch --lat 37.8 --lon -122.5      # fetch around a point
  grib-getter presets                            # list variable presets
  grib-getter history                            # show past fetches`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Apply CLI flag overrides
	cfg.Quiet = globalFlags.Quiet
	cfg.Debug = globalFlags.Debug

	if globalFlags.OutputDir != "" {
		cfg.OutputDir = globalFlags.OutputDir
	}
	if globalFlags.DBPath != "" {
		cfg.DBPath = globalFlags.DBPath
	}
	if globalFlags.RateLimit != "" {
		if d, err2 := time.ParseDuration(globalFlags.RateLimit); err2 == nil {
			cfg.RateInterval = d
		}
	}
	if globalFlags.Timeout != "" {
		if d, err2 := time.ParseDuration(globalFlags.Timeout); err2 == nil {
			cfg.RequestTimeout = d
		}
	}
	if globalFlags.MaxAttempts > 0 {
		cfg.MaxAttempts = globalFlags.MaxAttempts
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogging(cfg)
	return app.New(cfg), nil
}

// setupLogging configures the default slog logger from the quiet/debug flags.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	if cfg.Quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.OutputDir, "output", "",
		"directory for downloaded GRIB files (default: ~/grib_data)")
	pf.StringVar(&globalFlags.DBPath, "db-path", "",
		"path to the fetch history database (overrides env GRIB_DB_PATH)")
	pf.StringVar(&globalFlags.RateLimit, "rate-limit", "",
		"minimum spacing between NOMADS requests (e.g. 10s)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.IntVar(&globalFlags.MaxAttempts, "attempts", 0,
		"max retries per candidate cycle (default: 5)")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log every HTTP request and backoff decision")
}
