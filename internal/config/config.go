// Package config handles loading and resolving grib-getter configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags
//  2. Environment variables (a .env file in the working directory is
//     loaded into the environment first)
//  3. config.json in the current working directory
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/johnny111272/grib-getter/internal/model"
)

const (
	DefaultConfigFile = "config.json"
	DefaultBaseURL    = "https://nomads.ncep.noaa.gov/cgi-bin/{filter}"

	DefaultForecastIntervalHours = 6
	DefaultMaxLookbackHours      = 24
	DefaultProcessingDelayHours  = 3

	DefaultRateInterval   = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultOverallTimeout = 15 * time.Minute
	DefaultMaxAttempts    = 5
	DefaultInitialDelay   = time.Second
	DefaultMaxDelay       = 60 * time.Second

	DefaultMaxBackups = 3

	EnvOutputDir = "GRIB_OUTPUT_DIR"
	EnvBaseURL   = "GRIB_BASE_URL"
	EnvDBPath    = "GRIB_DB_PATH"
)

// File is the on-disk representation of config.json. Durations are
// strings in time.ParseDuration form.
type File struct {
	OutputDir             string `json:"output_dir"`
	BaseURL               string `json:"base_url"`
	ForecastIntervalHours int    `json:"forecast_interval_hours"`
	MaxLookbackHours      int    `json:"max_lookback_hours"`
	ProcessingDelayHours  int    `json:"processing_delay_hours"`
	RateInterval          string `json:"rate_interval"`
	RequestTimeout        string `json:"request_timeout"`
	OverallTimeout        string `json:"overall_timeout"`
	MaxAttempts           int    `json:"max_attempts"`
	InitialDelay          string `json:"initial_delay"`
	MaxDelay              string `json:"max_delay"`
	MaxBackups            *int   `json:"max_backups,omitempty"`
	DBPath                string `json:"db_path"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	OutputDir             string
	BaseURL               string
	ForecastIntervalHours int
	MaxLookbackHours      int
	ProcessingDelayHours  int
	RateInterval          time.Duration
	RequestTimeout        time.Duration
	OverallTimeout        time.Duration
	MaxAttempts           int
	InitialDelay          time.Duration
	MaxDelay              time.Duration
	MaxBackups            int
	DBPath                string
	ConfigPath            string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet bool
	Debug bool
}

// Load resolves configuration from config.json and the environment.
// CLI flag overrides are applied by the commands after Load() since
// cobra binds them per command.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:               DefaultBaseURL,
		ForecastIntervalHours: DefaultForecastIntervalHours,
		MaxLookbackHours:      DefaultMaxLookbackHours,
		ProcessingDelayHours:  DefaultProcessingDelayHours,
		RateInterval:          DefaultRateInterval,
		RequestTimeout:        DefaultRequestTimeout,
		OverallTimeout:        DefaultOverallTimeout,
		MaxAttempts:           DefaultMaxAttempts,
		InitialDelay:          DefaultInitialDelay,
		MaxDelay:              DefaultMaxDelay,
		MaxBackups:            DefaultMaxBackups,
	}

	// Layer 1: config.json (lowest priority)
	if f, path, err := loadFile(); err == nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment, with .env merged in first
	_ = godotenv.Load()
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}

	// Fill in home-relative defaults last
	if cfg.OutputDir == "" || cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			if cfg.OutputDir == "" {
				cfg.OutputDir = filepath.Join(home, "grib_data")
			}
			if cfg.DBPath == "" {
				cfg.DBPath = filepath.Join(home, ".grib-getter", "history.db")
			}
		}
	}

	return cfg, nil
}

// CoreSettings projects the timing fields into the query model.
func (c *Config) CoreSettings() model.CoreSettings {
	return model.CoreSettings{
		GribURL:               c.BaseURL,
		ForecastIntervalHours: c.ForecastIntervalHours,
		MaxLookbackHours:      c.MaxLookbackHours,
		ProcessingDelayHours:  c.ProcessingDelayHours,
	}
}

// Validate returns an error if the resolved configuration is unusable.
func (c *Config) Validate() error {
	if !strings.Contains(c.BaseURL, "{filter}") {
		return fmt.Errorf("base URL %q is missing the {filter} placeholder", c.BaseURL)
	}
	if c.ForecastIntervalHours <= 0 || 24%c.ForecastIntervalHours != 0 {
		return fmt.Errorf("forecast interval %dh must divide 24", c.ForecastIntervalHours)
	}
	if c.MaxLookbackHours < 0 {
		return fmt.Errorf("max lookback must be non-negative, got %d", c.MaxLookbackHours)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MaxBackups < 0 {
		return fmt.Errorf("max backups must be non-negative, got %d", c.MaxBackups)
	}
	return nil
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s", path)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.OutputDir != "" {
		cfg.OutputDir = f.OutputDir
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.ForecastIntervalHours > 0 {
		cfg.ForecastIntervalHours = f.ForecastIntervalHours
	}
	if f.MaxLookbackHours > 0 {
		cfg.MaxLookbackHours = f.MaxLookbackHours
	}
	if f.ProcessingDelayHours > 0 {
		cfg.ProcessingDelayHours = f.ProcessingDelayHours
	}
	applyDuration(&cfg.RateInterval, f.RateInterval)
	applyDuration(&cfg.RequestTimeout, f.RequestTimeout)
	applyDuration(&cfg.OverallTimeout, f.OverallTimeout)
	if f.MaxAttempts > 0 {
		cfg.MaxAttempts = f.MaxAttempts
	}
	applyDuration(&cfg.InitialDelay, f.InitialDelay)
	applyDuration(&cfg.MaxDelay, f.MaxDelay)
	// Pointer so an explicit 0 (no backups) is distinguishable from absent.
	if f.MaxBackups != nil {
		cfg.MaxBackups = *f.MaxBackups
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

func applyDuration(dst *time.Duration, s string) {
	if s == "" {
		return
	}
	if d, err := time.ParseDuration(s); err == nil {
		*dst = d
	}
}

// Template returns a File populated with the defaults, suitable for
// writing an initial config.json via `grib-getter config init`.
func Template() File {
	return File{
		OutputDir:             "",
		BaseURL:               DefaultBaseURL,
		ForecastIntervalHours: DefaultForecastIntervalHours,
		MaxLookbackHours:      DefaultMaxLookbackHours,
		ProcessingDelayHours:  DefaultProcessingDelayHours,
		RateInterval:          DefaultRateInterval.String(),
		RequestTimeout:        DefaultRequestTimeout.String(),
		OverallTimeout:        DefaultOverallTimeout.String(),
		MaxAttempts:           DefaultMaxAttempts,
		InitialDelay:          DefaultInitialDelay.String(),
		MaxDelay:              DefaultMaxDelay.String(),
		MaxBackups:            intPtr(DefaultMaxBackups),
	}
}

func intPtr(n int) *int { return &n }

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
