package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnny111272/grib-getter/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeConfig writes a config.json into dir and changes the working
// directory to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// clearEnv unsets the grib-getter environment overrides for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvOutputDir, "")
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvDBPath, "")
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir()) // no config.json here

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("base URL: expected default, got %s", cfg.BaseURL)
	}
	if cfg.ForecastIntervalHours != 6 || cfg.MaxLookbackHours != 24 || cfg.ProcessingDelayHours != 3 {
		t.Errorf("timing defaults wrong: %d/%d/%d",
			cfg.ForecastIntervalHours, cfg.MaxLookbackHours, cfg.ProcessingDelayHours)
	}
	if cfg.RateInterval != 10*time.Second {
		t.Errorf("rate interval: expected 10s, got %v", cfg.RateInterval)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("expected empty config path, got %s", cfg.ConfigPath)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".grib-getter", "history.db")) {
		t.Errorf("unexpected default DB path: %s", cfg.DBPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// ─── File layer ───────────────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		OutputDir:             "/data/grib",
		ForecastIntervalHours: 12,
		RateInterval:          "2s",
		MaxAttempts:           3,
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "/data/grib" {
		t.Errorf("output dir: expected /data/grib, got %s", cfg.OutputDir)
	}
	if cfg.ForecastIntervalHours != 12 {
		t.Errorf("interval: expected 12, got %d", cfg.ForecastIntervalHours)
	}
	if cfg.RateInterval != 2*time.Second {
		t.Errorf("rate interval: expected 2s, got %v", cfg.RateInterval)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("max attempts: expected 3, got %d", cfg.MaxAttempts)
	}
	// Untouched fields keep their defaults.
	if cfg.MaxDelay != config.DefaultMaxDelay {
		t.Errorf("max delay: expected default, got %v", cfg.MaxDelay)
	}
	if cfg.ConfigPath == "" {
		t.Error("expected config path to be recorded")
	}
}

func TestLoadHonorsExplicitZeroMaxBackups(t *testing.T) {
	clearEnv(t)

	// Absent from the file: default applies.
	writeConfig(t, t.TempDir(), config.File{OutputDir: "/data/grib"})
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxBackups != config.DefaultMaxBackups {
		t.Errorf("absent max_backups: expected default %d, got %d",
			config.DefaultMaxBackups, cfg.MaxBackups)
	}

	// Explicit zero disables backups rather than falling back to the default.
	zero := 0
	writeConfig(t, t.TempDir(), config.File{MaxBackups: &zero})
	cfg, err = config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxBackups != 0 {
		t.Errorf("explicit zero max_backups: expected 0, got %d", cfg.MaxBackups)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero max_backups should validate: %v", err)
	}
}

func TestLoadIgnoresMalformedDurations(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{RateInterval: "not-a-duration"})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateInterval != config.DefaultRateInterval {
		t.Errorf("expected default rate interval, got %v", cfg.RateInterval)
	}
}

// ─── Environment layer ────────────────────────────────────────────────────────

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{OutputDir: "/from/file"})
	t.Setenv(config.EnvOutputDir, "/from/env")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "/from/env" {
		t.Errorf("expected env to win, got %s", cfg.OutputDir)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func TestValidateRejectsBadValues(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	base, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	bad := *base
	bad.BaseURL = "https://nomads.ncep.noaa.gov/cgi-bin/fixed.pl"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for base URL without {filter}")
	}

	bad = *base
	bad.ForecastIntervalHours = 5
	if err := bad.Validate(); err == nil {
		t.Error("expected error for interval not dividing 24")
	}

	bad = *base
	bad.MaxAttempts = 0
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero attempts")
	}
}

// ─── Template round trip ──────────────────────────────────────────────────────

func TestTemplateWritesLoadableFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	if err := config.WriteFile(filepath.Join(dir, "config.json"), config.Template()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("template config should validate: %v", err)
	}
	if cfg.ConfigPath == "" {
		t.Error("expected config path to be recorded")
	}
}
