package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnny111272/grib-getter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage grib-getter configuration",
	Long:  `Read and write grib-getter configuration stored in config.json.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		fmt.Printf("✓ Created %s\n", path)
		fmt.Println("  Edit it to set output_dir and tune the fetch timing.")
		return nil
	},
}

var configGetJSON bool

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		if configGetJSON {
			type configOut struct {
				OutputDir             string `json:"output_dir"`
				BaseURL               string `json:"base_url"`
				ForecastIntervalHours int    `json:"forecast_interval_hours"`
				MaxLookbackHours      int    `json:"max_lookback_hours"`
				ProcessingDelayHours  int    `json:"processing_delay_hours"`
				RateInterval          string `json:"rate_interval"`
				RequestTimeout        string `json:"request_timeout"`
				OverallTimeout        string `json:"overall_timeout"`
				MaxAttempts           int    `json:"max_attempts"`
				MaxBackups            int    `json:"max_backups"`
				DBPath                string `json:"db_path"`
				ConfigFile            string `json:"config_file"`
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(configOut{
				OutputDir:             cfg.OutputDir,
				BaseURL:               cfg.BaseURL,
				ForecastIntervalHours: cfg.ForecastIntervalHours,
				MaxLookbackHours:      cfg.MaxLookbackHours,
				ProcessingDelayHours:  cfg.ProcessingDelayHours,
				RateInterval:          cfg.RateInterval.String(),
				RequestTimeout:        cfg.RequestTimeout.String(),
				OverallTimeout:        cfg.OverallTimeout.String(),
				MaxAttempts:           cfg.MaxAttempts,
				MaxBackups:            cfg.MaxBackups,
				DBPath:                cfg.DBPath,
				ConfigFile:            src,
			})
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"Key", "Value"}, func(add func(...string)) {
			add("output_dir", cfg.OutputDir)
			add("base_url", cfg.BaseURL)
			add("forecast_interval_hours", fmt.Sprintf("%d", cfg.ForecastIntervalHours))
			add("max_lookback_hours", fmt.Sprintf("%d", cfg.MaxLookbackHours))
			add("processing_delay_hours", fmt.Sprintf("%d", cfg.ProcessingDelayHours))
			add("rate_interval", cfg.RateInterval.String())
			add("request_timeout", cfg.RequestTimeout.String())
			add("overall_timeout", cfg.OverallTimeout.String())
			add("max_attempts", fmt.Sprintf("%d", cfg.MaxAttempts))
			add("max_backups", fmt.Sprintf("%d", cfg.MaxBackups))
			add("db_path", cfg.DBPath)
			add("config_file", src)
		})
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		val := args[1]

		// Load existing file or start from template
		var f config.File
		existing, path, err := loadConfigFile()
		if err != nil {
			path = config.DefaultConfigFile
			f = config.Template()
		} else {
			f = *existing
		}

		switch key {
		case "output_dir":
			f.OutputDir = val
		case "base_url":
			f.BaseURL = val
		case "forecast_interval_hours":
			n, err := parsePositiveInt(val, key)
			if err != nil {
				return err
			}
			f.ForecastIntervalHours = n
		case "max_lookback_hours":
			n, err := parsePositiveInt(val, key)
			if err != nil {
				return err
			}
			f.MaxLookbackHours = n
		case "processing_delay_hours":
			n, err := parsePositiveInt(val, key)
			if err != nil {
				return err
			}
			f.ProcessingDelayHours = n
		case "rate_interval":
			f.RateInterval = val
		case "request_timeout":
			f.RequestTimeout = val
		case "overall_timeout":
			f.OverallTimeout = val
		case "max_attempts":
			n, err := parsePositiveInt(val, key)
			if err != nil {
				return err
			}
			f.MaxAttempts = n
		case "initial_delay":
			f.InitialDelay = val
		case "max_delay":
			f.MaxDelay = val
		case "max_backups":
			n, err := parsePositiveInt(val, key)
			if err != nil {
				return err
			}
			f.MaxBackups = &n
		case "db_path":
			f.DBPath = val
		default:
			return fmt.Errorf("unknown config key: %q\n\nValid keys: output_dir, base_url, forecast_interval_hours, "+
				"max_lookback_hours, processing_delay_hours, rate_interval, request_timeout, overall_timeout, "+
				"max_attempts, initial_delay, max_delay, max_backups, db_path", key)
		}

		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s in %s\n", key, path)
		return nil
	},
}

// parsePositiveInt parses a non-negative integer config value.
func parsePositiveInt(val, key string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configGetCmd.Flags().BoolVar(&configGetJSON, "json", false, "print as JSON")
}

// loadConfigFile reads config.json from cwd; used by configSetCmd.
func loadConfigFile() (*config.File, string, error) {
	path := config.DefaultConfigFile
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	var f config.File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", err
	}
	return &f, path, nil
}
