package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the canonical release string. The default here is the fallback
// for `go run` and untagged builds. Production builds overwrite this via:
//
//	go build -ldflags "-X github.com/johnny111272/grib-getter/cmd.Version=v0.3.0"
//
// Set once in the Makefile VERSION variable; never edit this string directly
// for a release.
var Version = "v0.2.0"

// BuildTime is optionally injected at build time alongside Version:
//
//	-ldflags "-X github.com/johnny111272/grib-getter/cmd.BuildTime=2026-08-30T12:00:00Z"
var BuildTime = ""

// versionInfo is the structured payload for --json output.
type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	BuildTime string `json:"build_time,omitempty"`
}

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the grib-getter version and build information",
	Long: `Print the grib-getter version string and build metadata.

Default output is plain text, suitable for shell scripts and pipelines.
Use --json for structured output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			BuildTime: BuildTime,
		}

		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		// Plain text — one value per line, grep/awk friendly.
		fmt.Fprintf(cmd.OutOrStdout(), "grib-getter %s\n", info.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "go          %s\n", info.GoVersion)
		fmt.Fprintf(cmd.OutOrStdout(), "os          %s/%s\n", info.GOOS, info.GOARCH)
		if info.BuildTime != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "built       %s\n", info.BuildTime)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(versionCmd)
}
