package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnny111272/grib-getter/internal/cycle"
	"github.com/johnny111272/grib-getter/internal/geo"
	"github.com/johnny111272/grib-getter/internal/model"
	"github.com/johnny111272/grib-getter/internal/query"
	"github.com/johnny111272/grib-getter/internal/refdata"
)

var (
	fetchPreset    string
	fetchProduct   string
	fetchLat       float64
	fetchLon       float64
	fetchHeight    float64
	fetchWidth     float64
	fetchOut       string
	fetchCheckOnly bool
	fetchForce     bool
	fetchNewOnly   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a GRIB subset for a region",
	Long: `Download a regional GRIB subset of the newest available GFS run.

The forecast cycle is resolved automatically: the most recent run is
used once its publication delay has passed, and older runs are tried
in turn when newer ones are not on the server yet.

The download lands in a per-run folder under the output directory,
named after the cycle, product, and preset. An existing file for the
same cycle is kept unless --force is given; overwritten files are
rotated into numbered .bak copies first.`,
	Example: `  grib-getter fetch --lat 37.8 --lon -122.5
  grib-getter fetch --lat 47.6 --lon -122.3 --height 8 --width 12 --preset sailing_extended
  grib-getter fetch --lat 37.8 --lon -122.5 --check-only
  grib-getter fetch --lat 37.8 --lon -122.5 --new-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		qm, err := refdata.Preset(fetchPreset)
		if err != nil {
			return err
		}
		product, err := refdata.Product(fetchProduct)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		qs := model.QueryStructure{
			BoundingBox: geo.NewBoundingBox(model.LocationSettings{
				CenterLat:     fetchLat,
				CenterLon:     fetchLon,
				HeightDegrees: fetchHeight,
				WidthDegrees:  fetchWidth,
			}),
			Model: product,
			Variables: model.SelectedKeys{
				AllKeys: refdata.GFSVariables,
				HexMask: qm.Variables,
				Prefix:  "var_",
			},
			Levels: model.SelectedKeys{
				AllKeys: refdata.GFSLevels,
				HexMask: qm.Levels,
				Prefix:  "lev_",
			},
			CurrentTime: now,
			Settings:    deps.Config.CoreSettings(),
		}

		cycles, err := cycle.Candidates(now, now, qs.Settings)
		if err != nil {
			return err
		}
		urls, err := query.URLs(qs, cycles)
		if err != nil {
			return err
		}

		if fetchCheckOnly {
			printCandidateTable(cmd.OutOrStdout(), cycles, urls)
			return nil
		}

		if fetchNewOnly {
			journal, err := deps.Journal()
			if err != nil {
				return err
			}
			last, found, err := journal.LastSuccess(fetchPreset, fetchProduct)
			if err != nil {
				return err
			}
			if found && last.Cycle == cycles[0].String() {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Cycle %s already fetched at %s, nothing to do.\n",
					last.Cycle, last.StartedAt.Format(time.RFC3339))
				return nil
			}
		}

		dest := fetchOut
		if dest == "" {
			// Pre-check against the newest candidate; the final name is
			// fixed after we know which cycle actually succeeded.
			newest := outputPath(deps.Config.OutputDir, cycles[0], product.Name, fetchPreset)
			if exists(newest) && !fetchForce {
				fmt.Fprintf(cmd.OutOrStdout(),
					"%s already exists, use --force to re-download.\n", newest)
				return nil
			}
		}

		ctx := cmd.Context()
		if deps.Config.OverallTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deps.Config.OverallTimeout)
			defer cancel()
		}

		res, err := deps.Fetcher.FetchSequence(ctx, urls, "")
		if err != nil {
			return err
		}

		var fetchedCycle model.QueryTime
		var cycleLabel string
		if res.Success {
			fetchedCycle = succeededCycle(cycles, urls, res.Attempts)
			cycleLabel = fetchedCycle.String()
			if dest == "" {
				dest = outputPath(deps.Config.OutputDir, fetchedCycle, product.Name, fetchPreset)
			}
			if exists(dest) {
				if err := rotateBackups(dest, deps.Config.MaxBackups); err != nil {
					return fmt.Errorf("rotating backups: %w", err)
				}
			}
			if err := writeGrib(dest, res.Data); err != nil {
				return err
			}
		}

		if journal, jerr := deps.Journal(); jerr == nil {
			run := journalRun(fetchPreset, product.Name, cycleLabel, dest, now, res)
			if perr := journal.PutRun(run); perr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: recording run: %v\n", perr)
			}
		}

		if !deps.Config.Quiet {
			printAttemptSummary(cmd.OutOrStdout(), res)
		}

		if !res.Success {
			return fmt.Errorf("no forecast cycle available after %d attempts across %d cycles",
				len(res.Attempts), len(urls))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Fetched cycle %s (%d bytes) to %s\n",
			fetchedCycle, len(res.Data), dest)
		return nil
	},
}

// succeededCycle maps the successful attempt back to its forecast cycle.
func succeededCycle(cycles []model.QueryTime, urls []string, attempts []model.FetchAttempt) model.QueryTime {
	for _, a := range attempts {
		if a.Outcome != model.OutcomeSuccess {
			continue
		}
		for i, u := range urls {
			if u == a.URL {
				return cycles[i]
			}
		}
	}
	return model.QueryTime{}
}

func init() {
	fetchCmd.Flags().StringVar(&fetchPreset, "preset", refdata.DefaultPreset,
		"variable/level preset (see `grib-getter presets`)")
	fetchCmd.Flags().StringVar(&fetchProduct, "product", refdata.DefaultProduct,
		"GFS product to query")
	fetchCmd.Flags().Float64Var(&fetchLat, "lat", 0, "center latitude in degrees")
	fetchCmd.Flags().Float64Var(&fetchLon, "lon", 0, "center longitude in degrees")
	fetchCmd.Flags().Float64Var(&fetchHeight, "height", 10, "window height in degrees")
	fetchCmd.Flags().Float64Var(&fetchWidth, "width", 10, "window width in degrees")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "",
		"write the GRIB to this exact path instead of the run folder")
	fetchCmd.Flags().BoolVar(&fetchCheckOnly, "check-only", false,
		"print the candidate cycles and URLs without downloading")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false,
		"re-download even when the newest cycle's file already exists")
	fetchCmd.Flags().BoolVar(&fetchNewOnly, "new-only", false,
		"skip the download when the newest cycle was already fetched")
	_ = fetchCmd.MarkFlagRequired("lat")
	_ = fetchCmd.MarkFlagRequired("lon")
	_ = fetchCmd.RegisterFlagCompletionFunc("preset", completePresets)
	_ = fetchCmd.RegisterFlagCompletionFunc("product", completeProducts)

	rootCmd.AddCommand(fetchCmd)
}
