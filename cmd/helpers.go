package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/johnny111272/grib-getter/internal/fetcher"
	"github.com/johnny111272/grib-getter/internal/model"
	"github.com/johnny111272/grib-getter/internal/store"
)

// forecastHour labels the analysis-time slice every built-in product pulls.
const forecastHour = "000"

// outputPath builds the destination for a fetched GRIB: a per-run folder
// named after the cycle, holding the file itself.
//
//	<outputDir>/20260315_12_gfs_quarter_degree_sailing_basic/
//	    20260315_12_000_gfs_quarter_degree_sailing_basic.grib
func outputPath(outputDir string, qt model.QueryTime, product, preset string) string {
	runDir := fmt.Sprintf("%s_%s_%s_%s", qt.DateUTC, qt.CycleHourUTC, product, preset)
	file := fmt.Sprintf("%s_%s_%s_%s_%s.grib", qt.DateUTC, qt.CycleHourUTC, forecastHour, product, preset)
	return filepath.Join(outputDir, runDir, file)
}

// exists reports whether a file is present at path.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// backupPath names backup slot n for a file: out.grib -> out.grib.00.bak.
func backupPath(path string, n int) string {
	return fmt.Sprintf("%s.%02d.bak", path, n)
}

// rotateBackups shifts existing backups of path one slot down and moves
// the current file into slot 00. The oldest backup falls off the end
// when all max slots are taken. With max 0 the file is simply removed.
func rotateBackups(path string, max int) error {
	if max <= 0 {
		return os.Remove(path)
	}
	if err := removeIfExists(backupPath(path, max-1)); err != nil {
		return err
	}
	for i := max - 2; i >= 0; i-- {
		src := backupPath(path, i)
		if !exists(src) {
			continue
		}
		if err := os.Rename(src, backupPath(path, i+1)); err != nil {
			return err
		}
	}
	return os.Rename(path, backupPath(path, 0))
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// journalRun builds the journal entry for a fetch run. A failed run
// leaves no artifact on disk, so its output path is recorded as empty
// even when a destination was requested.
func journalRun(preset, product, cycleLabel, dest string, started time.Time, res model.FetchResult) store.Run {
	if !res.Success {
		dest = ""
	}
	return store.NewRun(preset, product, cycleLabel, dest, started, res)
}

// writeGrib writes the downloaded bytes atomically to dest.
func writeGrib(dest string, data []byte) error {
	if err := fetcher.WriteArtifact(dest, data); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// ─── Tables ───────────────────────────────────────────────────────────────────

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// printCandidateTable lists the cycles a fetch would try, newest first.
func printCandidateTable(w io.Writer, cycles []model.QueryTime, urls []string) {
	printSimpleTable(w, []string{"#", "Cycle", "URL"}, func(add func(...string)) {
		for i, qt := range cycles {
			add(strconv.Itoa(i+1), qt.String(), urls[i])
		}
	})
}

// printAttemptSummary renders the per-outcome attempt counts of a run.
func printAttemptSummary(w io.Writer, res model.FetchResult) {
	printSimpleTable(w, []string{"Outcome", "Attempts"}, func(add func(...string)) {
		for _, row := range model.SummarizeAttempts(res.Attempts) {
			add(string(row.Outcome), strconv.Itoa(row.Count))
		}
	})
	fmt.Fprintf(w, "%d attempts in %s\n", len(res.Attempts), res.Duration.Round(time.Millisecond))
}
