package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnny111272/grib-getter/internal/mask"
	"github.com/johnny111272/grib-getter/internal/refdata"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in variable/level presets",
	Long: `List the built-in presets that pick which GFS variables and levels a
fetch requests. Use "presets show <name>" to see the exact selection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSimpleTable(cmd.OutOrStdout(),
			[]string{"Preset", "Variables", "Levels", "Description"},
			func(add func(...string)) {
				for _, name := range refdata.PresetNames() {
					qm, err := refdata.Preset(name)
					if err != nil {
						return
					}
					vars, _ := mask.SelectedNames(refdata.GFSVariables, qm.Variables)
					levs, _ := mask.SelectedNames(refdata.GFSLevels, qm.Levels)
					add(name, strconv.Itoa(len(vars)), strconv.Itoa(len(levs)),
						refdata.PresetDescription(name))
				}
			})
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <preset>",
	Short: "Show the variables and levels a preset selects",
	Example: `  grib-getter presets show sailing_basic
  grib-getter presets show aviation`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completePresets,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		qm, err := refdata.Preset(name)
		if err != nil {
			return err
		}
		vars, err := mask.SelectedNames(refdata.GFSVariables, qm.Variables)
		if err != nil {
			return err
		}
		levs, err := mask.SelectedNames(refdata.GFSLevels, qm.Levels)
		if err != nil {
			return err
		}
		printSimpleTable(cmd.OutOrStdout(), []string{"Field", "Value"}, func(add func(...string)) {
			add("preset", name)
			add("description", refdata.PresetDescription(name))
			add("variable mask", qm.Variables)
			add("variables", strings.Join(vars, ", "))
			add("level mask", qm.Levels)
			add("levels", strings.Join(levs, ", "))
		})
		return nil
	},
}

func init() {
	presetsCmd.AddCommand(presetsShowCmd)
	rootCmd.AddCommand(presetsCmd)
}
