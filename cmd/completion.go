package cmd

import (
	"github.com/spf13/cobra"

	"github.com/johnny111272/grib-getter/internal/refdata"
)

// completionCmd wraps Cobra's built-in shell completion generator.
// Running `grib-getter completion bash` prints a script the user can source.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for grib-getter.

To load completions in the current shell session:

  # bash
  source <(grib-getter completion bash)

  # zsh
  source <(grib-getter completion zsh)

  # fish
  grib-getter completion fish | source

The scripts complete preset and product names too:

  grib-getter fetch --preset sail<TAB>   ->  sailing_basic sailing_extended
  grib-getter presets show avi<TAB>      ->  aviation

Persist across sessions by adding the source line to your shell profile
(~/.bashrc, ~/.zshrc, ~/.config/fish/completions/grib-getter.fish, etc.).`,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.ExactValidArgs(1),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
		default:
			return cmd.Help()
		}
	},
}

// completePresets offers the built-in preset names when completing
// `fetch --preset` or `presets show`.
func completePresets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return refdata.PresetNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeProducts offers the known GFS product names.
func completeProducts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return refdata.ProductNames(), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
