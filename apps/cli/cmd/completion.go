package cmd

import (
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for softspec.

Bash:
  $ source <(softspec completion bash)

Zsh:
  $ softspec completion zsh > "${fpath[1]}/_softspec"

Fish:
  $ softspec completion fish | source

PowerShell:
  PS> softspec completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

// completeScenarioFiles offers directories and files with a scenario
// extension.
func completeScenarioFiles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	seen := make(map[string]bool)
	var exts []string
	for _, ext := range parser.Extensions {
		last := ext[strings.LastIndex(ext, ".")+1:]
		if !seen[last] {
			seen[last] = true
			exts = append(exts, last)
		}
	}
	return exts, cobra.ShellCompDirectiveFilterFileExt
}

func completeFixed(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func init() {
	rootCmd.AddCommand(completionCmd)

	for _, c := range []*cobra.Command{runCmd, validateCmd, listCmd} {
		c.ValidArgsFunction = completeScenarioFiles
	}
}
