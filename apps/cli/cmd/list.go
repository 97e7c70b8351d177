package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the scenarios in scenario files",
	Long: `List the scenarios defined in scenario files with their tags and
step counts.

Examples:
  softspec list checkout.soft.yaml
  softspec list ./scenarios/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return noFilesError()
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(out, "\n%s:\n", file)
		for _, sc := range f.Scenarios {
			fmt.Fprintf(out, "  - %s (%d steps)", sc.Name, len(sc.Steps))
			switch {
			case sc.Skip != "":
				fmt.Fprintf(out, " [skip: %s]", sc.Skip)
			case sc.Only:
				fmt.Fprint(out, " [only]")
			}
			fmt.Fprintln(out)
			if len(sc.Tags) > 0 {
				fmt.Fprintf(out, "    tags: %s\n", strings.Join(sc.Tags, ", "))
			}
		}
	}

	return nil
}
