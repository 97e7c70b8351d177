package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/softspec/packages/core/parser"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate scenario files without running them",
	Long: `Validate scenario files for syntax and structural errors without
executing them. Every problem in a file is reported, not only the first.

Examples:
  softspec validate checkout.soft.yaml
  softspec validate ./scenarios/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return noFilesError()
	}

	invalid := 0
	for _, file := range files {
		_, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			invalid++
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if invalid > 0 {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed: %d of %d file(s) invalid", invalid, len(files)))
	}

	return nil
}
