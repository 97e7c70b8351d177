package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/assertions"
	"github.com/abdul-hamid-achik/softspec/packages/backend"
	"github.com/abdul-hamid-achik/softspec/packages/builtin"
	"github.com/spf13/cobra"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the assertion operations a step may name",
	Long: `List every operation name a step's assert field accepts, grouped by
the adapter that handles it. Adapters are tried in the order shown; the
first one that knows a name handles it.

Also lists the builtin functions usable inside {{ }} expressions.`,
	Args: cobra.NoArgs,
	RunE: opsCommand,
}

func opsCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	resolver := assertions.NewResolver(backend.New())

	for _, a := range resolver.Adapters() {
		ops := a.Operations()
		fmt.Fprintf(out, "%s (%d):\n", a.Name(), len(ops))
		fmt.Fprintf(out, "  %s\n\n", strings.Join(ops, ", "))
	}

	names := builtin.NewRegistry().Names()
	fmt.Fprintf(out, "functions (%d):\n", len(names))
	fmt.Fprintf(out, "  %s\n", strings.Join(names, ", "))
	return nil
}
