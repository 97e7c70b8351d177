package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/softspec/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new softspec project",
	Long: `Initialize a new softspec project in the given directory (default:
the current directory).

This creates:
  - softspec.config.json  - Configuration file with environments
  - example.soft.yaml     - Example scenario file

Examples:
  softspec init
  softspec init ./scenarios --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleScenario = `name: example
variables:
  shopName: Example Shop
fixture:
  page:
    title: Example Shop
    url: https://shop.example.com/checkout
  elements:
    "#pay":
      text: Pay now
      states: {enabled: true}
    "#coupon":
      states: {displayed: false}
  documents:
    cart:
      items: [{sku: A1, qty: 2}]
      total: 19.5
scenarios:
  - name: checkout page
    tags: [smoke]
    steps:
      - assert: toHaveTitle
        actual: {page: true}
        expected: "{{shopName}}"
      - assert: tohavetext
        actual: {element: "#pay"}
        expected: Pay now
      - assert: isenabled
        actual: {element: "#pay"}
      - assert: Equal
        actual: {json: cart.total}
        expected: 19.5
        message: cart total
      - assert: lengthOf
        actual: {json: cart.items}
        expected: 1
`

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "softspec.config.json")
	exampleFile := filepath.Join(dir, "example.soft.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Environments = map[string]map[string]any{
		"dev":     {"shopName": "Example Shop"},
		"staging": {"shopName": "Example Shop (staging)"},
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleScenario), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nsoftspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'softspec run %s' to execute the example scenario.\n", exampleFile)

	return nil
}
