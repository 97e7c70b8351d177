package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	diffOutputFlag           string
	diffFailOnRegressionFlag bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <before.json> <after.json>",
	Short: "Compare two JSON run results",
	Long: `Compare two result files written by 'softspec run -o json' and show
which scenarios and which individual assertions started or stopped failing.

A scenario that fails in both runs is still reported as regressed when
it collected an assertion failure the earlier run did not have.

Examples:
  softspec diff before.json after.json
  softspec diff before.json after.json --output json
  softspec diff before.json after.json --fail-on-regression`,
	Args: cobra.ExactArgs(2),
	RunE: diffCommand,
}

func init() {
	diffCmd.Flags().StringVarP(&diffOutputFlag, "output", "o", "console", "Output format: console, json")
	diffCmd.Flags().BoolVar(&diffFailOnRegressionFlag, "fail-on-regression", false, "Exit with status 1 when any scenario regressed")
	_ = diffCmd.RegisterFlagCompletionFunc("output", completeFixed("console", "json"))
	rootCmd.AddCommand(diffCmd)
}

// Scenario status changes between two runs.
const (
	changeImproved  = "improved"
	changeRegressed = "regressed"
	changeUnchanged = "unchanged"
	changeNew       = "new"
	changeRemoved   = "removed"
)

// ScenarioComparison is one scenario present in either run.
type ScenarioComparison struct {
	File   string `json:"file"`
	Name   string `json:"name"`
	Change string `json:"change"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
	// NewFailures failed only in the later run; Fixed only in the earlier.
	NewFailures []string `json:"newFailures,omitempty"`
	Fixed       []string `json:"fixed,omitempty"`
}

type DiffSummary struct {
	Scenarios int `json:"scenarios"`
	Improved  int `json:"improved"`
	Regressed int `json:"regressed"`
	Unchanged int `json:"unchanged"`
	New       int `json:"new"`
	Removed   int `json:"removed"`
}

type DiffResult struct {
	Before      string               `json:"before"`
	After       string               `json:"after"`
	Summary     DiffSummary          `json:"summary"`
	Comparisons []ScenarioComparison `json:"comparisons"`
}

func diffCommand(cmd *cobra.Command, args []string) error {
	before, err := loadResultsFile(args[0])
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("failed to load %s: %w", args[0], err))
	}
	after, err := loadResultsFile(args[1])
	if err != nil {
		return withExitCode(ExitUsageError, fmt.Errorf("failed to load %s: %w", args[1], err))
	}

	diff := compareResults(before, after)
	diff.Before, diff.After = args[0], args[1]

	switch strings.ToLower(diffOutputFlag) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(diff); err != nil {
			return err
		}
	case "console", "":
		writeDiffConsole(cmd.OutOrStdout(), diff)
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown diff output format %q", diffOutputFlag))
	}

	if diffFailOnRegressionFlag && diff.Summary.Regressed > 0 {
		return withExitCode(ExitTestFailure, fmt.Errorf("%d scenario(s) regressed", diff.Summary.Regressed))
	}
	return nil
}

func loadResultsFile(path string) (*output.JSONOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var results output.JSONOutput
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

func scenarioStatus(sc output.JSONScenario) string {
	switch {
	case sc.Skipped:
		return "skipped"
	case sc.Passed:
		return "passed"
	}
	return "failed"
}

// failedAssertions identifies a run's failed steps by operation and
// rendered message, so reordered steps still match.
func failedAssertions(sc output.JSONScenario) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sc.Steps {
		if !s.Passed {
			out[s.Assert+": "+s.Message] = true
		}
	}
	return out
}

func difference(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func compareResults(before, after *output.JSONOutput) *DiffResult {
	type pair struct {
		before, after *output.JSONScenario
	}
	byKey := make(map[string]*pair)
	var keys []string
	get := func(sc output.JSONScenario) *pair {
		key := sc.File + "::" + sc.Name
		p, ok := byKey[key]
		if !ok {
			p = &pair{}
			byKey[key] = p
			keys = append(keys, key)
		}
		return p
	}
	for i := range before.Scenarios {
		get(before.Scenarios[i]).before = &before.Scenarios[i]
	}
	for i := range after.Scenarios {
		get(after.Scenarios[i]).after = &after.Scenarios[i]
	}
	sort.Strings(keys)

	diff := &DiffResult{}
	for _, key := range keys {
		p := byKey[key]
		var comp ScenarioComparison

		switch {
		case p.after == nil:
			comp = ScenarioComparison{File: p.before.File, Name: p.before.Name, Change: changeRemoved, Before: scenarioStatus(*p.before)}
			diff.Summary.Removed++
		case p.before == nil:
			comp = ScenarioComparison{File: p.after.File, Name: p.after.Name, Change: changeNew, After: scenarioStatus(*p.after)}
			diff.Summary.New++
		default:
			comp = ScenarioComparison{
				File:        p.after.File,
				Name:        p.after.Name,
				Before:      scenarioStatus(*p.before),
				After:       scenarioStatus(*p.after),
				NewFailures: difference(failedAssertions(*p.after), failedAssertions(*p.before)),
				Fixed:       difference(failedAssertions(*p.before), failedAssertions(*p.after)),
			}
			switch {
			case comp.Before != "failed" && comp.After == "failed", len(comp.NewFailures) > 0:
				comp.Change = changeRegressed
				diff.Summary.Regressed++
			case comp.Before == "failed" && comp.After != "failed", len(comp.Fixed) > 0:
				comp.Change = changeImproved
				diff.Summary.Improved++
			default:
				comp.Change = changeUnchanged
				diff.Summary.Unchanged++
			}
		}

		diff.Comparisons = append(diff.Comparisons, comp)
		diff.Summary.Scenarios++
	}
	return diff
}

func writeDiffConsole(w io.Writer, diff *DiffResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "\n%s\n", bold("Run Comparison"))
	fmt.Fprintf(w, "  %s: %s\n", cyan("Before"), diff.Before)
	fmt.Fprintf(w, "  %s: %s\n\n", cyan("After"), diff.After)

	s := diff.Summary
	fmt.Fprintf(w, "%s\n", bold("Summary"))
	fmt.Fprintf(w, "  Scenarios:  %d\n", s.Scenarios)
	if s.Improved > 0 {
		fmt.Fprintf(w, "  Improved:   %s\n", green(s.Improved))
	}
	if s.Regressed > 0 {
		fmt.Fprintf(w, "  Regressed:  %s\n", red(s.Regressed))
	}
	if s.Unchanged > 0 {
		fmt.Fprintf(w, "  Unchanged:  %d\n", s.Unchanged)
	}
	if s.New > 0 {
		fmt.Fprintf(w, "  New:        %s\n", cyan(s.New))
	}
	if s.Removed > 0 {
		fmt.Fprintf(w, "  Removed:    %s\n", yellow(s.Removed))
	}
	fmt.Fprintln(w)

	for _, c := range diff.Comparisons {
		if c.Change == changeUnchanged {
			continue
		}
		label := c.Change
		switch c.Change {
		case changeRegressed:
			label = red(label)
		case changeImproved:
			label = green(label)
		default:
			label = yellow(label)
		}
		fmt.Fprintf(w, "  [%s] %s %s", label, c.File, c.Name)
		if c.Before != "" && c.After != "" {
			fmt.Fprintf(w, " (%s → %s)", c.Before, c.After)
		}
		fmt.Fprintln(w)
		for _, f := range c.NewFailures {
			fmt.Fprintf(w, "      %s %s\n", red("+"), f)
		}
		for _, f := range c.Fixed {
			fmt.Fprintf(w, "      %s %s\n", green("-"), f)
		}
	}
}
