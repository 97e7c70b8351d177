package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
	"github.com/fatih/color"
)

// maxMessageLen bounds a failed step message in non-verbose output.
const maxMessageLen = 300

// truncate shortens long strings for display
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// ConsoleFormatter prints one block per file as results arrive, and a
// grand total on Flush when more than one file ran.
type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	p       palette

	files                   int
	passed, failed, skipped int
}

type palette struct {
	green, red, yellow, cyan, bold func(a ...any) string
}

func newPalette() palette {
	return palette{
		green:  color.New(color.FgGreen).SprintFunc(),
		red:    color.New(color.FgRed).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
		bold:   color.New(color.Bold).SprintFunc(),
	}
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	f.p = newPalette()
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithVerbose lists every step and prints aggregate errors in full.
func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	fmt.Fprintf(f.writer, "\n%s\n\n", f.p.bold("Running: "+result.File))

	for _, r := range result.Results {
		f.writeScenario(r)
	}

	fmt.Fprintln(f.writer)
	f.writeCounts(result.Passed, result.Failed, result.Skipped)
	fmt.Fprintf(f.writer, "Time:      %dms\n\n", result.Duration.Milliseconds())

	f.files++
	f.passed += result.Passed
	f.failed += result.Failed
	f.skipped += result.Skipped
}

func (f *ConsoleFormatter) writeScenario(r *runner.ScenarioResult) {
	p := f.p
	if r.Skipped {
		fmt.Fprintf(f.writer, "  %s %s", p.yellow("-"), r.Name)
		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			fmt.Fprintf(f.writer, " (%s)", r.SkipReason)
		}
		fmt.Fprintln(f.writer)
		return
	}

	fmt.Fprintf(f.writer, "  %s %s %s\n", f.mark(r.Passed), r.Name, p.cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))

	if f.verbose {
		for _, s := range r.Steps {
			fmt.Fprintf(f.writer, "    %s %d. %s %s\n", f.mark(s.Passed), s.Index, s.Assert, p.cyan("["+s.Adapter+"]"))
		}
	}
	if r.Passed {
		return
	}

	for _, s := range r.Steps {
		if s.Passed {
			continue
		}
		msg := s.Message
		if !f.verbose {
			msg = truncate(msg, maxMessageLen)
		}
		fmt.Fprintf(f.writer, "    %s %s", p.red("→"), msg)
		if s.Line > 0 {
			fmt.Fprintf(f.writer, " %s", p.cyan(fmt.Sprintf("(line %d)", s.Line)))
		}
		fmt.Fprintln(f.writer)
	}

	// Aggregate errors repeat the step messages above, so they are only
	// printed in full when verbose.
	if r.Error != nil && (f.verbose || !isAssertionFailure(r.Error)) {
		for _, line := range strings.Split(r.Error.Error(), "\n") {
			fmt.Fprintf(f.writer, "      %s\n", line)
		}
	}
}

func (f *ConsoleFormatter) mark(passed bool) string {
	if passed {
		return f.p.green("✓")
	}
	return f.p.red("✗")
}

func (f *ConsoleFormatter) writeCounts(passed, failed, skipped int) {
	fmt.Fprintf(f.writer, "Scenarios: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.p.green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.p.red(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		fmt.Fprintf(f.writer, "%s, ", f.p.yellow(fmt.Sprintf("%d skipped", skipped)))
	}
	fmt.Fprintf(f.writer, "%d total\n", passed+failed+skipped)
}

// Flush prints the totals over every file. A single file's block
// already shows them.
func (f *ConsoleFormatter) Flush(totalDuration time.Duration) error {
	if f.files < 2 {
		return nil
	}
	fmt.Fprintf(f.writer, "%s\n", f.p.bold(fmt.Sprintf("Total (%d files)", f.files)))
	f.writeCounts(f.passed, f.failed, f.skipped)
	fmt.Fprintf(f.writer, "Time:      %dms\n", totalDuration.Milliseconds())
	return nil
}

func (f *ConsoleFormatter) FormatError(err error) {
	fmt.Fprintf(f.writer, "%s %v\n", f.p.red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	fmt.Fprintf(f.writer, "%s %s\n", f.p.bold("softspec"), version)
}
