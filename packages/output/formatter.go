package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/assertions"
	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "junit", "tap", "html"}

// New returns the formatter for a format name.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	case "html":
		return NewHTMLFormatter(HTMLWithWriter(w)), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %v)", format, Formats)
}

// failedSteps returns the rendered message of every failed step.
func failedSteps(r *runner.ScenarioResult) []string {
	var msgs []string
	for _, s := range r.Steps {
		if !s.Passed {
			msgs = append(msgs, s.Message)
		}
	}
	return msgs
}

// isAssertionFailure reports whether a scenario failed only because of
// collected assertion failures, as opposed to a hook or runtime error.
func isAssertionFailure(err error) bool {
	var agg *assertions.AggregateError
	if err == nil || !errors.As(err, &agg) {
		return false
	}
	if _, direct := err.(*assertions.AggregateError); direct {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !errors.As(e, &agg) {
				return false
			}
		}
	}
	return true
}
