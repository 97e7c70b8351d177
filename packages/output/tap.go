package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
)

// TAPFormatter writes TAP version 14. Each scenario is a test point;
// its steps are a subtest so every failed step keeps its own line.
type TAPFormatter struct {
	writer    io.Writer
	scenarios []*runner.ScenarioResult
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	f.scenarios = append(f.scenarios, result.Results...)
}

// FormatError is a no-op: file-level errors have no test point.
func (f *TAPFormatter) FormatError(err error) {}

func (f *TAPFormatter) FormatHeader(version string) {}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	w := &tapWriter{w: f.writer}
	w.line(0, "TAP version 14")
	w.line(0, "1..%d", len(f.scenarios))

	for i, r := range f.scenarios {
		n := i + 1
		if r.Skipped {
			reason := r.SkipReason
			if reason == "" || reason == "filtered out" {
				reason = "SKIP"
			}
			w.line(0, "ok %d - %s # SKIP %s", n, r.Name, reason)
			continue
		}

		if len(r.Steps) > 0 {
			w.line(0, "# Subtest: %s", r.Name)
			w.line(1, "1..%d", len(r.Steps))
			for _, s := range r.Steps {
				if s.Passed {
					w.line(1, "ok %d - %s [%s]", s.Index, s.Assert, s.Adapter)
					continue
				}
				w.line(1, "not ok %d - %s [%s]", s.Index, s.Assert, s.Adapter)
				w.diagnostics(1, "message", s.Message, "line", s.Line)
			}
		}

		if r.Passed {
			w.line(0, "ok %d - %s", n, r.Name)
			continue
		}
		w.line(0, "not ok %d - %s", n, r.Name)
		if r.Error != nil && !isAssertionFailure(r.Error) {
			w.diagnostics(0, "message", r.Error.Error(), "severity", "error")
		} else {
			w.diagnostics(0, "failures", len(failedSteps(r)))
		}
	}

	return w.err
}

// tapWriter indents subtests by four spaces per level and remembers the
// first write error.
type tapWriter struct {
	w   io.Writer
	err error
}

func (t *tapWriter) line(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("    ", depth), fmt.Sprintf(format, args...))
}

// diagnostics writes a YAML block of key/value pairs. Zero ints and
// empty strings are left out.
func (t *tapWriter) diagnostics(depth int, kv ...any) {
	t.line(depth, "  ---")
	for i := 0; i+1 < len(kv); i += 2 {
		switch v := kv[i+1].(type) {
		case string:
			if v != "" {
				t.line(depth, "  %s: %s", kv[i], escapeYAML(v))
			}
		case int:
			if v != 0 {
				t.line(depth, "  %s: %d", kv[i], v)
			}
		}
	}
	t.line(depth, "  ...")
}

func escapeYAML(s string) string {
	// Quote when the value has YAML indicators or line breaks.
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`\\") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		return "\"" + s + "\""
	}
	return s
}
