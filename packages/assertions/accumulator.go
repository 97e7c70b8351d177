package assertions

import (
	"bytes"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/abdul-hamid-achik/softspec/packages/report"
)

// Banner starts every aggregate error message.
const Banner = "Collected assertion errors:"

const noFailuresMessage = "No assertion errors collected."

// Accumulator collects the failures of one scenario in capture order.
// It is also an io.Writer: text written to it is kept as diagnostics and
// appended, with ANSI sequences stripped, to the aggregate error.
type Accumulator struct {
	mu       sync.Mutex
	failures []CapturedFailure
	diag     bytes.Buffer
	settings settings
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator(opts ...Option) *Accumulator {
	return &Accumulator{settings: newSettings(opts)}
}

// Append records a failure, assigns its sequence number and returns it.
func (a *Accumulator) Append(f CapturedFailure) CapturedFailure {
	a.mu.Lock()
	defer a.mu.Unlock()
	f.Sequence = len(a.failures)
	a.failures = append(a.failures, f)
	return f
}

// Write appends diagnostic text.
func (a *Accumulator) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.diag.Write(p)
}

// Len returns the number of captured failures.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.failures)
}

// Failures returns a copy of the captured failures.
func (a *Accumulator) Failures() []CapturedFailure {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CapturedFailure, len(a.failures))
	copy(out, a.failures)
	return out
}

// Diagnostics returns the diagnostic text written so far.
func (a *Accumulator) Diagnostics() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.diag.String()
}

// Finalize returns nil when nothing failed, otherwise one *AggregateError
// listing every failure in capture order followed by the diagnostics.
// The accumulator is empty afterwards either way.
func (a *Accumulator) Finalize() error {
	a.mu.Lock()
	failures := a.failures
	diagnostics := logging.StripANSI(a.diag.String())
	a.failures = nil
	a.diag.Reset()
	a.mu.Unlock()

	if len(failures) == 0 {
		a.settings.attach(report.PassFragment(noFailuresMessage))
		return nil
	}

	var b strings.Builder
	b.WriteString(Banner)
	for _, f := range failures {
		b.WriteString("\n")
		b.WriteString(f.Message)
		if detail := causeDetail(f); detail != "" {
			b.WriteString("\n")
			b.WriteString(detail)
		}
	}
	if d := strings.TrimRight(diagnostics, "\n"); d != "" {
		b.WriteString("\n")
		b.WriteString(d)
	}

	err := &AggregateError{
		Failures:    failures,
		Diagnostics: diagnostics,
		msg:         b.String(),
	}
	a.settings.attach(report.FailFragment(err.msg))
	a.settings.logger.Debug("scenario finalized with failures", logging.Int("failures", len(failures)))
	return err
}

// causeDetail returns the failure's error text, stripped of angle
// brackets like the rendered message and indented, or "" when the
// rendered message already contains it.
func causeDetail(f CapturedFailure) string {
	if f.Err == nil {
		return ""
	}
	cause := angleBrackets.Replace(strings.TrimSpace(f.Err.Error()))
	if cause == "" || strings.Contains(f.Message, cause) {
		return ""
	}
	lines := strings.Split(cause, "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
