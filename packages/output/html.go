package output

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
	"github.com/abdul-hamid-achik/softspec/packages/report"
)

// HTMLOutput represents the complete HTML output structure
type HTMLOutput struct {
	Version        string
	Summary        HTMLSummary
	Scenarios      []HTMLScenario
	Errors         []string
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the run summary for HTML output
type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// HTMLScenario represents a single scenario result for HTML output
type HTMLScenario struct {
	Name        string
	File        string
	Passed      bool
	Skipped     bool
	SkipReason  string
	Duration    float64
	Error       string
	StatusClass string
	Steps       []HTMLStep
	Attachments []HTMLAttachment
}

// HTMLStep represents one evaluated step for HTML output
type HTMLStep struct {
	Index   int
	Assert  string
	Adapter string
	Passed  bool
	Message string
}

// HTMLAttachment is a reporter fragment. HTML fragments are built by the
// report package with their text escaped and are embedded as is.
type HTMLAttachment struct {
	Fragment template.HTML
	Text     string
	Time     string
}

// HTMLFormatter formats scenario results as HTML
type HTMLFormatter struct {
	writer  io.Writer
	results []HTMLScenario
	errors  []string
	version string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer:  os.Stdout,
		results: make([]HTMLScenario, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

// FormatResult accumulates a run result
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		sc := HTMLScenario{
			Name:     r.Name,
			File:     result.File,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
		}

		// Set status class for CSS
		if r.Skipped {
			sc.StatusClass = "skipped"
		} else if r.Passed {
			sc.StatusClass = "passed"
		} else {
			sc.StatusClass = "failed"
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			sc.SkipReason = r.SkipReason
		}
		if r.Error != nil {
			sc.Error = r.Error.Error()
		}

		for _, s := range r.Steps {
			sc.Steps = append(sc.Steps, HTMLStep{
				Index:   s.Index,
				Assert:  s.Assert,
				Adapter: s.Adapter,
				Passed:  s.Passed,
				Message: s.Message,
			})
		}

		for _, a := range r.Attachments {
			sc.Attachments = append(sc.Attachments, htmlAttachment(a))
		}

		f.results = append(f.results, sc)
	}
}

func htmlAttachment(a report.Attachment) HTMLAttachment {
	att := HTMLAttachment{Time: a.Time.Format("15:04:05.000")}
	if a.MediaType == report.MediaHTML {
		att.Fragment = template.HTML(a.Data)
	} else {
		att.Text = a.Data
	}
	return att
}

// FormatError records errors that are not tied to a scenario
func (f *HTMLFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	total := len(f.results)
	var passedPct, failedPct, skippedPct float64
	if total > 0 {
		passedPct = float64(passed) / float64(total) * 100
		failedPct = float64(failed) / float64(total) * 100
		skippedPct = float64(skipped) / float64(total) * 100
	}

	output := HTMLOutput{
		Version: f.version,
		Summary: HTMLSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Scenarios:      f.results,
		Errors:         f.errors,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}
