package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
	"github.com/abdul-hamid-achik/softspec/packages/report"
	"github.com/google/uuid"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	RunID     string         `json:"runId"`
	Summary   JSONSummary    `json:"summary"`
	Scenarios []JSONScenario `json:"scenarios"`
	Errors    []string       `json:"errors,omitempty"`
	Duration  float64        `json:"duration"`
	Time      string         `json:"time"`
}

// JSONSummary represents the run summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONScenario represents a single scenario result
type JSONScenario struct {
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name"`
	File        string              `json:"file"`
	Passed      bool                `json:"passed"`
	Skipped     bool                `json:"skipped,omitempty"`
	SkipReason  string              `json:"skipReason,omitempty"`
	Duration    float64             `json:"duration"`
	Error       string              `json:"error,omitempty"`
	Steps       []JSONStep          `json:"steps,omitempty"`
	Attachments []report.Attachment `json:"attachments,omitempty"`
}

// JSONStep represents one evaluated step
type JSONStep struct {
	Index   int    `json:"index"`
	Line    int    `json:"line,omitempty"`
	Assert  string `json:"assert"`
	Adapter string `json:"adapter"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// JSONFormatter formats scenario results as JSON
type JSONFormatter struct {
	writer      io.Writer
	runID       string
	attachments bool
	results     []JSONScenario
	errors      []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		runID:   uuid.NewString(),
		results: make([]JSONScenario, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// JSONWithAttachments includes each scenario's reporter attachments.
func JSONWithAttachments(include bool) JSONOption {
	return func(f *JSONFormatter) {
		f.attachments = include
	}
}

// RunID identifies this run in the output.
func (f *JSONFormatter) RunID() string {
	return f.runID
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		sc := JSONScenario{
			ID:       r.ID,
			Name:     r.Name,
			File:     result.File,
			Passed:   r.Passed,
			Skipped:  r.Skipped,
			Duration: float64(r.Duration.Milliseconds()),
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			sc.SkipReason = r.SkipReason
		}
		if r.Error != nil {
			sc.Error = r.Error.Error()
		}

		if len(r.Steps) > 0 {
			sc.Steps = make([]JSONStep, len(r.Steps))
			for i, s := range r.Steps {
				sc.Steps[i] = JSONStep{
					Index:   s.Index,
					Line:    s.Line,
					Assert:  s.Assert,
					Adapter: s.Adapter,
					Passed:  s.Passed,
					Message: s.Message,
				}
			}
		}

		if f.attachments {
			sc.Attachments = r.Attachments
		}

		f.results = append(f.results, sc)
	}
}

// FormatError records errors that are not tied to a scenario, such as a
// file that failed to parse.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
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

	output := JSONOutput{
		RunID: f.runID,
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Scenarios: f.results,
		Errors:    f.errors,
		Duration:  float64(totalDuration.Milliseconds()),
		Time:      time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
