package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/softspec/packages/core/runner"
)

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Assertions int              `xml:"assertions,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite is one scenario file.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	File       string          `xml:"file,attr,omitempty"`
	Tests      int             `xml:"tests,attr"`
	Assertions int             `xml:"assertions,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase is one scenario. Assertions counts its evaluated steps.
type JUnitTestCase struct {
	XMLName    xml.Name        `xml:"testcase"`
	Name       string          `xml:"name,attr"`
	ClassName  string          `xml:"classname,attr"`
	Assertions int             `xml:"assertions,attr"`
	Time       float64         `xml:"time,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	Failure    *JUnitFailure   `xml:"failure,omitempty"`
	Error      *JUnitError     `xml:"error,omitempty"`
	Skipped    *JUnitSkipped   `xml:"skipped,omitempty"`
	SystemOut  string          `xml:"system-out,omitempty"`
}

type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitFailure holds collected assertion failures.
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError holds a failure that is not an assertion, such as a hook.
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter formats scenario results as JUnit XML
type JUnitFormatter struct {
	writer     io.Writer
	testSuites []JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := JUnitTestSuite{
		Name:      strings.TrimSuffix(result.File, ".soft.yaml"),
		File:      result.File,
		Time:      result.Duration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		tc := junitCase(result.File, r)
		suite.Tests++
		suite.Assertions += tc.Assertions
		switch {
		case tc.Skipped != nil:
			suite.Skipped++
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	f.testSuites = append(f.testSuites, suite)
}

func junitCase(file string, r *runner.ScenarioResult) JUnitTestCase {
	tc := JUnitTestCase{
		Name:       r.Name,
		ClassName:  file,
		Assertions: len(r.Steps),
		Time:       r.Duration.Seconds(),
	}
	if r.ID != "" {
		tc.Properties = []JUnitProperty{{Name: "scenario.id", Value: r.ID}}
	}

	var out strings.Builder
	for _, s := range r.Steps {
		status := "PASS"
		if !s.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&out, "%s %d. %s [%s]", status, s.Index, s.Assert, s.Adapter)
		if s.Line > 0 {
			fmt.Fprintf(&out, " line %d", s.Line)
		}
		out.WriteString("\n")
	}
	tc.SystemOut = out.String()

	switch {
	case r.Skipped:
		tc.Skipped = &JUnitSkipped{Message: r.SkipReason}
	case r.Passed:
	case isAssertionFailure(r.Error):
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%d assertion(s) failed", len(failedSteps(r))),
			Type:    "AssertionError",
			Content: r.Error.Error(),
		}
	default:
		msg := "scenario failed"
		if r.Error != nil {
			msg = r.Error.Error()
		}
		tc.Error = &JUnitError{
			Message: strings.SplitN(msg, "\n", 2)[0],
			Type:    "Error",
			Content: msg,
		}
	}
	return tc
}

// FormatError is a no-op: JUnit has no place for file-level errors.
func (f *JUnitFormatter) FormatError(err error) {}

func (f *JUnitFormatter) FormatHeader(version string) {}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	suites := JUnitTestSuites{
		Name:       "softspec",
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: f.testSuites,
	}
	for _, s := range f.testSuites {
		suites.Tests += s.Tests
		suites.Assertions += s.Assertions
		suites.Failures += s.Failures
		suites.Errors += s.Errors
		suites.Skipped += s.Skipped
	}

	if _, err := io.WriteString(f.writer, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
