package parser

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/fixture"
)

type File struct {
	Path        string         `yaml:"-"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Variables   map[string]any `yaml:"variables,omitempty"`
	Fixture     fixture.Spec   `yaml:"fixture,omitempty"`
	Scenarios   []*Scenario    `yaml:"scenarios"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Tags        []string       `yaml:"tags,omitempty"`
	Skip        string         `yaml:"skip,omitempty"`
	Only        bool           `yaml:"only,omitempty"`
	Variables   map[string]any `yaml:"variables,omitempty"`
	// Before and After are shell commands run around the steps, in the
	// scenario file's directory. After commands run even when a step or
	// a Before command failed.
	Before []string `yaml:"before,omitempty"`
	After  []string `yaml:"after,omitempty"`
	Steps  []*Step  `yaml:"steps"`
	Line   int      `yaml:"-"`
}

// Step is one assertion. A missing or null Expected means no expected
// value.
type Step struct {
	Assert   string `yaml:"assert"`
	Actual   Source `yaml:"actual"`
	Expected any    `yaml:"expected,omitempty"`
	Message  string `yaml:"message,omitempty"`
	Operator string `yaml:"operator,omitempty"`
	// Capture stores the resolved actual value under this variable name
	// for later steps.
	Capture string `yaml:"capture,omitempty"`
	Line    int    `yaml:"-"`
}

type SourceKind int

const (
	SourceLiteral SourceKind = iota
	SourceElement
	SourcePage
	SourceJSON
	SourceSQL
	SourceVar
)

var sourceKeys = map[string]SourceKind{
	"value":   SourceLiteral,
	"element": SourceElement,
	"page":    SourcePage,
	"json":    SourceJSON,
	"sql":     SourceSQL,
	"var":     SourceVar,
}

func (k SourceKind) String() string {
	switch k {
	case SourceLiteral:
		return "value"
	case SourceElement:
		return "element"
	case SourcePage:
		return "page"
	case SourceJSON:
		return "json"
	case SourceSQL:
		return "sql"
	case SourceVar:
		return "var"
	default:
		return "unknown"
	}
}

// Source says where a step's actual value comes from. Literal sources
// carry the value in Value; the others carry a selector, path, query or
// variable name in Ref.
type Source struct {
	Kind  SourceKind
	Value any
	Ref   string
	Line  int
	// err is set when the YAML form is invalid; it is reported by
	// validation with full step context.
	err string
}

func (s Source) String() string {
	if s.Kind == SourceLiteral {
		return fmt.Sprintf("%v", s.Value)
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Ref)
}

// ParseError locates a problem in a scenario file.
type ParseError struct {
	File     string
	Line     int
	Scenario string
	Step     int // 1-based; 0 when the error is not about a step
	Message  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	if e.Scenario != "" {
		fmt.Fprintf(&b, "scenario %q: ", e.Scenario)
	}
	if e.Step > 0 {
		fmt.Fprintf(&b, "step %d: ", e.Step)
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationError carries every problem found in one file.
type ValidationError struct {
	Errors []*ParseError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		msgs[i] = pe.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}
