package parser

import (
	"fmt"
	"strings"
)

// Validate checks a decoded file and returns every problem found.
func Validate(f *File) []*ParseError {
	var errs []*ParseError
	add := func(line int, scenario string, step int, format string, args ...any) {
		errs = append(errs, &ParseError{
			File:     f.Path,
			Line:     line,
			Scenario: scenario,
			Step:     step,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(f.Scenarios) == 0 {
		add(0, "", 0, "file must define at least one scenario")
		return errs
	}

	seen := make(map[string]bool)
	for i, sc := range f.Scenarios {
		if sc == nil {
			add(0, "", 0, "scenario %d is empty", i+1)
			continue
		}
		name := sc.Name
		if strings.TrimSpace(name) == "" {
			add(sc.Line, "", 0, "scenario %d has no name", i+1)
			name = fmt.Sprintf("#%d", i+1)
		} else if seen[name] {
			add(sc.Line, name, 0, "duplicate scenario name")
		}
		seen[name] = true

		if len(sc.Steps) == 0 && sc.Skip == "" {
			add(sc.Line, name, 0, "scenario has no steps")
		}

		for j, st := range sc.Steps {
			if st == nil {
				add(sc.Line, name, j+1, "step is empty")
				continue
			}
			if strings.TrimSpace(st.Assert) == "" {
				add(st.Line, name, j+1, "step needs an assert operation")
			}
			if st.Actual.err != "" {
				line := st.Actual.Line
				if line == 0 {
					line = st.Line
				}
				add(line, name, j+1, "%s", st.Actual.err)
			}
		}
	}
	return errs
}
