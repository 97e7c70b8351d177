package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/stretchr/testify/assert"
)

// ValueCheck is a named check on plain values. Arity is 1 for checks that
// only look at the actual value and 2 for checks comparing it against an
// expected value.
type ValueCheck struct {
	Name  string
	Arity int
	fn    func(t assert.TestingT, actual, expected any) bool
}

// Call runs the check. A rejected check returns a *BackendError.
func (c ValueCheck) Call(_ context.Context, actual, expected any) error {
	return run(c.Name, func(t assert.TestingT) bool {
		return c.fn(t, actual, expected)
	})
}

func unary(name string, fn func(t assert.TestingT, actual any) bool) ValueCheck {
	return ValueCheck{Name: name, Arity: 1, fn: func(t assert.TestingT, actual, _ any) bool {
		return fn(t, actual)
	}}
}

func binary(name string, fn func(t assert.TestingT, actual, expected any) bool) ValueCheck {
	return ValueCheck{Name: name, Arity: 2, fn: fn}
}

func (b *Backend) valueChecks() map[string]ValueCheck {
	checks := []ValueCheck{
		binary("Equal", func(t assert.TestingT, actual, expected any) bool {
			return assert.Equal(t, expected, actual)
		}),
		binary("NotEqual", func(t assert.TestingT, actual, expected any) bool {
			return assert.NotEqual(t, expected, actual)
		}),
		binary("EqualValues", func(t assert.TestingT, actual, expected any) bool {
			return assert.EqualValues(t, expected, actual)
		}),
		binary("NotEqualValues", func(t assert.TestingT, actual, expected any) bool {
			return assert.NotEqualValues(t, expected, actual)
		}),
		binary("Exactly", func(t assert.TestingT, actual, expected any) bool {
			return assert.Exactly(t, expected, actual)
		}),
		binary("Contains", func(t assert.TestingT, actual, expected any) bool {
			return assert.Contains(t, actual, expected)
		}),
		binary("NotContains", func(t assert.TestingT, actual, expected any) bool {
			return assert.NotContains(t, actual, expected)
		}),
		unary("True", func(t assert.TestingT, actual any) bool {
			v, ok := actual.(bool)
			if !ok {
				return assert.Fail(t, fmt.Sprintf("expected a boolean, got %T", actual))
			}
			return assert.True(t, v)
		}),
		unary("False", func(t assert.TestingT, actual any) bool {
			v, ok := actual.(bool)
			if !ok {
				return assert.Fail(t, fmt.Sprintf("expected a boolean, got %T", actual))
			}
			return assert.False(t, v)
		}),
		unary("Truthy", func(t assert.TestingT, actual any) bool {
			if !truthy(actual) {
				return assert.Fail(t, fmt.Sprintf("expected %v to be truthy", actual))
			}
			return true
		}),
		unary("Falsy", func(t assert.TestingT, actual any) bool {
			if truthy(actual) {
				return assert.Fail(t, fmt.Sprintf("expected %v to be falsy", actual))
			}
			return true
		}),
		unary("Nil", func(t assert.TestingT, actual any) bool {
			return assert.Nil(t, actual)
		}),
		unary("NotNil", func(t assert.TestingT, actual any) bool {
			return assert.NotNil(t, actual)
		}),
		unary("Empty", func(t assert.TestingT, actual any) bool {
			return assert.Empty(t, actual)
		}),
		unary("NotEmpty", func(t assert.TestingT, actual any) bool {
			return assert.NotEmpty(t, actual)
		}),
		unary("Zero", func(t assert.TestingT, actual any) bool {
			return assert.Zero(t, actual)
		}),
		unary("NotZero", func(t assert.TestingT, actual any) bool {
			return assert.NotZero(t, actual)
		}),
		binary("Len", func(t assert.TestingT, actual, expected any) bool {
			n, ok := toInt(expected)
			if !ok {
				return assert.Fail(t, fmt.Sprintf("expected length must be an integer, got %T", expected))
			}
			return assert.Len(t, actual, n)
		}),
		binary("Regexp", func(t assert.TestingT, actual, expected any) bool {
			re, err := compilePattern(expected)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			return assert.Regexp(t, re, actual)
		}),
		binary("NotRegexp", func(t assert.TestingT, actual, expected any) bool {
			re, err := compilePattern(expected)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			return assert.NotRegexp(t, re, actual)
		}),
		binary("Greater", func(t assert.TestingT, actual, expected any) bool {
			a, e := numericPair(actual, expected)
			return assert.Greater(t, a, e)
		}),
		binary("GreaterOrEqual", func(t assert.TestingT, actual, expected any) bool {
			a, e := numericPair(actual, expected)
			return assert.GreaterOrEqual(t, a, e)
		}),
		binary("Less", func(t assert.TestingT, actual, expected any) bool {
			a, e := numericPair(actual, expected)
			return assert.Less(t, a, e)
		}),
		binary("LessOrEqual", func(t assert.TestingT, actual, expected any) bool {
			a, e := numericPair(actual, expected)
			return assert.LessOrEqual(t, a, e)
		}),
		unary("Positive", func(t assert.TestingT, actual any) bool {
			f, ok := toFloat64(actual)
			if !ok {
				return assert.Fail(t, fmt.Sprintf("expected a number, got %T", actual))
			}
			return assert.Positive(t, f)
		}),
		unary("Negative", func(t assert.TestingT, actual any) bool {
			f, ok := toFloat64(actual)
			if !ok {
				return assert.Fail(t, fmt.Sprintf("expected a number, got %T", actual))
			}
			return assert.Negative(t, f)
		}),
		binary("ElementsMatch", func(t assert.TestingT, actual, expected any) bool {
			return assert.ElementsMatch(t, expected, actual)
		}),
		binary("Subset", func(t assert.TestingT, actual, expected any) bool {
			return assert.Subset(t, actual, expected)
		}),
		binary("NotSubset", func(t assert.TestingT, actual, expected any) bool {
			return assert.NotSubset(t, actual, expected)
		}),
		binary("JSONEq", func(t assert.TestingT, actual, expected any) bool {
			a, err := toJSONString(actual)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			e, err := toJSONString(expected)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			return assert.JSONEq(t, e, a)
		}),
		binary("YAMLEq", func(t assert.TestingT, actual, expected any) bool {
			a, err := toYAMLString(actual)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			e, err := toYAMLString(expected)
			if err != nil {
				return assert.Fail(t, err.Error())
			}
			return assert.YAMLEq(t, e, a)
		}),
		binary("TypeOf", func(t assert.TestingT, actual, expected any) bool {
			want := fmt.Sprint(expected)
			if got := typeName(actual); got != want {
				return assert.Fail(t, fmt.Sprintf("expected type %q, got %q", want, got))
			}
			return true
		}),
		binary("MatchesSchema", func(t assert.TestingT, actual, expected any) bool {
			if msg := b.validateSchema(actual, expected); msg != "" {
				return assert.Fail(t, msg)
			}
			return true
		}),
		binary("MatchesSnapshot", func(t assert.TestingT, actual, expected any) bool {
			if b.snapshots == nil {
				return assert.Fail(t, "snapshots are not configured for this scenario")
			}
			name := ""
			if expected != nil {
				name = fmt.Sprint(expected)
			}
			result := b.snapshots.Compare(b.snapshotFile, b.snapshotScenario, name, actual)
			if !result.Passed {
				return assert.Fail(t, result.Message)
			}
			return true
		}),
	}

	out := make(map[string]ValueCheck, len(checks))
	for _, c := range checks {
		out[c.Name] = c
	}
	return out
}

// compilePattern accepts a *regexp.Regexp or a pattern string, optionally
// written with slash delimiters (/^a+$/).
func compilePattern(expected any) (*regexp.Regexp, error) {
	switch p := expected.(type) {
	case *regexp.Regexp:
		return p, nil
	case string:
		if len(p) > 1 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
			p = p[1 : len(p)-1]
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %v", p, err)
		}
		return re, nil
	default:
		return nil, fmt.Errorf("pattern must be a string, got %T", expected)
	}
}
