package assertions

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

type legacyCall func(ctx context.Context, b *backend.Backend, actual, expected any) error

func fluent(fn func(e *backend.Expectation, ctx context.Context) error) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, _ any) error {
		return fn(b.Expect(actual), ctx)
	}
}

func fluentNot(fn func(e *backend.Expectation, ctx context.Context) error) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, _ any) error {
		return fn(b.Expect(actual).Not(), ctx)
	}
}

func fluentText(fn func(e *backend.Expectation, ctx context.Context, s string) error) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, expected any) error {
		return fn(b.Expect(actual), ctx, fmt.Sprint(expected))
	}
}

// value calls a value check with the operands as given.
func value(check string) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, expected any) error {
		c, ok := b.Value(check)
		if !ok {
			return fmt.Errorf("value check %s is not available", check)
		}
		return c.Call(ctx, actual, expected)
	}
}

// valueWith calls a value check with a fixed expected operand.
func valueWith(check string, expected any) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, _ any) error {
		return value(check)(ctx, b, actual, expected)
	}
}

// valueSwapped calls a value check with actual and expected exchanged.
func valueSwapped(check string) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, expected any) error {
		return value(check)(ctx, b, expected, actual)
	}
}

// legacyOrder is the closed set of legacy names, in the order they are
// listed in unsupported-operation errors.
var legacyOrder = []string{
	"equals", "contains", "doesnotcontain", "doesexist", "doesnotexist",
	"toexist", "tobeexisting", "isenabled", "tobeenabled", "isnotenabled",
	"isdisabled", "tobedisabled", "tobeclickable", "tobeselected", "tobechecked",
	"tobefocused", "tobepresent", "tobedisplayed", "tohavehtml", "tohavetitle",
	"tohaveurl", "tohavetext", "containstext",
	"isOK", "isNotOk", "equal", "notEqual", "toNotEqual", "isTrue", "isNotTrue",
	"isFalse", "isNotFalse", "isNull", "isNotNull", "exists", "notExists",
	"isUndefined", "isString", "typeOf", "isArray", "include", "notInclude",
	"match", "lengthOf", "isEmpty", "isNotEmpty", "oneOf", "isAbove",
}

var legacyTable = map[string]legacyCall{
	// Element checks. The fluent surface awaits the actual.
	"equals":         value("EqualValues"),
	"contains":       anyFluent((*backend.Expectation).ToContain, false),
	"doesnotcontain": anyFluent((*backend.Expectation).ToContain, true),
	"doesexist":      fluent((*backend.Expectation).ToBeExisting),
	"doesnotexist":   fluentNot((*backend.Expectation).ToBeExisting),
	"toexist":        fluent((*backend.Expectation).ToBeExisting),
	"tobeexisting":   fluent((*backend.Expectation).ToBeExisting),
	"isenabled":      fluent((*backend.Expectation).ToBeEnabled),
	"tobeenabled":    fluent((*backend.Expectation).ToBeEnabled),
	"isnotenabled":   fluentNot((*backend.Expectation).ToBeEnabled),
	"isdisabled":     fluent((*backend.Expectation).ToBeDisabled),
	"tobedisabled":   fluent((*backend.Expectation).ToBeDisabled),
	"tobeclickable":  fluent((*backend.Expectation).ToBeClickable),
	"tobeselected":   fluent((*backend.Expectation).ToBeSelected),
	"tobechecked":    fluent((*backend.Expectation).ToBeChecked),
	"tobefocused":    fluent((*backend.Expectation).ToBeFocused),
	"tobepresent":    fluent((*backend.Expectation).ToBePresent),
	"tobedisplayed":  fluent((*backend.Expectation).ToBeDisplayed),
	"tohavehtml":     fluentText((*backend.Expectation).ToHaveHTML),
	"tohavetitle":    fluentText((*backend.Expectation).ToHaveTitle),
	"tohaveurl":      fluentText((*backend.Expectation).ToHaveURL),
	"tohavetext":     textHelper,
	"containstext":   textHelper,

	// Value checks.
	"isOK":        value("Truthy"),
	"isNotOk":     value("Falsy"),
	"equal":       value("EqualValues"),
	"notEqual":    value("NotEqualValues"),
	"toNotEqual":  value("NotEqualValues"),
	"isTrue":      value("True"),
	"isNotTrue":   valueWith("NotEqual", true),
	"isFalse":     value("False"),
	"isNotFalse":  valueWith("NotEqual", false),
	"isNull":      value("Nil"),
	"isNotNull":   value("NotNil"),
	"exists":      value("NotNil"),
	"notExists":   value("Nil"),
	"isUndefined": value("Nil"),
	"isString":    valueWith("TypeOf", "string"),
	"typeOf":      value("TypeOf"),
	"isArray":     valueWith("TypeOf", "array"),
	"include":     value("Contains"),
	"notInclude":  value("NotContains"),
	"match":       value("Regexp"),
	"lengthOf":    value("Len"),
	"isEmpty":     value("Empty"),
	"isNotEmpty":  value("NotEmpty"),
	"oneOf":       valueSwapped("Contains"),
	"isAbove":     value("Greater"),
}

func anyFluent(fn func(e *backend.Expectation, ctx context.Context, v any) error, negate bool) legacyCall {
	return func(ctx context.Context, b *backend.Backend, actual, expected any) error {
		e := b.Expect(actual)
		if negate {
			e = e.Not()
		}
		return fn(e, ctx, expected)
	}
}

func textHelper(ctx context.Context, _ *backend.Backend, actual, expected any) error {
	return AssertHasText(ctx, actual, fmt.Sprint(expected))
}

// LegacyNames returns the legacy operation names.
func LegacyNames() []string {
	out := make([]string, len(legacyOrder))
	copy(out, legacyOrder)
	return out
}

type legacyAdapter struct {
	b *backend.Backend
}

// NewLegacyAdapter resolves the closed table of legacy names. Names
// match exactly, including case.
func NewLegacyAdapter(b *backend.Backend) Adapter {
	return legacyAdapter{b: b}
}

func (a legacyAdapter) Name() string { return AdapterLegacy }

func (a legacyAdapter) Lookup(op string) (Handler, bool) {
	call, ok := legacyTable[op]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, actual, expected any, _ bool) error {
		return call(ctx, a.b, actual, expected)
	}, true
}

func (a legacyAdapter) Operations() []string { return LegacyNames() }
