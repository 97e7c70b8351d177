package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Expectation is a fluent check over an element-like actual value.
type Expectation struct {
	b      *Backend
	actual any
	negate bool
}

// Expect starts a fluent check.
func (b *Backend) Expect(actual any) *Expectation {
	return &Expectation{b: b, actual: actual}
}

// Not negates the terminal check.
func (e *Expectation) Not() *Expectation {
	return &Expectation{b: e.b, actual: e.actual, negate: !e.negate}
}

func (e *Expectation) ToBeExisting(ctx context.Context) error {
	return e.state(ctx, "toBeExisting", StateExisting, false)
}

// ToBePresent is an alias of ToBeExisting.
func (e *Expectation) ToBePresent(ctx context.Context) error {
	return e.state(ctx, "toBePresent", StateExisting, false)
}

func (e *Expectation) ToBeEnabled(ctx context.Context) error {
	return e.state(ctx, "toBeEnabled", StateEnabled, false)
}

// ToBeDisabled passes when the element exists and is not enabled.
func (e *Expectation) ToBeDisabled(ctx context.Context) error {
	return e.state(ctx, "toBeDisabled", StateEnabled, true)
}

func (e *Expectation) ToBeDisplayed(ctx context.Context) error {
	return e.state(ctx, "toBeDisplayed", StateDisplayed, false)
}

func (e *Expectation) ToBeSelected(ctx context.Context) error {
	return e.state(ctx, "toBeSelected", StateSelected, false)
}

func (e *Expectation) ToBeChecked(ctx context.Context) error {
	return e.state(ctx, "toBeChecked", StateChecked, false)
}

func (e *Expectation) ToBeFocused(ctx context.Context) error {
	return e.state(ctx, "toBeFocused", StateFocused, false)
}

func (e *Expectation) ToBeClickable(ctx context.Context) error {
	return e.state(ctx, "toBeClickable", StateClickable, false)
}

// ToHaveText checks the element's text for exact equality.
func (e *Expectation) ToHaveText(ctx context.Context, expected string) error {
	const check = "toHaveText"
	text, err := e.text(ctx, check)
	if err != nil {
		return err
	}
	return e.verdict(check, text == expected, fmt.Sprintf("have text %q, got %q", expected, text))
}

// ToContainText checks the element's text for a substring.
func (e *Expectation) ToContainText(ctx context.Context, expected string) error {
	const check = "toContainText"
	text, err := e.text(ctx, check)
	if err != nil {
		return err
	}
	return e.verdict(check, strings.Contains(text, expected), fmt.Sprintf("contain text %q, got %q", expected, text))
}

func (e *Expectation) ToHaveHTML(ctx context.Context, expected string) error {
	const check = "toHaveHTML"
	actual, err := e.resolve(ctx, check)
	if err != nil {
		return err
	}
	h, ok := actual.(HTMLRetriever)
	if !ok {
		return unsupported(check, actual, "HTML retrieval")
	}
	html, err := h.HTML(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", check, err)
	}
	return e.verdict(check, html == expected, fmt.Sprintf("have HTML %q, got %q", expected, html))
}

func (e *Expectation) ToHaveTitle(ctx context.Context, expected string) error {
	const check = "toHaveTitle"
	p, err := e.page(ctx, check)
	if err != nil {
		return err
	}
	title, err := p.Title(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", check, err)
	}
	return e.verdict(check, title == expected, fmt.Sprintf("have title %q, got %q", expected, title))
}

func (e *Expectation) ToHaveURL(ctx context.Context, expected string) error {
	const check = "toHaveURL"
	p, err := e.page(ctx, check)
	if err != nil {
		return err
	}
	url, err := p.URL(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", check, err)
	}
	return e.verdict(check, url == expected, fmt.Sprintf("have URL %q, got %q", expected, url))
}

// ToHaveAttribute checks that the attribute is present and, when value
// is given, that it has that value.
func (e *Expectation) ToHaveAttribute(ctx context.Context, name string, value ...string) error {
	const check = "toHaveAttribute"
	actual, err := e.resolve(ctx, check)
	if err != nil {
		return err
	}
	r, ok := actual.(AttributeReader)
	if !ok {
		return unsupported(check, actual, "attribute access")
	}
	got, present, err := r.Attribute(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: %w", check, err)
	}
	if len(value) == 0 {
		return e.verdict(check, present, fmt.Sprintf("have attribute %q", name))
	}
	return e.verdict(check, present && got == value[0],
		fmt.Sprintf("have attribute %s=%q, got %q", name, value[0], got))
}

// ToEqual compares the resolved actual with expected, converting
// between compatible types.
func (e *Expectation) ToEqual(ctx context.Context, expected any) error {
	const check = "toEqual"
	actual, err := Resolve(ctx, e.actual)
	if err != nil {
		return fmt.Errorf("%s: resolve actual: %w", check, err)
	}
	return run(check, func(t assert.TestingT) bool {
		if e.negate {
			return assert.NotEqualValues(t, expected, actual)
		}
		return assert.EqualValues(t, expected, actual)
	})
}

// ToContain checks membership in a string, slice or map.
func (e *Expectation) ToContain(ctx context.Context, expected any) error {
	const check = "toContain"
	actual, err := Resolve(ctx, e.actual)
	if err != nil {
		return fmt.Errorf("%s: resolve actual: %w", check, err)
	}
	return run(check, func(t assert.TestingT) bool {
		if e.negate {
			return assert.NotContains(t, actual, expected)
		}
		return assert.Contains(t, actual, expected)
	})
}

func (e *Expectation) resolve(ctx context.Context, check string) (any, error) {
	actual, err := Resolve(ctx, e.actual)
	if err != nil {
		return nil, fmt.Errorf("%s: resolve actual: %w", check, err)
	}
	return actual, nil
}

// state checks one element state. A nil actual is an element that does
// not exist: it fails every state except a negated existence check.
func (e *Expectation) state(ctx context.Context, check string, st State, invert bool) error {
	actual, err := e.resolve(ctx, check)
	if err != nil {
		return err
	}

	want := "be " + string(st)
	if invert {
		want = "not be " + string(st)
	}

	var ok bool
	switch s := actual.(type) {
	case nil:
		if st != StateExisting {
			return &BackendError{Check: check, Reason: fmt.Sprintf("%s: element does not exist", check)}
		}
	case Stateful:
		ok, err = s.Is(ctx, st)
		if err != nil {
			return fmt.Errorf("%s: %w", check, err)
		}
	default:
		if st != StateExisting {
			return unsupported(check, actual, "element state")
		}
		ok = true
	}

	if invert {
		ok = !ok
	}
	return e.verdict(check, ok, want)
}

func (e *Expectation) text(ctx context.Context, check string) (string, error) {
	actual, err := e.resolve(ctx, check)
	if err != nil {
		return "", err
	}
	switch v := actual.(type) {
	case string:
		return v, nil
	case TextRetriever:
		text, err := v.Text(ctx)
		if err != nil {
			return "", fmt.Errorf("%s: %w", check, err)
		}
		return text, nil
	}
	return "", unsupported(check, actual, "text retrieval")
}

func (e *Expectation) page(ctx context.Context, check string) (Page, error) {
	actual, err := e.resolve(ctx, check)
	if err != nil {
		return nil, err
	}
	p, ok := actual.(Page)
	if !ok {
		return nil, unsupported(check, actual, "a page")
	}
	return p, nil
}

// verdict turns a raw result into nil or a *BackendError, applying
// negation.
func (e *Expectation) verdict(check string, ok bool, want string) error {
	if ok != e.negate {
		return nil
	}
	not := ""
	if e.negate {
		not = "not "
	}
	return &BackendError{Check: check, Reason: fmt.Sprintf("expected element %sto %s", not, want)}
}

// FluentCall runs a resolved fluent path. hasExpected reports whether the
// caller supplied an expected value.
type FluentCall func(ctx context.Context, actual, expected any, hasExpected bool) error

type terminal func(ctx context.Context, e *Expectation, expected any, hasExpected bool) error

func noArg(fn func(e *Expectation, ctx context.Context) error) terminal {
	return func(ctx context.Context, e *Expectation, _ any, _ bool) error {
		return fn(e, ctx)
	}
}

func stringArg(name string, fn func(e *Expectation, ctx context.Context, s string) error) terminal {
	return func(ctx context.Context, e *Expectation, expected any, hasExpected bool) error {
		if !hasExpected {
			return &BackendError{Check: name, Reason: name + " requires an expected value"}
		}
		return fn(e, ctx, fmt.Sprint(expected))
	}
}

func anyArg(name string, fn func(e *Expectation, ctx context.Context, v any) error) terminal {
	return func(ctx context.Context, e *Expectation, expected any, hasExpected bool) error {
		if !hasExpected {
			return &BackendError{Check: name, Reason: name + " requires an expected value"}
		}
		return fn(e, ctx, expected)
	}
}

var terminals = map[string]terminal{
	"toBeExisting":  noArg((*Expectation).ToBeExisting),
	"toBePresent":   noArg((*Expectation).ToBePresent),
	"toBeEnabled":   noArg((*Expectation).ToBeEnabled),
	"toBeDisabled":  noArg((*Expectation).ToBeDisabled),
	"toBeDisplayed": noArg((*Expectation).ToBeDisplayed),
	"toBeSelected":  noArg((*Expectation).ToBeSelected),
	"toBeChecked":   noArg((*Expectation).ToBeChecked),
	"toBeFocused":   noArg((*Expectation).ToBeFocused),
	"toBeClickable": noArg((*Expectation).ToBeClickable),
	"toHaveText":    stringArg("toHaveText", (*Expectation).ToHaveText),
	"toContainText": stringArg("toContainText", (*Expectation).ToContainText),
	"toHaveHTML":    stringArg("toHaveHTML", (*Expectation).ToHaveHTML),
	"toHaveTitle":   stringArg("toHaveTitle", (*Expectation).ToHaveTitle),
	"toHaveURL":     stringArg("toHaveURL", (*Expectation).ToHaveURL),
	"toEqual":       anyArg("toEqual", (*Expectation).ToEqual),
	"toContain":     anyArg("toContain", (*Expectation).ToContain),
	"toHaveAttribute": func(ctx context.Context, e *Expectation, expected any, hasExpected bool) error {
		switch v := expected.(type) {
		case string:
			return e.ToHaveAttribute(ctx, v)
		case map[string]any:
			if len(v) == 1 {
				for name, value := range v {
					return e.ToHaveAttribute(ctx, name, fmt.Sprint(value))
				}
			}
		}
		return &BackendError{Check: "toHaveAttribute",
			Reason: "toHaveAttribute expects an attribute name or a single {name: value} pair"}
	},
}

// Fluent resolves a dotted path such as "toBeEnabled" or
// "not.toHaveText". Each "not" segment toggles negation; the terminal
// must be the last segment.
func (b *Backend) Fluent(path string) (FluentCall, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	negate := false
	for _, seg := range segments[:len(segments)-1] {
		if seg != "not" {
			return nil, false
		}
		negate = !negate
	}

	term, ok := terminals[segments[len(segments)-1]]
	if !ok {
		return nil, false
	}

	return func(ctx context.Context, actual, expected any, hasExpected bool) error {
		e := b.Expect(actual)
		if negate {
			e = e.Not()
		}
		return term(ctx, e, expected, hasExpected)
	}, true
}

// FluentTerminals lists the terminal checks, sorted.
func FluentTerminals() []string {
	names := make([]string, 0, len(terminals))
	for name := range terminals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
