package assertions

import "context"

// Kind distinguishes named operations from caller-supplied predicates.
type Kind int

const (
	KindNamed Kind = iota
	KindPredicate
)

// Predicate is a custom check. A non-nil error is captured as a failure.
type Predicate func(ctx context.Context, actual, expected any) error

// Operation identifies what a Request checks.
type Operation struct {
	Kind      Kind
	Name      string
	Predicate Predicate
}

// Named returns an operation resolved by name.
func Named(name string) Operation {
	return Operation{Kind: KindNamed, Name: name}
}

// Func returns an operation that calls pred directly.
func Func(pred Predicate) Operation {
	return Operation{Kind: KindPredicate, Predicate: pred}
}

// String returns the operation's display name.
func (o Operation) String() string {
	if o.Kind == KindPredicate && o.Name == "" {
		return "satisfy predicate"
	}
	return o.Name
}

// Request is one assertion. A nil Expected means no expected value was
// given. Operator, when set, replaces the operation name in failure
// messages.
type Request struct {
	Operation Operation
	Actual    any
	Expected  any
	Message   string
	Operator  string
}

// Adapter names reported in Outcome.
const (
	AdapterPredicate   = "predicate"
	AdapterValue       = "value"
	AdapterFluent      = "fluent"
	AdapterLegacy      = "legacy"
	AdapterUnsupported = "unsupported"
)

// Outcome reports how a request was handled. Failure is set when the
// request failed; it is the same value appended to the Accumulator.
type Outcome struct {
	Passed  bool
	Adapter string
	Failure *CapturedFailure
}
