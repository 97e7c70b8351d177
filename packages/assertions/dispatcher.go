package assertions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
	"github.com/abdul-hamid-achik/softspec/packages/logging"
	"github.com/abdul-hamid-achik/softspec/packages/report"
)

// Dispatcher evaluates assertion requests against a backend and captures
// failures in an Accumulator instead of returning them.
type Dispatcher struct {
	resolver *Resolver
	acc      *Accumulator
	settings settings
}

// NewDispatcher creates a Dispatcher that resolves operations on b and
// captures failures in acc.
func NewDispatcher(b *backend.Backend, acc *Accumulator, opts ...Option) *Dispatcher {
	return NewDispatcherWith(NewResolver(b), acc, opts...)
}

// NewDispatcherWith creates a Dispatcher over a custom Resolver.
func NewDispatcherWith(r *Resolver, acc *Accumulator, opts ...Option) *Dispatcher {
	return &Dispatcher{
		resolver: r,
		acc:      acc,
		settings: newSettings(opts),
	}
}

// Evaluate runs one request. It never returns an error and never panics:
// a failure is appended to the Accumulator and reported in the Outcome.
func (d *Dispatcher) Evaluate(ctx context.Context, req Request) (out Outcome) {
	adapter := AdapterUnsupported
	defer func() {
		if p := recover(); p != nil {
			out = d.fail(req, adapter, fmt.Errorf("%s panicked: %v", req.Operation, p))
		}
	}()

	var handler Handler
	switch req.Operation.Kind {
	case KindPredicate:
		adapter = AdapterPredicate
		pred := req.Operation.Predicate
		if pred == nil {
			return d.fail(req, adapter, errors.New("predicate operation without a function"))
		}
		handler = func(ctx context.Context, actual, expected any, _ bool) error {
			return pred(ctx, actual, expected)
		}
	default:
		var ok bool
		handler, adapter, ok = d.resolver.Resolve(req.Operation.Name)
		if !ok {
			return d.fail(req, adapter, unsupportedOperation(req.Operation.Name))
		}
	}

	if err := handler(ctx, req.Actual, req.Expected, req.Expected != nil); err != nil {
		return d.fail(req, adapter, err)
	}

	d.settings.logger.Debug("assertion passed",
		logging.String("operation", req.Operation.String()),
		logging.String("adapter", adapter))
	d.settings.attach(report.PassFragment("Assertion passed: " + req.Operation.String()))
	return Outcome{Passed: true, Adapter: adapter}
}

func (d *Dispatcher) fail(req Request, adapter string, err error) Outcome {
	f := d.acc.Append(CapturedFailure{
		Err:       err,
		Message:   Render(req),
		Operation: req.Operation.String(),
		Adapter:   adapter,
	})

	// Info, not Warn: warnings are captured into the diagnostics and would
	// repeat the failure in the aggregate error.
	d.settings.logger.Info("assertion failed",
		logging.String("operation", f.Operation),
		logging.String("adapter", adapter),
		logging.Err(err))
	d.settings.attach(report.FailFragment(f.Message))
	return Outcome{Adapter: adapter, Failure: &f}
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// Sanitize stringifies v and removes angle brackets.
func Sanitize(v any) string {
	return angleBrackets.Replace(fmt.Sprint(v))
}

// Render builds the failure message for req:
//
//	[<message> (]Assertion failed: expected <actual> to <operator>[ <expected>][)]
//
// Actual and expected are stringified and stripped of angle brackets.
// Operator defaults to the operation name.
func Render(req Request) string {
	label := req.Operator
	if label == "" {
		label = req.Operation.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Assertion failed: expected %s to %s", Sanitize(req.Actual), label)
	if req.Expected != nil {
		b.WriteString(" ")
		b.WriteString(Sanitize(req.Expected))
	}

	if req.Message != "" {
		return fmt.Sprintf("%s (%s)", req.Message, b.String())
	}
	return b.String()
}
