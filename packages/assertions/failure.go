package assertions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/softspec/packages/backend"
)

var (
	// ErrUnsupportedOperation is captured when no adapter handles a
	// named operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrUnsupportedActualType is returned when the actual value lacks
	// the capability a check needs.
	ErrUnsupportedActualType = backend.ErrUnsupportedActualType

	// ErrAssertionFailed is wrapped by every backend rejection.
	ErrAssertionFailed = backend.ErrAssertionFailed
)

// CapturedFailure is one failed assertion.
type CapturedFailure struct {
	Err       error
	Message   string
	Sequence  int
	Operation string
	Adapter   string
}

// unsupportedOperation names the operation and lists every legacy name.
func unsupportedOperation(name string) error {
	quoted := make([]string, 0, len(legacyOrder))
	for _, n := range legacyOrder {
		quoted = append(quoted, fmt.Sprintf("%q", n))
	}
	return fmt.Errorf("%w: %q. Valid assertion types are: %s",
		ErrUnsupportedOperation, name, strings.Join(quoted, ", "))
}

// AggregateError is returned by Finalize when failures were captured.
// It is the only error that fails a scenario.
type AggregateError struct {
	Failures    []CapturedFailure
	Diagnostics string
	msg         string
}

func (e *AggregateError) Error() string {
	return e.msg
}

// Unwrap exposes the captured errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
